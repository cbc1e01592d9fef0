package launch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/entry"
)

type fakeConnector struct {
	token    string
	tokenErr error
	env      map[string]string
	envErr   error
	spaceIDs chan string
}

func (f *fakeConnector) StartupToken(ctx context.Context, spaceID string) (string, error) {
	if f.spaceIDs != nil {
		f.spaceIDs <- spaceID
	}
	return f.token, f.tokenErr
}

func (f *fakeConnector) ConnectionEnv(ctx context.Context) (map[string]string, error) {
	return f.env, f.envErr
}

type spawnRecord struct {
	command string
	env     []string
}

func newTestCoordinator(conn *fakeConnector) (*Coordinator, chan spawnRecord) {
	cfg := config.DefaultConfig
	c := NewCoordinator(conn, &cfg)

	spawned := make(chan spawnRecord, 4)
	c.spawn = func(command string, env []string) error {
		spawned <- spawnRecord{command: command, env: env}
		return nil
	}
	return c, spawned
}

func launchableEntry() entry.Entry {
	return entry.Entry{Name: "Demo", Exec: "demo %f --flag %U", Path: "/tmp/demo.desktop"}
}

func TestStripFieldCodes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"app %f --flag %U", "app  --flag "},
		{"plain command", "plain command"},
		{"%fapp%U", "app"},
		{"keep %% and %x", "keep %% and %x"},
	}
	for _, tt := range tests {
		if got := StripFieldCodes(tt.in); got != tt.want {
			t.Errorf("StripFieldCodes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewApplication_RejectsUnlaunchable(t *testing.T) {
	if _, err := NewApplication(entry.Entry{Name: "Hidden", Exec: "x", NoDisplay: true}); !errors.Is(err, ErrNotLaunchable) {
		t.Errorf("Expected ErrNotLaunchable for NoDisplay entry, got %v", err)
	}
	if _, err := NewApplication(entry.Entry{Name: "Empty"}); !errors.Is(err, ErrNotLaunchable) {
		t.Errorf("Expected ErrNotLaunchable for entry without Exec, got %v", err)
	}
	if _, err := NewApplication(launchableEntry()); err != nil {
		t.Errorf("Expected launchable entry to construct, got %v", err)
	}
}

func TestLaunch_SpawnsWithTokenAndEnv(t *testing.T) {
	conn := &fakeConnector{
		token:    "tok-42",
		env:      map[string]string{"STARDUST_INSTANCE": "3"},
		spaceIDs: make(chan string, 1),
	}
	c, spawned := newTestCoordinator(conn)

	app, err := NewApplication(launchableEntry())
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	if err := c.Launch(app, "space-1"); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	var rec spawnRecord
	select {
	case rec = <-spawned:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for spawn")
	}

	if rec.command != "demo  --flag " {
		t.Errorf("Expected field codes stripped, got %q", rec.command)
	}

	envSet := make(map[string]bool)
	for _, kv := range rec.env {
		envSet[kv] = true
	}
	if !envSet["STARDUST_STARTUP_TOKEN=tok-42"] {
		t.Error("Expected startup token in spawn environment")
	}
	if !envSet["STARDUST_INSTANCE=3"] {
		t.Error("Expected connection env in spawn environment")
	}

	if spaceID := <-conn.spaceIDs; spaceID != "space-1" {
		t.Errorf("Expected token request scoped to space-1, got %q", spaceID)
	}
}

func TestLaunch_RejectsUnlaunchableSynchronously(t *testing.T) {
	c, spawned := newTestCoordinator(&fakeConnector{token: "t"})

	app := &Application{entry: entry.Entry{Name: "Hidden", Exec: "x", NoDisplay: true}}
	if err := c.Launch(app, "space"); !errors.Is(err, ErrNotLaunchable) {
		t.Errorf("Expected ErrNotLaunchable, got %v", err)
	}

	select {
	case <-spawned:
		t.Error("Nothing should spawn for an unlaunchable entry")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestLaunch_HandshakeFailureAbortsSilently(t *testing.T) {
	for name, conn := range map[string]*fakeConnector{
		"token error": {tokenErr: errors.New("no token")},
		"env error":   {token: "t", envErr: errors.New("no env")},
	} {
		c, spawned := newTestCoordinator(conn)

		app, err := NewApplication(launchableEntry())
		if err != nil {
			t.Fatalf("NewApplication failed: %v", err)
		}
		if err := c.Launch(app, "space"); err != nil {
			t.Fatalf("%s: Launch should still return nil, got %v", name, err)
		}

		select {
		case <-spawned:
			t.Errorf("%s: expected aborted task, but spawn ran", name)
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func TestLaunch_SpawnFailureDoesNotPropagate(t *testing.T) {
	c, _ := newTestCoordinator(&fakeConnector{token: "t"})
	done := make(chan struct{})
	c.spawn = func(command string, env []string) error {
		close(done)
		return errors.New("fork failed")
	}

	app, err := NewApplication(launchableEntry())
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}
	if err := c.Launch(app, "space"); err != nil {
		t.Fatalf("Launch should not surface spawn failures, got %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for spawn attempt")
	}
}

func TestApplication_OwnsEntryCopy(t *testing.T) {
	e := launchableEntry()
	app, err := NewApplication(e)
	if err != nil {
		t.Fatalf("NewApplication failed: %v", err)
	}

	e.Exec = "mutated"
	if strings.Contains(app.Entry().Exec, "mutated") {
		t.Error("Application must own an independent copy of the entry")
	}
}
