package launch

import (
	"context"
	"log"
	"os"
	"os/exec"
	"regexp"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/host"
)

// fieldCodeRe matches the XDG Exec field codes this launcher does not
// support. They are stripped, not substituted.
var fieldCodeRe = regexp.MustCompile(`%[fFuUdDnNickvm]`)

// StripFieldCodes removes XDG field codes from a raw Exec command. Codes are
// replaced with the empty string; surrounding whitespace is left as-is.
func StripFieldCodes(command string) string {
	return fieldCodeRe.ReplaceAllString(command, "")
}

type spawnFunc func(command string, env []string) error

// Coordinator performs the launch handshake with the host environment and
// spawns the target command detached from the launcher.
//
// Launch is fire-and-forget by contract: once the synchronous checks pass,
// the scheduled work cannot be cancelled and its result is never observed by
// the caller. Handshake and spawn failures are logged and swallowed.
type Coordinator struct {
	connector host.Connector
	timeout   time.Duration
	spawn     spawnFunc // swapped out in tests
}

func NewCoordinator(conn host.Connector, cfg *config.Config) *Coordinator {
	return &Coordinator{
		connector: conn,
		timeout:   time.Duration(cfg.Host.RequestTimeout * float64(time.Second)),
		spawn:     spawnDetached,
	}
}

// Launch validates the application and schedules the launch task. The only
// caller-visible failure is ErrNotLaunchable; everything after scheduling is
// best-effort.
func (c *Coordinator) Launch(app *Application, spaceID string) error {
	e := app.Entry()
	if e.NoDisplay || e.Exec == "" {
		return ErrNotLaunchable
	}

	command := StripFieldCodes(e.Exec)
	go c.run(e.Name, command, spaceID)
	return nil
}

func (c *Coordinator) run(name, command, spaceID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	// Token and environment requests run concurrently; both must succeed
	// before anything is spawned.
	var token string
	var connEnv map[string]string

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		token, err = c.connector.StartupToken(ctx, spaceID)
		return err
	})
	g.Go(func() error {
		var err error
		connEnv, err = c.connector.ConnectionEnv(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[LAUNCH] Handshake failed for %q: %v", name, err)
		return
	}

	env := os.Environ()
	for k, v := range connEnv {
		env = append(env, k+"="+v)
	}
	env = append(env, "STARDUST_STARTUP_TOKEN="+token)

	if err := c.spawn(command, env); err != nil {
		log.Printf("[LAUNCH] Failed to start %q: %v", name, err)
		return
	}
	log.Printf("[LAUNCH] Started %q", name)
}

// spawnDetached runs the command through sh in its own session with stdio
// silenced, so the child outlives the launcher and its signals.
func spawnDetached(command string, env []string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Env = env
	// nil stdio connects to /dev/null
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap the shell when it exits; the launched process keeps running in
	// its session either way.
	go cmd.Wait()
	return nil
}
