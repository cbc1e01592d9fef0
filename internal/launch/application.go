package launch

import (
	"errors"

	"github.com/stardust-xr/protostar/internal/entry"
	"github.com/stardust-xr/protostar/internal/icon"
)

// ErrNotLaunchable is returned for entries that must never be launched: ones
// marked NoDisplay and ones without an Exec command. It is the only launch
// error surfaced synchronously to callers.
var ErrNotLaunchable = errors.New("entry is not launchable")

// Application is a launch-capable wrapper around one desktop entry. It owns a
// copy of the entry, so launching never re-reads the filesystem, and may be
// copied freely between call sites.
type Application struct {
	entry entry.Entry
}

func NewApplication(e entry.Entry) (*Application, error) {
	if e.NoDisplay || e.Exec == "" {
		return nil, ErrNotLaunchable
	}
	return &Application{entry: e}, nil
}

func (a *Application) Name() string {
	return a.entry.Name
}

func (a *Application) Categories() []string {
	return a.entry.Categories
}

func (a *Application) Entry() entry.Entry {
	return a.entry
}

// Icon resolves the application's display icon through the library. The
// second return is false when no icon could be produced; the presentation
// layer substitutes its built-in default.
func (a *Application) Icon(lib *icon.Library) (icon.Candidate, bool) {
	return lib.Get(a.entry)
}
