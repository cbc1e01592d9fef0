package entry

// Entry is one parsed desktop application descriptor. It is a plain value:
// construct it by parsing a file, then treat it as immutable.
type Entry struct {
	Name       string   `json:"name"`
	Exec       string   `json:"exec"`
	Icon       string   `json:"icon"`
	Categories []string `json:"categories"`
	NoDisplay  bool     `json:"no_display"`
	Path       string   `json:"path"`
}

// Launchable filters out entries that must never reach presentation or the
// launch path: NoDisplay entries and entries without a command. Discover does
// not apply this filter itself so the raw scan stays usable for introspection.
func Launchable(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.NoDisplay || e.Exec == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}
