// entry-scan lists discovered desktop entries as JSON, for poking at what the
// launcher would see without starting it.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/entry"
)

func main() {
	configPath := flag.String("config", "~/.config/protostar/config.toml", "path to config file")
	query := flag.String("query", "", "fuzzy-filter entries by name")
	all := flag.Bool("all", false, "include NoDisplay and command-less entries")
	maxResults := flag.Int("max", 50, "maximum results for -query")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store := entry.NewStore(cfg)
	entries := store.Discover()
	if !*all {
		entries = entry.Launchable(entries)
	}
	if *query != "" {
		entries = entry.Search(entries, *query, *maxResults)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		log.Fatalf("Failed to encode entries: %v", err)
	}
}
