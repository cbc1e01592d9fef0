package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/stardust-xr/protostar/internal/config"
	"github.com/stardust-xr/protostar/internal/entry"
	"github.com/stardust-xr/protostar/internal/host"
	"github.com/stardust-xr/protostar/internal/icon"
	"github.com/stardust-xr/protostar/internal/launch"
)

func main() {
	configPath := flag.String("config", "~/.config/protostar/config.toml", "path to config file")
	logPath := flag.String("log", "", "append logs to this file instead of stderr")
	launchName := flag.String("launch", "", "launch the application best matching this name and exit")
	spaceID := flag.String("space", "root", "spatial identity to scope the startup token to")
	flag.Parse()

	if *logPath != "" {
		logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(logFile)
			defer logFile.Close()
		}
	}

	cfg, err := config.LoadAndValidateConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v, using defaults", err)
		defaults := config.FromEnvironment()
		cfg = &defaults
	}

	store := entry.NewStore(cfg)
	entries := entry.Launchable(store.Discover())

	apps := make(map[string]*launch.Application, len(entries))
	for _, e := range entries {
		app, err := launch.NewApplication(e)
		if err != nil {
			continue
		}
		apps[e.Name] = app
	}
	log.Printf("Prepared %d launchable applications", len(apps))

	connector := host.NewSocketConnector(cfg)
	coordinator := launch.NewCoordinator(connector, cfg)

	if *launchName != "" {
		matches := entry.Search(entries, *launchName, 1)
		if len(matches) == 0 {
			log.Fatalf("No application matches %q", *launchName)
		}
		app := apps[matches[0].Name]

		if err := coordinator.Launch(app, *spaceID); err != nil {
			log.Fatalf("Cannot launch %q: %v", app.Name(), err)
		}
		log.Printf("Scheduled launch of %q into space %q", app.Name(), *spaceID)

		// The launch task is fire-and-forget; give the handshake and
		// spawn a window before the process exits.
		time.Sleep(time.Duration(cfg.Host.RequestTimeout * float64(time.Second)))
		return
	}

	library, err := icon.NewLibrary(cfg)
	if err != nil {
		log.Fatalf("Failed to create icon library: %v", err)
	}
	library.Prefetch(entries)

	hits, misses, cached := library.Stats()
	log.Printf("Icon prefetch: %d cached (%d hits, %d misses, %d renders)",
		cached, hits, misses, library.RenderCount())
}
