package entry

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/stardust-xr/protostar/internal/config"
)

// ParseError reports a desktop file that could not be read. Parsing itself is
// lenient; only I/O failures produce this error.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var sectionRe = regexp.MustCompile(`^\[([^\]]*)\]$`)

// Store discovers desktop entries across the configured data directories.
type Store struct {
	dataDirs []string
}

func NewStore(cfg *config.Config) *Store {
	return &Store{dataDirs: cfg.Data.DataDirs}
}

// Discover re-scans every applications directory and returns the parsed
// entries sorted by source path. Each call is a fresh scan; unreadable files
// are logged and skipped. NoDisplay entries are included, see Launchable.
func (s *Store) Discover() []Entry {
	files := s.desktopFiles()

	var wg sync.WaitGroup
	entryChan := make(chan Entry, 100)
	semaphore := make(chan struct{}, 10) // limit parallel parsing

	for _, path := range files {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			e, err := ParseEntry(p)
			if err != nil {
				log.Printf("[ENTRY-STORE] Skipping %s: %v", p, err)
				return
			}
			entryChan <- e
		}(path)
	}

	go func() {
		wg.Wait()
		close(entryChan)
	}()

	var entries []Entry
	for e := range entryChan {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	log.Printf("[ENTRY-STORE] Discovered %d entries from %d files", len(entries), len(files))
	return entries
}

// desktopFiles collects every *.desktop regular file under the applications
// subdirectory of each data dir, recursively, following symlinks. Duplicate
// paths reached through multiple links are collected once.
func (s *Store) desktopFiles() []string {
	seen := make(map[string]bool)
	var files []string

	for _, dataDir := range s.dataDirs {
		walkApplications(filepath.Join(dataDir, "applications"), seen, &files, 0)
	}
	return files
}

// maxWalkDepth bounds symlink-following recursion so a link cycle cannot spin
// the scan forever.
const maxWalkDepth = 32

func walkApplications(dir string, seen map[string]bool, files *[]string, depth int) {
	if depth > maxWalkDepth {
		return
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, de := range dirEntries {
		path := filepath.Join(dir, de.Name())

		// Stat follows symlinks, so linked files and directories are
		// classified by their targets.
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			walkApplications(path, seen, files, depth+1)
			continue
		}

		if !info.Mode().IsRegular() || !strings.HasSuffix(path, ".desktop") {
			continue
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		*files = append(*files, path)
	}
}

// ParseEntry parses one desktop file. Only keys inside the [Desktop Entry]
// section are honored; keys in other sections such as [Desktop Action ...]
// are ignored. Unknown keys are silently dropped and malformed lines never
// fail the parse.
func ParseEntry(path string) (Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return Entry{}, &ParseError{Path: path, Err: err}
	}
	defer file.Close()

	e := Entry{Path: path}
	inDesktopEntry := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			inDesktopEntry = m[1] == "Desktop Entry"
			continue
		}
		if !inDesktopEntry {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			e.Name = value
		case "Exec":
			e.Exec = value
		case "Categories":
			e.Categories = splitCategories(value)
		case "Icon":
			e.Icon = value
		case "NoDisplay":
			e.NoDisplay = value == "true"
		}
	}

	if err := scanner.Err(); err != nil {
		return Entry{}, &ParseError{Path: path, Err: err}
	}

	return e, nil
}

func splitCategories(value string) []string {
	var out []string
	for _, c := range strings.Split(value, ";") {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
