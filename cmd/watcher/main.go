// watcher watches an inbox directory for new receipt images, runs the
// pipeline on each stable file and writes a .json sidecar next to it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"splitbill/pkg/ocr"
	"splitbill/pkg/receipt"
)

func main() {
	dir := flag.String("dir", "inbox", "directory to watch for receipt images")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("mkdir %s: %v", *dir, err)
	}

	// Process whatever is already there before watching.
	for _, name := range listImageFiles(*dir) {
		processFile(filepath.Join(*dir, name))
	}

	if err := watchDirectory(*dir); err != nil {
		log.Fatalf("watch: %v", err)
	}
}

func watchDirectory(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	// simple debounce map of pending files so half-written images settle
	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create || ev.Op&fsnotify.Write == fsnotify.Write {
				name := filepath.Base(ev.Name)
				if !isSupportedExt(name) {
					continue
				}
				pending[name] = time.Now()
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					delete(pending, name)
					processFile(filepath.Join(dir, name))
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func processFile(path string) {
	lines, err := ocr.ExtractLines(context.Background(), path)
	if err != nil {
		log.Printf("extract %s: %v", path, err)
		return
	}
	parsed, err := receipt.NewParser().ParseLines(lines)
	if err != nil {
		log.Printf("parse %s: %v", path, err)
		return
	}
	rec := receipt.NewAssembler().Assemble(parsed)
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Printf("encode %s: %v", path, err)
		return
	}
	sidecar := path + ".json"
	if err := os.WriteFile(sidecar, out, 0644); err != nil {
		log.Printf("write %s: %v", sidecar, err)
		return
	}
	log.Printf("processed %s: %d items, total %s", path, len(rec.Items), rec.Total.StringFixed(2))
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
