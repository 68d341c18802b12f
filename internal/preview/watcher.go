package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/grapesite/internal/build"
	"git.home.luguber.info/inful/grapesite/internal/config"
	"git.home.luguber.info/inful/grapesite/internal/logfields"
	"git.home.luguber.info/inful/grapesite/internal/util/sets"
)

// watchDirs returns the existing directories whose changes require a rebuild.
func watchDirs(cfg *config.Config) []string {
	var candidates []string
	for _, src := range cfg.Plugins.Filesystem {
		candidates = append(candidates, src.Path)
	}
	candidates = append(candidates, cfg.Plugins.RootImport.Root)
	if cfg.Plugins.Styles.Enabled {
		candidates = append(candidates, cfg.Plugins.Styles.Dir)
	}

	seen := sets.New[string]()
	var dirs []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if st, err := os.Stat(abs); err != nil || !st.IsDir() {
			continue
		}
		if !seen.Add(abs) {
			continue
		}
		dirs = append(dirs, abs)
	}
	return dirs
}

// setupFileWatcher creates a watcher over every directory below roots.
func setupFileWatcher(roots []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		if err := addDirsRecursive(watcher, root); err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// handleFileEvent watches new directories and triggers a rebuild for relevant
// changes. Writes to the output directory and its staging siblings are ignored.
func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, outDir string, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || build.IsOutputPath(ev.Name, outDir) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// shouldIgnoreEvent reports hidden, editor swap and OS metadata files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
