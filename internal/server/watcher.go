package server

import (
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the projects tree and fires a debounced notification when
// session logs change. Log writes arrive in bursts while a response streams,
// so each event resets the timer; only quiet periods trigger the callback.
type Watcher struct {
	fsw    *fsnotify.Watcher
	delay  time.Duration
	notify func()

	mu         sync.Mutex
	generation int
}

// WatchProjects starts watching projectsDir and its project subdirectories.
func WatchProjects(projectsDir string, delay time.Duration, notify func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, delay: delay, notify: notify}

	if err := fsw.Add(projectsDir); err != nil {
		fsw.Close()
		return nil, err
	}
	// Session files live one level down; new project dirs get added as they
	// appear via create events.
	_ = filepath.WalkDir(projectsDir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && path != projectsDir {
			_ = fsw.Add(path)
		}
		return nil
	})

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// Could be a new project directory
				_ = w.fsw.Add(event.Name)
			}
			w.schedule()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// schedule arms the debounce timer, invalidating any timer already pending.
func (w *Watcher) schedule() {
	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.mu.Unlock()

	time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		current := w.generation == gen
		w.mu.Unlock()
		if current {
			w.notify()
		}
	})
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
