package htmlpage

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads the backing document when its file changes and replays the
// change as a page navigation. It is the host's page-transition signal
// source: editing the file is how this host "navigates".
type Watcher struct {
	page    *Page
	path    string
	watcher *fsnotify.Watcher
	do      func(func())
	logger  *logrus.Logger
}

// NewWatcher builds a watcher for the document at path. Reloads are handed
// to do, which must serialize them onto the bridge's run loop.
func NewWatcher(p *Page, path string, do func(func()), logger *logrus.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		page:    p,
		path:    filepath.Clean(path),
		watcher: fsw,
		do:      do,
		logger:  logger,
	}, nil
}

// Start begins monitoring the document's directory. Watching the directory
// instead of the file survives editors that replace the file on save.
func (w *Watcher) Start() error {
	go w.watch()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.logger.WithField("document_path", w.path).Info("Document watcher started")
	return nil
}

// watch selects on watcher channels and dispatches events.
func (w *Watcher) watch() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Error("Document watcher error")
		}
	}
}

// handleEvent filters for writes to the document file and schedules a
// reload.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".tmp") {
		return
	}
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// Give the editor a moment to finish writing before reading.
	go func() {
		time.Sleep(200 * time.Millisecond)
		w.do(w.reload)
	}()
}

// reload runs on the bridge loop.
func (w *Watcher) reload() {
	if err := w.page.NavigateFile(w.path); err != nil {
		w.logger.WithError(err).WithField("document_path", w.path).Error("Error reloading document")
		return
	}
	w.logger.WithField("location", w.page.Location().String()).Info("Document reloaded")
}

// Close stops the watcher (idempotent).
func (w *Watcher) Close() {
	if w.watcher != nil {
		w.watcher.Close()
	}
}
