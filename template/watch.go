package template

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads and recompiles a template whenever its source directory
// changes, invoking onReload with the fresh template or the failure. It
// blocks until ctx is done. This is a development aid; production callers
// load once.
func Watch(ctx context.Context, dir string, onReload func(*Template, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isTemplateSource(filepath.Base(event.Name)) {
				continue
			}
			t, err := FromDirectory(dir)
			if err == nil {
				err = t.BuildGrammar()
			}
			onReload(t, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onReload(nil, err)
		}
	}
}

func isTemplateSource(name string) bool {
	switch name {
	case metadataFile, modelFile, markupFile, logicFile, readmeFile, requestFile, responseFile:
		return true
	}
	return filepath.Ext(name) == ".md"
}
