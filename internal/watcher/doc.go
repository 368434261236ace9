// Package watcher reports changes to the startup folders as they happen.
//
// Registry run-keys are not watched; only the per-user and common startup
// folders, via fsnotify. Each filesystem event becomes a Change tagged with
// the location it belongs to.
//
// Example usage:
//
//	w, err := watcher.New(map[startup.LocationKind]string{
//		startup.UserFolder: userDir,
//	}, log)
//	if err != nil {
//		return err
//	}
//	if err := w.Start(); err != nil {
//		return err
//	}
//	defer w.Stop()
//
//	for c := range w.Changes() {
//		fmt.Println(c)
//	}
package watcher
