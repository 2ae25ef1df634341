package watcher

import "time"

// Event reports a file that appeared in the watched directory and has
// stopped changing.
type Event struct {
	Path    string
	Size    int64
	ModTime time.Time
}
