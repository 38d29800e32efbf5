package scheduler

import "errors"

var (
	// ErrNoProjectFiles means a Scheduler was constructed with an empty
	// project file list; Run would otherwise loop forever doing nothing.
	ErrNoProjectFiles = errors.New("scheduler: no project files configured")
)
