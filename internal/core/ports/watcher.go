package ports

import "context"

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// SceneWatcher reports changes to scene files below a directory.
type SceneWatcher interface {
	// Start watches root recursively and calls onChange with debounced batches of changed
	// scene file paths. It returns once the watch is registered.
	Start(ctx context.Context, root string, onChange func(paths []string)) error

	// Stop releases the watch and delivers any pending batch.
	Stop() error
}
