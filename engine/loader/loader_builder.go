package loader

import "github.com/Carmen-Shannon/lumen-go/common"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLoadWorkers is an option builder that sets the number of goroutines used
// by LoadAll. Values below 1 are ignored; the default is one fewer than the
// machine's logical CPU count.
//
// Parameters:
//   - workers: the number of concurrent load workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithLoadWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		if workers >= 1 {
			l.loadWorkers = workers
		}
	}
}

// WithObject is an option builder that pre-populates the object cache with a
// decoded object.
//
// Parameters:
//   - key: the cache key for the object
//   - object: the object to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the object option to a loader
func WithObject(key string, object common.ImportedObject) LoaderBuilderOption {
	return func(l *loader) {
		l.objectCache[key] = object
	}
}
