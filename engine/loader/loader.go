// Package loader imports model files into CPU-side objects the model package
// can upload to the GPU. Decoding is format-agnostic behind per-extension
// backends and results are cached by path, so a file shared by several models
// is only parsed once.
package loader

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/lumen-go/common"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	objectCache map[string]common.ImportedObject

	backends map[string]loaderBackend

	// loadPool manages a bounded set of reusable goroutines for LoadAll.
	// Workers persist across calls, avoiding per-batch goroutine spawn/teardown
	// overhead.
	loadPool    worker.DynamicWorkerPool
	loadWorkers int
}

// Loader defines the public-facing interface for importing and caching model
// files. It abstracts the file format (OBJ, glTF, GLB) behind per-extension
// backends and manages a cache of previously decoded objects.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the file is already cached (by path), the cached object is returned.
	// The backend is selected based on the file extension (.obj → OBJ backend,
	// .gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - common.ImportedObject: the decoded and cached object
	//   - error: error if decoding fails
	Load(path string) (common.ImportedObject, error)

	// LoadAll imports several model files concurrently on the loader's worker
	// pool. Results are returned in input order. If any file fails, the first
	// failure in input order is returned after all loads have settled, and
	// successfully decoded files remain cached.
	//
	// Parameters:
	//   - paths: the file paths to import
	//
	// Returns:
	//   - []common.ImportedObject: the decoded objects in input order
	//   - error: the first error in input order, if any load failed
	LoadAll(paths ...string) ([]common.ImportedObject, error)

	// Get retrieves a cached object by path.
	//
	// Parameters:
	//   - path: the cache key to look up
	//
	// Returns:
	//   - common.ImportedObject: the cached object, if present
	//   - bool: true if the path was in the cache
	Get(path string) (common.ImportedObject, bool)

	// Objects returns the full object cache.
	//
	// Returns:
	//   - map[string]common.ImportedObject: all cached objects keyed by path
	Objects() map[string]common.ImportedObject
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the provided options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		objectCache: make(map[string]common.ImportedObject),
		backends: map[string]loaderBackend{
			".obj":  newOBJLoaderBackend(),
			".gltf": newGLTFLoaderBackend(),
			".glb":  newGLTFLoaderBackend(),
		},
		loadWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(l)
	}

	// Initialize the pool after options so WithLoadWorkers can override the default.
	// Queue size of 256 accommodates typical asset batch sizes with headroom.
	l.loadPool = worker.NewDynamicWorkerPool(l.loadWorkers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (common.ImportedObject, error) {
	l.mu.RLock()
	if cached, ok := l.objectCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return common.ImportedObject{}, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return common.ImportedObject{}, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.objectCache[path] = imported
	l.mu.Unlock()

	return imported, nil
}

func (l *loader) LoadAll(paths ...string) ([]common.ImportedObject, error) {
	objects := make([]common.ImportedObject, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		idx := i // capture for closure
		p := path
		l.loadPool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				objects[idx], errs[idx] = l.Load(p)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return objects, nil
}

func (l *loader) Get(path string) (common.ImportedObject, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cached, ok := l.objectCache[path]
	return cached, ok
}

func (l *loader) Objects() map[string]common.ImportedObject {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]common.ImportedObject, len(l.objectCache))
	for k, v := range l.objectCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if backend, ok := l.backends[ext]; ok {
		return backend, nil
	}
	return nil, fmt.Errorf("unsupported model format: %s", ext)
}
