package pool

import "sync"

// DefaultAuth in the teacher's auth package is an eagerly-constructed
// package-level singleton with a ResetDefaultAuth escape hatch for
// tests. A Manager needs a Provider and Validator injected before it
// can be built, so the process-wide accessor here is lazy instead:
// SetDefaultFactory must be called once (normally from main) before
// the first Get.
var (
	defaultOnce    sync.Once
	defaultManager *Manager
	defaultFactory func() *Manager
)

// SetDefaultFactory registers the constructor Get will call exactly
// once to build the process-wide Manager.
func SetDefaultFactory(f func() *Manager) {
	defaultFactory = f
}

// Get returns the lazily-constructed process-wide Manager singleton.
// It panics if SetDefaultFactory has not been called first.
func Get() *Manager {
	defaultOnce.Do(func() {
		if defaultFactory == nil {
			panic("pool: SetDefaultFactory must be called before Get")
		}
		defaultManager = defaultFactory()
	})
	return defaultManager
}

// ResetDefault clears the singleton, primarily for test isolation.
func ResetDefault() {
	defaultOnce = sync.Once{}
	defaultManager = nil
}
