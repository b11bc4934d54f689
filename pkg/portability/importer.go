package portability

import (
	"sync"

	"github.com/getmockd/mockxhr/pkg/config"
)

// Importer converts an external API description into a route file.
type Importer interface {
	// Name identifies the source format, e.g. "openapi" or "har".
	Name() string

	// Detect reports whether the data looks like this importer's format.
	// It should be cheap and never panic on garbage input.
	Detect(data []byte) bool

	// Import parses the data and returns a route file ready to validate,
	// save, or apply to a server.
	Import(data []byte) (*config.File, error)
}

// ImportError reports a failed import with the source format attached.
type ImportError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ImportError) Error() string {
	msg := e.Message
	if e.Format != "" {
		msg = e.Format + ": " + msg
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Cause
}

// registry holds importers in registration order so ImportAuto probes them
// deterministically.
type registry struct {
	mu        sync.RWMutex
	importers []Importer
}

var defaultRegistry = &registry{}

// Register adds an importer to the default registry. Later registrations
// with the same name replace the earlier one.
func Register(imp Importer) {
	defaultRegistry.register(imp)
}

// Importers returns the registered importers in registration order.
func Importers() []Importer {
	return defaultRegistry.list()
}

// Lookup returns the importer registered under name, or nil.
func Lookup(name string) Importer {
	return defaultRegistry.lookup(name)
}

// ImportAuto probes the registered importers with Detect and imports with
// the first that recognizes the data.
func ImportAuto(data []byte) (*config.File, error) {
	for _, imp := range Importers() {
		if imp.Detect(data) {
			return imp.Import(data)
		}
	}
	return nil, &ImportError{Message: "unrecognized format"}
}

func (r *registry) register(imp Importer) {
	if imp == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.importers {
		if existing.Name() == imp.Name() {
			r.importers[i] = imp
			return
		}
	}
	r.importers = append(r.importers, imp)
}

func (r *registry) list() []Importer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Importer, len(r.importers))
	copy(out, r.importers)
	return out
}

func (r *registry) lookup(name string) Importer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, imp := range r.importers {
		if imp.Name() == name {
			return imp
		}
	}
	return nil
}
