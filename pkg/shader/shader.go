// Package shader resolves shader programs by name.
// Meshes hold a Lookup by reference and never own the programs behind it;
// the application builds a Registry once and shares it.
package shader

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/chazu/primmesh/pkg/gpu"
)

// Basic is the name of the interleaved position+color program.
const Basic = "Basic"

// Lookup resolves a program name to a driver handle.
// A zero handle means the name is unknown.
type Lookup interface {
	Program(name string) uint32
}

// Compile-time interface check.
var _ Lookup = (*Registry)(nil)

// Registry is a name→program table. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]uint32
	log      *slog.Logger
}

// NewRegistry returns an empty Registry. A nil logger uses slog.Default().
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		programs: make(map[string]uint32),
		log:      log,
	}
}

// Register records an existing program handle under name, replacing any
// previous entry.
func (r *Registry) Register(name string, program uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[name] = program
}

// Program returns the handle registered under name, or 0.
func (r *Registry) Program(name string) uint32 {
	r.mu.RLock()
	program, ok := r.programs[name]
	r.mu.RUnlock()
	if !ok {
		r.log.Warn("shader program not registered", "name", name)
	}
	return program
}

// Names returns the registered program names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build compiles a program with c and registers it under name.
func (r *Registry) Build(c gpu.Compiler, name, vertexSource, fragmentSource string) error {
	program, err := c.CompileProgram(vertexSource, fragmentSource)
	if err != nil {
		return fmt.Errorf("shader: build %q: %w", name, err)
	}
	r.Register(name, program)
	r.log.Debug("shader program built", "name", name, "program", program)
	return nil
}

// BuildBasic compiles and registers the Basic program.
func (r *Registry) BuildBasic(c gpu.Compiler) error {
	return r.Build(c, Basic, BasicVertex, BasicFragment)
}

// Release deletes every registered program and empties the table.
func (r *Registry) Release(c gpu.Compiler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, program := range r.programs {
		if program > 0 {
			c.DeleteProgram(program)
		}
		delete(r.programs, name)
	}
}
