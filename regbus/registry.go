// Package regbus implements an HTTP + WebSocket front end for a table of
// named registers: creation, non-blocking assign, flip, and a real-time
// stream of register-change events to subscribed clients.
package regbus

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lookbusy1344/bitcore/bits"
	"github.com/lookbusy1344/bitcore/register"
)

// Registry is a thread-safe table of named registers.
type Registry struct {
	mu   sync.RWMutex
	regs map[string]*register.Reg
}

// NewRegistry returns an empty register table.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]*register.Reg)}
}

// Create adds a new register named name with the given width and initial
// value. A duplicate name is a conflict error.
func (r *Registry) Create(name string, width int, initial bits.Source) (*register.Reg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regs[name]; exists {
		return nil, fmt.Errorf("register %q already exists", name)
	}
	v, err := bits.New(width, initial)
	if err != nil {
		return nil, err
	}
	reg := register.New(v)
	r.regs[name] = reg
	return reg, nil
}

// Get returns the register named name.
func (r *Registry) Get(name string) (*register.Reg, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.regs[name]
	if !ok {
		return nil, fmt.Errorf("register %q not found", name)
	}
	return reg, nil
}

// Names returns every register name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.regs))
	for n := range r.regs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
