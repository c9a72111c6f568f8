// Package registry is a call-by-name operation registry implementing
// dispatch.Registry.
//
// Operations receive their keyword arguments as Args, whose typed
// accessors report a missing or mistyped argument as
// dispatch.ErrInvalidArguments, so the peer sees an invalid parameter
// error rather than an operation failure.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/andaru/netctrl/dispatch"
	"github.com/pkg/errors"
)

// OperationsList is the name of the built-in operation listing every
// registered operation name
const OperationsList = "operations.list"

// Operation is a registered operation
type Operation func(ctx context.Context, args Args) (interface{}, error)

// Registry holds operations by name. The zero value is not usable; use New.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

var _ dispatch.Registry = (*Registry)(nil)

// New returns a new Registry holding only the built-in operations
func New() *Registry {
	r := &Registry{ops: map[string]Operation{}}
	r.ops[OperationsList] = func(context.Context, Args) (interface{}, error) { return r.Names(), nil }
	return r
}

// Register adds op under name. It is an error to register a name twice.
func (r *Registry) Register(name string, op Operation) error {
	if name == "" || op == nil {
		return errors.New("operation name and function must be set")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ops[name]; ok {
		return errors.Errorf("operation %q already registered", name)
	}
	r.ops[name] = op
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(name string, op Operation) {
	if err := r.Register(name, op); err != nil {
		panic(err)
	}
}

// Names returns the sorted registered operation names
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Invoke calls the operation registered as operation
func (r *Registry) Invoke(ctx context.Context, operation string, kwargs map[string]interface{}) (interface{}, error) {
	r.mu.RLock()
	op, ok := r.ops[operation]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrap(dispatch.ErrOperationNotFound, operation)
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	return op(ctx, Args(kwargs))
}
