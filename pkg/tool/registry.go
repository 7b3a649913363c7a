package tool

import (
	"errors"
	"fmt"

	"github.com/dynamaic/assistant-core/pkg/wire"
)

// Registry is a read-only name-to-tool table. The full set is fixed at
// construction; there is no runtime registration, so lookups need no
// locking.
type Registry struct {
	order     []string
	tools     map[string]Tool
	webSearch bool
}

// NewRegistry builds a registry from the given tools. Names must be unique
// and non-empty.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(t Tool) error {
	if t == nil {
		return errors.New("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return errors.New("tool name is empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// EnableWebSearch includes the hosted web search descriptor in the
// advertised tool list.
func (r *Registry) EnableWebSearch() { r.webSearch = true }

// Lookup resolves a tool by name. A miss returns a *NotFoundError: the model
// asking for an unregistered name signals a contract mismatch, not a
// recoverable condition.
func (r *Registry) Lookup(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return t, nil
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Descriptors projects the registry into the wire shape advertised to the
// model, preserving registration order.
func (r *Registry) Descriptors() []wire.ToolDescriptor {
	descs := make([]wire.ToolDescriptor, 0, len(r.order)+1)
	for _, name := range r.order {
		t := r.tools[name]
		descs = append(descs, wire.FunctionTool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
			Strict:      t.Strict(),
		})
	}
	if r.webSearch {
		descs = append(descs, wire.WebSearchTool{})
	}
	return descs
}

// NotFoundError reports a lookup for a name absent from the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}
