// Package node hosts graph nodes that the UI can list and execute.
package node

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNodeNotFound is returned by Execute for an unregistered ID
var ErrNodeNotFound = errors.New("node not found")

// Output is what a node hands back to the UI
type Output struct {
	UI UI `json:"ui"`
}

// UI is the displayable part of a node output
type UI struct {
	Text string `json:"text"`
}

// Node is an executable graph node
type Node interface {
	Execute(ctx context.Context) (Output, error)
}

// Definition describes a registered node
type Definition struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category"`
	OutputNode  bool     `json:"output_node"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	Node        Node     `json:"-"`
}

// Registry holds node definitions by ID
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Definition
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Definition)}
}

// Register adds a node definition. IDs must be unique.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if def.Node == nil {
		return fmt.Errorf("node '%s' has no implementation", def.ID)
	}
	if def.Inputs == nil {
		def.Inputs = []string{}
	}
	if def.Outputs == nil {
		def.Outputs = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[def.ID]; exists {
		return fmt.Errorf("node '%s' already registered", def.ID)
	}
	r.nodes[def.ID] = def
	return nil
}

// Get returns a node definition by ID
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.nodes[id]
	return def, ok
}

// List returns all definitions sorted by ID
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.nodes))
	for _, def := range r.nodes {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID < defs[j].ID
	})
	return defs
}

// Execute runs the node with the given ID
func (r *Registry) Execute(ctx context.Context, id string) (Output, error) {
	def, ok := r.Get(id)
	if !ok {
		return Output{}, fmt.Errorf("node '%s': %w", id, ErrNodeNotFound)
	}
	return def.Node.Execute(ctx)
}
