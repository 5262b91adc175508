package namespace

import "fmt"

// Registry is an ordered set of namespaces keyed by name. It is read-only
// once built and safe for concurrent reads.
type Registry struct {
	order  []string
	byName map[string]*Namespace
}

func newRegistry() *Registry {
	return &Registry{byName: make(map[string]*Namespace)}
}

// NewRegistry assembles a registry from already built namespaces.
func NewRegistry(namespaces ...*Namespace) (*Registry, error) {
	r := newRegistry()
	for _, ns := range namespaces {
		if err := r.add(ns); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(ns *Namespace) error {
	if _, exists := r.byName[ns.Name()]; exists {
		return fmt.Errorf("namespace %q already registered", ns.Name())
	}
	r.order = append(r.order, ns.Name())
	r.byName[ns.Name()] = ns
	return nil
}

// Get returns the namespace registered under name.
func (r *Registry) Get(name string) (*Namespace, bool) {
	ns, ok := r.byName[name]
	return ns, ok
}

// Names returns namespace names in build order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of namespaces.
func (r *Registry) Len() int { return len(r.order) }

// Export returns the export records of all namespaces in build order.
func (r *Registry) Export() []ExportRecord {
	records := make([]ExportRecord, 0, len(r.order))
	for _, name := range r.order {
		records = append(records, r.byName[name].Export())
	}
	return records
}
