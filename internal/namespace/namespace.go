package namespace

import (
	"strings"

	"github.com/specialistvlad/pybridge/internal/loader"
	"github.com/specialistvlad/pybridge/internal/signature"
)

// Entry is one exported name.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Meta string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// ExportRecord is the description of a namespace sent to a host.
type ExportRecord struct {
	Name    string  `json:"name" yaml:"name"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Namespace is a named, ordered set of exported entries backed either by
// extracted signatures or by a live module. It is immutable once built.
type Namespace struct {
	name    string
	module  string
	entries []Entry
	static  []signature.FunctionSignature
	live    loader.CallableRegistry
}

// Name returns the namespace name.
func (n *Namespace) Name() string { return n.name }

// Module returns the identifier of the module behind the namespace.
func (n *Namespace) Module() string { return n.module }

// Entries returns a copy of the entries in export order.
func (n *Namespace) Entries() []Entry {
	return append([]Entry(nil), n.entries...)
}

// Get returns the entry with the given exported name.
func (n *Namespace) Get(name string) (Entry, bool) {
	for _, e := range n.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Live returns the module handle of a live namespace.
func (n *Namespace) Live() (loader.CallableRegistry, bool) {
	return n.live, n.live != nil
}

// Signatures returns the extracted signatures of a static namespace.
func (n *Namespace) Signatures() []signature.FunctionSignature {
	return append([]signature.FunctionSignature(nil), n.static...)
}

// Export returns the namespace's export record.
func (n *Namespace) Export() ExportRecord {
	entries := n.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return ExportRecord{Name: n.name, Entries: entries}
}

var docEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// DocMeta wraps a docstring in the EDN map the consuming runtime reads
// entry metadata from.
func DocMeta(doc string) string {
	return `{:doc "` + docEscaper.Replace(doc) + `"}`
}
