package config

// Model is the unified, format-agnostic representation of one or more
// bridge files. Relative paths in it are already resolved against the
// directory of the file that declared them.
type Model struct {
	SearchPaths []string
	Exports     []*Export
	Calls       []*Call
	Cache       *Cache
}

// Export is the format-agnostic representation of an `export` block. Unset
// optional fields are nil so defaults stay with the namespace package.
type Export struct {
	Module          string
	Namespace       string
	SourceFile      string
	Mode            string
	ExportDocs      *bool
	IncludeImported *bool
	FailOnError     *bool
}

// Call is one `call` block: a reference and its evaluated positional
// arguments.
type Call struct {
	Ref  string
	Args []any
}

// Cache selects and configures the result cache.
type Cache struct {
	Backend string // memory, sqlite, postgres or s3
	Path    string // sqlite file
	DSN     string // postgres connection string
	Size    int    // memory entries
	TTL     string // memory entry lifetime, a time.ParseDuration string

	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Merge appends other's content to m. A later cache block replaces an
// earlier one.
func (m *Model) Merge(other *Model) {
	m.SearchPaths = append(m.SearchPaths, other.SearchPaths...)
	m.Exports = append(m.Exports, other.Exports...)
	m.Calls = append(m.Calls, other.Calls...)
	if other.Cache != nil {
		m.Cache = other.Cache
	}
}
