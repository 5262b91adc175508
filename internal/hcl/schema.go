package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level content of a file.
type fileRoot struct {
	SearchPaths []string       `hcl:"search_paths,optional"`
	Exports     []*exportBlock `hcl:"export,block"`
	Calls       []*callBlock   `hcl:"call,block"`
	Caches      []*cacheBlock  `hcl:"cache,block"`
	Remain      hcl.Body       `hcl:",remain"`
}

// exportBlock is an `export "<module>" { ... }` block.
type exportBlock struct {
	Module          string `hcl:"module,label"`
	Namespace       string `hcl:"namespace,optional"`
	SourceFile      string `hcl:"source_file,optional"`
	Mode            string `hcl:"mode,optional"`
	ExportDocs      *bool  `hcl:"export_docs,optional"`
	IncludeImported *bool  `hcl:"include_imported,optional"`
	FailOnError     *bool  `hcl:"fail_on_error,optional"`
}

// callBlock is a `call "<ns/fn>" { args = [...] }` block. Args stays an
// expression so it can be evaluated with the loader's functions.
type callBlock struct {
	Ref  string         `hcl:"ref,label"`
	Args hcl.Expression `hcl:"args,optional"`
}

// cacheBlock is the `cache { ... }` block.
type cacheBlock struct {
	Backend   string `hcl:"backend"`
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
	Size      int    `hcl:"size,optional"`
	TTL       string `hcl:"ttl,optional"`
	Endpoint  string `hcl:"endpoint,optional"`
	Region    string `hcl:"region,optional"`
	Bucket    string `hcl:"bucket,optional"`
	Prefix    string `hcl:"prefix,optional"`
	AccessKey string `hcl:"access_key,optional"`
	SecretKey string `hcl:"secret_key,optional"`
	UseSSL    bool   `hcl:"use_ssl,optional"`
}
