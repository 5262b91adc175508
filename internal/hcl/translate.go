package hcl

import (
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/pybridge/internal/config"
	"github.com/specialistvlad/pybridge/internal/ctyconv"
)

// translate converts the decoded schema of one file into the agnostic
// model. dir is the file's directory.
func (l *Loader) translate(dir string, root *fileRoot) (*config.Model, error) {
	m := &config.Model{}
	for _, p := range root.SearchPaths {
		m.SearchPaths = append(m.SearchPaths, resolve(dir, p))
	}
	for _, e := range root.Exports {
		m.Exports = append(m.Exports, &config.Export{
			Module:          e.Module,
			Namespace:       e.Namespace,
			SourceFile:      resolve(dir, e.SourceFile),
			Mode:            e.Mode,
			ExportDocs:      e.ExportDocs,
			IncludeImported: e.IncludeImported,
			FailOnError:     e.FailOnError,
		})
	}

	evalCtx := evalContext(dir)
	for _, c := range root.Calls {
		call := &config.Call{Ref: c.Ref}
		if c.Args != nil {
			val, diags := c.Args.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("call %q: %w", c.Ref, diags)
			}
			args, err := ctyconv.FromValues(val)
			if err != nil {
				return nil, fmt.Errorf("call %q: %w", c.Ref, err)
			}
			call.Args = args
		}
		m.Calls = append(m.Calls, call)
	}

	switch len(root.Caches) {
	case 0:
	case 1:
		c := root.Caches[0]
		m.Cache = &config.Cache{
			Backend:   c.Backend,
			Path:      resolve(dir, c.Path),
			DSN:       c.DSN,
			Size:      c.Size,
			TTL:       c.TTL,
			Endpoint:  c.Endpoint,
			Region:    c.Region,
			Bucket:    c.Bucket,
			Prefix:    c.Prefix,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			UseSSL:    c.UseSSL,
		}
	default:
		return nil, fmt.Errorf("at most one cache block is allowed, found %d", len(root.Caches))
	}
	return m, nil
}

// resolve makes a relative path relative to dir. Empty stays empty.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
