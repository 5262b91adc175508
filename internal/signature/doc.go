// Package signature reads Python source files and describes the shape of
// their top-level callables without executing them.
//
// An Extractor parses one file with tree-sitter and returns the functions and
// classes declared at module level, each list in declaration order. The
// resulting records are the portable format consumed by serializers and by
// the namespace builder: every optional field is omitted when absent, so a
// function without a return annotation has no "returns" key at all.
package signature
