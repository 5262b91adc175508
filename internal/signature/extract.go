package signature

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/errs"
)

// Python grammar node types used by the extractor.
const (
	pyNodeFunctionDef     = "function_definition"
	pyNodeClassDef        = "class_definition"
	pyNodeDecorated       = "decorated_definition"
	pyNodeDecorator       = "decorator"
	pyNodeExprStmt        = "expression_statement"
	pyNodeString          = "string"
	pyNodeConcatString    = "concatenated_string"
	pyNodeComment         = "comment"
	pyNodeIdentifier      = "identifier"
	pyNodeTypedParam      = "typed_parameter"
	pyNodeDefaultParam    = "default_parameter"
	pyNodeTypedDefault    = "typed_default_parameter"
	pyNodeListSplat       = "list_splat_pattern"
	pyNodeDictSplat       = "dictionary_splat_pattern"
	pyNodeKeywordSep      = "keyword_separator"
	pyNodePositionalSep   = "positional_separator"
	pyNodeKeywordArgument = "keyword_argument"
	pyNodeError           = "ERROR"
)

// DefaultMaxFileSize bounds the size of a source file the extractor reads.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Extractor parses Python files into signature records. It holds no parser
// state between calls and is safe for concurrent use.
type Extractor struct {
	maxFileSize int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxFileSize sets the largest file, in bytes, the extractor accepts.
func WithMaxFileSize(n int64) Option {
	return func(e *Extractor) { e.maxFileSize = n }
}

// NewExtractor returns an Extractor with the given options applied.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads and parses the file at path.
func (e *Extractor) ExtractFile(ctx context.Context, path string, filter NameFilter) (*FileSignatures, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &errs.NotFoundError{What: "file", Name: path}
		}
		return nil, &errs.NotFoundError{What: "file", Name: path, Err: err}
	}
	if info.IsDir() {
		return nil, &errs.NotFoundError{What: "file", Name: path, Err: errors.New("is a directory")}
	}
	if e.maxFileSize > 0 && info.Size() > e.maxFileSize {
		return nil, fmt.Errorf("%s: file size %d exceeds limit %d", path, info.Size(), e.maxFileSize)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.NotFoundError{What: "file", Name: path, Err: err}
	}
	return e.Extract(ctx, path, src, filter)
}

// Extract parses src, reported as path in errors, and returns the top-level
// functions passing filter and every top-level class with its methods
// passing filter. Classes themselves are not filtered.
func (e *Extractor) Extract(ctx context.Context, path string, src []byte, filter NameFilter) (*FileSignatures, error) {
	logger := ctxlog.FromContext(ctx)
	if filter == nil {
		filter = AcceptAll
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, parseError(path, root)
	}

	result := &FileSignatures{Path: path}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		def, decorators := unwrapDecorated(root.NamedChild(i), src)
		if def == nil {
			continue
		}
		switch def.Type() {
		case pyNodeFunctionDef:
			fn := encodeFunction(def, decorators, src, false)
			if filter(fn.Name) {
				result.Functions = append(result.Functions, fn)
			}
		case pyNodeClassDef:
			result.Classes = append(result.Classes, encodeClass(def, src, filter))
		}
	}

	logger.Debug("Extracted signatures.", "path", path, "functions", len(result.Functions), "classes", len(result.Classes))
	return result, nil
}

// FunctionSignatures returns the top-level function signatures of the file.
func FunctionSignatures(ctx context.Context, path string, filter NameFilter) ([]FunctionSignature, error) {
	sigs, err := NewExtractor().ExtractFile(ctx, path, filter)
	if err != nil {
		return nil, err
	}
	return sigs.Functions, nil
}

// ClassSignatures returns the top-level class signatures of the file, with
// methods restricted by filter.
func ClassSignatures(ctx context.Context, path string, filter NameFilter) ([]ClassSignature, error) {
	sigs, err := NewExtractor().ExtractFile(ctx, path, filter)
	if err != nil {
		return nil, err
	}
	return sigs.Classes, nil
}

// unwrapDecorated returns the definition inside a decorated_definition along
// with its decorator texts. Other statements are returned unchanged.
func unwrapDecorated(n *sitter.Node, src []byte) (*sitter.Node, []string) {
	if n == nil || n.Type() != pyNodeDecorated {
		return n, nil
	}
	var decorators []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == pyNodeDecorator {
			text := strings.TrimSpace(strings.TrimPrefix(c.Content(src), "@"))
			decorators = append(decorators, collapseSpace(text))
		}
	}
	return n.ChildByFieldName("definition"), decorators
}

func encodeFunction(n *sitter.Node, decorators []string, src []byte, method bool) FunctionSignature {
	fn := FunctionSignature{
		Name:       n.ChildByFieldName("name").Content(src),
		Decorators: decorators,
		Line:       int(n.StartPoint().Row) + 1,
	}
	if n.ChildCount() > 0 && n.Child(0).Type() == "async" {
		fn.Async = true
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		encodeParameters(&fn, params, src)
	}
	if method && len(fn.Args) > 0 && !hasDecorator(decorators, "staticmethod") {
		fn.Args = fn.Args[1:]
	}
	if ret := n.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = collapseSpace(ret.Content(src))
	}
	fn.Docstring = docstring(n.ChildByFieldName("body"), src)
	return fn
}

func encodeParameters(fn *FunctionSignature, params *sitter.Node, src []byte) {
	keywordOnly := false
	add := func(a Arg) {
		if keywordOnly {
			fn.KwOnlyArgs = append(fn.KwOnlyArgs, a)
		} else {
			fn.Args = append(fn.Args, a)
		}
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case pyNodeIdentifier:
			add(Arg{Name: p.Content(src)})
		case pyNodeDefaultParam:
			add(Arg{
				Name:    p.ChildByFieldName("name").Content(src),
				Default: collapseSpace(p.ChildByFieldName("value").Content(src)),
			})
		case pyNodeTypedDefault:
			add(Arg{
				Name:    p.ChildByFieldName("name").Content(src),
				Type:    collapseSpace(p.ChildByFieldName("type").Content(src)),
				Default: collapseSpace(p.ChildByFieldName("value").Content(src)),
			})
		case pyNodeTypedParam:
			typ := ""
			if t := p.ChildByFieldName("type"); t != nil {
				typ = collapseSpace(t.Content(src))
			}
			inner := p.NamedChild(0)
			switch inner.Type() {
			case pyNodeListSplat:
				fn.VarArgs = &Arg{Name: splatName(inner, src), Type: typ}
				keywordOnly = true
			case pyNodeDictSplat:
				fn.KwArgs = &Arg{Name: splatName(inner, src), Type: typ}
			default:
				add(Arg{Name: inner.Content(src), Type: typ})
			}
		case pyNodeListSplat:
			fn.VarArgs = &Arg{Name: splatName(p, src)}
			keywordOnly = true
		case pyNodeDictSplat:
			fn.KwArgs = &Arg{Name: splatName(p, src)}
		case pyNodeKeywordSep:
			keywordOnly = true
		case pyNodePositionalSep, pyNodeComment:
		}
	}
}

func splatName(n *sitter.Node, src []byte) string {
	if n.NamedChildCount() > 0 {
		return n.NamedChild(0).Content(src)
	}
	return strings.TrimLeft(n.Content(src), "*")
}

func encodeClass(n *sitter.Node, src []byte, filter NameFilter) ClassSignature {
	cls := ClassSignature{
		Name: n.ChildByFieldName("name").Content(src),
		Line: int(n.StartPoint().Row) + 1,
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			b := supers.NamedChild(i)
			if b.Type() == pyNodeKeywordArgument || b.Type() == pyNodeComment {
				continue
			}
			cls.Bases = append(cls.Bases, collapseSpace(b.Content(src)))
		}
	}

	body := n.ChildByFieldName("body")
	cls.Docstring = docstring(body, src)
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		def, decorators := unwrapDecorated(body.NamedChild(i), src)
		if def == nil || def.Type() != pyNodeFunctionDef {
			continue
		}
		m := encodeFunction(def, decorators, src, true)
		if filter(m.Name) {
			cls.Methods = append(cls.Methods, m)
		}
	}
	return cls
}

// docstring returns the cleaned docstring of a block: its first statement,
// when that statement is nothing but a string literal.
func docstring(body *sitter.Node, src []byte) string {
	if body == nil {
		return ""
	}
	var first *sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if c := body.NamedChild(i); c.Type() != pyNodeComment {
			first = c
			break
		}
	}
	if first == nil || first.Type() != pyNodeExprStmt || first.NamedChildCount() != 1 {
		return ""
	}

	lit := first.NamedChild(0)
	var parts []*sitter.Node
	switch lit.Type() {
	case pyNodeString:
		parts = []*sitter.Node{lit}
	case pyNodeConcatString:
		for i := 0; i < int(lit.NamedChildCount()); i++ {
			if c := lit.NamedChild(i); c.Type() == pyNodeString {
				parts = append(parts, c)
			}
		}
	default:
		return ""
	}

	var b strings.Builder
	for _, p := range parts {
		s, ok := stringLiteral(p.Content(src))
		if !ok {
			return ""
		}
		b.WriteString(s)
	}
	return cleandoc(b.String())
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseError locates the first ERROR or MISSING node below root.
func parseError(path string, root *sitter.Node) error {
	bad := firstErrorNode(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPoint()
	msg := "invalid syntax"
	if bad.IsMissing() {
		msg = fmt.Sprintf("missing %q", bad.Type())
	}
	return &errs.ParseError{
		Path:   path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
		Msg:    msg,
	}
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == pyNodeError || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstErrorNode(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}
