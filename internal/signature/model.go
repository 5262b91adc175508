// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the portable signature records produced by the extractor.
package signature

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Arg is one declared parameter.
type Arg struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// FunctionSignature is the shape of one declared function or method.
type FunctionSignature struct {
	Name       string   `json:"name" yaml:"name"`
	Args       []Arg    `json:"args,omitempty" yaml:"args,omitempty"`
	VarArgs    *Arg     `json:"varargs,omitempty" yaml:"varargs,omitempty"`
	KwOnlyArgs []Arg    `json:"kwonlyargs,omitempty" yaml:"kwonlyargs,omitempty"`
	KwArgs     *Arg     `json:"kwargs,omitempty" yaml:"kwargs,omitempty"`
	Returns    string   `json:"returns,omitempty" yaml:"returns,omitempty"`
	Docstring  string   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Async      bool     `json:"async,omitempty" yaml:"async,omitempty"`
	Decorators []string `json:"decorators,omitempty" yaml:"decorators,omitempty"`
	Line       int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// String renders the signature the way it would be declared.
func (f FunctionSignature) String() string {
	var b strings.Builder
	if f.Async {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(f.Name)
	b.WriteString("(")
	var parts []string
	for _, a := range f.Args {
		parts = append(parts, a.declared(""))
	}
	if f.VarArgs != nil {
		parts = append(parts, f.VarArgs.declared("*"))
	} else if len(f.KwOnlyArgs) > 0 {
		parts = append(parts, "*")
	}
	for _, a := range f.KwOnlyArgs {
		parts = append(parts, a.declared(""))
	}
	if f.KwArgs != nil {
		parts = append(parts, f.KwArgs.declared("**"))
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(")")
	if f.Returns != "" {
		b.WriteString(" -> ")
		b.WriteString(f.Returns)
	}
	return b.String()
}

func (a Arg) declared(star string) string {
	s := star + a.Name
	if a.Type != "" {
		s += ": " + a.Type
	}
	if a.Default != "" {
		if a.Type != "" {
			s += " = " + a.Default
		} else {
			s += "=" + a.Default
		}
	}
	return s
}

// ClassSignature is the shape of one declared class.
type ClassSignature struct {
	Name      string              `json:"name" yaml:"name"`
	Docstring string              `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Bases     []string            `json:"bases,omitempty" yaml:"bases,omitempty"`
	Methods   []FunctionSignature `json:"methods,omitempty" yaml:"methods,omitempty"`
	Line      int                 `json:"line,omitempty" yaml:"line,omitempty"`
}

func (c ClassSignature) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "class %s", c.Name)
	if len(c.Bases) > 0 {
		fmt.Fprintf(&b, "(%s)", strings.Join(c.Bases, ", "))
	}
	b.WriteString(":")
	for _, m := range c.Methods {
		b.WriteString("\n    ")
		b.WriteString(m.String())
	}
	return b.String()
}

// FileSignatures is everything extracted from one source file.
type FileSignatures struct {
	Path      string              `json:"path,omitempty" yaml:"path,omitempty"`
	Functions []FunctionSignature `json:"functions,omitempty" yaml:"functions,omitempty"`
	Classes   []ClassSignature    `json:"classes,omitempty" yaml:"classes,omitempty"`
}

// NameFilter decides whether a declared identifier is exposed.
type NameFilter func(name string) bool

// IsPublic rejects identifiers carrying Python's private marker.
func IsPublic(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// AcceptAll exposes every identifier.
func AcceptAll(string) bool { return true }

// Encode renders a record in the portable (JSON) format.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeFunction parses a portable function record.
func DecodeFunction(data []byte) (FunctionSignature, error) {
	var f FunctionSignature
	if err := json.Unmarshal(data, &f); err != nil {
		return FunctionSignature{}, fmt.Errorf("decode function signature: %w", err)
	}
	return f, nil
}

// DecodeClass parses a portable class record.
func DecodeClass(data []byte) (ClassSignature, error) {
	var c ClassSignature
	if err := json.Unmarshal(data, &c); err != nil {
		return ClassSignature{}, fmt.Errorf("decode class signature: %w", err)
	}
	return c, nil
}
