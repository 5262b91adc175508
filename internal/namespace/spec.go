// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines how a module is requested for export.
package namespace

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pybridge/internal/namecase"
)

// Mode selects how a namespace's entries are obtained.
type Mode string

const (
	// ModeAuto extracts statically when a source file is given and loads the
	// module live otherwise.
	ModeAuto Mode = "auto"
	// ModeLive always loads the module, from the source file when one is
	// given.
	ModeLive Mode = "live"
	// ModeStatic always extracts from the source file without executing it.
	ModeStatic Mode = "static"
)

// ParseMode converts a textual mode. The empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeLive, ModeStatic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: expected auto, live or static", s)
	}
}

// ExportSpec is a request to expose one module as a namespace.
type ExportSpec struct {
	Module          string
	SourceFile      string
	Name            string
	Mode            Mode
	ExportDocs      bool
	IncludeImported bool
	FailOnError     bool
}

// SpecOption configures an ExportSpec.
type SpecOption func(*ExportSpec)

// WithSourceFile pins the module to a file.
func WithSourceFile(path string) SpecOption {
	return func(s *ExportSpec) { s.SourceFile = path }
}

// WithName overrides the namespace name.
func WithName(name string) SpecOption {
	return func(s *ExportSpec) { s.Name = name }
}

// WithMode sets the build mode.
func WithMode(m Mode) SpecOption {
	return func(s *ExportSpec) { s.Mode = m }
}

// WithExportDocs controls whether entries carry doc metadata.
func WithExportDocs(v bool) SpecOption {
	return func(s *ExportSpec) { s.ExportDocs = v }
}

// WithIncludeImported controls whether callables defined in other modules
// are exported.
func WithIncludeImported(v bool) SpecOption {
	return func(s *ExportSpec) { s.IncludeImported = v }
}

// WithFailOnError controls whether a load failure is fatal.
func WithFailOnError(v bool) SpecOption {
	return func(s *ExportSpec) { s.FailOnError = v }
}

// NewExportSpec returns a spec for module with the defaults applied: docs
// exported, imported callables included, load failures fatal, and the
// namespace named after the module in exported case.
func NewExportSpec(module string, opts ...SpecOption) ExportSpec {
	s := ExportSpec{
		Module:          module,
		Mode:            ModeAuto,
		ExportDocs:      true,
		IncludeImported: true,
		FailOnError:     true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Name == "" {
		s.Name = namecase.ToExportCase(module)
	}
	return s
}

// NamespaceName is the name the namespace is registered under.
func (s ExportSpec) NamespaceName() string {
	if s.Name != "" {
		return s.Name
	}
	return namecase.ToExportCase(s.Module)
}

// Static reports whether the spec is built by extraction.
func (s ExportSpec) Static() bool {
	switch s.Mode {
	case ModeStatic:
		return true
	case ModeLive:
		return false
	default:
		return s.SourceFile != ""
	}
}

// Validate checks the spec for contradictions.
func (s ExportSpec) Validate() error {
	if s.Module == "" {
		return errors.New("export spec: module is required")
	}
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return fmt.Errorf("export spec %s: %w", s.Module, err)
	}
	if s.Mode == ModeStatic && s.SourceFile == "" {
		return fmt.Errorf("export spec %s: static mode requires a source file", s.Module)
	}
	return nil
}
