// Package namecase converts identifiers between the declared convention of
// Python source (snake_case) and the exported convention of namespaces
// (kebab-case).
package namecase

import "strings"

// ToExportCase renders a declared identifier in exported form.
func ToExportCase(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// ToDeclaredCase is the inverse of ToExportCase.
func ToDeclaredCase(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
