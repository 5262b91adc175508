package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// stringList is a repeatable flag. Each value may itself be a path list.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, string(os.PathListSeparator))
}

func (s *stringList) Set(v string) error {
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}
