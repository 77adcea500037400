// Package fsys answers whether PATH entries exist on a filesystem.
package fsys

import (
	"os"
	"strings"

	"github.com/spf13/afero"

	"wenv/internal/logging"
)

// Checker is the existence predicate handed to the path validator.
type Checker struct {
	fs     afero.Fs
	expand bool
	lookup func(string) (string, bool)
}

// NewChecker checks paths on fsys. With expand set, %VAR% and $VAR
// references are resolved against the process environment first, matching
// how REG_EXPAND_SZ values are interpreted.
func NewChecker(fsys afero.Fs, expand bool) *Checker {
	return &Checker{fs: fsys, expand: expand, lookup: os.LookupEnv}
}

// NewOSChecker checks paths on the real filesystem.
func NewOSChecker(expand bool) *Checker {
	return NewChecker(afero.NewOsFs(), expand)
}

// WithLookup replaces the environment used for expansion.
func (c *Checker) WithLookup(lookup func(string) (string, bool)) *Checker {
	c.lookup = lookup
	return c
}

// Exists reports whether path resolves to an existing file or directory.
// Any stat error counts as "does not exist".
func (c *Checker) Exists(path string) bool {
	if path == "" {
		return false
	}
	resolved := path
	if c.expand {
		resolved = c.Expand(path)
	}
	if resolved == "" {
		return false
	}

	ok, err := afero.Exists(c.fs, resolved)
	if err != nil {
		logger := logging.GetLogger("fsys")
		logger.Debug().Err(err).Str("path", resolved).Msg("Stat failed")
		return false
	}
	return ok
}

// Expand resolves %VAR% and $VAR / ${VAR} references. Unknown %VAR%
// references are left as written, like the Windows shell does.
func (c *Checker) Expand(path string) string {
	path = expandPercent(path, c.lookup)
	if strings.Contains(path, "$") {
		path = os.Expand(path, func(name string) string {
			v, _ := c.lookup(name)
			return v
		})
	}
	return path
}

func expandPercent(s string, lookup func(string) (string, bool)) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(s, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1
		name := s[start+1 : end]
		if v, ok := lookup(name); ok && name != "" {
			b.WriteString(s[:start])
			b.WriteString(v)
			s = s[end+1:]
			continue
		}
		// Keep the unresolved reference and resume after its opening '%'.
		b.WriteString(s[:start+1])
		s = s[start+1:]
	}
	b.WriteString(s)
	return b.String()
}
