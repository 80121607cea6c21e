// Package filter selects metric names with glob patterns.
package filter

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
)

// DenyPrefix marks a pattern that excludes the names it matches.
const DenyPrefix = "!"

// Filter keeps names that match at least one allow pattern and no deny
// pattern. Patterns use shell glob syntax: "*", "?", "[abc]" and "{a,b}".
// A filter without allow patterns allows everything.
type Filter struct {
	patterns []string
	allow    []glob.Glob
	deny     []glob.Glob
}

// New compiles patterns. Patterns starting with "!" deny.
func New(patterns ...string) (*Filter, error) {
	f := &Filter{patterns: append([]string(nil), patterns...)}
	for _, p := range patterns {
		deny := strings.HasPrefix(p, DenyPrefix)
		expr := strings.TrimPrefix(p, DenyPrefix)
		if expr == "" {
			return nil, errors.Newf("empty filter pattern %q", p)
		}

		g, err := glob.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter pattern %q", p)
		}
		if deny {
			f.deny = append(f.deny, g)
		} else {
			f.allow = append(f.allow, g)
		}
	}
	return f, nil
}

// MustNew is like New but panics on an invalid pattern.
func MustNew(patterns ...string) *Filter {
	f, err := New(patterns...)
	if err != nil {
		panic(err)
	}
	return f
}

// All returns a filter that keeps every name.
func All() *Filter {
	return MustNew("*")
}

// Match reports whether name passes the filter. A nil filter keeps every
// name.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.deny {
		if g.Match(name) {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, g := range f.allow {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Filter returns the names that pass, in input order.
func (f *Filter) Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if f.Match(name) {
			out = append(out, name)
		}
	}
	return out
}

// Patterns returns the patterns the filter was built from.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}
