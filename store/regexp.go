package store

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sync"

	"modernc.org/sqlite"
)

// regexpCache holds compiled patterns keyed by their source text. The
// query translator sends one pattern per resource, so the cache stays
// small and hot.
var regexpCache sync.Map // string -> *regexp.Regexp

// The REGEXP scalar function must be registered before the first
// connection is created: modernc only attaches registered functions to
// connections opened afterwards, and the pool's first connection is
// created by dbopen (pragmas, ping) before any Store exists. Package
// init is the only point guaranteed to precede every sql.DB use.
func init() {
	registerRegexp()
}

// registerRegexp registers the REGEXP scalar function on the modernc
// driver so `url REGEXP ?` is evaluated engine-side with a parameterized
// pattern. SQLite rewrites `A REGEXP B` to regexp(B, A): the pattern is
// the first argument.
func registerRegexp() {
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			pattern, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("regexp: pattern is not text")
			}
			value, ok := args[1].(string)
			if !ok {
				// NULL or non-text value never matches.
				return false, nil
			}
			re, err := compileCached(pattern)
			if err != nil {
				return nil, fmt.Errorf("regexp: %w", err)
			}
			return re.MatchString(value), nil
		})
}

func compileCached(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexpCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexpCache.Store(pattern, re)
	return re, nil
}
