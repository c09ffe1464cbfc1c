package query

import (
	"regexp"
	"strings"
)

// placeholderRE finds the three recognized placeholder tokens. Anything
// else in a pattern is literal-escaped, so a stored pattern can never
// smuggle regex syntax into the matcher.
var placeholderRE = regexp.MustCompile(`\{(?:int|uuid|id)\}`)

const uuidShape = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

// CompileURLPattern translates a resource URL pattern into the regex
// evaluated by the store's REGEXP function. The match allows an
// arbitrary scheme://host prefix, then must consume the entire remaining
// path; a substring match on the path is not a pattern match.
// A trailing slash on the stored URL is tolerated because mining strips
// it before pattern construction.
func CompileURLPattern(pattern string) string {
	var b strings.Builder
	b.WriteString(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://[^/]+)?`)

	last := 0
	for _, loc := range placeholderRE.FindAllStringIndex(pattern, -1) {
		b.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		switch pattern[loc[0]:loc[1]] {
		case "{int}":
			b.WriteString(`[0-9]+`)
		case "{uuid}":
			b.WriteString(uuidShape)
		case "{id}":
			b.WriteString(`[^/]+`)
		}
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(pattern[last:]))
	b.WriteString(`/?(?:\?.*)?$`)
	return b.String()
}
