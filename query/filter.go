package query

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// safeField is the allow-list for every identifier interpolated into a
// predicate or ordering clause. This is the injection defense for the
// filter DSL: keys failing it are dropped (logged, not an error) so a
// noisy client cannot break a listing, and the sort field goes through
// the exact same check before it reaches ORDER BY.
var safeField = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// comparison operators that pass the value through unchanged.
var compareOps = map[string]string{
	"gt":  ">",
	"lt":  "<",
	"gte": ">=",
	"lte": "<=",
	"neq": "!=",
}

// predicate is one parameterized WHERE condition.
type predicate struct {
	expr string
	arg  any
}

// compileFilters turns request filters into parameterized predicates
// over the JSON body's text-extracted fields, combined with AND by the
// caller. Keys are processed in sorted order so the generated SQL is
// deterministic. Returns the predicates and the list of dropped keys.
func compileFilters(filters map[string]string) ([]predicate, []string) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var preds []predicate
	var dropped []string

	for _, key := range keys {
		value := filters[key]
		field, op := splitOperator(key)

		if !safeField.MatchString(field) {
			dropped = append(dropped, key)
			continue
		}
		column := fmt.Sprintf("b.body ->> '%s'", field)

		switch {
		case op == "eq":
			preds = append(preds, predicate{column + " = ?", bindValue(value)})
		case compareOps[op] != "":
			preds = append(preds, predicate{fmt.Sprintf("%s %s ?", column, compareOps[op]), bindValue(value)})
		case op == "contains":
			preds = append(preds, predicate{column + " LIKE ?", "%" + value + "%"})
		case op == "startswith":
			preds = append(preds, predicate{column + " LIKE ?", value + "%"})
		case op == "endswith":
			preds = append(preds, predicate{column + " LIKE ?", "%" + value})
		}
	}
	return preds, dropped
}

// splitOperator splits "field__op" on the last "__". A bare key or an
// unknown operator suffix means equality; for unknown suffixes the
// whole key, suffix included, is the field name.
func splitOperator(key string) (field, op string) {
	i := strings.LastIndex(key, "__")
	if i <= 0 {
		return key, "eq"
	}
	field, op = key[:i], key[i+2:]
	if compareOps[op] != "" || op == "contains" || op == "startswith" || op == "endswith" {
		return field, op
	}
	return key, "eq"
}

// bindValue coerces a numeric-looking value to its numeric type. The
// ->> extraction yields typed SQL values for JSON numbers, and SQLite
// never considers an integer equal to (or greater than) a text value,
// so "price__gt=100" only works if 100 is bound as a number.
func bindValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

// safeSortField validates a sort field against the same allow-list as
// filter keys. Empty means "no sort requested".
func safeSortField(field string) bool {
	return field != "" && safeField.MatchString(field)
}
