package typeorm

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// namedTokenRe matches :identifier tokens. \w+ is maximal-munch, so a token
// is only replaced when the whole word after the colon is a bound parameter
// name, which gives the same word-bounded behavior as the usual \b regex.
var namedTokenRe = regexp.MustCompile(`:(\w+)`)

// EscapeQueryWithParameters rewrites named :name placeholders in sql into
// positional $1..$n placeholders and returns the rewritten statement together
// with the argument list in replacement order. A bound slice value expands
// into one placeholder per element, comma-joined, which supports
// "IN (:list)" usage. Tokens without a binding are left untouched, and an
// empty or nil parameter map returns the statement unchanged.
//
// The scan is plain text substitution: a :name sequence inside a string or
// comment literal that coincides with a bound parameter name will be
// rewritten too. Callers embedding literal colons next to parameter names
// must rename the parameter.
func EscapeQueryWithParameters(sql string, parameters map[string]any) (string, []any) {
	builtParameters := make([]any, 0, len(parameters))
	if len(parameters) == 0 {
		return sql, builtParameters
	}
	rewritten := namedTokenRe.ReplaceAllStringFunc(sql, func(token string) string {
		name := token[1:]
		value, ok := parameters[name]
		if !ok {
			return token
		}
		if elems, ok := sliceElements(value); ok {
			placeholders := make([]string, len(elems))
			for i, e := range elems {
				builtParameters = append(builtParameters, e)
				placeholders[i] = "$" + strconv.Itoa(len(builtParameters))
			}
			return strings.Join(placeholders, ", ")
		}
		builtParameters = append(builtParameters, value)
		return "$" + strconv.Itoa(len(builtParameters))
	})
	return rewritten, builtParameters
}

// sliceElements reports whether value is an expandable sequence and returns
// its elements. Byte slices are scalars (they carry binary column data).
func sliceElements(value any) ([]any, bool) {
	if _, isBytes := value.([]byte); isBytes || value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, true
}

// EscapeQueryWithParameters rewrites named placeholders into positional ones.
// See the package-level function of the same name.
func (d *Driver) EscapeQueryWithParameters(sql string, parameters map[string]any) (string, []any) {
	return EscapeQueryWithParameters(sql, parameters)
}
