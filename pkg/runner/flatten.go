package runner

import (
	"fmt"
	"regexp"
	"strings"
)

// Flatten turns strings and arbitrarily nested string sequences into one
// ordered argument list. Empty strings are dropped.
func Flatten(args ...any) []string {
	var out []string
	for _, arg := range args {
		out = appendFlat(out, arg)
	}
	return out
}

func appendFlat(out []string, arg any) []string {
	switch v := arg.(type) {
	case nil:
		return out
	case string:
		if v != "" {
			out = append(out, v)
		}
	case []string:
		for _, s := range v {
			out = appendFlat(out, s)
		}
	case [][]string:
		for _, s := range v {
			out = appendFlat(out, s)
		}
	case []any:
		for _, s := range v {
			out = appendFlat(out, s)
		}
	case fmt.Stringer:
		out = appendFlat(out, v.String())
	default:
		out = appendFlat(out, fmt.Sprint(v))
	}
	return out
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9_@%+=:,./-]+$`)

// ShellJoin quotes args for a POSIX shell command line.
func ShellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if shellSafe.MatchString(a) {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
