package repository

import "strings"

// EscapeLike neutralizes LIKE wildcards in a user-supplied search term so
// it only ever matches literally. Backslash is the escape character and
// must be doubled first.
func EscapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	term = strings.ReplaceAll(term, `_`, `\_`)

	return term
}
