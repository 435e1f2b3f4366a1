package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the
// column; backslash is the default LIKE escape character in postgres.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
