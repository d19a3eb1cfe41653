package database

import (
	"strings"
)

// IsUniqueViolation matches unique-constraint errors across the sqlite and
// postgres drivers, which surface them with different error types.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
