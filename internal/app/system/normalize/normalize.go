// Package normalize provides helper functions for consistent string
// normalization of request input. Display names and free-text folder fields
// are never normalized; they are stored as entered.
package normalize

import "strings"

// Name normalizes a registry name (category) by trimming whitespace and
// collapsing internal runs of whitespace to a single space.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status trims a status value. Case is kept: canonical values are
// mixed-case ("Da Iniziare") and matched exactly.
func Status(s string) string {
	return strings.TrimSpace(s)
}

// ProjectCode trims a project code.
func ProjectCode(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
