// Package status provides the canonical workflow status values for folders.
//
// The constants are plain strings (not a custom type) so they drop straight
// into MongoDB queries and JSON. Older records may still carry one of the
// legacy values; LegacyToCanonical translates them on every read.
package status

// Canonical workflow status values. These are the only values ever written.
const (
	DaIniziare = "Da Iniziare"
	InCorso    = "In Corso"
	Finita     = "Finita"
	Sospese    = "Sospese"
)

// Legacy status values found in older records.
const (
	LegacyAperta     = "aperta"
	LegacyChiusa     = "chiusa"
	LegacyArchiviata = "archiviata"
)

var legacy = map[string]string{
	LegacyAperta:     DaIniziare,
	LegacyChiusa:     Finita,
	LegacyArchiviata: Sospese,
}

// All returns the canonical values in workflow order.
func All() []string {
	return []string{DaIniziare, InCorso, Finita, Sospese}
}

// IsValid returns true if s is a canonical status value.
func IsValid(s string) bool {
	switch s {
	case DaIniziare, InCorso, Finita, Sospese:
		return true
	}
	return false
}

// Default returns the status for new folders.
func Default() string {
	return DaIniziare
}

// LegacyToCanonical translates a stored status to its canonical form.
// Canonical values and unrecognized values are returned unchanged.
func LegacyToCanonical(s string) string {
	if c, ok := legacy[s]; ok {
		return c
	}
	return s
}

// Canonicalize resolves a status supplied on the write path. Empty means the
// default, legacy aliases are accepted, and anything else reports false.
func Canonicalize(s string) (string, bool) {
	if s == "" {
		return Default(), true
	}
	c := LegacyToCanonical(s)
	if !IsValid(c) {
		return "", false
	}
	return c, true
}
