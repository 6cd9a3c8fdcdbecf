// Package rank holds the organizational rank priority table used as the
// default ordering of directory results.
package rank

import "strings"

// TableVersion is bumped whenever the priority table changes.
const TableVersion = "2024.1"

const (
	// Unknown is the priority of a non-blank rank missing from the table.
	Unknown = 1000
	// Blank is the priority of an empty rank; it sorts after Unknown.
	Blank = 1001
)

// priorities maps a rank key (see Key) to its seniority, 1 = most senior.
var priorities = map[string]int{
	"DGP":            1,
	"DGIGP":          1,
	"ADGP":           2,
	"IGP":            3,
	"DIGP":           4,
	"DIG":            4,
	"SP":             5,
	"DCP":            5,
	"COMMANDANT":     5,
	"ADDLSP":         6,
	"ASP":            6,
	"ADDLDCP":        6,
	"DYSP":           7,
	"ACP":            7,
	"DYCOMMANDANT":   7,
	"PI":             8,
	"CPI":            8,
	"RPI":            8,
	"INSPECTOR":      8,
	"PSI":            9,
	"SI":             9,
	"RSI":            9,
	"WPSI":           9,
	"ASI":            10,
	"ARSI":           10,
	"HC":             11,
	"CHC":            11,
	"AHC":            11,
	"PC":             12,
	"CPC":            12,
	"APC":            12,
	"WPC":            12,
	"AO":             13,
	"SUPERINTENDENT": 14,
	"FDA":            15,
	"SDA":            16,
	"TYPIST":         17,
}

// Key canonicalizes a rank for lookup: "Dy.SP" and "dysp" both give "DYSP".
func Key(r string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(r) {
		switch ch {
		case ' ', '.', '-', '&', '/', '(', ')':
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// Priority returns the seniority of r; lower sorts first.
func Priority(r string) int {
	if strings.TrimSpace(r) == "" {
		return Blank
	}
	if p, ok := priorities[Key(r)]; ok {
		return p
	}
	return Unknown
}

// Equal compares two ranks by key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
