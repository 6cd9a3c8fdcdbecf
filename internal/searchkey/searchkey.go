// Package searchkey derives the precomputed search blob stored with every
// directory record.
package searchkey

import (
	"strings"

	"pmd-directory/internal/models"
)

// Normalize lower-cases s and collapses every whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// join normalizes each field and space-joins the non-empty ones. No field
// boundary markers are added, so a substring may span two fields.
func join(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

// EmployeeBlob builds the search blob for an employee.
func EmployeeBlob(e *models.Employee) string {
	return join(
		e.Name,
		e.KGID,
		e.Rank,
		e.Station,
		e.District,
		e.Unit,
		e.Mobile1,
		e.Mobile2,
		e.Landline,
		e.Landline2,
		e.MetalNumber,
		e.BloodGroup,
	)
}

// OfficerBlob builds the search blob for an officer.
func OfficerBlob(o *models.Officer) string {
	return join(
		o.Name,
		o.AGID,
		o.Rank,
		o.Station,
		o.District,
		o.Unit,
		o.Mobile,
		o.Landline,
		o.BloodGroup,
	)
}

// StampEmployee recomputes e.SearchBlob. Every create/update path must call it
// before the record is persisted.
func StampEmployee(e *models.Employee) {
	e.SearchBlob = EmployeeBlob(e)
}

// StampOfficer recomputes o.SearchBlob.
func StampOfficer(o *models.Officer) {
	o.SearchBlob = OfficerBlob(o)
}

// EmployeeStale reports whether the stored blob differs from a fresh build.
func EmployeeStale(e *models.Employee) bool {
	return e.SearchBlob != EmployeeBlob(e)
}

// OfficerStale reports whether the stored blob differs from a fresh build.
func OfficerStale(o *models.Officer) bool {
	return o.SearchBlob != OfficerBlob(o)
}
