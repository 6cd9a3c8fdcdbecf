// Package matcher projects, gates and ranks directory contacts.
package matcher

import "pmd-directory/internal/models"

// VisibleEmployees drops unapproved employees unless the viewer is an admin.
func VisibleEmployees(employees []models.Employee, viewerIsAdmin bool) []models.Employee {
	if viewerIsAdmin {
		return employees
	}
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if e.IsApproved {
			out = append(out, e)
		}
	}
	return out
}

// VisibleOfficers drops hidden officers unless the viewer is an admin.
func VisibleOfficers(officers []models.Officer, viewerIsAdmin bool) []models.Officer {
	if viewerIsAdmin {
		return officers
	}
	out := make([]models.Officer, 0, len(officers))
	for _, o := range officers {
		if !o.IsHidden {
			out = append(out, o)
		}
	}
	return out
}

// Project merges both record kinds into one contact list. Order is not
// meaningful.
func Project(employees []models.Employee, officers []models.Officer) []models.Contact {
	out := make([]models.Contact, 0, len(employees)+len(officers))
	for _, e := range employees {
		out = append(out, models.EmployeeContact(e))
	}
	for _, o := range officers {
		out = append(out, models.OfficerContact(o))
	}
	return out
}

// Visible is VisibleEmployees and VisibleOfficers followed by Project.
func Visible(employees []models.Employee, officers []models.Officer, viewerIsAdmin bool) []models.Contact {
	return Project(VisibleEmployees(employees, viewerIsAdmin), VisibleOfficers(officers, viewerIsAdmin))
}
