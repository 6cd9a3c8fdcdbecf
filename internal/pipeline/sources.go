// Package pipeline turns raw records, taxonomy, privilege and viewer input
// into the published, ordered contact list of one viewing session.
package pipeline

import (
	"context"

	"pmd-directory/internal/models"
	"pmd-directory/internal/taxonomy"
)

// RecordSet is one consistent copy of both record collections. Privilege
// lookups answer from the same employee slice.
type RecordSet struct {
	Employees  []models.Employee
	Officers   []models.Officer
	Generation uint64

	admins map[string]bool
}

func NewRecordSet(employees []models.Employee, officers []models.Officer, generation uint64) RecordSet {
	admins := make(map[string]bool)
	for _, e := range employees {
		if e.IsAdmin && e.IsApproved {
			admins[e.KGID] = true
		}
	}
	return RecordSet{Employees: employees, Officers: officers, Generation: generation, admins: admins}
}

// IsAdmin reports whether kgid is an approved admin in this set.
func (r RecordSet) IsAdmin(kgid string) bool {
	if kgid == "" {
		return false
	}
	if r.admins != nil {
		return r.admins[kgid]
	}
	for _, e := range r.Employees {
		if e.KGID == kgid {
			return e.IsAdmin && e.IsApproved
		}
	}
	return false
}

// IsApproved reports whether kgid is an approved employee in this set.
func (r RecordSet) IsApproved(kgid string) bool {
	for _, e := range r.Employees {
		if e.KGID == kgid {
			return e.IsApproved
		}
	}
	return false
}

// RecordSource re-emits the full record set on every underlying change.
type RecordSource interface {
	ObserveRecords(ctx context.Context) <-chan RecordSet
}

// PrivilegeSource re-emits whether the viewer is an admin. Sessions with a
// viewer derive the flag from their RecordSet instead.
type PrivilegeSource interface {
	ObserveIsAdmin(ctx context.Context) <-chan bool
}

// TaxonomySource re-emits the taxonomy on every refresh.
type TaxonomySource interface {
	Observe(ctx context.Context) <-chan *taxonomy.Taxonomy
}

// Accelerator is an indexed substring scan over the stored search blobs. It
// only narrows candidates; matching still runs in memory.
type Accelerator interface {
	SubstringSearch(ctx context.Context, query string) ([]models.Employee, []models.Officer, error)
}

// StaticPrivilege is a PrivilegeSource that never changes.
type StaticPrivilege bool

func (p StaticPrivilege) ObserveIsAdmin(ctx context.Context) <-chan bool {
	ch := make(chan bool, 1)
	ch <- bool(p)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
