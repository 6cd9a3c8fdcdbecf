package pipeline

import (
	"context"

	"pmd-directory/internal/filter"
	"pmd-directory/internal/matcher"
	"pmd-directory/internal/models"
	"pmd-directory/internal/searchkey"
	"pmd-directory/internal/taxonomy"

	"go.uber.org/zap"
)

// State distinguishes "not loaded yet" from a loaded (possibly empty) result.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// Snapshot is one consistent view of everything a result depends on besides
// the selection. Slices are never mutated after being placed in a snapshot.
type Snapshot struct {
	Employees []models.Employee
	Officers  []models.Officer
	Taxonomy  *taxonomy.Taxonomy
	IsAdmin   bool
	// Loaded is set once both record sets have been received.
	Loaded bool
}

// Result is what the presentation layer observes.
type Result struct {
	State      State            `json:"state"`
	Generation uint64           `json:"generation"`
	Selection  filter.Selection `json:"selection"`
	Options    filter.Options   `json:"options"`
	Contacts   []models.Contact `json:"contacts"`
}

// Empty is true for a loaded result with no contacts. A loading result is
// never empty.
func (r Result) Empty() bool {
	return r.State == StateReady && len(r.Contacts) == 0
}

// Engine recomputes results. The zero value scans in memory only.
type Engine struct {
	Accelerator Accelerator
	// Threshold is the candidate count above which Accelerator is used.
	Threshold int
	Logger    *zap.Logger
}

// Compute is Engine.Compute without an accelerator.
func Compute(snap Snapshot, sel filter.Selection) Result {
	var e Engine
	return e.Compute(context.Background(), snap, sel)
}

// Compute produces the result for sel over snap. A non-blank query searches
// the whole visible collection and ignores the dropdown dimensions.
func (e *Engine) Compute(ctx context.Context, snap Snapshot, sel filter.Selection) Result {
	tx := snap.Taxonomy
	if tx == nil {
		tx = taxonomy.Default()
	}
	res := Result{
		State:     StateLoading,
		Selection: sel,
		Options:   filter.ValidOptions(tx, sel),
		Contacts:  []models.Contact{},
	}
	if !snap.Loaded {
		return res
	}

	contacts := matcher.Visible(snap.Employees, snap.Officers, snap.IsAdmin)
	if sel.HasQuery() {
		contacts = e.candidates(ctx, contacts, sel)
		res.Contacts = matcher.Match(contacts, sel.Query, sel.Kind)
	} else {
		res.Contacts = matcher.Match(filter.Narrow(tx, contacts, sel), "", sel.Kind)
	}
	res.State = StateReady
	return res
}

// candidates narrows contacts with the accelerator when the set is large.
// Kinds that normalize the query beyond the blob's form are not accelerated.
func (e *Engine) candidates(ctx context.Context, contacts []models.Contact, sel filter.Selection) []models.Contact {
	if e.Accelerator == nil || len(contacts) <= e.Threshold {
		return contacts
	}
	switch sel.Kind {
	case models.FilterMobile, models.FilterBloodGroup:
		return contacts
	}

	employees, officers, err := e.Accelerator.SubstringSearch(ctx, searchkey.Normalize(sel.Query))
	if err != nil {
		if e.Logger != nil {
			e.Logger.Warn("Substring accelerator failed, scanning in memory", zap.Error(err))
		}
		return contacts
	}

	keep := make(map[contactKey]struct{}, len(employees)+len(officers))
	for _, emp := range employees {
		keep[contactKey{kind: models.KindEmployee, id: emp.KGID}] = struct{}{}
	}
	for _, o := range officers {
		keep[contactKey{kind: models.KindOfficer, id: o.AGID}] = struct{}{}
	}
	out := make([]models.Contact, 0, len(keep))
	for _, c := range contacts {
		if _, ok := keep[contactKey{kind: c.Kind(), id: c.ID()}]; ok {
			out = append(out, c)
		}
	}
	return out
}

type contactKey struct {
	kind models.ContactKind
	id   string
}
