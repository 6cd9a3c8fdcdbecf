package filter

import (
	"strings"

	"pmd-directory/internal/models"
	"pmd-directory/internal/taxonomy"
)

// Options are the dropdown lists valid for a selection. An empty list means
// nothing is selectable yet.
type Options struct {
	Units     []string            `json:"units"`
	Districts []string            `json:"districts"`
	Stations  []string            `json:"stations"`
	Ranks     []string            `json:"ranks"`
	Kinds     []models.FilterKind `json:"kinds"`
	// ImpliedDistrict is set when the selected unit pins a single district.
	ImpliedDistrict string `json:"impliedDistrict,omitempty"`
	// DistrictLevel is true when the selected unit has no station dimension.
	DistrictLevel bool `json:"districtLevel"`
}

// ValidOptions computes every dropdown list for sel.
func ValidOptions(t *taxonomy.Taxonomy, sel Selection) Options {
	sel = sel.normalized()
	opts := Options{
		Units:         t.UnitNames(),
		Districts:     t.GetDistrictsForUnit(sel.Unit),
		Stations:      t.GetStationsForDistrict(sel.District, sel.Unit),
		Ranks:         t.GetApplicableRanksForUnit(sel.Unit),
		Kinds:         append([]models.FilterKind(nil), models.FilterKinds...),
		DistrictLevel: t.IsDistrictLevelUnit(sel.Unit),
	}
	if d, ok := t.ImpliedDistrict(sel.Unit); ok {
		opts.ImpliedDistrict = d
	}
	return opts
}

// Reconcile returns sel with every downstream dimension of changed reset and
// every value that fell out of its recomputed option list cleared.
func Reconcile(t *taxonomy.Taxonomy, sel Selection, changed Dimension) Selection {
	sel = sel.normalized()

	if !taxonomy.IsAll(sel.Unit) {
		if u, ok := t.LookupUnit(sel.Unit); ok {
			sel.Unit = u.Name
		} else {
			sel.Unit = taxonomy.All
			changed = DimensionUnit
		}
	}

	switch changed {
	case DimensionUnit:
		sel.District = taxonomy.All
		sel.Station = taxonomy.All
		if d, ok := t.ImpliedDistrict(sel.Unit); ok {
			sel.District = d
		}
	case DimensionDistrict:
		sel.Station = taxonomy.All
	}

	if !taxonomy.IsAll(sel.District) {
		if d, ok := pick(t.GetDistrictsForUnit(sel.Unit), sel.District); ok {
			sel.District = d
		} else {
			sel.District = taxonomy.All
			sel.Station = taxonomy.All
		}
	}
	if !taxonomy.IsAll(sel.Station) {
		if s, ok := pick(t.GetStationsForDistrict(sel.District, sel.Unit), sel.Station); ok {
			sel.Station = s
		} else {
			sel.Station = taxonomy.All
		}
	}
	if !taxonomy.IsAll(sel.Rank) {
		if r, ok := pick(t.GetApplicableRanksForUnit(sel.Unit), sel.Rank); ok {
			sel.Rank = r
		} else {
			sel.Rank = taxonomy.All
		}
	}
	return sel
}

// Revalidate re-checks sel against a (possibly refreshed) taxonomy without
// treating any dimension as changed.
func Revalidate(t *taxonomy.Taxonomy, sel Selection) Selection {
	return Reconcile(t, sel, DimensionNone)
}

// Apply sets one dimension and reconciles.
func Apply(t *taxonomy.Taxonomy, sel Selection, dim Dimension, value string) Selection {
	return Reconcile(t, sel.With(dim, value), dim)
}

// Reset is the wholesale "reset filters" action.
func Reset() Selection {
	return Default()
}

// pick returns the list's own spelling of v.
func pick(list []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return s, true
		}
	}
	return "", false
}
