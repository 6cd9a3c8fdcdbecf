package filter

import (
	"strings"

	"pmd-directory/internal/models"
	"pmd-directory/internal/rank"
	"pmd-directory/internal/taxonomy"
)

// Matches reports whether c passes the dropdown dimensions of sel. Query and
// Kind are not looked at here.
func Matches(t *taxonomy.Taxonomy, c models.Contact, sel Selection) bool {
	if !taxonomy.IsAll(sel.Unit) && !strings.EqualFold(strings.TrimSpace(c.EffectiveUnit()), strings.TrimSpace(sel.Unit)) {
		return false
	}
	if !taxonomy.IsAll(sel.District) && !taxonomy.SameDistrict(c.District(), sel.District) {
		return false
	}
	if !taxonomy.IsAll(sel.Station) && !matchesStation(t, c, sel) {
		return false
	}
	if !taxonomy.IsAll(sel.Rank) && !rank.Equal(c.Rank(), sel.Rank) {
		return false
	}
	return true
}

// Others 匹配手工录入的站点，以及不在当前字典里的站点/科室
func matchesStation(t *taxonomy.Taxonomy, c models.Contact, sel Selection) bool {
	if !strings.EqualFold(strings.TrimSpace(sel.Station), taxonomy.Others) {
		return strings.EqualFold(strings.TrimSpace(c.Station()), strings.TrimSpace(sel.Station))
	}
	if c.IsManualStation() {
		return true
	}
	if sections := t.GetSectionsForUnit(sel.Unit); len(sections) > 0 {
		return !taxonomy.ContainsFold(sections, c.Station())
	}
	return !t.KnowsStation(c.District(), c.Station())
}

// Narrow keeps the contacts passing Matches, preserving order.
func Narrow(t *taxonomy.Taxonomy, contacts []models.Contact, sel Selection) []models.Contact {
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if Matches(t, c, sel) {
			out = append(out, c)
		}
	}
	return out
}
