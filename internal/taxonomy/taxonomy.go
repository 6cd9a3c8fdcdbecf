// Package taxonomy holds the unit → district → station/section hierarchy
// used to drive the cascading directory filters.
package taxonomy

import (
	"strings"
	"sync"
)

// All is the "no restriction" value of every filter dimension.
const All = "All"

// Others is the synthetic station meaning "see the manually entered
// station/section text".
const Others = "Others"

// Unit is one organizational unit of the directory.
type Unit struct {
	Name string `json:"name"`
	// StationKeyword narrows the district's station list to stations whose
	// name contains it (e.g. "Traffic").
	StationKeyword string `json:"stationKeyword,omitempty"`
	// IsDistrictLevel units have no station dimension.
	IsDistrictLevel bool `json:"isDistrictLevel"`
	// DistrictScoped units ignore StationKeyword and show the full station
	// list of the selected district.
	DistrictScoped bool `json:"districtScoped,omitempty"`
	// Sections replace the station list outright when non-empty.
	Sections        []string `json:"sections,omitempty"`
	ApplicableRanks []string `json:"applicableRanks,omitempty"`
}

// Taxonomy is immutable once published; build a new one to change it.
type Taxonomy struct {
	Version   string   `json:"version"`
	Units     []Unit   `json:"units"`
	Districts []string `json:"districts"`
	// DistrictsByUnit restricts the district list of a unit. A unit absent
	// from the map imposes no restriction.
	DistrictsByUnit map[string][]string `json:"districtsByUnit,omitempty"`
	// StationsByDistrict is keyed by district name; keys are matched after
	// NormalizeDistrict.
	StationsByDistrict map[string][]string `json:"stationsByDistrict"`
	// Ranks is the full rank dropdown in display order.
	Ranks []string `json:"ranks"`

	once          sync.Once
	unitsByKey    map[string]Unit
	unitDistricts map[string][]string
	stationsByKey map[string][]string
}

func (t *Taxonomy) index() {
	t.once.Do(func() {
		t.unitsByKey = make(map[string]Unit, len(t.Units))
		for _, u := range t.Units {
			t.unitsByKey[key(u.Name)] = u
		}
		t.unitDistricts = make(map[string][]string, len(t.DistrictsByUnit))
		for u, ds := range t.DistrictsByUnit {
			t.unitDistricts[key(u)] = ds
		}
		t.stationsByKey = make(map[string][]string, len(t.StationsByDistrict))
		for d, ss := range t.StationsByDistrict {
			k := NormalizeDistrict(d)
			t.stationsByKey[k] = append(t.stationsByKey[k], ss...)
		}
	})
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsAll reports whether v is the "no restriction" sentinel (or unset).
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

// NormalizeDistrict strips a regional-zone suffix (everything from the first
// " -") and lower-cases: "Bengaluru -NR" → "bengaluru".
func NormalizeDistrict(d string) string {
	if i := strings.Index(d, " -"); i >= 0 {
		d = d[:i]
	}
	return key(d)
}

// SameDistrict compares two district names after normalization.
func SameDistrict(a, b string) bool {
	return NormalizeDistrict(a) == NormalizeDistrict(b)
}

// UnitNames lists every unit in taxonomy order.
func (t *Taxonomy) UnitNames() []string {
	names := make([]string, 0, len(t.Units))
	for _, u := range t.Units {
		names = append(names, u.Name)
	}
	return names
}

// LookupUnit finds a unit by case-insensitive name.
func (t *Taxonomy) LookupUnit(name string) (Unit, bool) {
	t.index()
	u, ok := t.unitsByKey[key(name)]
	return u, ok
}

// GetDistrictsForUnit returns the districts selectable under unit. "All"
// and unrestricted units get the full list; an unknown unit gets none.
func (t *Taxonomy) GetDistrictsForUnit(unit string) []string {
	if IsAll(unit) {
		return clone(t.Districts)
	}
	if _, ok := t.LookupUnit(unit); !ok {
		return []string{}
	}
	if ds, ok := t.unitDistricts[key(unit)]; ok {
		return clone(ds)
	}
	return clone(t.Districts)
}

// ImpliedDistrict returns the single district a district-level unit is
// pinned to, if any.
func (t *Taxonomy) ImpliedDistrict(unit string) (string, bool) {
	u, ok := t.LookupUnit(unit)
	if !ok || !u.IsDistrictLevel {
		return "", false
	}
	ds := t.GetDistrictsForUnit(unit)
	if len(ds) != 1 {
		return "", false
	}
	return ds[0], true
}

// IsDistrictLevelUnit reports whether unit has no station dimension.
func (t *Taxonomy) IsDistrictLevelUnit(unit string) bool {
	u, ok := t.LookupUnit(unit)
	return ok && u.IsDistrictLevel
}

// GetSectionsForUnit returns the unit's sections, if it defines any.
func (t *Taxonomy) GetSectionsForUnit(unit string) []string {
	u, ok := t.LookupUnit(unit)
	if !ok {
		return []string{}
	}
	return clone(u.Sections)
}

// GetStationsForDistrict returns the station (or section) options for the
// district under unit, with Others appended whenever manual entry applies.
func (t *Taxonomy) GetStationsForDistrict(district, unit string) []string {
	t.index()

	var u Unit
	if !IsAll(unit) {
		var ok bool
		if u, ok = t.LookupUnit(unit); !ok {
			return []string{}
		}
	}

	if len(u.Sections) > 0 {
		return append(clone(u.Sections), Others)
	}
	if u.IsDistrictLevel || IsAll(district) {
		return []string{}
	}

	stations, ok := t.stationsByKey[NormalizeDistrict(district)]
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(stations)+1)
	kw := key(u.StationKeyword)
	for _, s := range stations {
		if kw != "" && !u.DistrictScoped && !strings.Contains(key(s), kw) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > 0 {
		out = append(out, Others)
	}
	return out
}

// KnowsStation reports whether station is a taxonomy station of district.
func (t *Taxonomy) KnowsStation(district, station string) bool {
	t.index()
	for _, s := range t.stationsByKey[NormalizeDistrict(district)] {
		if strings.EqualFold(s, station) {
			return true
		}
	}
	return false
}

// GetApplicableRanksForUnit restricts the full rank list to the unit's
// applicable ranks (case-insensitive). Unknown units get none.
func (t *Taxonomy) GetApplicableRanksForUnit(unit string) []string {
	if IsAll(unit) {
		return clone(t.Ranks)
	}
	u, ok := t.LookupUnit(unit)
	if !ok {
		return []string{}
	}
	if len(u.ApplicableRanks) == 0 {
		return clone(t.Ranks)
	}
	out := make([]string, 0, len(u.ApplicableRanks))
	for _, r := range t.Ranks {
		if ContainsFold(u.ApplicableRanks, r) {
			out = append(out, r)
		}
	}
	return out
}

// ContainsFold reports whether list holds v, ignoring case.
func ContainsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
