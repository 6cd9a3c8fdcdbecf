package matcher

import (
	"sort"
	"strings"
	"unicode"

	"pmd-directory/internal/models"
	"pmd-directory/internal/rank"
	"pmd-directory/internal/searchkey"
)

// Tier is the relevance of a hit; lower is better.
type Tier int

const (
	TierExact Tier = iota + 1
	TierPrefix
	TierIDPrefix
	TierRank
	TierStation
	TierSubstring
)

// Hit is a matched contact with its relevance tier.
type Hit struct {
	Contact models.Contact
	Tier    Tier
}

// Match returns the contacts matching query under kind, ordered by rank
// priority, then name, then relevance. A blank query matches everything.
// METAL_NUMBER never returns officers.
func Match(contacts []models.Contact, query string, kind models.FilterKind) []models.Contact {
	hits := Score(contacts, query, kind)
	out := make([]models.Contact, len(hits))
	for i, h := range hits {
		out[i] = h.Contact
	}
	return out
}

// Score is Match keeping the tiers.
func Score(contacts []models.Contact, query string, kind models.FilterKind) []Hit {
	q := searchkey.Normalize(query)
	hits := make([]Hit, 0, len(contacts))
	for _, c := range contacts {
		if kind == models.FilterMetalNumber && c.IsOfficer() {
			continue
		}
		if q == "" {
			hits = append(hits, Hit{Contact: c, Tier: TierSubstring})
			continue
		}
		if tier, ok := score(c, q, kind); ok {
			hits = append(hits, Hit{Contact: c, Tier: tier})
		}
	}
	Sort(hits)
	return hits
}

// Sort orders hits by rank priority, lower-cased name, tier, then id.
func Sort(hits []Hit) {
	type sortable struct {
		hit      Hit
		priority int
		name     string
	}
	items := make([]sortable, len(hits))
	for i, h := range hits {
		items[i] = sortable{hit: h, priority: rank.Priority(h.Contact.Rank()), name: strings.ToLower(h.Contact.Name())}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.name != b.name {
			return a.name < b.name
		}
		if a.hit.Tier != b.hit.Tier {
			return a.hit.Tier < b.hit.Tier
		}
		return a.hit.Contact.ID() < b.hit.Contact.ID()
	})
	for i := range items {
		hits[i] = items[i].hit
	}
}

func score(c models.Contact, q string, kind models.FilterKind) (Tier, bool) {
	switch kind {
	case models.FilterName:
		return fieldTier(c.Name(), q)
	case models.FilterID:
		return fieldTier(c.ID(), q)
	case models.FilterStation:
		return fieldTier(c.Station(), q)
	case models.FilterRank:
		if rank.Key(c.Rank()) != "" && rank.Equal(c.Rank(), q) {
			return TierExact, true
		}
		return fieldTier(c.Rank(), q)
	case models.FilterMetalNumber:
		return fieldTier(c.MetalNumber(), q)
	case models.FilterBloodGroup:
		return fieldTier(compact(c.BloodGroup()), compact(q))
	case models.FilterMobile:
		return mobileTier(c.Phones(), q)
	}
	return allTier(c, q)
}

// allTier tests the blob first; the per-field checks only grade the hit.
func allTier(c models.Contact, q string) (Tier, bool) {
	if !strings.Contains(blobOf(c), q) {
		return 0, false
	}
	name := searchkey.Normalize(c.Name())
	switch {
	case name == q:
		return TierExact, true
	case strings.HasPrefix(name, q):
		return TierPrefix, true
	case strings.HasPrefix(searchkey.Normalize(c.ID()), q):
		return TierIDPrefix, true
	case strings.Contains(searchkey.Normalize(c.Rank()), q):
		return TierRank, true
	case strings.Contains(searchkey.Normalize(c.Station()), q):
		return TierStation, true
	}
	return TierSubstring, true
}

func fieldTier(value, q string) (Tier, bool) {
	v := searchkey.Normalize(value)
	switch {
	case v == "" || q == "":
		return 0, false
	case v == q:
		return TierExact, true
	case strings.HasPrefix(v, q):
		return TierPrefix, true
	case strings.Contains(v, q):
		return TierSubstring, true
	}
	return 0, false
}

// mobileTier compares digits only, so "98450 12345" finds "+91-9845012345".
func mobileTier(phones []string, q string) (Tier, bool) {
	dq := digits(q)
	if dq == "" {
		return 0, false
	}
	best, found := Tier(0), false
	for _, p := range phones {
		if t, ok := fieldTier(digits(p), dq); ok && (!found || t < best) {
			best, found = t, true
		}
	}
	return best, found
}

func blobOf(c models.Contact) string {
	if b := c.SearchBlob(); b != "" {
		return b
	}
	if e, ok := c.Employee(); ok {
		return searchkey.EmployeeBlob(&e)
	}
	o, _ := c.Officer()
	return searchkey.OfficerBlob(&o)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// compact drops spaces: "O +ve" and "o+ve" compare equal.
func compact(s string) string {
	return strings.ReplaceAll(searchkey.Normalize(s), " ", "")
}
