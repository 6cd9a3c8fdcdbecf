// Package filter implements the cascading unit → district → station/rank
// filters of the directory.
package filter

import (
	"strings"

	"pmd-directory/internal/models"
	"pmd-directory/internal/taxonomy"
)

// Dimension names one component of a Selection.
type Dimension string

const (
	DimensionNone     Dimension = ""
	DimensionUnit     Dimension = "unit"
	DimensionDistrict Dimension = "district"
	DimensionStation  Dimension = "station"
	DimensionRank     Dimension = "rank"
	DimensionQuery    Dimension = "query"
	DimensionKind     Dimension = "kind"
)

// ParseDimension is case-insensitive; unknown names give DimensionNone.
func ParseDimension(s string) Dimension {
	switch d := Dimension(strings.ToLower(strings.TrimSpace(s))); d {
	case DimensionUnit, DimensionDistrict, DimensionStation, DimensionRank, DimensionQuery, DimensionKind:
		return d
	}
	return DimensionNone
}

// Selection is the immutable filter state of one viewing session. Change it
// with With/Apply, which return a new value.
type Selection struct {
	Unit     string            `json:"unit"`
	District string            `json:"district"`
	Station  string            `json:"station"`
	Rank     string            `json:"rank"`
	Query    string            `json:"query"`
	Kind     models.FilterKind `json:"kind"`
}

// Default is the "reset filters" selection.
func Default() Selection {
	return Selection{
		Unit:     taxonomy.All,
		District: taxonomy.All,
		Station:  taxonomy.All,
		Rank:     taxonomy.All,
		Kind:     models.FilterAll,
	}
}

// HasQuery reports whether the free-text query is non-blank.
func (s Selection) HasQuery() bool {
	return strings.TrimSpace(s.Query) != ""
}

// With sets one dimension without reconciling the others.
func (s Selection) With(dim Dimension, value string) Selection {
	switch dim {
	case DimensionUnit:
		s.Unit = value
	case DimensionDistrict:
		s.District = value
	case DimensionStation:
		s.Station = value
	case DimensionRank:
		s.Rank = value
	case DimensionQuery:
		s.Query = value
	case DimensionKind:
		s.Kind = models.ParseFilterKind(value)
	}
	return s.normalized()
}

// normalized maps blank dimensions to the All sentinel.
func (s Selection) normalized() Selection {
	for _, p := range []*string{&s.Unit, &s.District, &s.Station, &s.Rank} {
		if taxonomy.IsAll(*p) {
			*p = taxonomy.All
		}
	}
	if s.Kind == "" {
		s.Kind = models.FilterAll
	}
	return s
}
