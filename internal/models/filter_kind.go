package models

import "strings"

// FilterKind selects which field(s) a free-text query is tested against.
type FilterKind string

const (
	FilterAll         FilterKind = "ALL"
	FilterName        FilterKind = "NAME"
	FilterID          FilterKind = "ID"
	FilterMobile      FilterKind = "MOBILE"
	FilterStation     FilterKind = "STATION"
	FilterRank        FilterKind = "RANK"
	FilterMetalNumber FilterKind = "METAL_NUMBER"
	FilterBloodGroup  FilterKind = "BLOOD_GROUP"
)

// FilterKinds lists every kind in display order.
var FilterKinds = []FilterKind{
	FilterAll, FilterName, FilterID, FilterMobile,
	FilterStation, FilterRank, FilterMetalNumber, FilterBloodGroup,
}

// ParseFilterKind is case-insensitive and falls back to FilterAll.
func ParseFilterKind(s string) FilterKind {
	k := FilterKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range FilterKinds {
		if k == known {
			return k
		}
	}
	return FilterAll
}
