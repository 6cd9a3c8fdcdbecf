package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmd-directory/internal/models"
	"pmd-directory/internal/taxonomy"
)

func TestReconcile_UnitChangeClearsDistrictAndStation(t *testing.T) {
	tx := taxonomy.Default()
	sel := Default()
	sel = Apply(tx, sel, DimensionUnit, "Law & Order")
	sel = Apply(tx, sel, DimensionDistrict, "Mysuru")
	sel = Apply(tx, sel, DimensionStation, "Mysuru Traffic PS")
	require.Equal(t, "Mysuru Traffic PS", sel.Station)

	sel = Apply(tx, sel, DimensionUnit, "Traffic")

	assert.Equal(t, "Traffic", sel.Unit)
	assert.Equal(t, taxonomy.All, sel.District)
	assert.Equal(t, taxonomy.All, sel.Station)
}

func TestReconcile_DistrictChangeClearsStation(t *testing.T) {
	tx := taxonomy.Default()
	sel := Selection{Unit: "Law & Order", District: "Mysuru", Station: "Lashkar PS", Rank: "PSI"}

	sel = Apply(tx, sel, DimensionDistrict, "Mandya")

	assert.Equal(t, "Mandya", sel.District)
	assert.Equal(t, taxonomy.All, sel.Station)
	assert.Equal(t, "PSI", sel.Rank)
}

func TestReconcile_ImpliedDistrictAutoSelected(t *testing.T) {
	tx := taxonomy.Default()

	sel := Apply(tx, Default(), DimensionUnit, "cid")

	assert.Equal(t, "CID", sel.Unit)
	assert.Equal(t, "Bengaluru -CR", sel.District)
	assert.Equal(t, taxonomy.All, sel.Station)
}

func TestReconcile_RankNotApplicableIsCleared(t *testing.T) {
	tx := taxonomy.Default()
	sel := Apply(tx, Default(), DimensionRank, "Typist")
	require.Equal(t, "Typist", sel.Rank)

	sel = Apply(tx, sel, DimensionUnit, "KSRP")
	assert.Equal(t, taxonomy.All, sel.Rank)

	sel = Apply(tx, sel, DimensionRank, "psi")
	assert.Equal(t, "PSI", sel.Rank, "canonical spelling from the option list")
}

func TestReconcile_UnknownValuesDegradeToAll(t *testing.T) {
	tx := taxonomy.Default()

	sel := Apply(tx, Default(), DimensionUnit, "Space Force")
	assert.Equal(t, Default(), sel)

	sel = Apply(tx, Default(), DimensionDistrict, "Atlantis")
	assert.Equal(t, taxonomy.All, sel.District)

	sel = Apply(tx, Selection{Unit: "Law & Order", District: "Mysuru"}, DimensionStation, "Nowhere PS")
	assert.Equal(t, taxonomy.All, sel.Station)
}

func TestReconcile_SectionsAndOthers(t *testing.T) {
	tx := taxonomy.Default()
	sel := Apply(tx, Default(), DimensionUnit, "KSRP")

	sel = Apply(tx, sel, DimensionStation, "3rd Battalion")
	assert.Equal(t, "3rd Battalion", sel.Station)

	sel = Apply(tx, sel, DimensionStation, taxonomy.Others)
	assert.Equal(t, taxonomy.Others, sel.Station)
}

func TestRevalidate_AfterTaxonomyShrinks(t *testing.T) {
	tx := taxonomy.Default()
	sel := Selection{Unit: "Law & Order", District: "Mysuru", Station: "Lashkar PS", Rank: "PC", Kind: models.FilterAll}
	require.Equal(t, sel, Revalidate(tx, sel))

	shrunk := taxonomy.Default()
	shrunk.StationsByDistrict["Mysuru"] = []string{"Devaraja PS"}
	shrunk.Ranks = []string{"DGP", "SP"}

	got := Revalidate(shrunk, sel)
	assert.Equal(t, "Mysuru", got.District)
	assert.Equal(t, taxonomy.All, got.Station)
	assert.Equal(t, taxonomy.All, got.Rank)
}

// Every reachable selection stays inside its own option lists.
func TestReconcile_SelectionAlwaysWithinOptions(t *testing.T) {
	tx := taxonomy.Default()

	within := func(t *testing.T, sel Selection) {
		t.Helper()
		opts := ValidOptions(tx, sel)
		if !taxonomy.IsAll(sel.District) {
			assert.Contains(t, opts.Districts, sel.District)
		}
		if !taxonomy.IsAll(sel.Station) {
			assert.Contains(t, opts.Stations, sel.Station)
		}
		if !taxonomy.IsAll(sel.Rank) {
			assert.Contains(t, opts.Ranks, sel.Rank)
		}
	}

	for _, unit := range append([]string{taxonomy.All}, tx.UnitNames()...) {
		base := Apply(tx, Default(), DimensionUnit, unit)
		within(t, base)
		for _, district := range ValidOptions(tx, base).Districts {
			withDistrict := Apply(tx, base, DimensionDistrict, district)
			within(t, withDistrict)
			for _, station := range ValidOptions(tx, withDistrict).Stations {
				withStation := Apply(tx, withDistrict, DimensionStation, station)
				within(t, withStation)
				for _, other := range tx.UnitNames() {
					within(t, Apply(tx, withStation, DimensionUnit, other))
				}
			}
		}
		for _, r := range tx.Ranks {
			within(t, Apply(tx, base, DimensionRank, r))
		}
	}
}

func TestValidOptions(t *testing.T) {
	tx := taxonomy.Default()

	opts := ValidOptions(tx, Selection{Unit: "CID", District: "Bengaluru -CR"})
	assert.Equal(t, []string{"Bengaluru -CR"}, opts.Districts)
	assert.Empty(t, opts.Stations)
	assert.True(t, opts.DistrictLevel)
	assert.Equal(t, "Bengaluru -CR", opts.ImpliedDistrict)
	assert.NotContains(t, opts.Ranks, "Typist")
	assert.Len(t, opts.Kinds, len(models.FilterKinds))

	opts = ValidOptions(tx, Default())
	assert.Equal(t, tx.UnitNames(), opts.Units)
	assert.Empty(t, opts.Stations)
}

func TestSelectionWith(t *testing.T) {
	sel := Default().With(DimensionKind, "mobile").With(DimensionQuery, "98450").With(DimensionRank, "")
	assert.Equal(t, models.FilterMobile, sel.Kind)
	assert.Equal(t, "98450", sel.Query)
	assert.Equal(t, taxonomy.All, sel.Rank)
	assert.True(t, sel.HasQuery())
	assert.False(t, Default().With(DimensionQuery, "   ").HasQuery())
	assert.Equal(t, DimensionStation, ParseDimension(" Station "))
	assert.Equal(t, DimensionNone, ParseDimension("colour"))
}
