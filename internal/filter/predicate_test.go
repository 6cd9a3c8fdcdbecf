package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pmd-directory/internal/models"
	"pmd-directory/internal/taxonomy"
)

func employee(kgid, district, station string) models.Contact {
	return models.EmployeeContact(models.Employee{KGID: kgid, Name: kgid, District: district, Station: station, Rank: "PC"})
}

func TestMatches_DistrictSuffixNormalized(t *testing.T) {
	tx := taxonomy.Default()
	c := employee("1", "Bengaluru -NR", "Jayanagar PS")

	assert.True(t, Matches(tx, c, Selection{District: "Bengaluru -ER"}))
	assert.False(t, Matches(tx, c, Selection{District: "Bengaluru Rural"}))
}

func TestMatches_EffectiveUnitDefault(t *testing.T) {
	tx := taxonomy.Default()
	c := employee("1", "Mysuru", "Lashkar PS")

	assert.True(t, Matches(tx, c, Selection{Unit: "law & order"}))
	assert.False(t, Matches(tx, c, Selection{Unit: "Traffic"}))
}

func TestMatches_RankByKey(t *testing.T) {
	tx := taxonomy.Default()
	c := models.EmployeeContact(models.Employee{KGID: "1", Rank: "Dy.SP"})

	assert.True(t, Matches(tx, c, Selection{Rank: "DYSP"}))
	assert.False(t, Matches(tx, c, Selection{Rank: "SP"}))
}

func TestMatches_Others(t *testing.T) {
	tx := taxonomy.Default()
	sel := Selection{Unit: taxonomy.All, District: "Mysuru", Station: taxonomy.Others}

	manual := models.EmployeeContact(models.Employee{KGID: "1", District: "Mysuru", Station: "Lashkar PS", IsManualStation: true})
	unknown := employee("2", "Mysuru", "Old Fort Outpost")
	known := employee("3", "Mysuru", "Lashkar PS")

	assert.True(t, Matches(tx, manual, sel))
	assert.True(t, Matches(tx, unknown, sel))
	assert.False(t, Matches(tx, known, sel))
}

func TestMatches_OthersForSectionUnit(t *testing.T) {
	tx := taxonomy.Default()
	sel := Selection{Unit: "KSRP", Station: taxonomy.Others}

	inSection := models.EmployeeContact(models.Employee{KGID: "1", Unit: "KSRP", Station: "2nd Battalion"})
	outside := models.EmployeeContact(models.Employee{KGID: "2", Unit: "KSRP", Station: "Training School"})

	assert.False(t, Matches(tx, inSection, sel))
	assert.True(t, Matches(tx, outside, sel))
}

func TestNarrow_StaleStationOnlyUnderAll(t *testing.T) {
	tx := taxonomy.Default()
	stale := employee("9", "Mysuru", "Closed PS")
	contacts := []models.Contact{stale, employee("1", "Mysuru", "Lashkar PS")}

	got := Narrow(tx, contacts, Selection{District: "Mysuru", Station: "Lashkar PS"})
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID())

	assert.Len(t, Narrow(tx, contacts, Selection{District: "Mysuru", Station: taxonomy.All}), 2)
}
