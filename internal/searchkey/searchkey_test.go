package searchkey

import (
	"testing"

	"pmd-directory/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ravi kumar", Normalize("  Ravi \t  KUMAR\n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestEmployeeBlob_ContainsSearchableFields(t *testing.T) {
	e := &models.Employee{
		KGID:        "12345",
		Name:        "Ravi  Kumar",
		Rank:        "PSI",
		Station:     "Jayanagar PS",
		District:    "Bengaluru -SR",
		Mobile1:     "9900011122",
		MetalNumber: "M 77",
		BloodGroup:  "O+",
		Email:       "ravi@example.org",
	}
	blob := EmployeeBlob(e)

	assert.Contains(t, blob, "ravi kumar")
	assert.Contains(t, blob, "12345")
	assert.Contains(t, blob, "psi")
	assert.Contains(t, blob, "jayanagar ps")
	assert.Contains(t, blob, "9900011122")
	assert.Contains(t, blob, "m 77")
	assert.Contains(t, blob, "o+")
	assert.NotContains(t, blob, "ravi@example.org")
	assert.NotContains(t, blob, "  ")
}

func TestEmployeeBlob_CrossesFieldBoundaries(t *testing.T) {
	blob := EmployeeBlob(&models.Employee{Name: "Ravi", KGID: "12345"})
	assert.Equal(t, "ravi 12345", blob)
	assert.Contains(t, blob, "vi 123")
}

func TestOfficerBlob_SkipsEmptyFields(t *testing.T) {
	blob := OfficerBlob(&models.Officer{AGID: "AG-1", Name: "S Rao", Unit: "Traffic"})
	assert.Equal(t, "s rao ag-1 traffic", blob)
}

func TestStampAndStale(t *testing.T) {
	e := &models.Employee{KGID: "1", Name: "Asha"}
	assert.True(t, EmployeeStale(e))

	StampEmployee(e)
	assert.False(t, EmployeeStale(e))

	e.Rank = "ASI"
	assert.True(t, EmployeeStale(e))

	o := &models.Officer{AGID: "AG-2", Name: "N Gowda"}
	StampOfficer(o)
	assert.False(t, OfficerStale(o))
}
