package sheet

import (
	"strings"

	"pmd-directory/internal/models"
)

// ContactHeader 导出表头
var ContactHeader = []string{
	"Type",
	"ID",
	"Name",
	"Rank",
	"Unit",
	"District",
	"Station",
	"Primary Phone",
	"Other Phones",
	"Blood Group",
	"Metal Number",
}

var contactWidths = []float64{10, 14, 28, 12, 16, 20, 26, 18, 28, 12, 14}

// ExportContacts writes contacts, in the given order, to a workbook.
func ExportContacts(contacts []models.Contact) ([]byte, error) {
	rows := make([][]any, 0, len(contacts))
	for _, c := range contacts {
		phones := c.Phones()
		var others string
		if len(phones) > 1 {
			others = strings.Join(phones[1:], ", ")
		}
		rows = append(rows, []any{
			string(c.Kind()),
			c.ID(),
			c.Name(),
			c.Rank(),
			c.EffectiveUnit(),
			c.District(),
			c.Station(),
			c.PrimaryPhone(),
			others,
			c.BloodGroup(),
			c.MetalNumber(),
		})
	}
	return writeWorkbook("Contacts", ContactHeader, contactWidths, rows)
}
