package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"pmd-directory/internal/models"

	"github.com/xuri/excelize/v2"
)

// ErrMissingHeader is returned when a required import column is absent.
var ErrMissingHeader = errors.New("sheet: missing required column")

const officerSheet = "Officers"

// OfficerHeader is the import template header. AGID and Name are required.
var OfficerHeader = []string{
	"AGID",
	"Name",
	"Email",
	"Rank",
	"Mobile",
	"Landline",
	"Station",
	"District",
	"Unit",
	"Blood Group",
	"Photo URL",
	"Hidden",
}

var requiredOfficerColumns = []string{"AGID", "Name"}

// RowIssue explains why a data row was not imported. Row is 1-based as
// shown in Excel.
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// OfficerImport is the parsed content of an officer workbook.
type OfficerImport struct {
	Officers []models.Officer `json:"officers"`
	Skipped  []RowIssue       `json:"skipped"`
}

// OfficerTemplate returns an empty import workbook.
func OfficerTemplate() ([]byte, error) {
	return writeWorkbook(officerSheet, OfficerHeader, officerWidths, nil)
}

var officerWidths = []float64{12, 25, 28, 12, 16, 16, 24, 20, 16, 12, 30, 10}

// ParseOfficers reads the first sheet of an officer workbook. Header names
// are matched case-insensitively; unknown columns are ignored.
func ParseOfficers(r io.Reader) (*OfficerImport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("sheet: workbook has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, strings.Join(requiredOfficerColumns, ", "))
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range requiredOfficerColumns {
		if _, ok := cols[strings.ToLower(req)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, req)
		}
	}

	result := &OfficerImport{Officers: []models.Officer{}, Skipped: []RowIssue{}}
	seen := make(map[string]int)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		cell := func(name string) string {
			idx, ok := cols[strings.ToLower(name)]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlankRow(row) {
			continue
		}

		o := models.Officer{
			AGID:       cell("AGID"),
			Name:       cell("Name"),
			Email:      cell("Email"),
			Rank:       cell("Rank"),
			Mobile:     cell("Mobile"),
			Landline:   cell("Landline"),
			Station:    cell("Station"),
			District:   cell("District"),
			Unit:       cell("Unit"),
			BloodGroup: cell("Blood Group"),
			PhotoURL:   cell("Photo URL"),
			IsHidden:   parseBool(cell("Hidden")),
		}
		switch {
		case o.AGID == "":
			result.Skipped = append(result.Skipped, RowIssue{Row: i + 1, Reason: "missing AGID"})
			continue
		case o.Name == "":
			result.Skipped = append(result.Skipped, RowIssue{Row: i + 1, Reason: "missing Name"})
			continue
		}
		if first, dup := seen[o.AGID]; dup {
			result.Skipped = append(result.Skipped, RowIssue{Row: i + 1, Reason: fmt.Sprintf("duplicate AGID %s (first on row %d)", o.AGID, first)})
			continue
		}
		seen[o.AGID] = i + 1
		result.Officers = append(result.Officers, o)
	}
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
