package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pmd-directory/internal/models"
)

var employeeCols = []string{
	"kgid", "name", "email", "mobile1", "mobile2", "landline", "landline2", "rank",
	"metal_number", "district", "station", "is_manual_station", "unit", "blood_group",
	"photo_url", "is_approved", "is_admin", "search_blob", "created_at", "updated_at",
}

var officerCols = []string{
	"agid", "name", "email", "rank", "mobile", "landline", "station", "district",
	"unit", "photo_url", "blood_group", "is_hidden", "search_blob",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *DirectoryRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewDirectoryRepository(db, logger)

	return db, mock, repo
}

func TestListEmployees_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(employeeCols).
		AddRow("1001", "Ravi Kumar", "ravi@ksp.gov.in", "9845012345", "", "", "", "PSI",
			"MN-7", "Mysuru", "Lashkar PS", false, "", "O+", "", true, false,
			"ravi kumar 1001 psi lashkar ps mysuru 9845012345 mn-7 o+", now, now).
		AddRow("1002", "Suma", "suma@ksp.gov.in", "", "", "", "", "PC",
			"", "Mandya", "Old Outpost", true, "Traffic", "", "", false, false,
			"suma 1002 pc old outpost mandya traffic", now, now)

	mock.ExpectQuery(`FROM employees`).WillReturnRows(rows)

	employees, err := repo.ListEmployees(context.Background())

	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Ravi Kumar", employees[0].Name)
	assert.True(t, employees[0].IsApproved)
	assert.Equal(t, now, employees[0].CreatedAt)
	assert.True(t, employees[1].IsManualStation)
	assert.Equal(t, "Traffic", employees[1].Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEmployee_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE kgid = \$1`).
		WithArgs("404").
		WillReturnRows(sqlmock.NewRows(employeeCols))

	_, err := repo.GetEmployee(context.Background(), "404")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmployee_StampsSearchBlob(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	e := &models.Employee{
		KGID:       "12345",
		Name:       "Ravi  Kumar",
		Email:      "ravi@ksp.gov.in",
		Rank:       "PSI",
		SearchBlob: "stale",
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs("12345", "Ravi  Kumar", "ravi@ksp.gov.in", "", "", "", "", "PSI",
			"", "", "", false, "", "", "", false, false, "ravi kumar 12345 psi").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := repo.UpsertEmployee(context.Background(), e)

	require.NoError(t, err)
	assert.Equal(t, "ravi kumar 12345 psi", e.SearchBlob)
	assert.Equal(t, now, e.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEmployee_DuplicateEmail(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO employees`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "employees_email_key"})

	err := repo.UpsertEmployee(context.Background(), &models.Employee{KGID: "1", Email: "dup@ksp.gov.in"})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "employees_email_key")
}

func TestSetApproved(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE employees`).
		WithArgs("1001", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE employees`).
		WithArgs("missing", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetApproved(context.Background(), "1001", true))
	assert.ErrorIs(t, repo.SetApproved(context.Background(), "missing", true), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmployee(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM employees`).
		WithArgs("1001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteEmployee(context.Background(), "1001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOfficers_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows(officerCols).
		AddRow("A1", "Alok", "", "IGP", "9900011122", "", "", "Bengaluru -CR", "CID", "", "", true, "alok a1 igp")

	mock.ExpectQuery(`FROM officers`).WillReturnRows(rows)

	officers, err := repo.ListOfficers(context.Background())

	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, "CID", officers[0].Unit)
	assert.True(t, officers[0].IsHidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceOfficers_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	officers := []models.Officer{
		{AGID: "A1", Name: "Alok", Rank: "IGP"},
		{AGID: "A2", Name: "Bhaskar", Rank: "SP"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO officers`).
		WithArgs("A1", "Alok", "", "IGP", "", "", "", "", "", "", "", false, "alok a1 igp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO officers`).
		WithArgs("A2", "Bhaskar", "", "SP", "", "", "", "", "", "", "", false, "bhaskar a2 sp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM officers`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.ReplaceOfficers(context.Background(), officers)

	require.NoError(t, err)
	assert.Equal(t, "bhaskar a2 sp", officers[1].SearchBlob)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceOfficers_RollsBackOnError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO officers`).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.ReplaceOfficers(context.Background(), []models.Officer{{AGID: "A1", Name: "Alok"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "A1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstringSearch_EscapesPattern(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM employees\s+WHERE search_blob ILIKE \$1`).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(employeeCols))
	mock.ExpectQuery(`FROM officers\s+WHERE search_blob ILIKE \$1`).
		WithArgs(`%50\%\_off%`).
		WillReturnRows(sqlmock.NewRows(officerCols))

	employees, officers, err := repo.SubstringSearch(context.Background(), "  50%_OFF ")

	require.NoError(t, err)
	assert.Empty(t, employees)
	assert.Empty(t, officers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
