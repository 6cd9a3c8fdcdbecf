package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pmd-directory/internal/models"
	"pmd-directory/internal/searchkey"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("repository: record not found")
	ErrDuplicate = errors.New("repository: duplicate record")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

const employeeColumns = `
	kgid,
	name,
	email,
	COALESCE(mobile1, ''),
	COALESCE(mobile2, ''),
	COALESCE(landline, ''),
	COALESCE(landline2, ''),
	COALESCE(rank, ''),
	COALESCE(metal_number, ''),
	COALESCE(district, ''),
	COALESCE(station, ''),
	is_manual_station,
	COALESCE(unit, ''),
	COALESCE(blood_group, ''),
	COALESCE(photo_url, ''),
	is_approved,
	is_admin,
	search_blob,
	created_at,
	updated_at`

const officerColumns = `
	agid,
	name,
	COALESCE(email, ''),
	COALESCE(rank, ''),
	COALESCE(mobile, ''),
	COALESCE(landline, ''),
	COALESCE(station, ''),
	COALESCE(district, ''),
	COALESCE(unit, ''),
	COALESCE(photo_url, ''),
	COALESCE(blood_group, ''),
	is_hidden,
	search_blob`

// DirectoryRepository 员工/官员表的读写（search_blob 在写入前统一生成）
type DirectoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *sql.DB, logger *zap.Logger) *DirectoryRepository {
	return &DirectoryRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s rowScanner) (models.Employee, error) {
	var e models.Employee
	err := s.Scan(
		&e.KGID,
		&e.Name,
		&e.Email,
		&e.Mobile1,
		&e.Mobile2,
		&e.Landline,
		&e.Landline2,
		&e.Rank,
		&e.MetalNumber,
		&e.District,
		&e.Station,
		&e.IsManualStation,
		&e.Unit,
		&e.BloodGroup,
		&e.PhotoURL,
		&e.IsApproved,
		&e.IsAdmin,
		&e.SearchBlob,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func scanOfficer(s rowScanner) (models.Officer, error) {
	var o models.Officer
	err := s.Scan(
		&o.AGID,
		&o.Name,
		&o.Email,
		&o.Rank,
		&o.Mobile,
		&o.Landline,
		&o.Station,
		&o.District,
		&o.Unit,
		&o.PhotoURL,
		&o.BloodGroup,
		&o.IsHidden,
		&o.SearchBlob,
	)
	return o, err
}

// ListEmployees returns every employee, approved or not.
func (r *DirectoryRepository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	query := `SELECT` + employeeColumns + `
		FROM employees
		ORDER BY kgid
	`
	return r.queryEmployees(ctx, query)
}

// GetEmployee gets one employee by kgid
func (r *DirectoryRepository) GetEmployee(ctx context.Context, kgid string) (*models.Employee, error) {
	query := `SELECT` + employeeColumns + `
		FROM employees
		WHERE kgid = $1
	`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, kgid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("employee %s: %w", kgid, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

// UpsertEmployee stamps the search blob and writes e. CreatedAt/UpdatedAt
// are filled from the database.
func (r *DirectoryRepository) UpsertEmployee(ctx context.Context, e *models.Employee) error {
	searchkey.StampEmployee(e)

	query := `
		INSERT INTO employees (
			kgid, name, email, mobile1, mobile2, landline, landline2, rank,
			metal_number, district, station, is_manual_station, unit,
			blood_group, photo_url, is_approved, is_admin, search_blob,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			NOW(), NOW()
		)
		ON CONFLICT (kgid) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			mobile1 = EXCLUDED.mobile1,
			mobile2 = EXCLUDED.mobile2,
			landline = EXCLUDED.landline,
			landline2 = EXCLUDED.landline2,
			rank = EXCLUDED.rank,
			metal_number = EXCLUDED.metal_number,
			district = EXCLUDED.district,
			station = EXCLUDED.station,
			is_manual_station = EXCLUDED.is_manual_station,
			unit = EXCLUDED.unit,
			blood_group = EXCLUDED.blood_group,
			photo_url = EXCLUDED.photo_url,
			is_approved = EXCLUDED.is_approved,
			is_admin = EXCLUDED.is_admin,
			search_blob = EXCLUDED.search_blob,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.KGID,
		e.Name,
		e.Email,
		e.Mobile1,
		e.Mobile2,
		e.Landline,
		e.Landline2,
		e.Rank,
		e.MetalNumber,
		e.District,
		e.Station,
		e.IsManualStation,
		e.Unit,
		e.BloodGroup,
		e.PhotoURL,
		e.IsApproved,
		e.IsAdmin,
		e.SearchBlob,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return wrapWriteErr("upsert employee", err)
	}
	return nil
}

// SetApproved flips the approval flag of one employee.
func (r *DirectoryRepository) SetApproved(ctx context.Context, kgid string, approved bool) error {
	query := `
		UPDATE employees
		SET is_approved = $2, updated_at = NOW()
		WHERE kgid = $1
	`
	res, err := r.db.ExecContext(ctx, query, kgid, approved)
	if err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}
	return expectOneRow(res, "employee "+kgid)
}

// DeleteEmployee removes one employee.
func (r *DirectoryRepository) DeleteEmployee(ctx context.Context, kgid string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE kgid = $1`, kgid)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return expectOneRow(res, "employee "+kgid)
}

// ListOfficers returns every officer, hidden or not.
func (r *DirectoryRepository) ListOfficers(ctx context.Context) ([]models.Officer, error) {
	query := `SELECT` + officerColumns + `
		FROM officers
		ORDER BY agid
	`
	return r.queryOfficers(ctx, query)
}

const upsertOfficerSQL = `
	INSERT INTO officers (
		agid, name, email, rank, mobile, landline, station, district, unit,
		photo_url, blood_group, is_hidden, search_blob
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (agid) DO UPDATE SET
		name = EXCLUDED.name,
		email = EXCLUDED.email,
		rank = EXCLUDED.rank,
		mobile = EXCLUDED.mobile,
		landline = EXCLUDED.landline,
		station = EXCLUDED.station,
		district = EXCLUDED.district,
		unit = EXCLUDED.unit,
		photo_url = EXCLUDED.photo_url,
		blood_group = EXCLUDED.blood_group,
		is_hidden = EXCLUDED.is_hidden,
		search_blob = EXCLUDED.search_blob
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertOfficer(ctx context.Context, ex execer, o *models.Officer) error {
	searchkey.StampOfficer(o)
	_, err := ex.ExecContext(ctx, upsertOfficerSQL,
		o.AGID,
		o.Name,
		o.Email,
		o.Rank,
		o.Mobile,
		o.Landline,
		o.Station,
		o.District,
		o.Unit,
		o.PhotoURL,
		o.BloodGroup,
		o.IsHidden,
		o.SearchBlob,
	)
	return err
}

// UpsertOfficer stamps the search blob and writes o.
func (r *DirectoryRepository) UpsertOfficer(ctx context.Context, o *models.Officer) error {
	if err := upsertOfficer(ctx, r.db, o); err != nil {
		return wrapWriteErr("upsert officer", err)
	}
	return nil
}

// ReplaceOfficers makes officers the complete officer set in one
// transaction: every row is upserted, agids not in the set are deleted.
func (r *DirectoryRepository) ReplaceOfficers(ctx context.Context, officers []models.Officer) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	agids := make([]string, 0, len(officers))
	for i := range officers {
		if err = upsertOfficer(ctx, tx, &officers[i]); err != nil {
			return wrapWriteErr("upsert officer "+officers[i].AGID, err)
		}
		agids = append(agids, officers[i].AGID)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM officers WHERE NOT (agid = ANY($1))`, pq.Array(agids))
	if err != nil {
		return fmt.Errorf("failed to delete stale officers: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit officers: %w", err)
	}

	removed, _ := res.RowsAffected()
	r.logger.Info("Officers replaced",
		zap.Int("upserted", len(officers)),
		zap.Int64("removed", removed),
	)
	return nil
}

// SubstringSearch is the indexed scan behind the in-memory matcher: every
// record whose search blob contains query (case-insensitive).
func (r *DirectoryRepository) SubstringSearch(ctx context.Context, query string) ([]models.Employee, []models.Officer, error) {
	pattern := "%" + escapeLike(searchkey.Normalize(query)) + "%"

	employees, err := r.queryEmployees(ctx, `SELECT`+employeeColumns+`
		FROM employees
		WHERE search_blob ILIKE $1
	`, pattern)
	if err != nil {
		return nil, nil, err
	}
	officers, err := r.queryOfficers(ctx, `SELECT`+officerColumns+`
		FROM officers
		WHERE search_blob ILIKE $1
	`, pattern)
	if err != nil {
		return nil, nil, err
	}
	return employees, officers, nil
}

func (r *DirectoryRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func (r *DirectoryRepository) queryOfficers(ctx context.Context, query string, args ...any) ([]models.Officer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query officers: %w", err)
	}
	defer rows.Close()

	officers := []models.Officer{}
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		officers = append(officers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate officers: %w", err)
	}
	return officers, nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func wrapWriteErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %s: %w", op, pqErr.Constraint, ErrDuplicate)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
