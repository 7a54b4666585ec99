package directory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	domerrors "github.com/nbenali/campusbot-go/internal/errors"
)

// Store is a SQLite-backed Directory implementation.
type Store struct {
	conn *sql.DB
	path string
}

// NewStore opens (or creates) the directory database and initializes
// the schema.
func NewStore(dbPath string) (*Store, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// Enable WAL mode for better concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, path: dbPath}

	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// NewTestStore creates an in-memory store for testing.
func NewTestStore() (*Store, error) {
	return NewStore(":memory:")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Conn returns the underlying *sql.DB connection.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS institutions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_ar TEXT NOT NULL DEFAULT '',
		name_fr TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_institutions_name ON institutions(name);

	CREATE TABLE IF NOT EXISTS sub_units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		institution_id INTEGER NOT NULL REFERENCES institutions(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT NOT NULL DEFAULT '',
		name_fr TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_sub_units_institution ON sub_units(institution_id);

	CREATE TABLE IF NOT EXISTS departments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sub_unit_id INTEGER NOT NULL REFERENCES sub_units(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_ar TEXT NOT NULL DEFAULT '',
		name_fr TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_departments_sub_unit ON departments(sub_unit_id);
	`

	if _, err := s.conn.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create directory tables: %w", err)
	}
	return nil
}

// Institutions lists all active institutions ordered by name.
func (s *Store) Institutions(ctx context.Context) ([]*Institution, error) {
	query := `
		SELECT id, name, name_ar, name_fr, city, website, email, phone, address, is_active
		FROM institutions
		WHERE is_active = 1
		ORDER BY name
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query institutions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var institutions []*Institution
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, err
		}
		institutions = append(institutions, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	return institutions, nil
}

// Institution returns one active institution by ID.
func (s *Store) Institution(ctx context.Context, id int64) (*Institution, error) {
	query := `
		SELECT id, name, name_ar, name_fr, city, website, email, phone, address, is_active
		FROM institutions
		WHERE id = ? AND is_active = 1
	`

	inst, err := scanInstitution(s.conn.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("institution %d: %w", id, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query institution %d: %w", id, err)
	}
	return inst, nil
}

// SubUnits lists the active sub-units of an institution ordered by name.
func (s *Store) SubUnits(ctx context.Context, institutionID int64) ([]*SubUnit, error) {
	query := `
		SELECT id, institution_id, name, name_ar, name_fr, is_active
		FROM sub_units
		WHERE institution_id = ? AND is_active = 1
		ORDER BY name
	`

	rows, err := s.conn.QueryContext(ctx, query, institutionID)
	if err != nil {
		return nil, fmt.Errorf("query sub-units: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var units []*SubUnit
	for rows.Next() {
		var u SubUnit
		if err := rows.Scan(&u.ID, &u.InstitutionID, &u.Name, &u.NameAr, &u.NameFr, &u.IsActive); err != nil {
			return nil, fmt.Errorf("scan sub-unit: %w", err)
		}
		units = append(units, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sub-units: %w", err)
	}
	return units, nil
}

// SubUnit returns one active sub-unit by ID.
func (s *Store) SubUnit(ctx context.Context, id int64) (*SubUnit, error) {
	query := `
		SELECT id, institution_id, name, name_ar, name_fr, is_active
		FROM sub_units
		WHERE id = ? AND is_active = 1
	`

	var u SubUnit
	err := s.conn.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.InstitutionID, &u.Name, &u.NameAr, &u.NameFr, &u.IsActive)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sub-unit %d: %w", id, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query sub-unit %d: %w", id, err)
	}
	return &u, nil
}

// Departments lists the active departments of a sub-unit ordered by name.
func (s *Store) Departments(ctx context.Context, subUnitID int64) ([]*Department, error) {
	query := `
		SELECT id, sub_unit_id, name, name_ar, name_fr, is_active
		FROM departments
		WHERE sub_unit_id = ? AND is_active = 1
		ORDER BY name
	`

	rows, err := s.conn.QueryContext(ctx, query, subUnitID)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var departments []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.SubUnitID, &d.Name, &d.NameAr, &d.NameFr, &d.IsActive); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		departments = append(departments, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return departments, nil
}

// Department returns one active department by ID.
func (s *Store) Department(ctx context.Context, id int64) (*Department, error) {
	query := `
		SELECT id, sub_unit_id, name, name_ar, name_fr, is_active
		FROM departments
		WHERE id = ? AND is_active = 1
	`

	var d Department
	err := s.conn.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.SubUnitID, &d.Name, &d.NameAr, &d.NameFr, &d.IsActive)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("department %d: %w", id, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query department %d: %w", id, err)
	}
	return &d, nil
}

// SaveInstitution inserts an institution and returns its assigned ID.
// Used by the seeding tool and tests.
func (s *Store) SaveInstitution(ctx context.Context, inst *Institution) (int64, error) {
	query := `
		INSERT INTO institutions (name, name_ar, name_fr, city, website, email, phone, address, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query,
		inst.Name, inst.NameAr, inst.NameFr, inst.City,
		inst.Website, inst.Email, inst.Phone, inst.Address, boolToInt(inst.IsActive))
	if err != nil {
		return 0, fmt.Errorf("save institution: %w", err)
	}
	return res.LastInsertId()
}

// SaveSubUnit inserts a sub-unit and returns its assigned ID.
func (s *Store) SaveSubUnit(ctx context.Context, unit *SubUnit) (int64, error) {
	query := `
		INSERT INTO sub_units (institution_id, name, name_ar, name_fr, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query,
		unit.InstitutionID, unit.Name, unit.NameAr, unit.NameFr, boolToInt(unit.IsActive))
	if err != nil {
		return 0, fmt.Errorf("save sub-unit: %w", err)
	}
	return res.LastInsertId()
}

// SaveDepartment inserts a department and returns its assigned ID.
func (s *Store) SaveDepartment(ctx context.Context, dept *Department) (int64, error) {
	query := `
		INSERT INTO departments (sub_unit_id, name, name_ar, name_fr, is_active)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.conn.ExecContext(ctx, query,
		dept.SubUnitID, dept.Name, dept.NameAr, dept.NameFr, boolToInt(dept.IsActive))
	if err != nil {
		return 0, fmt.Errorf("save department: %w", err)
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstitution(row rowScanner) (*Institution, error) {
	var inst Institution
	err := row.Scan(
		&inst.ID,
		&inst.Name,
		&inst.NameAr,
		&inst.NameFr,
		&inst.City,
		&inst.Website,
		&inst.Email,
		&inst.Phone,
		&inst.Address,
		&inst.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
