// Package directory stores the catalog of institutions, their sub-units
// (faculties, schools, institutes) and departments that a student can
// pick from before chatting.
package directory

import "context"

// Institution is a university or higher-education establishment.
type Institution struct {
	ID       int64
	Name     string
	NameAr   string
	NameFr   string
	City     string
	Website  string
	Email    string
	Phone    string
	Address  string
	IsActive bool
}

// SubUnit is a faculty, school or institute within an institution.
type SubUnit struct {
	ID            int64
	InstitutionID int64
	Name          string
	NameAr        string
	NameFr        string
	IsActive      bool
}

// Department is a teaching department within a sub-unit.
type Department struct {
	ID        int64
	SubUnitID int64
	Name      string
	NameAr    string
	NameFr    string
	IsActive  bool
}

// Directory provides read access to the institution catalog.
// Implementations must be safe for concurrent use.
type Directory interface {
	// Institutions lists all active institutions ordered by name.
	Institutions(ctx context.Context) ([]*Institution, error)

	// Institution returns one institution by ID.
	// Returns errors.ErrNotFound when the ID is unknown or inactive.
	Institution(ctx context.Context, id int64) (*Institution, error)

	// SubUnits lists the active sub-units of an institution ordered by name.
	SubUnits(ctx context.Context, institutionID int64) ([]*SubUnit, error)

	// SubUnit returns one sub-unit by ID.
	SubUnit(ctx context.Context, id int64) (*SubUnit, error)

	// Departments lists the active departments of a sub-unit ordered by name.
	Departments(ctx context.Context, subUnitID int64) ([]*Department, error)

	// Department returns one department by ID.
	Department(ctx context.Context, id int64) (*Department, error)
}
