// Package selection drives the guided institution, sub-unit and
// department picking flow that precedes free-text chat.
package selection

import (
	"context"
	"fmt"

	"github.com/nbenali/campusbot-go/internal/directory"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/session"
)

// State is the user's position in the selection flow.
type State string

const (
	AwaitingInstitution State = "awaiting_institution"
	AwaitingSubUnit     State = "awaiting_sub_unit"
	AwaitingDepartment  State = "awaiting_department"
	Ready               State = "ready"
)

// StateOf derives the flow state from the session's bindings.
func StateOf(s *session.Session) State {
	switch {
	case s.Selection.InstitutionID == 0:
		return AwaitingInstitution
	case s.Selection.SubUnitName == "":
		return AwaitingSubUnit
	case s.Selection.DepartmentName == "":
		return AwaitingDepartment
	default:
		return Ready
	}
}

// Machine validates selection steps against the directory and records
// them in the session store. Failed steps leave the session untouched.
type Machine struct {
	dir      directory.Directory
	sessions *session.Store
}

// NewMachine creates a selection machine.
func NewMachine(dir directory.Directory, sessions *session.Store) *Machine {
	return &Machine{dir: dir, sessions: sessions}
}

// SelectInstitution binds an institution. Levels with no entries are
// skipped automatically, so an institution without sub-units lands the
// user directly in Ready.
func (m *Machine) SelectInstitution(ctx context.Context, userID string, institutionID int64) (session.Session, State, error) {
	inst, err := m.dir.Institution(ctx, institutionID)
	if err != nil {
		return m.current(userID), "", err
	}

	s := m.sessions.BindInstitution(userID, inst.ID, inst.Name)

	units, err := m.dir.SubUnits(ctx, inst.ID)
	if err != nil {
		return s, StateOf(&s), err
	}
	if len(units) == 0 {
		// No faculties to pick from, nothing narrower either
		m.sessions.BindSubUnit(userID, 0, session.NotApplicable)
		s = m.sessions.BindDepartment(userID, 0, session.NotApplicable)
	}

	return s, StateOf(&s), nil
}

// SelectSubUnit binds a sub-unit. The sub-unit must belong to the
// currently selected institution.
func (m *Machine) SelectSubUnit(ctx context.Context, userID string, subUnitID int64) (session.Session, State, error) {
	current := m.sessions.GetOrCreate(userID)
	if current.Selection.InstitutionID == 0 {
		return current, StateOf(&current), fmt.Errorf("no institution selected: %w", domerrors.ErrInvalidInput)
	}

	unit, err := m.dir.SubUnit(ctx, subUnitID)
	if err != nil {
		return current, StateOf(&current), err
	}
	if unit.InstitutionID != current.Selection.InstitutionID {
		return current, StateOf(&current), fmt.Errorf(
			"sub-unit %d does not belong to institution %d: %w",
			subUnitID, current.Selection.InstitutionID, domerrors.ErrInvalidInput)
	}

	s := m.sessions.BindSubUnit(userID, unit.ID, unit.Name)

	departments, err := m.dir.Departments(ctx, unit.ID)
	if err != nil {
		return s, StateOf(&s), err
	}
	if len(departments) == 0 {
		s = m.sessions.BindDepartment(userID, 0, session.NotApplicable)
	}

	return s, StateOf(&s), nil
}

// SelectDepartment binds a department. The department must belong to
// the currently selected sub-unit.
func (m *Machine) SelectDepartment(ctx context.Context, userID string, departmentID int64) (session.Session, State, error) {
	current := m.sessions.GetOrCreate(userID)
	if StateOf(&current) != AwaitingDepartment {
		return current, StateOf(&current), fmt.Errorf("department step not reached: %w", domerrors.ErrInvalidInput)
	}

	dept, err := m.dir.Department(ctx, departmentID)
	if err != nil {
		return current, StateOf(&current), err
	}
	if dept.SubUnitID != current.Selection.SubUnitID {
		return current, StateOf(&current), fmt.Errorf(
			"department %d does not belong to sub-unit %d: %w",
			departmentID, current.Selection.SubUnitID, domerrors.ErrInvalidInput)
	}

	s := m.sessions.BindDepartment(userID, dept.ID, dept.Name)
	return s, StateOf(&s), nil
}

// SkipDepartment marks the department level as not applicable. Only
// valid while the department step is pending.
func (m *Machine) SkipDepartment(userID string) (session.Session, State, error) {
	current := m.sessions.GetOrCreate(userID)
	if StateOf(&current) != AwaitingDepartment {
		return current, StateOf(&current), fmt.Errorf("department step not reached: %w", domerrors.ErrInvalidInput)
	}

	s := m.sessions.BindDepartment(userID, 0, session.NotApplicable)
	return s, StateOf(&s), nil
}

// Restart drops the selection and history, returning to the first step.
func (m *Machine) Restart(userID string) (session.Session, State) {
	s := m.sessions.Reset(userID)
	return s, StateOf(&s)
}

func (m *Machine) current(userID string) session.Session {
	return m.sessions.GetOrCreate(userID)
}
