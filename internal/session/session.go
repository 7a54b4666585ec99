// Package session keeps per-user conversation state in memory: the
// institution/sub-unit/department the user picked and a bounded window
// of recent chat turns.
package session

import (
	"fmt"
	"sync"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role Role
	Text string
}

// NotApplicable marks a selection level that does not exist for the
// chosen institution (e.g., a school with no departments).
const NotApplicable = "N/A"

// Selection holds what the user has picked so far. Zero IDs mean
// nothing picked; a Name of NotApplicable means the level was skipped
// or does not exist.
type Selection struct {
	InstitutionID   int64
	InstitutionName string
	SubUnitID       int64
	SubUnitName     string
	DepartmentID    int64
	DepartmentName  string
}

// Session is one user's conversation state. Access it only through
// Store methods or while holding no references across calls; Store
// returns copies to keep callers race-free.
type Session struct {
	UserID    string
	Selection Selection
	History   []Turn
	UpdatedAt time.Time
}

// IsSelectionComplete reports whether the user bound an institution and
// a sub-unit. The department step is optional: free text is answered
// while the department prompt is still pending.
func (s *Session) IsSelectionComplete() bool {
	return s.Selection.InstitutionID != 0 &&
		s.Selection.SubUnitName != ""
}

// Summary renders the selection for status replies.
func (s *Session) Summary() string {
	if s.Selection.InstitutionID == 0 {
		return "no institution selected"
	}
	return fmt.Sprintf("%s / %s / %s",
		s.Selection.InstitutionName,
		orPending(s.Selection.SubUnitName),
		orPending(s.Selection.DepartmentName))
}

func orPending(name string) string {
	if name == "" {
		return "pending"
	}
	return name
}

// Store holds sessions keyed by user ID. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	historyCap int
	onUpdate   func(count int) // optional, fed to the sessions gauge
}

// NewStore creates a session store. historyCap bounds the number of
// turns kept per user; older turns are evicted first-in first-out.
func NewStore(historyCap int) *Store {
	if historyCap <= 0 {
		historyCap = 10
	}
	return &Store{
		sessions:   make(map[string]*Session),
		historyCap: historyCap,
	}
}

// OnUpdate sets a callback invoked with the session count whenever it
// changes.
func (st *Store) OnUpdate(fn func(count int)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.onUpdate = fn
}

// GetOrCreate returns a copy of the user's session, creating an empty
// one on first contact.
func (st *Store) GetOrCreate(userID string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return snapshot(st.getOrCreateLocked(userID))
}

func (st *Store) getOrCreateLocked(userID string) *Session {
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{UserID: userID, UpdatedAt: time.Now()}
		st.sessions[userID] = s
		st.notifyLocked()
	}
	return s
}

// snapshot returns a copy whose history does not alias the stored
// slice, so later appends cannot race with the caller.
func snapshot(s *Session) Session {
	out := *s
	out.History = append([]Turn(nil), s.History...)
	return out
}

// Reset discards the user's selection and history, returning the fresh
// session.
func (st *Store) Reset(userID string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := &Session{UserID: userID, UpdatedAt: time.Now()}
	st.sessions[userID] = s
	st.notifyLocked()
	return snapshot(s)
}

// BindInstitution sets the institution and clears any narrower picks,
// since sub-units belong to an institution.
func (st *Store) BindInstitution(userID string, id int64, name string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getOrCreateLocked(userID)
	s.Selection = Selection{InstitutionID: id, InstitutionName: name}
	s.UpdatedAt = time.Now()
	return snapshot(s)
}

// BindSubUnit sets the sub-unit and clears the department pick.
func (st *Store) BindSubUnit(userID string, id int64, name string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getOrCreateLocked(userID)
	s.Selection.SubUnitID = id
	s.Selection.SubUnitName = name
	s.Selection.DepartmentID = 0
	s.Selection.DepartmentName = ""
	s.UpdatedAt = time.Now()
	return snapshot(s)
}

// BindDepartment sets the department.
func (st *Store) BindDepartment(userID string, id int64, name string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getOrCreateLocked(userID)
	s.Selection.DepartmentID = id
	s.Selection.DepartmentName = name
	s.UpdatedAt = time.Now()
	return snapshot(s)
}

// AppendTurn adds a turn to the user's history, evicting the oldest
// turn once the cap is reached.
func (st *Store) AppendTurn(userID string, role Role, text string) Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := st.getOrCreateLocked(userID)
	s.History = append(s.History, Turn{Role: role, Text: text})
	if len(s.History) > st.historyCap {
		s.History = s.History[len(s.History)-st.historyCap:]
	}
	s.UpdatedAt = time.Now()
	return snapshot(s)
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) notifyLocked() {
	if st.onUpdate != nil {
		st.onUpdate(len(st.sessions))
	}
}
