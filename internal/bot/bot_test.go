package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/nbenali/campusbot-go/internal/config"
	"github.com/nbenali/campusbot-go/internal/dialogue"
	"github.com/nbenali/campusbot-go/internal/directory"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/faq"
	"github.com/nbenali/campusbot-go/internal/logger"
	"github.com/nbenali/campusbot-go/internal/selection"
	"github.com/nbenali/campusbot-go/internal/session"
)

// fakeDirectory serves a small two-level campus tree from memory.
type fakeDirectory struct {
	institutions []*directory.Institution
	subUnits     map[int64][]*directory.SubUnit
	departments  map[int64][]*directory.Department
}

func (d *fakeDirectory) Institutions(context.Context) ([]*directory.Institution, error) {
	return d.institutions, nil
}

func (d *fakeDirectory) Institution(_ context.Context, id int64) (*directory.Institution, error) {
	for _, inst := range d.institutions {
		if inst.ID == id {
			return inst, nil
		}
	}
	return nil, domerrors.ErrNotFound
}

func (d *fakeDirectory) SubUnits(_ context.Context, institutionID int64) ([]*directory.SubUnit, error) {
	return d.subUnits[institutionID], nil
}

func (d *fakeDirectory) SubUnit(_ context.Context, id int64) (*directory.SubUnit, error) {
	for _, units := range d.subUnits {
		for _, unit := range units {
			if unit.ID == id {
				return unit, nil
			}
		}
	}
	return nil, domerrors.ErrNotFound
}

func (d *fakeDirectory) Departments(_ context.Context, subUnitID int64) ([]*directory.Department, error) {
	return d.departments[subUnitID], nil
}

func (d *fakeDirectory) Department(_ context.Context, id int64) (*directory.Department, error) {
	for _, depts := range d.departments {
		for _, dept := range depts {
			if dept.ID == id {
				return dept, nil
			}
		}
	}
	return nil, domerrors.ErrNotFound
}

func newTestProcessor(t *testing.T) (*Processor, *session.Store) {
	t.Helper()

	dir := &fakeDirectory{
		institutions: []*directory.Institution{
			{ID: 1, Name: "University of Batna 2", IsActive: true},
			{ID: 2, Name: "Tiny Institute", IsActive: true},
		},
		subUnits: map[int64][]*directory.SubUnit{
			1: {
				{ID: 10, InstitutionID: 1, Name: "Faculty of Technology", IsActive: true},
			},
		},
		departments: map[int64][]*directory.Department{
			10: {
				{ID: 100, SubUnitID: 10, Name: "Computer Science", IsActive: true},
			},
		},
	}

	cfg := config.DialogueConfig{
		HistoryCap:                10,
		KnowledgeLimit:            3,
		SnippetMaxLen:             300,
		FAQPrefilter:              true,
		FAQPrefilterMinConfidence: 0.55,
	}

	faqSvc, err := faq.NewService()
	if err != nil {
		t.Fatalf("load faq catalog: %v", err)
	}

	sessions := session.NewStore(cfg.HistoryCap)
	log := logger.NewWithWriter("error", io.Discard)
	machine := selection.NewMachine(dir, sessions)
	orchestrator := dialogue.New(cfg, faqSvc, nil, nil, dir, sessions, nil, nil, log)

	return NewProcessor(machine, orchestrator, dir, sessions, nil, log), sessions
}

func TestStartListsInstitutions(t *testing.T) {
	p, _ := newTestProcessor(t)

	reply, err := p.HandleCommand(context.Background(), "u1", "start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reply.Choices) != 2 {
		t.Fatalf("expected 2 institution buttons, got %d", len(reply.Choices))
	}
	if reply.Choices[0].Data != "inst_1" {
		t.Errorf("unexpected callback data: %s", reply.Choices[0].Data)
	}
	if !strings.Contains(reply.Text, "Choose your institution") {
		t.Errorf("prompt missing: %q", reply.Text)
	}
}

func TestUnknownCommand(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, err := p.HandleCommand(context.Background(), "u1", "frobnicate")
	if !errors.Is(err, domerrors.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestSelectionFlowThroughCallbacks(t *testing.T) {
	p, sessions := newTestProcessor(t)
	ctx := context.Background()

	reply, err := p.HandleCallback(ctx, "u1", "inst_1")
	if err != nil {
		t.Fatalf("institution step: %v", err)
	}
	if len(reply.Choices) != 1 || reply.Choices[0].Data != "unit_10" {
		t.Fatalf("expected sub-unit keyboard, got %+v", reply.Choices)
	}

	reply, err = p.HandleCallback(ctx, "u1", "unit_10")
	if err != nil {
		t.Fatalf("sub-unit step: %v", err)
	}
	// Departments plus the skip button.
	if len(reply.Choices) != 2 {
		t.Fatalf("expected department keyboard with skip, got %+v", reply.Choices)
	}
	if reply.Choices[len(reply.Choices)-1].Data != CallbackSkipDepartment {
		t.Error("last button should be the skip action")
	}

	reply, err = p.HandleCallback(ctx, "u1", "dept_100")
	if err != nil {
		t.Fatalf("department step: %v", err)
	}
	if len(reply.Choices) != 0 {
		t.Error("ready reply should carry no keyboard")
	}
	if !strings.Contains(reply.Text, "All set!") {
		t.Errorf("expected ready confirmation, got %q", reply.Text)
	}

	s := sessions.GetOrCreate("u1")
	if !s.IsSelectionComplete() {
		t.Error("selection should be complete")
	}
}

func TestZeroSubUnitInstitutionGoesStraightToReady(t *testing.T) {
	p, sessions := newTestProcessor(t)

	reply, err := p.HandleCallback(context.Background(), "u1", "inst_2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.Text, "All set!") {
		t.Errorf("expected ready confirmation, got %q", reply.Text)
	}

	s := sessions.GetOrCreate("u1")
	if s.Selection.SubUnitName != session.NotApplicable || s.Selection.DepartmentName != session.NotApplicable {
		t.Errorf("missing levels should be marked not applicable: %+v", s.Selection)
	}
}

func TestSkipDepartment(t *testing.T) {
	p, sessions := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleCallback(ctx, "u1", "inst_1"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.HandleCallback(ctx, "u1", "unit_10"); err != nil {
		t.Fatal(err)
	}

	reply, err := p.HandleCallback(ctx, "u1", CallbackSkipDepartment)
	if err != nil {
		t.Fatalf("skip step: %v", err)
	}
	if !strings.Contains(reply.Text, "All set!") {
		t.Errorf("expected ready confirmation, got %q", reply.Text)
	}

	if s := sessions.GetOrCreate("u1"); s.Selection.DepartmentName != session.NotApplicable {
		t.Errorf("skipped department should be marked not applicable, got %q", s.Selection.DepartmentName)
	}
}

func TestInvalidCallbacksGetGentleAnswer(t *testing.T) {
	p, _ := newTestProcessor(t)
	ctx := context.Background()

	for _, data := range []string{"inst_999", "unit_10", "dept_abc", "bogus"} {
		reply, err := p.HandleCallback(ctx, "u1", data)
		if err != nil {
			t.Fatalf("callback %q should not error: %v", data, err)
		}
		if reply.Text != msgInvalidAction {
			t.Errorf("callback %q: expected invalid-action message, got %q", data, reply.Text)
		}
	}
}

func TestFreeTextBeforeSelectionRepromptsWithoutRecording(t *testing.T) {
	p, sessions := newTestProcessor(t)

	reply, err := p.HandleText(context.Background(), "u1", "how do I register?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reply.Choices) == 0 {
		t.Error("reprompt should carry the institution keyboard")
	}
	if !strings.Contains(reply.Text, "Please finish selecting") {
		t.Errorf("expected selection-first message, got %q", reply.Text)
	}

	if s := sessions.GetOrCreate("u1"); len(s.History) != 0 {
		t.Errorf("rejected message must not be recorded, got %d turns", len(s.History))
	}
}

func TestFreeTextMidFlowRepromptsPendingStep(t *testing.T) {
	p, _ := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleCallback(ctx, "u1", "inst_1"); err != nil {
		t.Fatal(err)
	}

	reply, err := p.HandleText(ctx, "u1", "never mind, where is the library?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reply.Choices) != 1 || reply.Choices[0].Data != "unit_10" {
		t.Errorf("expected the sub-unit keyboard again, got %+v", reply.Choices)
	}
}

func TestFreeTextAfterSelectionAnswers(t *testing.T) {
	p, sessions := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleCallback(ctx, "u1", "inst_2"); err != nil {
		t.Fatal(err)
	}

	reply, err := p.HandleText(ctx, "u1", "Bonjour, comment s'inscrire?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text == "" {
		t.Fatal("expected an answer")
	}

	if s := sessions.GetOrCreate("u1"); len(s.History) != 2 {
		t.Errorf("expected question and answer in history, got %d turns", len(s.History))
	}
}

func TestRestartMidFlow(t *testing.T) {
	p, sessions := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleCallback(ctx, "u1", "inst_2"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.HandleText(ctx, "u1", "Bonjour, comment s'inscrire?"); err != nil {
		t.Fatal(err)
	}

	reply, err := p.HandleCommand(ctx, "u1", "restart")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reply.Choices) != 2 {
		t.Error("restart should offer the institution keyboard again")
	}

	s := sessions.GetOrCreate("u1")
	if len(s.History) != 0 {
		t.Errorf("restart should clear history, got %d turns", len(s.History))
	}
	if s.Selection.InstitutionID != 0 || s.Selection.SubUnitName != "" {
		t.Errorf("restart should clear bindings: %+v", s.Selection)
	}
	if selection.StateOf(&s) != selection.AwaitingInstitution {
		t.Errorf("expected awaiting_institution, got %s", selection.StateOf(&s))
	}
}

func TestStatusCommand(t *testing.T) {
	p, _ := newTestProcessor(t)
	ctx := context.Background()

	reply, err := p.HandleCommand(ctx, "u1", "status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.Text, "0 turns in history") {
		t.Errorf("expected empty history in status, got %q", reply.Text)
	}
}

func TestHelpCommand(t *testing.T) {
	p, _ := newTestProcessor(t)

	reply, err := p.HandleCommand(context.Background(), "u1", "help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.Text, "/restart") {
		t.Errorf("help should list commands, got %q", reply.Text)
	}
}

func TestConcurrentEventsSameUser(t *testing.T) {
	p, sessions := newTestProcessor(t)
	ctx := context.Background()

	if _, err := p.HandleCallback(ctx, "u1", "inst_2"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.HandleText(ctx, "u1", "merci beaucoup")
		}()
	}
	wg.Wait()

	// 10 exchanges of 2 turns each, capped at the history limit.
	if s := sessions.GetOrCreate("u1"); len(s.History) != 10 {
		t.Errorf("expected history at cap, got %d turns", len(s.History))
	}
}
