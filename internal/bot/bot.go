// Package bot dispatches inbound chat events (commands, keyboard
// callbacks, free text) to the selection state machine and the dialogue
// orchestrator, independent of the transport delivering them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nbenali/campusbot-go/internal/ctxutil"
	"github.com/nbenali/campusbot-go/internal/dialogue"
	"github.com/nbenali/campusbot-go/internal/directory"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/logger"
	"github.com/nbenali/campusbot-go/internal/metrics"
	"github.com/nbenali/campusbot-go/internal/selection"
	"github.com/nbenali/campusbot-go/internal/session"
)

// Callback data prefixes for inline keyboard buttons.
const (
	CallbackInstitutionPrefix = "inst_"
	CallbackSubUnitPrefix     = "unit_"
	CallbackDepartmentPrefix  = "dept_"
	CallbackSkipDepartment    = "skip_dept"
)

// Commands understood by the dispatcher, without the leading slash.
const (
	CommandStart   = "start"
	CommandHelp    = "help"
	CommandStatus  = "status"
	CommandRestart = "restart"
)

// Choice is one inline keyboard button.
type Choice struct {
	Label string
	Data  string
}

// Reply is the dispatcher's answer to one event. A Reply with empty
// Text means the event should be ignored silently.
type Reply struct {
	Text    string
	Choices []Choice
}

// Processor routes events for the transport adapter. Events from the
// same user are serialized so session mutations never interleave.
type Processor struct {
	machine  *selection.Machine
	dialogue *dialogue.Orchestrator
	dir      directory.Directory
	sessions *session.Store
	log      *logger.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	userMus map[string]*sync.Mutex
}

// NewProcessor creates the event dispatcher. metrics may be nil.
func NewProcessor(
	machine *selection.Machine,
	orchestrator *dialogue.Orchestrator,
	dir directory.Directory,
	sessions *session.Store,
	m *metrics.Metrics,
	log *logger.Logger,
) *Processor {
	return &Processor{
		machine:  machine,
		dialogue: orchestrator,
		dir:      dir,
		sessions: sessions,
		log:      log.WithModule("bot"),
		metrics:  m,
		userMus:  map[string]*sync.Mutex{},
	}
}

// lockUser serializes event handling per user.
func (p *Processor) lockUser(userID string) func() {
	p.mu.Lock()
	mu, ok := p.userMus[userID]
	if !ok {
		mu = &sync.Mutex{}
		p.userMus[userID] = mu
	}
	p.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (p *Processor) withTracing(ctx context.Context, userID string) context.Context {
	ctx = ctxutil.WithRequestID(ctx, uuid.NewString())
	return ctxutil.WithUserID(ctx, userID)
}

func (p *Processor) recordEvent(kind, status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordEvent(kind, status, time.Since(start).Seconds())
	}
}

// HandleCommand handles a slash command (without the leading slash).
// Unknown commands return ErrUnknownAction.
func (p *Processor) HandleCommand(ctx context.Context, userID, command string) (Reply, error) {
	ctx = p.withTracing(ctx, userID)
	unlock := p.lockUser(userID)
	defer unlock()

	start := time.Now()
	reply, err := p.handleCommand(ctx, userID, strings.ToLower(strings.TrimSpace(command)))
	p.recordEvent("command", statusOf(err), start)
	return reply, err
}

func (p *Processor) handleCommand(ctx context.Context, userID, command string) (Reply, error) {
	switch command {
	case CommandStart:
		p.sessions.GetOrCreate(userID)
		return p.institutionPrompt(ctx, msgWelcome)

	case CommandHelp:
		return Reply{Text: msgHelp}, nil

	case CommandStatus:
		s := p.sessions.GetOrCreate(userID)
		return Reply{Text: statusText(&s)}, nil

	case CommandRestart:
		p.machine.Restart(userID)
		p.log.InfoContext(ctx, "session restarted", "user_id", userID)
		return p.institutionPrompt(ctx, msgRestarted)

	default:
		return Reply{}, fmt.Errorf("command %q: %w", command, domerrors.ErrUnknownAction)
	}
}

// HandleCallback handles an inline keyboard press.
func (p *Processor) HandleCallback(ctx context.Context, userID, data string) (Reply, error) {
	ctx = p.withTracing(ctx, userID)
	unlock := p.lockUser(userID)
	defer unlock()

	start := time.Now()
	reply, err := p.handleCallback(ctx, userID, strings.TrimSpace(data))
	p.recordEvent("callback", statusOf(err), start)
	return reply, err
}

func (p *Processor) handleCallback(ctx context.Context, userID, data string) (Reply, error) {
	switch {
	case strings.HasPrefix(data, CallbackInstitutionPrefix):
		id, err := parseCallbackID(data, CallbackInstitutionPrefix)
		if err != nil {
			return Reply{Text: msgInvalidAction}, nil
		}
		s, state, err := p.machine.SelectInstitution(ctx, userID, id)
		return p.selectionReply(ctx, s, state, err)

	case strings.HasPrefix(data, CallbackSubUnitPrefix):
		id, err := parseCallbackID(data, CallbackSubUnitPrefix)
		if err != nil {
			return Reply{Text: msgInvalidAction}, nil
		}
		s, state, err := p.machine.SelectSubUnit(ctx, userID, id)
		return p.selectionReply(ctx, s, state, err)

	case strings.HasPrefix(data, CallbackDepartmentPrefix):
		id, err := parseCallbackID(data, CallbackDepartmentPrefix)
		if err != nil {
			return Reply{Text: msgInvalidAction}, nil
		}
		s, state, err := p.machine.SelectDepartment(ctx, userID, id)
		return p.selectionReply(ctx, s, state, err)

	case data == CallbackSkipDepartment:
		s, state, err := p.machine.SkipDepartment(userID)
		return p.selectionReply(ctx, s, state, err)

	default:
		p.log.WarnContext(ctx, "unknown callback data", "data", data)
		return Reply{Text: msgInvalidAction}, nil
	}
}

// selectionReply turns a state machine result into the next prompt.
func (p *Processor) selectionReply(ctx context.Context, s session.Session, state selection.State, err error) (Reply, error) {
	if err != nil {
		if errors.Is(err, domerrors.ErrNotFound) || errors.Is(err, domerrors.ErrInvalidInput) {
			p.log.WarnContext(ctx, "selection rejected", "state", string(state), "error", err)
			return Reply{Text: msgInvalidAction}, nil
		}
		return Reply{}, err
	}

	switch state {
	case selection.AwaitingSubUnit:
		return p.subUnitPrompt(ctx, s.Selection.InstitutionID)
	case selection.AwaitingDepartment:
		return p.departmentPrompt(ctx, s.Selection.SubUnitID)
	case selection.Ready:
		return Reply{Text: readyText(&s)}, nil
	default:
		return p.institutionPrompt(ctx, msgChooseInstitution)
	}
}

// HandleText handles a free-text message.
func (p *Processor) HandleText(ctx context.Context, userID, text string) (Reply, error) {
	ctx = p.withTracing(ctx, userID)
	unlock := p.lockUser(userID)
	defer unlock()

	start := time.Now()
	reply, err := p.handleText(ctx, userID, text)
	p.recordEvent("message", statusOf(err), start)
	return reply, err
}

func (p *Processor) handleText(ctx context.Context, userID, text string) (Reply, error) {
	answer, err := p.dialogue.Handle(ctx, userID, text)
	if err == nil {
		return Reply{Text: answer.Text}, nil
	}

	switch {
	case errors.Is(err, domerrors.ErrIncompleteSelection):
		return p.resumeSelection(ctx, userID)
	case errors.Is(err, domerrors.ErrRateLimitExceeded):
		return Reply{Text: msgRateLimited}, nil
	case errors.Is(err, domerrors.ErrInvalidInput):
		return Reply{}, nil // nothing to answer
	default:
		return Reply{}, err
	}
}

// resumeSelection re-prompts for whatever selection step is pending.
func (p *Processor) resumeSelection(ctx context.Context, userID string) (Reply, error) {
	s := p.sessions.GetOrCreate(userID)
	switch selection.StateOf(&s) {
	case selection.AwaitingSubUnit:
		return p.subUnitPrompt(ctx, s.Selection.InstitutionID)
	case selection.AwaitingDepartment:
		return p.departmentPrompt(ctx, s.Selection.SubUnitID)
	default:
		return p.institutionPrompt(ctx, msgSelectionFirst)
	}
}

func (p *Processor) institutionPrompt(ctx context.Context, header string) (Reply, error) {
	institutions, err := p.dir.Institutions(ctx)
	if err != nil {
		return Reply{}, domerrors.NewUpstreamError("directory", err)
	}

	choices := make([]Choice, 0, len(institutions))
	for _, inst := range institutions {
		choices = append(choices, Choice{
			Label: inst.Name,
			Data:  CallbackInstitutionPrefix + strconv.FormatInt(inst.ID, 10),
		})
	}
	return Reply{Text: header + "\n\n" + msgChooseInstitution, Choices: choices}, nil
}

func (p *Processor) subUnitPrompt(ctx context.Context, institutionID int64) (Reply, error) {
	units, err := p.dir.SubUnits(ctx, institutionID)
	if err != nil {
		return Reply{}, domerrors.NewUpstreamError("directory", err)
	}

	choices := make([]Choice, 0, len(units))
	for _, unit := range units {
		choices = append(choices, Choice{
			Label: unit.Name,
			Data:  CallbackSubUnitPrefix + strconv.FormatInt(unit.ID, 10),
		})
	}
	return Reply{Text: msgChooseSubUnit, Choices: choices}, nil
}

func (p *Processor) departmentPrompt(ctx context.Context, subUnitID int64) (Reply, error) {
	departments, err := p.dir.Departments(ctx, subUnitID)
	if err != nil {
		return Reply{}, domerrors.NewUpstreamError("directory", err)
	}

	choices := make([]Choice, 0, len(departments)+1)
	for _, dept := range departments {
		choices = append(choices, Choice{
			Label: dept.Name,
			Data:  CallbackDepartmentPrefix + strconv.FormatInt(dept.ID, 10),
		})
	}
	choices = append(choices, Choice{Label: msgSkipLabel, Data: CallbackSkipDepartment})
	return Reply{Text: msgChooseDepartment, Choices: choices}, nil
}

// parseCallbackID extracts the numeric ID after a callback prefix.
func parseCallbackID(data, prefix string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("callback data %q: %w", data, domerrors.ErrInvalidInput)
	}
	return id, nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
