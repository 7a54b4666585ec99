// Package dialogue orchestrates free-text question answering: FAQ
// pre-filtering, knowledge retrieval, and the generative responder,
// with per-user conversation history.
package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/nbenali/campusbot-go/internal/config"
	"github.com/nbenali/campusbot-go/internal/directory"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/faq"
	"github.com/nbenali/campusbot-go/internal/genai"
	"github.com/nbenali/campusbot-go/internal/knowledge"
	"github.com/nbenali/campusbot-go/internal/lang"
	"github.com/nbenali/campusbot-go/internal/logger"
	"github.com/nbenali/campusbot-go/internal/metrics"
	"github.com/nbenali/campusbot-go/internal/ratelimit"
	"github.com/nbenali/campusbot-go/internal/sentry"
	"github.com/nbenali/campusbot-go/internal/session"
)

// Source identifies how a reply was produced.
type Source string

const (
	// SourceFAQ marks a deterministic answer from the FAQ catalog.
	SourceFAQ Source = "faq"
	// SourceGenerated marks an answer produced by the LLM responder.
	SourceGenerated Source = "generated"
	// SourceFallback marks a canned message used when no answer path
	// was available or the responder failed.
	SourceFallback Source = "fallback"
)

// Reply is the orchestrator's answer to one user message.
type Reply struct {
	Text       string
	Source     Source
	Language   lang.Language
	Confidence float64 // FAQ match confidence, 0 for generated replies
	Category   string  // FAQ category, empty for generated replies
}

// Orchestrator answers free-text messages for users whose selection is
// complete. The responder may be nil, in which case only deterministic
// FAQ answers and canned fallbacks are produced.
type Orchestrator struct {
	cfg       config.DialogueConfig
	faq       *faq.Service
	knowledge knowledge.Searcher
	responder genai.Responder
	dir       directory.Directory
	sessions  *session.Store
	limiter   *ratelimit.UserLimiter
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// New creates a dialogue orchestrator. knowledge, responder, limiter,
// and metrics may be nil; the orchestrator degrades accordingly.
func New(
	cfg config.DialogueConfig,
	faqSvc *faq.Service,
	searcher knowledge.Searcher,
	responder genai.Responder,
	dir directory.Directory,
	sessions *session.Store,
	limiter *ratelimit.UserLimiter,
	m *metrics.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		faq:       faqSvc,
		knowledge: searcher,
		responder: responder,
		dir:       dir,
		sessions:  sessions,
		limiter:   limiter,
		metrics:   m,
		log:       log.WithModule("dialogue"),
	}
}

// Handle answers one free-text message from userID.
//
// Returns ErrIncompleteSelection without touching the session when the
// user has not finished the institution/sub-unit/department selection,
// and ErrRateLimitExceeded when the per-user generative budget is
// exhausted. Otherwise both the user message and the reply are appended
// to the session history, whatever path produced the reply.
func (o *Orchestrator) Handle(ctx context.Context, userID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, domerrors.ErrInvalidInput
	}

	s := o.sessions.GetOrCreate(userID)
	if !s.IsSelectionComplete() {
		return Reply{}, domerrors.ErrIncompleteSelection
	}

	language := lang.Detect(text)
	inst := o.lookupInstitution(ctx, s.Selection.InstitutionID)

	// Deterministic FAQ answers short-circuit generation when confident
	// enough. A weaker match is kept as grounding for the responder.
	var faqResult faq.Result
	if o.cfg.FAQPrefilter {
		faqResult = o.faq.Search(text, inst)
		if faqResult.Found && faqResult.Confidence >= o.cfg.FAQPrefilterMinConfidence {
			o.recordFAQMatch(faqResult.Category, "hit")
			return o.reply(userID, text, Reply{
				Text:       faqResult.Answer,
				Source:     SourceFAQ,
				Language:   language,
				Confidence: faqResult.Confidence,
				Category:   faqResult.Category,
			}), nil
		}
		if faqResult.Found {
			o.recordFAQMatch(faqResult.Category, "deferred")
		}
	}

	if o.responder == nil {
		// No LLM configured. Serve the FAQ match even below the
		// prefilter bar rather than a canned apology.
		if faqResult.Found {
			return o.reply(userID, text, Reply{
				Text:       faqResult.Answer,
				Source:     SourceFAQ,
				Language:   language,
				Confidence: faqResult.Confidence,
				Category:   faqResult.Category,
			}), nil
		}
		return o.reply(userID, text, Reply{
			Text:     noAnswerMessage[language],
			Source:   SourceFallback,
			Language: language,
		}), nil
	}

	// The token bucket guards LLM spend only. Deterministic FAQ answers
	// above are never throttled.
	if o.limiter != nil && !o.limiter.Allow(userID) {
		o.log.Warn("user rate limit exceeded", "user_id", userID)
		return Reply{}, domerrors.ErrRateLimitExceeded
	}

	knowledgeCtx := o.buildKnowledgeContext(ctx, text, s.Selection.InstitutionID)

	answer, err := o.responder.Generate(ctx, genai.Request{
		Message:            text,
		History:            s.History,
		Language:           language,
		InstitutionContext: o.institutionContext(ctx, &s.Selection),
		KnowledgeContext:   knowledgeCtx,
	})
	if err != nil {
		o.log.WithError(err).Error("generative reply failed",
			"user_id", userID,
			"language", string(language))
		sentry.CaptureExceptionWithContext(ctx, fmt.Errorf("generative reply failed: %w", err))
		return o.reply(userID, text, Reply{
			Text:     apologyMessage[language],
			Source:   SourceFallback,
			Language: language,
		}), nil
	}

	return o.reply(userID, text, Reply{
		Text:     answer,
		Source:   SourceGenerated,
		Language: language,
	}), nil
}

// reply records the exchange in the session history and returns r.
func (o *Orchestrator) reply(userID, question string, r Reply) Reply {
	o.sessions.AppendTurn(userID, session.RoleUser, question)
	o.sessions.AppendTurn(userID, session.RoleAssistant, r.Text)
	return r
}

// lookupInstitution resolves the selected institution for placeholder
// filling. Lookup failures degrade to generic contact details.
func (o *Orchestrator) lookupInstitution(ctx context.Context, id int64) *directory.Institution {
	if o.dir == nil || id == 0 {
		return nil
	}
	inst, err := o.dir.Institution(ctx, id)
	if err != nil {
		o.log.WithError(err).Warn("institution lookup failed", "institution_id", id)
		return nil
	}
	return inst
}

// buildKnowledgeContext retrieves grounding snippets and formats them
// as a numbered block. Returns "" when retrieval is disabled, fails,
// or finds nothing.
func (o *Orchestrator) buildKnowledgeContext(ctx context.Context, query string, institutionID int64) string {
	if o.knowledge == nil || o.cfg.KnowledgeLimit <= 0 {
		return ""
	}

	snippets, err := o.knowledge.Search(ctx, query, institutionID, o.cfg.KnowledgeLimit)
	if err != nil {
		o.log.WithError(err).Warn("knowledge search failed", "institution_id", institutionID)
		o.recordKnowledgeSearch("error")
		return ""
	}
	if len(snippets) == 0 {
		o.recordKnowledgeSearch("miss")
		return ""
	}
	o.recordKnowledgeSearch("hit")

	var b strings.Builder
	for i, sn := range snippets {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%d] %s: %s", i+1, sn.Title, truncate(sn.Content, o.cfg.SnippetMaxLen))
	}
	return b.String()
}

// institutionContext combines the user's selection with the knowledge
// service's institution summary. A failed summary lookup degrades to
// the selection alone.
func (o *Orchestrator) institutionContext(ctx context.Context, sel *session.Selection) string {
	rendered := selectionContext(sel)
	if o.knowledge == nil {
		return rendered
	}
	summary, err := o.knowledge.InstitutionContext(ctx, sel.InstitutionID)
	if err != nil {
		o.log.WithError(err).Warn("institution summary failed", "institution_id", sel.InstitutionID)
		return rendered
	}
	if summary == "" {
		return rendered
	}
	return rendered + "\n" + summary
}

// selectionContext renders the user's selection for the system prompt,
// skipping levels that do not apply.
func selectionContext(sel *session.Selection) string {
	lines := []string{"Institution: " + sel.InstitutionName}
	if sel.SubUnitName != session.NotApplicable {
		lines = append(lines, "Faculty/School: "+sel.SubUnitName)
	}
	if sel.DepartmentName != session.NotApplicable {
		lines = append(lines, "Department: "+sel.DepartmentName)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most max runes, marking the cut.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func (o *Orchestrator) recordFAQMatch(category, outcome string) {
	if o.metrics != nil {
		o.metrics.RecordFAQMatch(category, outcome)
	}
}

func (o *Orchestrator) recordKnowledgeSearch(status string) {
	if o.metrics != nil {
		o.metrics.RecordKnowledgeSearch(status)
	}
}
