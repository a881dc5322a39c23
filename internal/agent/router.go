package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kaiwa/internal/career"
	"github.com/hyperjump/kaiwa/internal/llm"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/retrieval"
	"github.com/hyperjump/kaiwa/internal/session"
	"github.com/hyperjump/kaiwa/internal/storage"
	"github.com/hyperjump/kaiwa/pkg/utils"
)

// TurnResult is what a completed turn hands back to the caller.
type TurnResult struct {
	SessionID    string
	Reply        string
	Alternatives []string
}

// Router runs one turn at a time per session: the supervisor classifies the
// message, exactly one node handles it, and the turn terminates with a
// reply. A failed node substitutes a safe default reply; it never fails
// the turn.
type Router struct {
	classifier llm.Generator
	generator  llm.Generator
	engine     *retrieval.Engine
	sessions   *session.Store
	careers    career.Source
	archive    *storage.TranscriptStore
	timeout    time.Duration
	logger     *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithLogger sets the logger for the router.
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithCareerSource enables the career node against the given listing source.
func WithCareerSource(source career.Source) RouterOption {
	return func(r *Router) {
		r.careers = source
	}
}

// WithArchive enables best-effort transcript archival.
func WithArchive(archive *storage.TranscriptStore) RouterOption {
	return func(r *Router) {
		r.archive = archive
	}
}

// WithCallTimeout bounds each external call made during a turn.
func WithCallTimeout(timeout time.Duration) RouterOption {
	return func(r *Router) {
		r.timeout = timeout
	}
}

func NewRouter(classifier, generator llm.Generator, engine *retrieval.Engine, sessions *session.Store, opts ...RouterOption) *Router {
	r := &Router{
		classifier: classifier,
		generator:  generator,
		engine:     engine,
		sessions:   sessions,
		timeout:    30 * time.Second,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Turn handles one user message for a session and returns the reply. An
// empty session id starts a new session; the minted id is returned in the
// result. Turns for the same session are serialized by the session store.
func (r *Router) Turn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, errors.New("empty message")
	}

	sess, release := r.sessions.Acquire(sessionID)
	defer release()

	sess.Append(models.RoleUser, text)

	intent := r.classify(ctx, sess, text)
	r.logger.Debug("turn classified",
		zap.String("session_id", sess.ID),
		zap.String("intent", intent.String()),
		zap.String("message", utils.Truncate(text, 80)))

	var reply string
	switch intent {
	case IntentIntroducing:
		reply = r.runIntroduction(ctx, sess, text)
	case IntentAnswering:
		reply = r.runRetrieval(ctx, sess, text)
	case IntentCareer:
		reply = r.runCareer(ctx, sess, text)
	default:
		reply = outOfScopeReply
	}

	sess.Append(models.RoleAssistant, reply)
	r.archiveTurn(ctx, sess, text, reply)

	// The session's pending options ride along with every reply until the
	// next retrieval replaces them.
	return TurnResult{SessionID: sess.ID, Reply: reply, Alternatives: sess.LastOptions}, nil
}

// classify asks the supervisor capability for the message intent. Any
// failure or unexpected output fails closed to IntentOther.
func (r *Router) classify(ctx context.Context, sess *session.Session, text string) Intent {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(supervisorPrompt, sess.Name, sess.Email, text)
	raw, err := r.classifier.Generate(tctx, []models.Message{{Role: models.RoleUser, Text: prompt}})
	if err != nil {
		r.logger.Warn("intent classification failed", zap.Error(err))
		return IntentOther
	}
	return ParseIntent(raw)
}

// runIntroduction extracts name/email from the message, merges them into the
// session, and produces a greeting.
func (r *Router) runIntroduction(ctx context.Context, sess *session.Session, text string) string {
	name, email := r.extractAttributes(ctx, text)
	sess.MergeAttributes(name, email)

	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(introductionPrompt, sess.Name, sess.Email)
	reply, err := r.generator.Generate(tctx, append(
		[]models.Message{{Role: models.RoleSystem, Text: prompt}}, sess.History...))
	if err != nil {
		r.logger.Warn("introduction reply failed", zap.Error(err))
		return introFallbackReply
	}
	return reply
}

func (r *Router) extractAttributes(ctx context.Context, text string) (name, email string) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.classifier.Generate(tctx, []models.Message{
		{Role: models.RoleUser, Text: fmt.Sprintf(extractAttributesPrompt, text)},
	})
	if err != nil {
		// A failed extraction is a null extraction, not a failed turn.
		r.logger.Warn("attribute extraction failed", zap.Error(err))
		return "", ""
	}

	var parsed struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := parseJSONObject(raw, &parsed); err != nil {
		r.logger.Warn("attribute extraction unparseable", zap.String("raw", raw))
		return "", ""
	}
	return strings.TrimSpace(parsed.Name), strings.TrimSpace(parsed.Email)
}

// runRetrieval answers from the corpus when confident, otherwise falls
// through to the generative path. The retrieval outcome is recorded on the
// session; a failed retrieval leaves the previous outcome in place.
func (r *Router) runRetrieval(ctx context.Context, sess *session.Session, text string) string {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.engine.Retrieve(tctx, text)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			// No corpus loaded: every question escalates.
			return r.generateAnswer(ctx, sess)
		}
		r.logger.Warn("retrieval failed", zap.Error(err))
		return defaultReply
	}

	sess.LastScore = res.TopScore
	sess.LastOptions = res.Alternatives

	if res.Decision == retrieval.DirectAnswer {
		return res.Answer
	}
	return r.generateAnswer(ctx, sess)
}

// generateAnswer invokes the generative capability with the conversation so
// far. On failure the user gets the escalation notice instead of an error.
func (r *Router) generateAnswer(ctx context.Context, sess *session.Session) string {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	reply, err := r.generator.Generate(tctx, append(
		[]models.Message{{Role: models.RoleSystem, Text: fallbackPrompt}}, sess.History...))
	if err != nil {
		r.logger.Warn("generative answer failed", zap.Error(err))
		return escalateNoticeReply
	}
	return reply
}

// runCareer extracts job-search parameters, fetches current listings, and
// replies with the matching openings.
func (r *Router) runCareer(ctx context.Context, sess *session.Session, text string) string {
	if r.careers == nil {
		return listingsDownReply
	}

	jobType, location := r.extractJobParams(ctx, text)

	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	listings, err := r.careers.Listings(tctx)
	if err != nil {
		r.logger.Warn("listing fetch failed", zap.Error(err))
		return listingsDownReply
	}
	return career.Format(career.Filter(listings, jobType, location))
}

func (r *Router) extractJobParams(ctx context.Context, text string) (jobType, location string) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.classifier.Generate(tctx, []models.Message{
		{Role: models.RoleUser, Text: fmt.Sprintf(extractJobParamsPrompt, text)},
	})
	if err != nil {
		r.logger.Warn("job parameter extraction failed", zap.Error(err))
		return "", ""
	}

	var parsed struct {
		JobRole  string `json:"jobrole"`
		Location string `json:"location"`
	}
	if err := parseJSONObject(raw, &parsed); err != nil {
		r.logger.Warn("job parameter extraction unparseable", zap.String("raw", raw))
		return "", ""
	}
	return strings.TrimSpace(parsed.JobRole), strings.TrimSpace(parsed.Location)
}

// archiveTurn records the turn in the transcript archive. Archival is
// best-effort: a failed write is logged, never surfaced.
func (r *Router) archiveTurn(ctx context.Context, sess *session.Session, userText, reply string) {
	if r.archive == nil {
		return
	}
	if err := r.archive.RecordTurn(ctx, sess.ID, sess.Name, sess.Email, userText, reply); err != nil {
		r.logger.Warn("transcript archival failed",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// parseJSONObject decodes the first JSON object found in raw. Model output
// often wraps JSON in code fences or prose, so everything outside the
// outermost braces is ignored.
func parseJSONObject(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in %q", raw)
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v)
}
