package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scamtrap-lab/internal/callback"
	"scamtrap-lab/internal/domain/models"
	"scamtrap-lab/internal/domain/services/intel"
	"scamtrap-lab/internal/infrastructure/sessions"
	"scamtrap-lab/pkg/logger"
)

// ErrInvalidRequest is returned for requests missing a session id or a
// message.
var ErrInvalidRequest = errors.New("sessionId and message are required")

// ScamDetector is the external first-tier verdict provider. A nil
// verdict means no signal.
type ScamDetector interface {
	DetectScam(ctx context.Context, transcript string) *models.LLMVerdict
}

// ReplyGenerator produces the decoy reply for one turn.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, sess *models.Session, transcript string, turn int) string
}

// EventPublisher receives session lifecycle events.
type EventPublisher interface {
	SessionStarted(ctx context.Context, sess *models.Session)
	IntelExtracted(ctx context.Context, sess *models.Session, turn, newEntities int)
	ScamDetected(ctx context.Context, sess *models.Session, turn int)
	SessionClosed(ctx context.Context, sess *models.Session, turn int)
}

// ReportArchiver persists finished-session reports.
type ReportArchiver interface {
	Create(ctx context.Context, rep *models.ArchivedReport) (*models.ArchivedReport, error)
}

// Honeypot drives one full conversation turn: session state, the core
// engine, the decoy reply, and end-of-conversation reporting. It is the
// single entry point behind the analyze endpoint.
type Honeypot struct {
	engine     *Engine
	store      sessions.Store
	detector   ScamDetector
	replies    ReplyGenerator
	publisher  EventPublisher
	dispatcher *callback.Dispatcher
	archive    ReportArchiver
	logger     *logger.Logger
}

// NewHoneypot creates the honeypot service. publisher and archive may be
// nil; detector and replies must not be.
func NewHoneypot(
	engine *Engine,
	store sessions.Store,
	detector ScamDetector,
	replies ReplyGenerator,
	publisher EventPublisher,
	dispatcher *callback.Dispatcher,
	archive ReportArchiver,
	log *logger.Logger,
) *Honeypot {
	return &Honeypot{
		engine:     engine,
		store:      store,
		detector:   detector,
		replies:    replies,
		publisher:  publisher,
		dispatcher: dispatcher,
		archive:    archive,
		logger:     log.WithComponent("honeypot"),
	}
}

// Engage handles one inbound scammer turn end to end. The per-session
// store lock spans the whole load-process-save cycle, so concurrent
// requests for one session are serialized even across instances.
func (h *Honeypot) Engage(ctx context.Context, req *models.EngageRequest) (*models.EngageResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, ErrInvalidRequest
	}

	release, err := h.store.Acquire(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer release()

	sess, isNew, err := h.loadSession(ctx, req)
	if err != nil {
		return nil, err
	}

	h.appendScammerMessage(sess, req.Message)
	turn := sess.TurnCount()
	wasDetected := sess.Detection.Detected

	log := h.logger.WithSession(sess.ID)
	log.Info().Int("turn", turn).Bool("new_session", isNew).Msg("processing turn")

	var llmVerdict *models.LLMVerdict
	if !wasDetected && h.detector != nil {
		llmVerdict = h.detector.DetectScam(ctx, h.transcript(sess))
	}

	_, res := h.engine.ProcessTurn(ctx, sess, TurnInput{
		Message:    req.Message,
		Turn:       turn,
		LLMVerdict: llmVerdict,
	})

	h.publishTurnEvents(ctx, sess, turn, res, isNew, wasDetected)

	reply := h.replies.GenerateReply(ctx, sess, h.transcript(sess), turn)
	sess.Messages = append(sess.Messages, models.Message{
		Sender:    models.SenderAgent,
		Text:      reply,
		Timestamp: time.Now().UTC(),
	})

	if req.IsLastTurn {
		h.finalize(ctx, sess, turn)
	}

	if err := h.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &models.EngageResponse{Status: "success", Reply: reply}, nil
}

// Session returns the stored state for inspection endpoints.
func (h *Honeypot) Session(ctx context.Context, id string) (*models.Session, error) {
	return h.store.Get(ctx, id)
}

// ActiveSessions lists the ids of sessions still live in the store.
func (h *Honeypot) ActiveSessions(ctx context.Context) ([]string, error) {
	return h.store.List(ctx)
}

// BuildReport assembles the final intelligence report for a session.
func (h *Honeypot) BuildReport(sess *models.Session) *models.IntelligenceReport {
	return &models.IntelligenceReport{
		ReportID:              uuid.New().String(),
		SessionID:             sess.ID,
		ScamDetected:          sess.Detection.Detected,
		ScamType:              sess.ScamType,
		Confidence:            intel.Confidence(sess),
		TotalMessages:         len(sess.Messages),
		ExtractedIntelligence: sess.Intelligence.Clone(),
		AgentNotes:            intel.AgentNotes(sess),
		EngagementMetrics: models.EngagementMetrics{
			TotalMessages:   len(sess.Messages),
			DurationSeconds: time.Since(sess.CreatedAt).Seconds(),
		},
		CreatedAt: time.Now().UTC(),
	}
}

// loadSession fetches or creates the session and folds in the request's
// metadata, callback URL and any conversation history the caller
// replayed for a session this instance has not seen yet.
func (h *Honeypot) loadSession(ctx context.Context, req *models.EngageRequest) (*models.Session, bool, error) {
	sess, err := h.store.Get(ctx, req.SessionID)
	isNew := false
	if errors.Is(err, sessions.ErrNotFound) {
		sess = models.NewSession(req.SessionID)
		isNew = true
	} else if err != nil {
		return nil, false, err
	}

	if req.CallbackURL != "" {
		sess.CallbackURL = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		if sess.Metadata == nil {
			sess.Metadata = map[string]string{}
		}
		for k, v := range req.Metadata {
			sess.Metadata[k] = v
		}
	}

	if len(sess.Messages) == 0 && len(req.ConversationHistory) > 0 {
		h.rebuildHistory(sess, req)
	}

	return sess, isNew, nil
}

// rebuildHistory replays caller-supplied history into an empty session.
// The transcript sweep re-extracts everything on the next merge, so no
// separate backfill pass is needed.
func (h *Honeypot) rebuildHistory(sess *models.Session, req *models.EngageRequest) {
	for _, item := range req.ConversationHistory {
		text := strings.TrimSpace(item.Text)
		if text == "" || text == strings.TrimSpace(req.Message) {
			continue
		}
		sender := models.SenderScammer
		switch strings.ToLower(item.Sender) {
		case "agent", "bot", "honeypot", "assistant":
			sender = models.SenderAgent
		}
		sess.Messages = append(sess.Messages, models.Message{
			Sender:    sender,
			Text:      text,
			Timestamp: item.Timestamp,
		})
	}
	if n := len(sess.Messages); n > 0 {
		h.logger.WithSession(sess.ID).Debug().Int("messages", n).Msg("rebuilt session from history")
	}
}

func (h *Honeypot) appendScammerMessage(sess *models.Session, text string) {
	sess.Messages = append(sess.Messages, models.Message{
		Sender:    models.SenderScammer,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
}

// transcript renders the conversation with role labels for the model
// prompts.
func (h *Honeypot) transcript(sess *models.Session) string {
	var b strings.Builder
	for _, m := range sess.Messages {
		if m.Sender == models.SenderAgent {
			b.WriteString("victim: ")
		} else {
			b.WriteString("scammer: ")
		}
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (h *Honeypot) publishTurnEvents(ctx context.Context, sess *models.Session, turn int, res TurnResult, isNew, wasDetected bool) {
	if h.publisher == nil {
		return
	}
	if isNew {
		h.publisher.SessionStarted(ctx, sess)
	}
	if res.NewEntities > 0 {
		h.publisher.IntelExtracted(ctx, sess, turn, res.NewEntities)
	}
	if !wasDetected && sess.Detection.Detected {
		h.publisher.ScamDetected(ctx, sess, turn)
	}
}

// finalize delivers the callback and archives the report on the last
// turn. Failures are logged, never surfaced: the reply still goes out.
func (h *Honeypot) finalize(ctx context.Context, sess *models.Session, turn int) {
	log := h.logger.WithSession(sess.ID)
	report := h.BuildReport(sess)

	if h.publisher != nil {
		h.publisher.SessionClosed(ctx, sess, turn)
	}

	if h.dispatcher != nil && !sess.CallbackSent {
		if err := h.dispatcher.Send(ctx, sess.CallbackURL, report); err != nil {
			log.Error().Err(err).Msg("failed to deliver final callback")
		} else if sess.CallbackURL != "" {
			sess.CallbackSent = true
		}
	}

	if h.archive != nil {
		rep := &models.ArchivedReport{
			SessionID:     sess.ID,
			ScamDetected:  sess.Detection.Detected,
			ScamType:      sess.ScamType,
			DetectionTier: string(sess.Detection.Tier),
			Confidence:    report.Confidence,
			TotalMessages: len(sess.Messages),
			EntityCount:   sess.Intelligence.Count(),
			Intelligence:  report.ExtractedIntelligence,
			Messages:      sess.Messages,
			AgentNotes:    report.AgentNotes,
		}
		if _, err := h.archive.Create(ctx, rep); err != nil {
			log.Error().Err(err).Msg("failed to archive session report")
		}
	}
}
