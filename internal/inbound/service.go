// Package inbound is the delivery shell around the conversation engine. It
// turns gateway messages into text, serializes turns per conversation and
// executes the actions the engine returns.
package inbound

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/conversation"
	"corralon_backend/internal/events"
	"corralon_backend/internal/inbox"
	quotesvc "corralon_backend/internal/quotes/service"
	"corralon_backend/platform/apperr"
	"corralon_backend/platform/logger"
	"corralon_backend/platform/metrics"
	"corralon_backend/platform/phone"
	"corralon_backend/platform/sanitize"
)

// turnTimeout bounds one turn including collaborator calls.
const turnTimeout = 2 * time.Minute

// Kind is the shape of an inbound message.
type Kind string

const (
	KindText   Kind = "text"
	KindButton Kind = "button"
	KindList   Kind = "list"
	KindAudio  Kind = "audio"
	KindImage  Kind = "image"
)

// Message is one normalized inbound gateway message.
type Message struct {
	From     string
	Kind     Kind
	Text     string
	ReplyID  string
	MediaRef string
	MimeType string
}

// Resolver is the pure conversation engine.
type Resolver interface {
	ResolveTurn(state conversation.State, text string, snap *catalog.Snapshot) (conversation.State, []conversation.Action)
}

// SessionStore persists conversation state between turns.
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (conversation.State, bool, error)
	Set(ctx context.Context, conversationID string, st conversation.State) error
	Clear(ctx context.Context, conversationID string) error
}

// CatalogSource returns the current catalog snapshot.
type CatalogSource interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// Gateway sends replies and downloads inbound media.
type Gateway interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, text string, buttons []conversation.Button) error
	SendList(ctx context.Context, to string, list conversation.SendList) error
	SendFile(ctx context.Context, to, filename string, content []byte, caption string) error
	FetchMedia(ctx context.Context, ref string) ([]byte, string, error)
}

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// ImageReader reads the text of a photographed list.
type ImageReader interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// QuoteFinalizer renders, stores and records finalized quotes.
type QuoteFinalizer interface {
	Finalize(ctx context.Context, conversationID string, q conversation.Quote) (*quotesvc.Document, error)
	Delivered(ctx context.Context, conversationID string, q conversation.Quote, doc *quotesvc.Document)
}

// InsightsRecorder logs unmatched terms and unclassified messages.
type InsightsRecorder interface {
	RecordUnknown(ctx context.Context, conversationID, text string) error
	RecordNotFound(ctx context.Context, conversationID string, terms []string) error
}

// Limiter throttles a conversation.
type Limiter interface {
	Allow(key string) bool
}

// Dispatcher runs jobs one at a time per key.
type Dispatcher interface {
	Submit(key string, job inbox.Job) error
}

// Deps collects the collaborators of the service. Transcriber, Images,
// Quotes, Insights and Bus are optional.
type Deps struct {
	Engine      Resolver
	Sessions    SessionStore
	Catalog     CatalogSource
	Gateway     Gateway
	Transcriber Transcriber
	Images      ImageReader
	Quotes      QuoteFinalizer
	Insights    InsightsRecorder
	Bus         events.Bus
	Limiter     Limiter
	Dispatcher  Dispatcher
	Metrics     *metrics.Metrics
	Region      string
}

// Service handles inbound messages.
type Service struct {
	Deps
	log *logger.Logger

	// throttled holds conversations that were already told to slow down.
	throttled sync.Map
}

// New creates the inbound service.
func New(deps Deps, log *logger.Logger) *Service {
	return &Service{Deps: deps, log: log}
}

// Handle validates and enqueues a message. It returns once the message is
// queued; the turn runs on the conversation's worker.
func (s *Service) Handle(ctx context.Context, msg Message) error {
	convID := phone.ConversationID(msg.From, s.Region)
	if convID == "" {
		return apperr.Validation("sender is required").WithOp("inbound.Handle")
	}

	if s.Limiter != nil && !s.Limiter.Allow(convID) {
		s.Metrics.InboundDropped()
		s.log.RateLimitExceeded(convID, "inbound")
		if _, notified := s.throttled.LoadOrStore(convID, struct{}{}); !notified {
			return s.submit(convID, func(ctx context.Context) {
				s.sendText(ctx, convID, msgThrottled)
			})
		}
		return nil
	}
	s.throttled.Delete(convID)

	return s.submit(convID, func(ctx context.Context) {
		s.process(ctx, convID, msg)
	})
}

func (s *Service) submit(convID string, job inbox.Job) error {
	if err := s.Dispatcher.Submit(convID, job); err != nil {
		if errors.Is(err, inbox.ErrClosed) {
			return apperr.Internal("shutting down").WithOp("inbound.Handle")
		}
		return err
	}
	return nil
}

// process runs one turn for convID.
func (s *Service) process(ctx context.Context, convID string, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, turnTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, logger.ConversationIDKey, convID)
	log := s.log.WithContext(ctx)
	start := time.Now()

	text, ok := s.textFor(ctx, convID, msg)
	if !ok {
		return
	}
	text = strings.TrimSpace(sanitize.Text(text))
	if text == "" {
		return
	}

	state, _, err := s.Sessions.Get(ctx, convID)
	if err != nil {
		log.Error("failed to load session", "error", err)
		s.sendText(ctx, convID, msgTemporaryFailure)
		return
	}

	snap, err := s.Catalog.Snapshot(ctx)
	if err != nil {
		s.collaboratorFailed(ctx, "catalog", err)
		s.sendText(ctx, convID, msgCatalogUnavailable)
		return
	}

	handler := state.AwaitingKind()
	next, actions := s.Engine.ResolveTurn(state, text, snap)

	switch s.execute(ctx, convID, text, actions) {
	case outcomeClear:
		if err := s.Sessions.Clear(ctx, convID); err != nil {
			log.Error("failed to clear session", "error", err)
		}
	case outcomePersist:
		if err := s.Sessions.Set(ctx, convID, next); err != nil {
			log.Error("failed to store session", "error", err)
		}
	}

	s.Metrics.Turn(handler, time.Since(start))
	log.Debug("turn resolved", "handler", handler, "actions", len(actions), "took_ms", time.Since(start).Milliseconds())
}

// textFor converts msg into the text handed to the engine. ok is false when
// the customer was already told what went wrong.
func (s *Service) textFor(ctx context.Context, convID string, msg Message) (string, bool) {
	switch msg.Kind {
	case KindButton:
		if cmd, ok := buttonCommands[msg.ReplyID]; ok {
			return cmd, true
		}
		return firstNonEmpty(msg.ReplyID, msg.Text), true
	case KindList:
		return firstNonEmpty(msg.ReplyID, msg.Text), true
	case KindAudio:
		return s.fromMedia(ctx, convID, msg, msgTranscribing, msgAudioFailed, func(data []byte, mime string) (string, error) {
			if s.Transcriber == nil {
				return "", apperr.Collaborator("speech-to-text", errors.New("not configured"))
			}
			return s.Transcriber.Transcribe(ctx, data, mime)
		})
	case KindImage:
		text, ok := s.fromMedia(ctx, convID, msg, msgReadingImage, msgImageFailed, func(data []byte, mime string) (string, error) {
			if s.Images == nil {
				return "", apperr.Collaborator("image-text", errors.New("not configured"))
			}
			return s.Images.ExtractText(ctx, data, mime)
		})
		if ok && strings.TrimSpace(msg.Text) != "" {
			text = strings.TrimSpace(msg.Text) + "\n" + text
		}
		return text, ok
	default:
		return msg.Text, true
	}
}

func (s *Service) fromMedia(ctx context.Context, convID string, msg Message, progress, failure string, read func([]byte, string) (string, error)) (string, bool) {
	s.sendText(ctx, convID, progress)

	data, mime, err := s.Gateway.FetchMedia(ctx, msg.MediaRef)
	if err != nil {
		s.collaboratorFailed(ctx, "gateway", err)
		s.sendText(ctx, convID, failure)
		return "", false
	}
	if msg.MimeType != "" {
		mime = msg.MimeType
	}

	text, err := read(data, mime)
	if err != nil || strings.TrimSpace(text) == "" {
		if err == nil {
			err = errors.New("empty text")
		}
		s.collaboratorFailed(ctx, collaboratorName(err, string(msg.Kind)), err)
		s.sendText(ctx, convID, failure)
		return "", false
	}
	return text, true
}

func (s *Service) collaboratorFailed(ctx context.Context, name string, err error) {
	s.Metrics.CollaboratorFailure(name)
	s.log.WithContext(ctx).CollaboratorFailure(name, err)
}

func collaboratorName(err error, fallback string) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Op != "" {
		return e.Op
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
