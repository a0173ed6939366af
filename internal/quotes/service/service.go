package service

import (
	"context"
	"time"

	"corralon_backend/internal/adapters/storage"
	"corralon_backend/internal/conversation"
	"corralon_backend/internal/events"
	"corralon_backend/internal/order"
	"corralon_backend/internal/pdf"
	"corralon_backend/internal/quotes/repository"
	"corralon_backend/internal/quotes/transport"
	"corralon_backend/platform/apperr"
	"corralon_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	contentTypePDF  = "application/pdf"
)

// Repository is the persistence the service needs.
type Repository interface {
	CreateWithLines(ctx context.Context, quote *repository.Quote, lines []repository.QuoteLine) error
	GetByNumber(ctx context.Context, number string) (*repository.Quote, error)
	GetLines(ctx context.Context, quoteID uuid.UUID) ([]repository.QuoteLine, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
}

// Settings are the presentation values printed on every quote.
type Settings struct {
	BusinessName string
	Discounts    order.Discounts
	Location     *time.Location
}

// Document is a rendered quote ready to be sent.
type Document struct {
	Number      string
	FileName    string
	Content     []byte
	DownloadURL string
}

// Service renders, stores and looks up finalized quotes.
type Service struct {
	repo     Repository
	store    storage.DocumentStore
	bus      events.Bus
	settings Settings
	log      *logger.Logger
	render   func(pdf.QuoteDocument) ([]byte, error)
	newID    func() uuid.UUID
}

// New wires the service. repo and store may be nil; persistence and the
// stored copy are then skipped.
func New(repo Repository, store storage.DocumentStore, bus events.Bus, settings Settings, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		bus:      bus,
		settings: settings,
		log:      log,
		render:   pdf.GenerateQuotePDF,
		newID:    uuid.New,
	}
}

// Finalize renders the quote, uploads it and persists it. Storage and
// database failures are logged and do not stop the customer from getting
// the document; only a render failure is returned.
func (s *Service) Finalize(ctx context.Context, conversationID string, q conversation.Quote) (*Document, error) {
	log := s.log.WithContext(ctx)

	doc := pdf.QuoteDocument{
		Number:          q.Number,
		BusinessName:    s.settings.BusinessName,
		CustomerID:      conversationID,
		CreatedAt:       q.CreatedAt,
		ValidUntil:      q.ValidUntil,
		Items:           q.Items,
		Totals:          q.Totals,
		NotFound:        q.NotFound,
		CashPercent:     s.settings.Discounts.Cash,
		TransferPercent: s.settings.Discounts.Transfer,
		Location:        s.settings.Location,
	}

	var key string
	if s.store != nil {
		key = storage.QuoteKey(q.Number, q.CreatedAt)
		if link, err := s.store.DownloadURL(ctx, key); err == nil {
			doc.DownloadURL = link.URL
		} else {
			log.Warn("quote download link unavailable", "number", q.Number, "error", err)
		}
	}

	content, err := s.render(doc)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "quote rendering failed", err).WithOp("quotes.Finalize")
	}

	var pdfKey *string
	if key != "" {
		if _, err := s.store.Upload(ctx, key, contentTypePDF, content); err != nil {
			log.CollaboratorFailure("object-storage", err)
			doc.DownloadURL = ""
			if content, err = s.render(doc); err != nil {
				return nil, apperr.Wrap(apperr.KindInternal, "quote rendering failed", err).WithOp("quotes.Finalize")
			}
		} else {
			pdfKey = &key
		}
	}

	if s.repo != nil {
		header, lines := s.toRecords(conversationID, q, pdfKey)
		if err := s.repo.CreateWithLines(ctx, header, lines); err != nil {
			log.DatabaseError("quotes.CreateWithLines", err)
		}
	}

	return &Document{
		Number:      q.Number,
		FileName:    doc.FileName(),
		Content:     content,
		DownloadURL: doc.DownloadURL,
	}, nil
}

// Delivered publishes QuoteFinalized once the document reached the customer.
func (s *Service) Delivered(ctx context.Context, conversationID string, q conversation.Quote, doc *Document) {
	if s.bus == nil {
		return
	}
	e := events.QuoteFinalized{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		Number:         q.Number,
		Lines:          len(q.Items),
		ListCents:      q.Totals.List,
		CashCents:      q.Totals.Cash,
		TransferCents:  q.Totals.Transfer,
		NotFound:       q.NotFound,
		ValidUntil:     q.ValidUntil,
	}
	if doc != nil {
		e.DownloadURL = doc.DownloadURL
	}
	s.bus.Publish(ctx, e)
}

// GetByNumber returns a stored quote with its lines and a fresh download link.
func (s *Service) GetByNumber(ctx context.Context, number string) (*transport.QuoteResponse, error) {
	if s.repo == nil {
		return nil, apperr.NotFound("quote storage is not configured")
	}
	q, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	resp := toResponse(*q)
	resp.Lines = make([]transport.QuoteLineResponse, 0, len(lines))
	for _, l := range lines {
		resp.Lines = append(resp.Lines, transport.QuoteLineResponse{
			Position:      l.Position,
			ItemID:        l.ItemID,
			VariantID:     l.VariantID,
			Title:         l.Title,
			Qty:           l.Qty,
			ListCents:     l.ListCents,
			CashCents:     l.CashCents,
			TransferCents: l.TransferCents,
		})
	}

	if q.PDFKey != nil && s.store != nil {
		link, err := s.store.DownloadURL(ctx, *q.PDFKey)
		if err != nil {
			s.log.WithContext(ctx).Warn("quote download link unavailable", "number", number, "error", err)
		} else {
			resp.DownloadURL = link.URL
			resp.DownloadExpiry = &link.ExpiresAt
		}
	}
	return &resp, nil
}

// List returns stored quotes newest first.
func (s *Service) List(ctx context.Context, req transport.ListQuotesRequest) (*transport.QuoteListResponse, error) {
	if s.repo == nil {
		return nil, apperr.NotFound("quote storage is not configured")
	}
	page, size := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}

	res, err := s.repo.List(ctx, repository.ListParams{ConversationID: req.ConversationID, Page: page, PageSize: size})
	if err != nil {
		return nil, err
	}

	out := &transport.QuoteListResponse{
		Items:      make([]transport.QuoteResponse, 0, len(res.Items)),
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
	for _, q := range res.Items {
		out.Items = append(out.Items, toResponse(q))
	}
	return out, nil
}

func (s *Service) toRecords(conversationID string, q conversation.Quote, pdfKey *string) (*repository.Quote, []repository.QuoteLine) {
	id := s.newID()
	header := &repository.Quote{
		ID:             id,
		Number:         q.Number,
		ConversationID: conversationID,
		ListCents:      q.Totals.List,
		CashCents:      q.Totals.Cash,
		TransferCents:  q.Totals.Transfer,
		NotFound:       q.NotFound,
		PDFKey:         pdfKey,
		ValidUntil:     q.ValidUntil,
		CreatedAt:      q.CreatedAt,
	}
	lines := make([]repository.QuoteLine, 0, len(q.Items))
	for i, it := range q.Items {
		lines = append(lines, repository.QuoteLine{
			QuoteID:       id,
			Position:      i + 1,
			ItemID:        it.ItemID,
			VariantID:     it.VariantID,
			Title:         it.Title,
			Qty:           it.Qty,
			ListCents:     it.Amounts.List,
			CashCents:     it.Amounts.Cash,
			TransferCents: it.Amounts.Transfer,
		})
	}
	return header, lines
}

func toResponse(q repository.Quote) transport.QuoteResponse {
	notFound := q.NotFound
	if notFound == nil {
		notFound = []string{}
	}
	return transport.QuoteResponse{
		Number:         q.Number,
		ConversationID: q.ConversationID,
		ListCents:      q.ListCents,
		CashCents:      q.CashCents,
		TransferCents:  q.TransferCents,
		NotFound:       notFound,
		ValidUntil:     q.ValidUntil,
		CreatedAt:      q.CreatedAt,
	}
}
