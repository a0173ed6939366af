package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corralon_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a finalized quote header
type Quote struct {
	ID             uuid.UUID `db:"id"`
	Number         string    `db:"number"`
	ConversationID string    `db:"conversation_id"`
	ListCents      int64     `db:"list_cents"`
	CashCents      int64     `db:"cash_cents"`
	TransferCents  int64     `db:"transfer_cents"`
	NotFound       []string  `db:"not_found"`
	PDFKey         *string   `db:"pdf_key"`
	ValidUntil     time.Time `db:"valid_until"`
	CreatedAt      time.Time `db:"created_at"`
}

// QuoteLine is the database model for one quoted line
type QuoteLine struct {
	QuoteID       uuid.UUID `db:"quote_id"`
	Position      int       `db:"position"`
	ItemID        string    `db:"item_id"`
	VariantID     string    `db:"variant_id"`
	Title         string    `db:"title"`
	Qty           float64   `db:"qty"`
	ListCents     int64     `db:"list_cents"`
	CashCents     int64     `db:"cash_cents"`
	TransferCents int64     `db:"transfer_cents"`
}

// ListParams contains parameters for listing quotes
type ListParams struct {
	ConversationID string
	Page           int
	PageSize       int
}

// ListResult contains the paginated result of listing quotes
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `id, number, conversation_id, list_cents, cash_cents, transfer_cents,
			not_found, pdf_key, valid_until, created_at`

// Repository provides database operations for quotes
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithLines inserts a quote and its lines in a single transaction
func (r *Repository) CreateWithLines(ctx context.Context, quote *Quote, lines []QuoteLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	notFound := quote.NotFound
	if notFound == nil {
		notFound = []string{}
	}

	quoteQuery := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := tx.Exec(ctx, quoteQuery,
		quote.ID, quote.Number, quote.ConversationID,
		quote.ListCents, quote.CashCents, quote.TransferCents,
		notFound, quote.PDFKey, quote.ValidUntil, quote.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO quote_lines (
				quote_id, position, item_id, variant_id, title, qty,
				list_cents, cash_cents, transfer_cents
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			quote.ID, l.Position, l.ItemID, l.VariantID, l.Title, l.Qty,
			l.ListCents, l.CashCents, l.TransferCents,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert quote lines: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByNumber retrieves a quote by its public number
func (r *Repository) GetByNumber(ctx context.Context, number string) (*Quote, error) {
	var q Quote
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE number = $1`

	err := r.pool.QueryRow(ctx, query, number).Scan(
		&q.ID, &q.Number, &q.ConversationID, &q.ListCents, &q.CashCents, &q.TransferCents,
		&q.NotFound, &q.PDFKey, &q.ValidUntil, &q.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// GetLines retrieves all lines for a quote in position order
func (r *Repository) GetLines(ctx context.Context, quoteID uuid.UUID) ([]QuoteLine, error) {
	query := `
		SELECT quote_id, position, item_id, variant_id, title, qty::float8,
			list_cents, cash_cents, transfer_cents
		FROM quote_lines WHERE quote_id = $1
		ORDER BY position ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote lines: %w", err)
	}
	defer rows.Close()

	var lines []QuoteLine
	for rows.Next() {
		var l QuoteLine
		if err := rows.Scan(
			&l.QuoteID, &l.Position, &l.ItemID, &l.VariantID, &l.Title, &l.Qty,
			&l.ListCents, &l.CashCents, &l.TransferCents,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote lines: %w", err)
	}
	return lines, nil
}

// List retrieves quotes newest first, optionally for one conversation
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var convParam interface{}
	if params.ConversationID != "" {
		convParam = params.ConversationID
	}

	baseQuery := `
		FROM quotes
		WHERE ($1::text IS NULL OR conversation_id = $1)
	`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, convParam).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+` `+baseQuery+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		convParam, params.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var items []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(
			&q.ID, &q.Number, &q.ConversationID, &q.ListCents, &q.CashCents, &q.TransferCents,
			&q.NotFound, &q.PDFKey, &q.ValidUntil, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}
