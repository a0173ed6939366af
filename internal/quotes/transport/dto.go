package transport

import "time"

// ListQuotesRequest is the query string of the admin quote list.
type ListQuotesRequest struct {
	ConversationID string `form:"conversationId" validate:"omitempty,conversation_id"`
	Page           int    `form:"page" validate:"omitempty,min=1"`
	PageSize       int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// QuoteLineResponse is one quoted line.
type QuoteLineResponse struct {
	Position      int     `json:"position"`
	ItemID        string  `json:"itemId"`
	VariantID     string  `json:"variantId"`
	Title         string  `json:"title"`
	Qty           float64 `json:"qty"`
	ListCents     int64   `json:"listCents"`
	CashCents     int64   `json:"cashCents"`
	TransferCents int64   `json:"transferCents"`
}

// QuoteResponse is a stored quote.
type QuoteResponse struct {
	Number         string              `json:"number"`
	ConversationID string              `json:"conversationId"`
	ListCents      int64               `json:"listCents"`
	CashCents      int64               `json:"cashCents"`
	TransferCents  int64               `json:"transferCents"`
	NotFound       []string            `json:"notFound"`
	ValidUntil     time.Time           `json:"validUntil"`
	CreatedAt      time.Time           `json:"createdAt"`
	Lines          []QuoteLineResponse `json:"lines,omitempty"`
	DownloadURL    string              `json:"downloadUrl,omitempty"`
	DownloadExpiry *time.Time          `json:"downloadExpiresAt,omitempty"`
}

// QuoteListResponse is a page of quotes.
type QuoteListResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
