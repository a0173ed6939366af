// Package email delivers sales-team notifications.
package email

import (
	"context"
	"time"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

// QuoteLine is one line printed in the quote notification.
type QuoteLine struct {
	Title    string
	Qty      string
	Cash     string
	Transfer string
}

// QuoteFinalizedMail is the data for the quote notification.
type QuoteFinalizedMail struct {
	Number         string
	ConversationID string
	Lines          int
	List           string
	Cash           string
	Transfer       string
	NotFound       []string
	DownloadURL    string
	ValidUntil     time.Time
}

// HandoffMail is the data for the handoff notification.
type HandoffMail struct {
	ConversationID string
	Reason         string
	LastMessage    string
	RequestedAt    time.Time
}

// Sender delivers notifications to an internal inbox.
type Sender interface {
	SendQuoteFinalized(ctx context.Context, toEmail string, data QuoteFinalizedMail) error
	SendHandoff(ctx context.Context, toEmail string, data HandoffMail) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendQuoteFinalized(context.Context, string, QuoteFinalizedMail) error { return nil }
func (NoopSender) SendHandoff(context.Context, string, HandoffMail) error               { return nil }
