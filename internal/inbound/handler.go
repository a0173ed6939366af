package inbound

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderSignature carries the gateway's HMAC-SHA256 of the raw body.
	HeaderSignature = "X-Hub-Signature-256"

	maxWebhookBody = 1 << 20

	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// ReplyPayload is a quick-reply or list selection.
type ReplyPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MediaPayload references an attachment the gateway stored.
type MediaPayload struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Caption  string `json:"caption"`
}

// WebhookPayload is the body the gateway posts for every inbound message.
type WebhookPayload struct {
	From     string `json:"from" validate:"required,max=64"`
	ChatID   string `json:"chat_id"`
	IsFromMe bool   `json:"is_from_me"`
	Message  struct {
		ID   string `json:"id"`
		Text string `json:"text" validate:"max=4096"`
	} `json:"message"`
	ButtonReply *ReplyPayload `json:"button_reply"`
	ListReply   *ReplyPayload `json:"list_reply"`
	Audio       *MediaPayload `json:"audio"`
	Image       *MediaPayload `json:"image"`
}

// Handler receives gateway webhooks.
type Handler struct {
	service *Service
	val     *validator.Validator
}

// NewHandler creates the webhook handler.
func NewHandler(service *Service, val *validator.Validator) *Handler {
	return &Handler{service: service, val: val}
}

// HandleWhatsApp accepts one inbound message.
// POST /api/v1/webhooks/whatsapp
func (h *Handler) HandleWhatsApp(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	msg, ok := payload.toMessage()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if httpkit.HandleError(c, h.service.Handle(c.Request.Context(), msg)) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// toMessage normalizes the payload. ok is false for echoes of our own
// messages, group chats and payloads with nothing to process.
func (p WebhookPayload) toMessage() (Message, bool) {
	if p.IsFromMe || strings.HasSuffix(p.ChatID, "@g.us") {
		return Message{}, false
	}
	msg := Message{From: jidUser(p.From)}

	switch {
	case p.ButtonReply != nil:
		msg.Kind = KindButton
		msg.ReplyID = p.ButtonReply.ID
		msg.Text = p.ButtonReply.Title
	case p.ListReply != nil:
		msg.Kind = KindList
		msg.ReplyID = p.ListReply.ID
		msg.Text = p.ListReply.Title
	case p.Audio != nil:
		msg.Kind = KindAudio
		msg.MediaRef = p.Audio.URL
		msg.MimeType = p.Audio.MimeType
	case p.Image != nil:
		msg.Kind = KindImage
		msg.MediaRef = p.Image.URL
		msg.MimeType = p.Image.MimeType
		msg.Text = p.Image.Caption
	default:
		msg.Kind = KindText
		msg.Text = p.Message.Text
	}

	if msg.Kind == KindText && strings.TrimSpace(msg.Text) == "" {
		return Message{}, false
	}
	if (msg.Kind == KindAudio || msg.Kind == KindImage) && msg.MediaRef == "" {
		return Message{}, false
	}
	return msg, true
}

// jidUser strips the device and server parts of a gateway address.
func jidUser(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	return user
}

// SignatureMiddleware rejects webhooks whose body was not signed with
// secret. An empty secret disables the check.
func SignatureMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !validSignature(secret, body, c.GetHeader(HeaderSignature)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

func validSignature(secret string, body []byte, header string) bool {
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(header), "sha256="))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the header value for body, as the gateway computes it.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
