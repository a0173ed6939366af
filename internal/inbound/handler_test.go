package inbound

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "corralon_backend/internal/http"
	"corralon_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cret"

func newWebhookEngine(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	m := &Module{service: f.svc, handler: NewHandler(f.svc, validator.New()), secret: testSecret}
	engine := gin.New()
	m.RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: engine.Group("/api/v1")})
	return engine, f
}

func postWebhook(engine *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(HeaderSignature, signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	engine, f := newWebhookEngine(t)
	body := `{"from":"5491155550000@s.whatsapp.net","message":{"text":"hola"}}`

	rec := postWebhook(engine, body, Sign("other", []byte(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(engine, body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, f.engine.texts)
}

func TestWebhookAcceptsSignedText(t *testing.T) {
	engine, f := newWebhookEngine(t)
	body := `{"from":"5491155550000:12@s.whatsapp.net","message":{"id":"m1","text":"2 cemento"}}`

	rec := postWebhook(engine, body, Sign(testSecret, []byte(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")
	assert.Equal(t, []string{"2 cemento"}, f.engine.texts)
}

func TestWebhookButtonReply(t *testing.T) {
	engine, f := newWebhookEngine(t)
	body := `{"from":"5491155550000@s.whatsapp.net","button_reply":{"id":"finalize","title":"Confirmar"}}`

	rec := postWebhook(engine, body, Sign(testSecret, []byte(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"CONFIRMAR"}, f.engine.texts)
}

func TestWebhookIgnoresGroupsAndEchoes(t *testing.T) {
	engine, f := newWebhookEngine(t)
	for _, body := range []string{
		`{"from":"5491155550000@s.whatsapp.net","chat_id":"12345@g.us","message":{"text":"hola"}}`,
		`{"from":"5491155550000@s.whatsapp.net","is_from_me":true,"message":{"text":"hola"}}`,
		`{"from":"5491155550000@s.whatsapp.net","message":{"text":"   "}}`,
	} {
		rec := postWebhook(engine, body, Sign(testSecret, []byte(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ignored")
	}
	assert.Empty(t, f.engine.texts)
}

func TestWebhookRequiresSender(t *testing.T) {
	engine, _ := newWebhookEngine(t)
	body := `{"message":{"text":"hola"}}`

	rec := postWebhook(engine, body, Sign(testSecret, []byte(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayloadToMessage(t *testing.T) {
	var p WebhookPayload
	p.From = "5491155550000@s.whatsapp.net"
	p.Audio = &MediaPayload{URL: "/statics/media/a.ogg", MimeType: "audio/ogg"}

	msg, ok := p.toMessage()
	require.True(t, ok)
	assert.Equal(t, KindAudio, msg.Kind)
	assert.Equal(t, "5491155550000", msg.From)
	assert.Equal(t, "/statics/media/a.ogg", msg.MediaRef)
}
