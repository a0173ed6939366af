package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/conversation"
	"corralon_backend/internal/events"
	"corralon_backend/internal/inbox"
	quotesvc "corralon_backend/internal/quotes/service"
	"corralon_backend/internal/session"
	"corralon_backend/platform/logger"
	"corralon_backend/platform/metrics"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFrom = "5491155550000"

type scriptedEngine struct {
	texts   []string
	next    conversation.State
	actions []conversation.Action
}

func (e *scriptedEngine) ResolveTurn(_ conversation.State, text string, _ *catalog.Snapshot) (conversation.State, []conversation.Action) {
	e.texts = append(e.texts, text)
	return e.next, e.actions
}

type staticCatalog struct{ err error }

func (c staticCatalog) Snapshot(context.Context) (*catalog.Snapshot, error) {
	if c.err != nil {
		return nil, c.err
	}
	return catalog.NewSnapshot(nil, time.Now()), nil
}

type recordingGateway struct {
	mu       sync.Mutex
	texts    []string
	files    []string
	buttons  int
	media    []byte
	mediaErr error
	fileErr  error
}

func (g *recordingGateway) SendText(_ context.Context, _, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.texts = append(g.texts, text)
	return nil
}

func (g *recordingGateway) SendButtons(context.Context, string, string, []conversation.Button) error {
	g.buttons++
	return nil
}

func (g *recordingGateway) SendList(context.Context, string, conversation.SendList) error {
	return nil
}

func (g *recordingGateway) SendFile(_ context.Context, _, filename string, _ []byte, _ string) error {
	if g.fileErr != nil {
		return g.fileErr
	}
	g.files = append(g.files, filename)
	return nil
}

func (g *recordingGateway) FetchMedia(context.Context, string) ([]byte, string, error) {
	return g.media, "audio/ogg", g.mediaErr
}

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

type stubReader struct{ text string }

func (s stubReader) ExtractText(context.Context, []byte, string) (string, error) {
	return s.text, nil
}

type fakeQuotes struct {
	err       error
	delivered []string
}

func (f *fakeQuotes) Finalize(_ context.Context, _ string, q conversation.Quote) (*quotesvc.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &quotesvc.Document{Number: q.Number, FileName: "presupuesto-" + q.Number + ".pdf", Content: []byte("%PDF")}, nil
}

func (f *fakeQuotes) Delivered(_ context.Context, _ string, q conversation.Quote, _ *quotesvc.Document) {
	f.delivered = append(f.delivered, q.Number)
}

type fakeInsights struct {
	unknown  []string
	notFound []string
}

func (f *fakeInsights) RecordUnknown(_ context.Context, _ string, text string) error {
	f.unknown = append(f.unknown, text)
	return nil
}

func (f *fakeInsights) RecordNotFound(_ context.Context, _ string, terms []string) error {
	f.notFound = append(f.notFound, terms...)
	return nil
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// inlineDispatcher runs jobs on the caller's goroutine.
type inlineDispatcher struct{}

func (inlineDispatcher) Submit(_ string, job inbox.Job) error {
	job(context.Background())
	return nil
}

type fixture struct {
	svc      *Service
	engine   *scriptedEngine
	gateway  *recordingGateway
	sessions *session.Store
	quotes   *fakeQuotes
	insights *fakeInsights
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		engine:   &scriptedEngine{},
		gateway:  &recordingGateway{},
		sessions: session.NewStore(rdb, "test", time.Hour),
		quotes:   &fakeQuotes{},
		insights: &fakeInsights{},
	}
	f.svc = New(Deps{
		Engine:      f.engine,
		Sessions:    f.sessions,
		Catalog:     staticCatalog{},
		Gateway:     f.gateway,
		Transcriber: stubTranscriber{text: "2 bolsas de cemento"},
		Images:      stubReader{text: "arena x 2"},
		Quotes:      f.quotes,
		Insights:    f.insights,
		Dispatcher:  inlineDispatcher{},
		Metrics:     metrics.New(),
		Region:      "AR",
	}, logger.Discard())
	return f
}

func (f *fixture) storedState(t *testing.T) (conversation.State, bool) {
	t.Helper()
	st, ok, err := f.sessions.Get(context.Background(), testFrom)
	require.NoError(t, err)
	return st, ok
}

func TestTextTurnSendsRepliesAndPersistsState(t *testing.T) {
	f := newFixture(t)
	f.engine.next = conversation.State{Awaiting: conversation.ItemEditSelect{}}
	f.engine.actions = []conversation.Action{
		conversation.SendText{Text: "Agregado"},
		conversation.SendButtons{Text: "¿Algo más?", Buttons: []conversation.Button{{ID: conversation.ButtonFinalize, Title: "Confirmar"}}},
		conversation.RecordNotFound{Terms: []string{"membrana"}},
	}

	err := f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "  <b>2 cemento</b>  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"2 cemento"}, f.engine.texts)
	assert.Equal(t, []string{"Agregado"}, f.gateway.texts)
	assert.Equal(t, 1, f.gateway.buttons)
	assert.Equal(t, []string{"membrana"}, f.insights.notFound)

	st, ok := f.storedState(t)
	require.True(t, ok)
	assert.Equal(t, "item_edit_select", st.AwaitingKind())
}

func TestButtonRepliesMapToCommands(t *testing.T) {
	tests := []struct {
		replyID string
		want    string
	}{
		{conversation.ButtonFinalize, "CONFIRMAR"},
		{conversation.ButtonEdit, "EDITAR"},
		{conversation.ButtonCancel, "CANCELAR"},
		{conversation.ButtonCancelYes, "CANCELAR SI"},
		{conversation.ButtonCancelNo, "NO"},
		{conversation.ButtonAddYes, "si"},
		{conversation.ButtonAddNo, "no"},
		{"opt_3", "opt_3"},
	}

	for _, tt := range tests {
		t.Run(tt.replyID, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindButton, ReplyID: tt.replyID, Text: "ignored"}))
			assert.Equal(t, []string{tt.want}, f.engine.texts)
		})
	}
}

func TestFinalizedQuoteIsSentAndSessionCleared(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Set(context.Background(), testFrom, conversation.State{UnknownCount: 1}))
	f.engine.actions = []conversation.Action{
		conversation.SendText{Text: "Generando"},
		conversation.EmitQuote{Quote: conversation.Quote{Number: "P-20261018-abc123"}},
		conversation.EndSession{},
	}

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "confirmar"}))

	assert.Equal(t, []string{"presupuesto-P-20261018-abc123.pdf"}, f.gateway.files)
	assert.Equal(t, []string{"P-20261018-abc123"}, f.quotes.delivered)
	_, ok := f.storedState(t)
	assert.False(t, ok)
}

func TestFailedQuoteKeepsPriorState(t *testing.T) {
	f := newFixture(t)
	f.quotes.err = errors.New("render failed")
	require.NoError(t, f.sessions.Set(context.Background(), testFrom, conversation.State{UnknownCount: 2}))
	f.engine.actions = []conversation.Action{
		conversation.EmitQuote{Quote: conversation.Quote{Number: "P-1"}},
		conversation.SendText{Text: "never sent"},
		conversation.EndSession{},
	}

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "confirmar"}))

	assert.Equal(t, []string{msgQuoteFailed}, f.gateway.texts)
	assert.Empty(t, f.quotes.delivered)
	st, ok := f.storedState(t)
	require.True(t, ok)
	assert.Equal(t, 2, st.UnknownCount)
}

func TestFileSendFailureFallsBackToLink(t *testing.T) {
	f := newFixture(t)
	f.gateway.fileErr = errors.New("gateway down")
	f.svc.Quotes = linkQuotes{}
	f.engine.actions = []conversation.Action{
		conversation.EmitQuote{Quote: conversation.Quote{Number: "P-2"}},
		conversation.EndSession{},
	}

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "confirmar"}))

	require.Len(t, f.gateway.texts, 1)
	assert.Contains(t, f.gateway.texts[0], "https://files.example.com/P-2.pdf")
}

type linkQuotes struct{}

func (linkQuotes) Finalize(_ context.Context, _ string, q conversation.Quote) (*quotesvc.Document, error) {
	return &quotesvc.Document{Number: q.Number, FileName: "x.pdf", DownloadURL: "https://files.example.com/" + q.Number + ".pdf"}, nil
}

func (linkQuotes) Delivered(context.Context, string, conversation.Quote, *quotesvc.Document) {}

func TestAudioIsTranscribed(t *testing.T) {
	f := newFixture(t)
	f.gateway.media = []byte("ogg")

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindAudio, MediaRef: "/media/1"}))

	assert.Equal(t, []string{msgTranscribing}, f.gateway.texts)
	assert.Equal(t, []string{"2 bolsas de cemento"}, f.engine.texts)
}

func TestAudioFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.svc.Transcriber = stubTranscriber{err: errors.New("timeout")}
	require.NoError(t, f.sessions.Set(context.Background(), testFrom, conversation.State{UnknownCount: 1}))

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindAudio, MediaRef: "/media/1"}))

	assert.Equal(t, []string{msgTranscribing, msgAudioFailed}, f.gateway.texts)
	assert.Empty(t, f.engine.texts)
	st, ok := f.storedState(t)
	require.True(t, ok)
	assert.Equal(t, 1, st.UnknownCount)
}

func TestImageCaptionIsPrepended(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindImage, MediaRef: "/media/2", Text: "hierro 8 x 10"}))

	assert.Equal(t, []string{"hierro 8 x 10\narena x 2"}, f.engine.texts)
}

func TestCatalogFailureSendsApology(t *testing.T) {
	f := newFixture(t)
	f.svc.Catalog = staticCatalog{err: errors.New("shopify 503")}

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "arena"}))

	assert.Equal(t, []string{msgCatalogUnavailable}, f.gateway.texts)
	assert.Empty(t, f.engine.texts)
}

func TestThrottledConversationIsToldOnce(t *testing.T) {
	f := newFixture(t)
	f.svc.Limiter = denyAll{}

	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "hola"}))
	}

	assert.Equal(t, []string{msgThrottled}, f.gateway.texts)
	assert.Empty(t, f.engine.texts)
}

func TestHandoffPublishesEvent(t *testing.T) {
	f := newFixture(t)
	bus := events.NewInMemoryBus(logger.Discard())
	var got events.HandoffRequested
	bus.Subscribe(events.HandoffRequested{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.HandoffRequested)
		return nil
	}))
	f.svc.Bus = bus
	f.engine.actions = []conversation.Action{conversation.Handoff{Reason: "requested"}}

	require.NoError(t, f.svc.Handle(context.Background(), Message{From: testFrom, Kind: KindText, Text: "quiero hablar con una persona"}))
	bus.Wait()

	assert.Equal(t, testFrom, got.ConversationID)
	assert.Equal(t, "requested", got.Reason)
	assert.Equal(t, "quiero hablar con una persona", got.LastMessage)
}

func TestMissingSenderIsRejected(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Handle(context.Background(), Message{Kind: KindText, Text: "hola"})
	require.Error(t, err)
}
