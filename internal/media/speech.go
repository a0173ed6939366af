// Package media turns customer voice notes and photos into text for the
// conversation engine.
package media

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"corralon_backend/platform/apperr"
	"corralon_backend/platform/config"
	"corralon_backend/platform/logger"
)

const speechCollaborator = "speech-to-text"

// ErrNoText is returned when a collaborator answered but found nothing to read.
var ErrNoText = errors.New("no text extracted")

// Transcriber converts a voice note to text using the Whisper API.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
	log      *logger.Logger
}

// NewTranscriber returns nil when no API key is configured.
func NewTranscriber(cfg config.SpeechConfig, log *logger.Logger) *Transcriber {
	if cfg.GetOpenAIAPIKey() == "" {
		return nil
	}
	return &Transcriber{
		client:   openai.NewClient(option.WithAPIKey(cfg.GetOpenAIAPIKey())),
		model:    cfg.GetSpeechModel(),
		language: cfg.GetSpeechLanguage(),
		log:      log,
	}
}

// Transcribe returns the spoken text. An empty transcript is a collaborator failure.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if t == nil {
		return "", apperr.Collaborator(speechCollaborator, errors.New("speech-to-text not configured"))
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), "voice"+audioExt(mimeType), mimeType),
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		t.log.CollaboratorFailure(speechCollaborator, err)
		return "", apperr.Collaborator(speechCollaborator, err)
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", apperr.Collaborator(speechCollaborator, ErrNoText)
	}
	return text, nil
}

func audioExt(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "ogg"), strings.Contains(mimeType, "opus"):
		return ".ogg"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return ".mp3"
	case strings.Contains(mimeType, "mp4"), strings.Contains(mimeType, "m4a"):
		return ".m4a"
	case strings.Contains(mimeType, "wav"):
		return ".wav"
	case strings.Contains(mimeType, "webm"):
		return ".webm"
	default:
		return ".ogg"
	}
}
