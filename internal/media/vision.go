package media

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"google.golang.org/genai"

	"corralon_backend/platform/apperr"
	"corralon_backend/platform/config"
	"corralon_backend/platform/logger"
)

const visionCollaborator = "image-text"

const visionPrompt = `Sos un asistente de un corralón de materiales de construcción.
La imagen es una lista de materiales (escrita a mano, impresa o una captura).
Transcribí cada renglón tal cual, uno por línea, con su cantidad si aparece.
No agregues productos que no estén en la imagen ni comentarios.
Respondé solo JSON: {"text": "<renglones separados por \n>", "quality": <0 a 1, qué tan legible fue>}`

// Extraction is the text read from an image and the model's own legibility score.
type Extraction struct {
	Text    string  `json:"text"`
	Quality float64 `json:"quality"`
}

type generateFunc func(ctx context.Context, model string, image []byte, mimeType string) (string, error)

// Reader extracts list text from photos. It asks the fast model first and
// retries on the accurate model when the result is empty or scored low.
type Reader struct {
	generate   generateFunc
	fastModel  string
	accurate   string
	minQuality float64
	log        *logger.Logger
}

// NewReader returns nil when no API key is configured.
func NewReader(ctx context.Context, cfg config.VisionConfig, log *logger.Logger) (*Reader, error) {
	if cfg.GetGeminiAPIKey() == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return newReader(geminiGenerate(client), cfg.GetVisionFastModel(), cfg.GetVisionAccurateModel(), cfg.GetVisionMinQuality(), log), nil
}

func newReader(gen generateFunc, fast, accurate string, minQuality float64, log *logger.Logger) *Reader {
	return &Reader{generate: gen, fastModel: fast, accurate: accurate, minQuality: minQuality, log: log}
}

// NeedsFallback reports whether a fast-model extraction should be redone.
func (r *Reader) NeedsFallback(e Extraction) bool {
	return strings.TrimSpace(e.Text) == "" || e.Quality < r.minQuality
}

// ExtractFast runs the fast model only.
func (r *Reader) ExtractFast(ctx context.Context, image []byte, mimeType string) (Extraction, error) {
	if r == nil {
		return Extraction{}, apperr.Collaborator(visionCollaborator, errors.New("image-text not configured"))
	}
	return r.extract(ctx, r.fastModel, image, mimeType)
}

// ExtractAccurate runs the slower accurate model.
func (r *Reader) ExtractAccurate(ctx context.Context, image []byte, mimeType string) (Extraction, error) {
	if r == nil {
		return Extraction{}, apperr.Collaborator(visionCollaborator, errors.New("image-text not configured"))
	}
	return r.extract(ctx, r.accurate, image, mimeType)
}

// ExtractText runs the fast model and falls back to the accurate one when needed.
// A failing fast call also falls back; only a failing or empty accurate call is an error.
func (r *Reader) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	fast, err := r.ExtractFast(ctx, image, mimeType)
	if err == nil && !r.NeedsFallback(fast) {
		return fast.Text, nil
	}
	if r == nil {
		return "", err
	}

	acc, accErr := r.ExtractAccurate(ctx, image, mimeType)
	if accErr != nil {
		if err == nil && strings.TrimSpace(fast.Text) != "" {
			return fast.Text, nil
		}
		return "", accErr
	}
	if strings.TrimSpace(acc.Text) == "" {
		if strings.TrimSpace(fast.Text) != "" {
			return fast.Text, nil
		}
		return "", apperr.Collaborator(visionCollaborator, ErrNoText)
	}
	return acc.Text, nil
}

func (r *Reader) extract(ctx context.Context, model string, image []byte, mimeType string) (Extraction, error) {
	raw, err := r.generate(ctx, model, image, mimeType)
	if err != nil {
		r.log.CollaboratorFailure(visionCollaborator, err)
		return Extraction{}, apperr.Collaborator(visionCollaborator, err)
	}
	return parseExtraction(raw), nil
}

// parseExtraction accepts the JSON envelope, possibly fenced, and falls back
// to treating the whole answer as text with unknown quality.
func parseExtraction(raw string) Extraction {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var e Extraction
	if err := json.Unmarshal([]byte(s), &e); err == nil {
		e.Text = strings.TrimSpace(e.Text)
		return e
	}
	return Extraction{Text: s, Quality: 0}
}

func geminiGenerate(client *genai.Client) generateFunc {
	return func(ctx context.Context, model string, image []byte, mimeType string) (string, error) {
		parts := []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			genai.NewPartFromText(visionPrompt),
		}
		resp, err := client.Models.GenerateContent(ctx, model,
			[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
			&genai.GenerateContentConfig{
				ResponseMIMEType: "application/json",
				Temperature:      genai.Ptr[float32](0),
			})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
}
