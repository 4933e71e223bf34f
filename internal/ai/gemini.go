package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-3-flash-preview"

// errEmptyResponse is returned when the model produced no text.
var errEmptyResponse = errors.New("ai: model returned no content")

// GeminiConfig selects credentials and transport for NewGemini.
type GeminiConfig struct {
	APIKey      string
	AccessToken string
	Model       string
	// Endpoint overrides the API base URL.
	Endpoint string
	// Timeout bounds each request. Zero leaves the deadline to the caller.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Configured reports whether any credential is set.
func (c GeminiConfig) Configured() bool {
	return c.APIKey != "" || c.AccessToken != ""
}

// Gemini is a Generator backed by the Gemini generateContent API in JSON mode.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini generator. The API key wins over the access
// token; the token is sent as a bearer credential by an oauth2 transport.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	}
	if cfg.APIKey == "" && cfg.AccessToken != "" {
		if cfg.HTTPClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		cc.HTTPClient = oauth2.NewClient(ctx, ts)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model, timeout: cfg.Timeout}, nil
}

// GenerateJSON sends prompt as a single user turn constrained to schema and
// returns the concatenated text parts of the first candidate.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}
