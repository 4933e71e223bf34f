package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const (
	tracerName = "github.com/abatilo/taskmaster/internal/ai"

	minSteps = 3
	maxSteps = 5
)

// Generator sends a prompt to a model that answers with a JSON document
// shaped by schema.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

var breakdownSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"subTasks": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "3 to 5 short imperative steps",
		},
	},
	Required: []string{"subTasks"},
}

var quoteSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"quote":  {Type: genai.TypeString},
		"author": {Type: genai.TypeString},
	},
	Required: []string{"quote", "author"},
}

// SchemaError indicates the model answered with JSON of the wrong shape.
type SchemaError struct {
	Reason string
}

func (e SchemaError) Error() string {
	return "ai: response violates schema: " + e.Reason
}

// Client implements Enricher on top of a Generator. A nil generator makes
// every call return its fallback without any network traffic.
type Client struct {
	gen    Generator
	logger *log.Logger
}

// NewClient creates a Client.
func NewClient(gen Generator, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{gen: gen, logger: logger}
}

// Breakdown returns 3 to 5 short steps for the task, or FallbackSteps.
func (c *Client) Breakdown(ctx context.Context, title, description string) []string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ai.breakdown",
		trace.WithAttributes(attribute.Int("task.title_length", len(title))))
	defer span.End()

	steps, err := c.breakdown(ctx, title, description)
	if err != nil {
		c.fail(span, "ai.breakdown.fallback", err)
		return FallbackSteps()
	}
	span.SetAttributes(attribute.Int("ai.steps", len(steps)))
	span.SetStatus(codes.Ok, "")
	return steps
}

func (c *Client) breakdown(ctx context.Context, title, description string) ([]string, error) {
	if c.gen == nil {
		return nil, ErrNotConfigured
	}
	raw, err := c.gen.GenerateJSON(ctx, breakdownPrompt(title, description), breakdownSchema)
	if err != nil {
		return nil, err
	}

	var resp struct {
		SubTasks []string `json:"subTasks"`
	}
	if err = sonic.ConfigStd.UnmarshalFromString(stripCodeFence(raw), &resp); err != nil {
		return nil, fmt.Errorf("ai: decode breakdown: %w", err)
	}
	if n := len(resp.SubTasks); n < minSteps || n > maxSteps {
		return nil, SchemaError{Reason: fmt.Sprintf("got %d steps, want %d-%d", n, minSteps, maxSteps)}
	}
	steps := make([]string, 0, len(resp.SubTasks))
	for _, s := range resp.SubTasks {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, SchemaError{Reason: "blank step"}
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// DailyQuote returns a generated productivity quote, or FallbackQuote.
func (c *Client) DailyQuote(ctx context.Context) Quote {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ai.daily_quote")
	defer span.End()

	q, err := c.dailyQuote(ctx)
	if err != nil {
		c.fail(span, "ai.quote.fallback", err)
		return FallbackQuote()
	}
	span.SetStatus(codes.Ok, "")
	return q
}

func (c *Client) dailyQuote(ctx context.Context) (Quote, error) {
	if c.gen == nil {
		return Quote{}, ErrNotConfigured
	}
	raw, err := c.gen.GenerateJSON(ctx, quotePrompt, quoteSchema)
	if err != nil {
		return Quote{}, err
	}

	var q Quote
	if err = sonic.ConfigStd.UnmarshalFromString(stripCodeFence(raw), &q); err != nil {
		return Quote{}, fmt.Errorf("ai: decode quote: %w", err)
	}
	q.Quote = strings.TrimSpace(q.Quote)
	q.Author = strings.TrimSpace(q.Author)
	if q.Quote == "" || q.Author == "" {
		return Quote{}, SchemaError{Reason: "quote and author are required"}
	}
	return q, nil
}

func (c *Client) fail(span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("ai.fallback", true))

	entry := c.logger.WithError(err)
	if errors.Is(err, ErrNotConfigured) {
		entry.Debug(msg)
		return
	}
	entry.Warn(msg)
}

const quotePrompt = `Write one short, highly motivating productivity quote and name its author. ` +
	`Respond only with JSON of the form {"quote": "...", "author": "..."}.`

func breakdownPrompt(title, description string) string {
	return fmt.Sprintf(
		"Break this task into 3 to 5 actionable, concrete sub-tasks. Title: %q. Description: %q. "+
			`Respond only with JSON of the form {"subTasks": ["...", "..."]}, each step a short imperative phrase.`,
		title, description,
	)
}

// stripCodeFence removes a ```json fence some models wrap JSON answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
