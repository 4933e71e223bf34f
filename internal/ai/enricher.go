// Package ai decomposes tasks into steps and fetches quotes through a
// generative model. Every call degrades to static content on failure.
package ai

import (
	"context"
	"errors"
)

// Quote is a short motivational quote and its author.
type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Enricher augments tasks with generated content. Implementations never fail:
// on any error they return FallbackSteps or FallbackQuote.
type Enricher interface {
	Breakdown(ctx context.Context, title, description string) []string
	DailyQuote(ctx context.Context) Quote
}

// ErrNotConfigured is reported when no model credentials are available.
var ErrNotConfigured = errors.New("ai: no model credentials configured")

// FallbackSteps returns the steps used when a breakdown cannot be generated.
func FallbackSteps() []string {
	return []string{"Review requirements", "Set milestones", "Execute steps"}
}

// FallbackQuote returns the quote used when none can be generated.
func FallbackQuote() Quote {
	return Quote{
		Quote:  "The way to get started is to quit talking and begin doing.",
		Author: "Walt Disney",
	}
}
