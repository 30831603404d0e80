package ai

// SentimentResult is the structured moderation signal for a piece of text.
// Placeholder marks results produced locally because the gateway was not
// configured or failed; callers render them without a try/catch path.
type SentimentResult struct {
	Sentiment   string  `json:"sentiment"`
	Score       float64 `json:"score"`
	Suggestion  string  `json:"suggestion"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// Insight is a short free-text executive summary with no fixed schema.
type Insight struct {
	Summary     string `json:"summary"`
	Placeholder bool   `json:"placeholder,omitempty"`
}
