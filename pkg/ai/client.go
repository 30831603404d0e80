package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feconecta",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI gateway requests",
	}, []string{"operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feconecta",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI gateway failures (placeholder results served)",
	}, []string{"operation"})
)

const sentimentSchemaJSON = `{
	"type": "object",
	"properties": {
		"sentiment": {"type": "string"},
		"score": {"type": "number", "minimum": 0, "maximum": 10},
		"suggestion": {"type": "string"}
	},
	"required": ["sentiment", "score", "suggestion"]
}`

// Config defines configuration options for the AI gateway client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// Client wraps the generative gateway. Sentiment and Insight never fail:
// when the gateway is unconfigured or unreachable they return clearly-marked
// placeholder results so calling UI code has no error path to handle.
type Client struct {
	api    *openai.Client
	cfg    Config
	schema *jsonschema.Schema
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a gateway client. A missing API key is not an error; the
// client then serves placeholders.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	schema, err := jsonschema.CompileString("sentiment.json", sentimentSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile sentiment schema: %w", err)
	}

	client := &Client{
		cfg:    cfg,
		schema: schema,
		tracer: otel.Tracer("github.com/feconecta/feconecta-api/pkg/ai"),
		logger: cfg.Logger.With().Str("component", "ai").Logger(),
	}

	if cfg.APIKey != "" {
		client.api = openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))
	}

	return client, nil
}

// Configured reports whether the gateway has credentials.
func (c *Client) Configured() bool {
	return c.api != nil
}

// Sentiment classifies arbitrary text into a schema-constrained result:
// sentiment label, score in [0,10] and a short moderation suggestion.
func (c *Client) Sentiment(ctx context.Context, text string) SentimentResult {
	if c.api == nil {
		return sentimentPlaceholder("análise indisponível: gateway de IA não configurado")
	}

	ctx, span := c.tracer.Start(ctx, "ai.sentiment", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sentimentSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := c.api.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues("sentiment").Observe(time.Since(start).Seconds())
	if err != nil {
		return c.sentimentFailure(span, err)
	}

	if len(resp.Choices) == 0 {
		return c.sentimentFailure(span, fmt.Errorf("no choices returned"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := c.parseSentiment(content)
	if err != nil {
		return c.sentimentFailure(span, err)
	}

	return result
}

// Insight produces a short executive summary from a JSON-serialisable
// metrics object or free-text context.
func (c *Client) Insight(ctx context.Context, metrics interface{}) Insight {
	if c.api == nil {
		return insightPlaceholder()
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode insight context")
		return insightPlaceholder()
	}

	ctx, span := c.tracer.Start(ctx, "ai.insight", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues("insight").Observe(time.Since(start).Seconds())
	if err != nil || len(resp.Choices) == 0 {
		aiFailures.WithLabelValues("insight").Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Warn().Err(err).Msg("insight request failed")
		}
		return insightPlaceholder()
	}

	return Insight{Summary: strings.TrimSpace(resp.Choices[0].Message.Content)}
}

// StreamChat sends a prompt and delivers incremental tokens through onDelta;
// each delta should be appended to a single growing message buffer. The
// accumulated text is returned when the stream completes.
func (c *Client) StreamChat(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("ai gateway not configured")
	}

	ctx, span := c.tracer.Start(ctx, "ai.stream_chat", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, request)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("open chat stream: %w", err)
	}
	defer stream.Close()

	var buffer strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			span.RecordError(err)
			return buffer.String(), fmt.Errorf("chat stream: %w", err)
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		buffer.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return buffer.String(), nil
}

func (c *Client) parseSentiment(content string) (SentimentResult, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return SentimentResult{}, fmt.Errorf("parse sentiment json: %w", err)
	}

	if err := c.schema.Validate(raw); err != nil {
		return SentimentResult{}, fmt.Errorf("sentiment response violates schema: %w", err)
	}

	var result SentimentResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return SentimentResult{}, fmt.Errorf("decode sentiment: %w", err)
	}

	return result, nil
}

func (c *Client) sentimentFailure(span trace.Span, err error) SentimentResult {
	aiFailures.WithLabelValues("sentiment").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Warn().Err(err).Msg("sentiment request failed")
	return sentimentPlaceholder("análise indisponível no momento")
}

func sentimentPlaceholder(suggestion string) SentimentResult {
	return SentimentResult{
		Sentiment:   "neutro",
		Score:       5,
		Suggestion:  suggestion,
		Placeholder: true,
	}
}

func insightPlaceholder() Insight {
	return Insight{
		Summary:     "Insights indisponíveis: o gateway de IA não está configurado ou não respondeu.",
		Placeholder: true,
	}
}

func sentimentSystemPrompt() string {
	return "You are a community moderation assistant for a faith-oriented social network. " +
		"Respond with a JSON object containing sentiment (one word), score (0-10, where 0 is hostile and 10 is uplifting) " +
		"and suggestion (one short moderation suggestion in Portuguese)."
}

func insightSystemPrompt() string {
	return "You are an analytics assistant. Given a JSON metrics snapshot of a community platform, " +
		"write a short executive summary in Portuguese, at most four sentences, highlighting trends worth acting on."
}
