package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dermalens/skin-advisor/internal/infra/llm/openai"
	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
	"github.com/dermalens/skin-advisor/pkg/metrics"
)

// Service runs the full analysis pipeline: ingest, model call, contract
// validation. Steps are strictly sequential; the model call is the only
// blocking point and it is bounded by Config.Timeout.
type Service interface {
	Analyze(ctx context.Context, upload Upload) (Outcome, error)
}

// ChatClient is the upstream vision model dependency.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config controls the analysis pipeline.
type Config struct {
	Prompt              string
	Model               string
	MaxCompletionTokens int
	Timeout             time.Duration
	MaxUploadBytes      int64
}

type service struct {
	cfg        Config
	normalizer Normalizer
	client     ChatClient
	logger     *slog.Logger
}

// NewService is a wire provider for the analysis domain.
func NewService(cfg Config, normalizer Normalizer, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		normalizer: normalizer,
		client:     client,
		logger:     logger.With("component", "analysis.service"),
	}
}

func (s *service) Analyze(ctx context.Context, upload Upload) (Outcome, error) {
	started := time.Now()

	img, err := s.ingest(upload)
	if err != nil {
		return Outcome{}, err
	}
	s.logger.Debug("image normalized", "width", img.Width, "height", img.Height, "bytes", len(img.JPEG))

	raw, tokens, err := s.classify(ctx, img)
	if err != nil {
		return Outcome{}, err
	}

	result, err := ParseAndValidate(raw)
	if err != nil {
		s.logger.Warn("model response rejected", "error", err)
		return Outcome{}, err
	}

	return Outcome{
		Result:    result,
		ImageHash: img.Hash,
		Width:     img.Width,
		Height:    img.Height,
		Duration:  time.Since(started),
		Tokens:    tokens,
	}, nil
}

// classify performs the single upstream call. One attempt per caller
// invocation; a deadline hit aborts the in-flight request.
func (s *service) classify(ctx context.Context, img NormalizedImage) (string, metrics.TokenUsage, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.Message{
			{
				Role: "user",
				Content: []openai.ContentPart{
					openai.TextPart(s.cfg.Prompt),
					openai.ImagePart(img.Base64, "high"),
				},
			},
		},
		MaxCompletionTokens: s.cfg.MaxCompletionTokens,
		ResponseFormat:      &openai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return "", metrics.TokenUsage{}, apperrors.Wrap("timeout", "model call exceeded the deadline", err)
		}
		return "", metrics.TokenUsage{}, apperrors.Wrap("upstream_error", "model call failed", err)
	}

	content, err := resp.TextContent()
	if err != nil {
		return "", metrics.TokenUsage{}, apperrors.Wrap("upstream_error", "model response envelope malformed", err)
	}

	tokens := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return content, tokens, nil
}
