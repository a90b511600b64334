package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"mindcast/internal/trends"
	"mindcast/pkg/platform/circuit"
	"mindcast/pkg/platform/sentinel"
	"mindcast/pkg/requestcontext"
)

// Service turns a selected topic into a validated script. One repair round
// is attempted when the first generation fails validation.
type Service struct {
	client  ChatClient
	breaker *circuit.Breaker
	model   string
	logger  *slog.Logger
}

// NewService constructs the script service.
func NewService(client ChatClient, breaker *circuit.Breaker, model string, logger *slog.Logger) *Service {
	return &Service{client: client, breaker: breaker, model: model, logger: logger}
}

// generatedPayload is the JSON shape the prompt demands from the model.
type generatedPayload struct {
	Title    string   `json:"title"`
	Hook     string   `json:"hook"`
	Body     string   `json:"body"`
	CTA      string   `json:"cta"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Generate produces a validated script for the topic.
//
// Errors: wrapped sentinel.ErrUnavailable when the circuit is open; a
// *ValidationError when both generation attempts produce invalid content.
func (s *Service) Generate(ctx context.Context, topic *trends.Topic) (*Script, error) {
	if s.breaker.IsOpen() {
		return nil, fmt.Errorf("llm circuit open: %w", sentinel.ErrUnavailable)
	}

	result, err := s.attempt(ctx, topic, nil)
	if err == nil {
		return result, nil
	}

	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		return nil, err
	}

	s.logger.Warn("script rejected, retrying with repair prompt",
		"topic", topic.Title, "reasons", invalid.Reasons)

	result, err = s.attempt(ctx, topic, invalid.Reasons)
	if err != nil {
		return nil, fmt.Errorf("repair attempt: %w", err)
	}
	return result, nil
}

func (s *Service) attempt(ctx context.Context, topic *trends.Topic, repairReasons []string) (*Script, error) {
	content, err := s.client.Complete(ctx, systemPrompt, BuildPrompt(topic, repairReasons))
	if err != nil {
		if useFallback, change := s.breaker.RecordFailure(); useFallback && change.Opened {
			s.logger.Error("llm circuit opened", "breaker", s.breaker.Name())
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("llm circuit closed", "breaker", s.breaker.Name())
	}

	var payload generatedPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		// Malformed JSON counts as a validation failure so the repair
		// round gets a chance to fix it.
		return nil, &ValidationError{Reasons: []string{"response was not the requested JSON object"}}
	}

	result := &Script{
		TopicID:  topic.ID,
		Title:    payload.Title,
		Hook:     payload.Hook,
		Body:     payload.Body,
		CTA:      payload.CTA,
		Caption:  payload.Caption,
		Hashtags: payload.Hashtags,
	}
	if err := Validate(result); err != nil {
		return nil, err
	}
	result.finalize(s.model, requestcontext.Now(ctx))
	return result, nil
}
