// ai/completer.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"grc/apperr"
	"grc/metrics"
)

// Completer is the upstream text-completion service. It is unreliable
// by assumption; callers must survive any error it returns.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPCompleter talks to an OpenAI-compatible chat-completion endpoint.
// Calls are paced by a rate limiter and retried once with jittered
// backoff before the failure is surfaced.
type HTTPCompleter struct {
	url     string
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPCompleter(url, apiKey, model string, timeout time.Duration, rps float64) *HTTPCompleter {
	return &HTTPCompleter{
		url:     url,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.url == "" {
		return "", apperr.DependencyUnavailable("completer not configured", nil)
	}

	out, err := c.call(ctx, prompt)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", apperr.DependencyUnavailable("completer deadline exceeded", err)
	}

	// One retry with jittered backoff; exhaustion is the caller's cue
	// to fall back, not an error it should propagate.
	backoff := time.Duration(500+rand.Intn(1000)) * time.Millisecond
	log.Warn().Err(err).Dur("backoff", backoff).Msg("completer call failed, retrying")
	select {
	case <-ctx.Done():
		return "", apperr.DependencyUnavailable("completer deadline exceeded", ctx.Err())
	case <-time.After(backoff):
	}
	return c.call(ctx, prompt)
}

func (c *HTTPCompleter) call(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.DependencyUnavailable("completer rate wait interrupted", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", apperr.Internal("marshal completer request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal("build completer request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CompleterFailures.Inc()
		return "", apperr.DependencyUnavailable("completer transport failure", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.CompleterFailures.Inc()
		return "", apperr.DependencyUnavailable("completer read failure", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.CompleterFailures.Inc()
		return "", apperr.DependencyUnavailable(
			fmt.Sprintf("completer returned %d", resp.StatusCode), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", apperr.DependencyUnavailable("completer response malformed", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}
