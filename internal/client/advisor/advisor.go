// Package advisor is the boundary to the generative AI service that suggests
// campus activities, conversation openers and match reasons.
//
// Every call absorbs upstream failures. A quota or rate-limit condition
// (including an open circuit) yields fixed fallback content; any other
// failure yields an empty result.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// Generator produces model output for a prompt.
type Generator interface {
	// GenerateJSON asks for a JSON document matching schema and returns it raw.
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	// GenerateText asks for free-form text.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

var (
	recommendationSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":  {Type: genai.TypeString},
				"reason": {Type: genai.TypeString},
			},
			Required: []string{"title", "reason"},
		},
	}

	stringListSchema = &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
)

// Advisor wraps a Generator with a circuit breaker and the fallback policy.
type Advisor struct {
	gen     Generator
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// New returns an Advisor over gen. A nil gen behaves like Unavailable.
func New(gen Generator, cfg BreakerConfig, logger logging.Logger) *Advisor {
	if gen == nil {
		gen = Unavailable{}
	}
	l := logger.With("module", "advisor")
	return &Advisor{
		gen:     gen,
		breaker: newBreaker(cfg, l),
		logger:  l,
	}
}

// Recommend suggests three clubs or event types for the given interests.
func (a *Advisor) Recommend(ctx context.Context, interests []string) []models.Recommendation {
	prompt := fmt.Sprintf("Based on these student interests: %s, suggest 3 potential campus clubs or event types they would love. "+
		"Provide the output in JSON format with title and reason.", strings.Join(interests, ", "))

	raw, err := a.call(ctx, func() (string, error) {
		return a.gen.GenerateJSON(ctx, prompt, recommendationSchema)
	})
	if err != nil {
		if IsQuotaError(err) {
			a.logger.Warn(ctx, "quota exceeded, using fallback recommendations")
			return FallbackRecommendations()
		}
		a.logger.Debug(ctx, "recommend failed", "error", err)
		return []models.Recommendation{}
	}

	var out []models.Recommendation
	if err := json.Unmarshal([]byte(orEmptyArray(raw)), &out); err != nil {
		a.logger.Debug(ctx, "recommend returned malformed JSON", "error", err)
		return []models.Recommendation{}
	}
	if out == nil {
		out = []models.Recommendation{}
	}
	return out
}

// Icebreakers suggests three opening lines for a scenario.
func (a *Advisor) Icebreakers(ctx context.Context, scenario string) []string {
	prompt := fmt.Sprintf(`Generate 3 highly situation-specific opening lines for a student in this scenario: %q. `+
		`They should sound like something a real student would say out loud (1 sentence each, no lists). `+
		`Avoid generic openers like "How's your semester going?" or "How are you?" unless the scenario explicitly makes it relevant. `+
		`Each line must reference something concrete about the scenario. `+
		`Make them low-pressure, warm, and easy to respond to. Output JSON array of strings.`, scenario)

	raw, err := a.call(ctx, func() (string, error) {
		return a.gen.GenerateJSON(ctx, prompt, stringListSchema)
	})
	if err != nil {
		if IsQuotaError(err) {
			a.logger.Warn(ctx, "quota exceeded, using fallback icebreakers")
			return FallbackIcebreakers(scenario)
		}
		a.logger.Debug(ctx, "icebreakers failed", "error", err)
		return []string{}
	}

	var lines []string
	if err := json.Unmarshal([]byte(orEmptyArray(raw)), &lines); err != nil {
		a.logger.Debug(ctx, "icebreakers returned malformed JSON", "error", err)
		return []string{}
	}
	return cleanLines(lines)
}

// MatchReason explains in a few words why title suits the interests.
func (a *Advisor) MatchReason(ctx context.Context, title string, interests []string) string {
	prompt := fmt.Sprintf("Briefly explain in 10 words why a student interested in %s would match with %q.",
		strings.Join(interests, ", "), title)

	text, err := a.call(ctx, func() (string, error) {
		return a.gen.GenerateText(ctx, prompt)
	})
	if err != nil {
		if IsQuotaError(err) {
			return FallbackMatchReason
		}
		a.logger.Debug(ctx, "match reason failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func (a *Advisor) call(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := a.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return "", err
	}
	s, _ := res.(string)
	return s, nil
}

// IsQuotaError reports whether err means the upstream refused the call for
// quota or rate-limit reasons, or the breaker is shedding load.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isQuotaAPIError(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && isQuotaAPIError(*apiErrPtr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "quota")
}

func isQuotaAPIError(e genai.APIError) bool {
	return e.Code == 429 || strings.EqualFold(e.Status, "RESOURCE_EXHAUSTED")
}

func orEmptyArray(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "[]"
	}
	return raw
}

func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
