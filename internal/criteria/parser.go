// Package criteria translates free-form prospect descriptions into
// structured search criteria, either via a named template or via the
// Anthropic API.
package criteria

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/anthropic"
)

const parseSystemPrompt = `You convert natural-language descriptions of sales prospects into structured search criteria.

Respond with ONLY a JSON object, no prose, with these optional keys:
  "jobTitles":      array of job title strings
  "locations":      array of location strings (city, state, or country)
  "industries":     array of industry strings
  "companySizes":   array of employee-count ranges formatted "min,max" (e.g. "1,10", "11,50")
  "keywords":       array of free-text keyword strings
  "seniorityLevel": one of "owner", "founder", "c_suite", "partner", "vp", "director", "manager", "senior", "entry"
  "targetCompany":  a single company name, only when the description names a specific company

Omit keys that do not apply. Do not invent values that are not implied by the description.`

// Parser turns a natural-language query into SearchCriteria.
type Parser interface {
	Parse(ctx context.Context, input string) (*model.SearchCriteria, error)
}

// AnthropicParser implements Parser on top of the Anthropic messages API.
type AnthropicParser struct {
	client anthropic.Client
	model  string
}

// NewAnthropicParser creates a Parser backed by the given Anthropic client.
func NewAnthropicParser(client anthropic.Client, modelName string) *AnthropicParser {
	return &AnthropicParser{client: client, model: modelName}
}

// Parse asks the model to translate input into criteria. The model is
// instructed to emit bare JSON; any surrounding prose is stripped before
// decoding.
func (p *AnthropicParser) Parse(ctx context.Context, input string) (*model.SearchCriteria, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    parseSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: input},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "criteria: parse query")
	}

	raw := extractJSON(resp.Text())
	if raw == "" {
		return nil, eris.New("criteria: no JSON object in model response")
	}

	var c model.SearchCriteria
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, eris.Wrap(err, "criteria: decode model response")
	}

	applyDefaults(&c)

	zap.L().Debug("parsed search criteria",
		zap.Strings("job_titles", c.JobTitles),
		zap.Strings("locations", c.Locations),
		zap.String("target_company", c.TargetCompany))

	return &c, nil
}

// Fallback builds minimal criteria when translation fails: the whole input
// becomes a job-title term so the search still has something to match on.
func Fallback(input string) *model.SearchCriteria {
	c := &model.SearchCriteria{
		JobTitles: []string{strings.TrimSpace(input)},
	}
	applyDefaults(c)
	return c
}

// applyDefaults fills in the size bands the search cascade expects when the
// model returned none.
func applyDefaults(c *model.SearchCriteria) {
	if len(c.CompanySizes) == 0 {
		c.CompanySizes = append([]string(nil), model.DefaultSizeRanges...)
	}
}

// extractJSON returns the first top-level JSON object in s, tolerating
// markdown fences or prose around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
