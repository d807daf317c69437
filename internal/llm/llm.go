// Package llm handles LLM provider communication, prompt construction,
// answer validation, and the single repair attempt.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dshills/brandlens/internal/profile"
	"github.com/dshills/brandlens/internal/schema"
)

// ErrInvalidModelOutput is returned when both the initial and repair LLM
// responses fail validation. The caller should exit with code 5.
var ErrInvalidModelOutput = eris.New("llm: invalid model output after repair attempt")

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
}

// NewProvider is the factory for creating LLM providers. It is a package-level
// variable so tests can replace it with a mock without modifying the call site.
// Tests must restore the original value; use t.Cleanup to do so safely.
var NewProvider func(providerName, model string) (Provider, error) = defaultNewProvider

// Options configures a Client. RequestsPerMinute paces every provider
// request, repairs included; zero or less disables pacing.
type Options struct {
	Provider          string
	Model             string
	MaxTokens         int
	Temperature       float64
	RequestsPerMinute int
	Debug             bool
}

// ValidationError records a single validation failure on an LLM response.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Client asks questions of a single provider under one persona.
type Client struct {
	provider Provider
	profile  profile.Profile
	opts     Options
	limiter  *rate.Limiter
}

// NewClient creates the configured provider and binds it to prof.
func NewClient(opts Options, prof profile.Profile) (*Client, error) {
	p, err := NewProvider(opts.Provider, opts.Model)
	if err != nil {
		return nil, eris.Wrap(err, "llm: create provider")
	}
	return &Client{provider: p, profile: prof, opts: opts, limiter: newLimiter(opts.RequestsPerMinute)}, nil
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// complete waits for a request slot, then calls the provider.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: rate limit wait")
	}
	return c.provider.Complete(ctx, system, user, c.opts.MaxTokens, c.opts.Temperature)
}

// Ask puts prompt to the model and returns its validated answer. When the
// first response is unusable, one repair attempt is made before giving up
// with ErrInvalidModelOutput.
func (c *Client) Ask(ctx context.Context, prompt string) (*schema.Answer, error) {
	sysPrompt := buildSystemPrompt(c.profile)
	userPrompt := buildUserPrompt(prompt)

	if c.opts.Debug {
		zap.L().Debug("llm: prompts",
			zap.String("system", sysPrompt),
			zap.String("user", userPrompt),
		)
	}

	raw, err := c.complete(ctx, sysPrompt, userPrompt)
	if err != nil {
		return nil, eris.Wrap(err, "llm: complete")
	}

	answer, validationErrs := ValidateResponse(raw)
	if answer != nil && !needsRepair(validationErrs) {
		logDropped(validationErrs)
		return answer, nil
	}

	zap.L().Debug("llm: repairing response", zap.Int("errors", len(validationErrs)))
	repairPrompt := buildRepairPrompt(userPrompt, raw, validationErrs)
	raw2, err := c.complete(ctx, sysPrompt, repairPrompt)
	if err != nil {
		return nil, eris.Wrap(err, "llm: repair complete")
	}

	answer2, validationErrs2 := ValidateResponse(raw2)
	if answer2 != nil && !needsRepair(validationErrs2) {
		logDropped(validationErrs2)
		return answer2, nil
	}
	return nil, ErrInvalidModelOutput
}

func logDropped(errs []ValidationError) {
	for _, e := range errs {
		zap.L().Debug("llm: dropped field", zap.String("field", e.Field), zap.String("reason", e.Message))
	}
}

// needsRepair returns true when validation errors include a parse or
// required-field failure that requires a retry.
func needsRepair(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Field == "json_parse" || e.Field == "required_field" {
			return true
		}
	}
	return false
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line. Used to strip orphaned
// opening fences from truncated responses.
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

// stripMarkdownFences removes leading/trailing markdown code fences that LLMs
// sometimes wrap around JSON output (e.g., "```json\n...\n```").
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by any character that is not
// a valid JSON string escape character ("\/bfnrtu).
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// wireAnswer mirrors schema.Answer with a pointer so a missing "answer" key
// can be told apart from an empty one.
type wireAnswer struct {
	Answer    *string  `json:"answer"`
	Citations []string `json:"citations"`
}

// ValidateResponse parses and validates the raw LLM response.
// Leading/trailing markdown fences are stripped before parsing.
// Citations that are not http(s) URLs are dropped and recorded as
// non-fatal ValidationErrors. Returns a nil answer only on parse failure or a
// missing or blank answer.
func ValidateResponse(raw string) (*schema.Answer, []ValidationError) {
	var errs []ValidationError

	raw = stripMarkdownFences(raw)

	var w wireAnswer
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		fixed := fixInvalidJSONEscapes(raw)
		if err2 := json.Unmarshal([]byte(fixed), &w); err2 != nil {
			return nil, append(errs, ValidationError{Field: "json_parse", Message: err.Error()})
		}
	}

	if w.Answer == nil {
		return nil, append(errs, ValidationError{Field: "required_field", Message: "answer is missing"})
	}
	if strings.TrimSpace(*w.Answer) == "" {
		return nil, append(errs, ValidationError{Field: "required_field", Message: "answer is empty"})
	}

	answer := &schema.Answer{Text: *w.Answer, Citations: []string{}}
	seen := make(map[string]bool, len(w.Citations))
	for i, c := range w.Citations {
		c = strings.TrimSpace(c)
		if !isHTTPURL(c) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("citations[%d]", i),
				Message: fmt.Sprintf("%q is not an http(s) URL; dropped", c),
			})
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		answer.Citations = append(answer.Citations, c)
	}
	return answer, errs
}

func isHTTPURL(s string) bool {
	l := strings.ToLower(s)
	return (strings.HasPrefix(l, "http://") && len(l) > len("http://")) ||
		(strings.HasPrefix(l, "https://") && len(l) > len("https://"))
}

// buildSystemPrompt assembles the LLM system prompt.
func buildSystemPrompt(prof profile.Profile) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful assistant answering a user's question.\n\n")

	sb.WriteString("Output ONLY valid JSON conforming to the schema below. " +
		"No prose, no markdown fences, no explanation outside the JSON.\n\n")

	sb.WriteString("List in \"citations\" the full http(s) URLs of any sources you relied on. " +
		"Never invent URLs. If you used no sources, set citations to [].\n\n")

	if prof.RequireSources {
		sb.WriteString("Cite at least one source URL.\n\n")
	}

	if prof.SystemPromptAddendum != "" {
		sb.WriteString(prof.SystemPromptAddendum)
		sb.WriteString("\n\n")
	}

	sb.WriteString(outputSchema)
	return sb.String()
}

const outputSchema = `Output schema (JSON only):
{
  "answer": "your full answer as plain text or markdown",
  "citations": ["https://example.com/source"]
}
`

func buildUserPrompt(prompt string) string {
	return strings.TrimSpace(prompt) + "\n\nProduce the JSON answer now."
}

// buildRepairPrompt constructs the repair message. It includes the original
// user prompt and the previous invalid response so the LLM has full context.
func buildRepairPrompt(originalUserPrompt, previousResponse string, errs []ValidationError) string {
	var sb strings.Builder
	sb.WriteString(originalUserPrompt)
	sb.WriteString("\n\nYour previous response was:\n")
	sb.WriteString(previousResponse)
	sb.WriteString("\n\nThat response was invalid. Errors:\n")
	for _, e := range errs {
		fmt.Fprintf(&sb, "  - %s\n", e.Error())
	}
	sb.WriteString("\nPlease output only the corrected JSON conforming to the schema. Do not repeat the error.")
	return sb.String()
}

// apiKey reads the credential a provider needs from envVar.
func apiKey(provider, envVar string) (string, error) {
	key := os.Getenv(envVar)
	if key == "" {
		return "", eris.Errorf("llm: %s answers need %s in the environment", provider, envVar)
	}
	return key, nil
}

func errNoAnswerText(provider, model string) error {
	return eris.Errorf("%s: %s returned no answer text", provider, model)
}

// defaultNewProvider dispatches to the appropriate provider implementation.
func defaultNewProvider(providerName, model string) (Provider, error) {
	switch strings.ToLower(providerName) {
	case "anthropic", "":
		return newAnthropicProvider(model)
	case "openai":
		return newOpenAIProvider(model)
	case "google":
		return newGoogleProvider(model)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", providerName)
	}
}
