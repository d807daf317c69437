// Package profile defines answer personas that modulate how the model is asked
// to respond during collection. Each profile provides a SystemPromptAddendum
// that is appended to the system prompt sent to the LLM.
package profile

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Profile describes how a simulated user phrases their expectations.
type Profile struct {
	Name                 string
	Description          string
	SystemPromptAddendum string
	// RequireSources, when true, demands at least one cited URL per answer.
	// Answers without citations are still recorded, but trigger a warning.
	RequireSources bool
}

// builtins is the registry of built-in profiles keyed by name.
var builtins = map[string]Profile{
	"general": {
		Name:        "general",
		Description: "Default persona; answers as a general-purpose assistant would.",
		SystemPromptAddendum: "Answer as you normally would for a general audience. " +
			"Cite sources only when you relied on them.",
	},
	"consumer": {
		Name:        "consumer",
		Description: "Shopper comparing products; expects concrete picks.",
		SystemPromptAddendum: "The user is a consumer deciding what to buy. Name specific " +
			"products or companies, rank them when it helps, and keep the answer short.",
	},
	"professional": {
		Name:        "professional",
		Description: "Buyer doing vendor research; expects sourced claims.",
		SystemPromptAddendum: "The user is a professional evaluating vendors for their organization. " +
			"Compare options on capability, pricing and support. Back factual claims with source URLs.",
		RequireSources: true,
	},
	"local": {
		Name:        "local",
		Description: "User looking for nearby providers.",
		SystemPromptAddendum: "The user is looking for providers near them. Prefer businesses " +
			"with a local presence and mention where they operate.",
	},
}

// Names returns the built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load returns the named built-in profile or an error if the name is unknown.
func Load(name string) (Profile, error) {
	p, ok := builtins[name]
	if !ok {
		return Profile{}, eris.Errorf("profile: unknown profile %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}
