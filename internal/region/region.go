// Package region assigns a geographic category to an article from its
// title and source alone, using the model collaborator.
package region

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mohammad-safakhou/gatherer/provider"
)

// Unknown is the category of last resort; invalid model answers collapse
// into it rather than leaking free text downstream.
const Unknown = "Unknown"

// Categories is the closed set of valid answers.
var Categories = []string{
	"Global",
	"China",
	"East Asia",
	"Singapore",
	"Southeast Asia",
	"South Asia",
	"Central Asia",
	"Russia",
	"Oceania",
	"West Asia (Middle East)",
	"Africa",
	"Europe",
	"Latin America & Caribbean",
	"North America",
	Unknown,
}

const systemPrompt = `You are an expert news editor with deep geopolitical knowledge. Your task is to categorize a news article based ONLY on its title and source.

You MUST choose exactly one category from the following list:
%s

- 'Global': Use for articles involving multiple distinct regions (e.g., a US-China summit, a UN resolution).
- 'North America': For the United States and Canada.
- 'Latin America & Caribbean': For countries in Central and South America, and the Caribbean.
- 'Europe': For European countries, including the UK and the European Union as an entity.
- 'Africa': For countries on the African continent.
- 'Russia': For articles primarily about Russia.
- 'West Asia (Middle East)': For countries like Lebanon, Iran, Saudi Arabia, Palestine, etc.
- 'Central Asia': For Kazakhstan, Uzbekistan, etc.
- 'South Asia': For India, Pakistan, Bangladesh, Sri Lanka.
- 'Southeast Asia': For countries like Vietnam, Thailand, Indonesia, Malaysia, Philippines.
- 'Singapore': Use ONLY for articles specifically about Singapore.
- 'East Asia': For Japan, South Korea, North Korea.
- 'China': For articles primarily about China.
- 'Oceania': For Australia, New Zealand, Pacific Islands.
- 'Unknown': Use ONLY if you cannot determine the region with confidence.

Analyze the geographic entities (countries, cities, regions) mentioned in the title. The source can also be a strong clue.

Your response MUST BE ONLY the category name and nothing else. Do not add explanations or any extra text.`

// Categorizer assigns regions through the model collaborator.
type Categorizer struct {
	provider provider.Provider
	logger   *log.Logger
	valid    map[string]struct{}
}

// NewCategorizer creates a Categorizer.
func NewCategorizer(p provider.Provider, logger *log.Logger) *Categorizer {
	valid := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		valid[c] = struct{}{}
	}
	return &Categorizer{provider: p, logger: logger, valid: valid}
}

// Categorize returns one category from Categories. A model answer outside
// the list is logged and mapped to Unknown; a model failure propagates.
func (c *Categorizer) Categorize(ctx context.Context, title, source string) (string, error) {
	system := fmt.Sprintf(systemPrompt, strings.Join(Categories, ", "))
	user := fmt.Sprintf("Title: %q\nSource: %q\n\nCategory:", title, source)

	answer, err := c.provider.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("categorizing %q: %w", title, err)
	}

	category := strings.TrimSpace(answer)
	if _, ok := c.valid[category]; !ok {
		if c.logger != nil {
			c.logger.Printf("model returned invalid category %q for %q, defaulting to %s", category, title, Unknown)
		}
		return Unknown, nil
	}
	return category, nil
}
