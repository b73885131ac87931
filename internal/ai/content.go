package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
)

// NewsItem is one entry of the watch-world news strip on the home page.
type NewsItem struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

var placeholderSuggestions = []string{
	"Rolex Submariner Date",
	"Omega Speedmaster Moonwatch",
	"Cartier Santos de Cartier",
	"Jaeger-LeCoultre Reverso",
}

var placeholderNews = []NewsItem{
	{Title: "Il mercato degli orologi vintage", Summary: "I segnatempo d'epoca continuano ad attrarre collezionisti da tutto il mondo."},
	{Title: "Guida alla manutenzione", Summary: "Quando e perché revisionare il proprio orologio meccanico."},
	{Title: "Icone del polso", Summary: "I modelli che hanno definito un secolo di orologeria."},
}

const placeholderHero = "Il tuo concierge di fiducia per orologi di lusso: acquisto, vendita e assistenza su misura."

// ContentService produces the AI-assisted editorial content. A nil client is
// allowed and behaves as a permanently degraded one.
type ContentService struct {
	client *Client
	logger logger.Logger
}

func NewContentService(client *Client, log logger.Logger) *ContentService {
	return &ContentService{client: client, logger: log}
}

// Suggestions returns model names to propose for an interest expressed in a
// personalized request. Failures fall back to a curated list.
func (s *ContentService) Suggestions(ctx context.Context, interest string) []string {
	if s.client == nil {
		return placeholderSuggestions
	}

	prompt := fmt.Sprintf(
		"Suggest 4 luxury watch models for a customer interested in: %s.\n"+
			"Reply with a JSON array of strings, model names only, no markdown.", interest)

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Suggestion generation degraded to placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderSuggestions
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &suggestions); err != nil || len(suggestions) == 0 {
		return placeholderSuggestions
	}
	return suggestions
}

// News returns the home-page news items. Failures fall back to static content.
func (s *ContentService) News(ctx context.Context) []NewsItem {
	if s.client == nil {
		return placeholderNews
	}

	prompt := "Write 3 short news items about the luxury watch world, in Italian.\n" +
		"Reply with a JSON array of objects with keys \"title\" and \"summary\", no markdown."

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("News generation degraded to placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderNews
	}

	var items []NewsItem
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &items); err != nil || len(items) == 0 {
		return placeholderNews
	}
	return items
}

// HeroTagline returns the home-page hero copy.
func (s *ContentService) HeroTagline(ctx context.Context) string {
	if s.client == nil {
		return placeholderHero
	}

	prompt := "Write one elegant Italian tagline for a luxury watch concierge boutique. " +
		"Reply with the tagline only, no quotes."

	text, err := s.client.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Hero generation degraded to placeholder", map[string]interface{}{
			"error": err.Error(),
		})
		return placeholderHero
	}
	return text
}

// stripCodeFence unwraps ```json fenced replies the model sometimes produces.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
