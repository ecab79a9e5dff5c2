package intent

import (
	"context"
	"strings"

	"siipcoffee/internal/models"
)

// Intent tags produced by the keyword classifier.
const (
	IntentViewMenu = "view_menu"
	IntentCategory = "category_recommendation"
	IntentPopular  = "popular_recommendation"
	IntentAskPrice = "ask_price"
	IntentGeneral  = "general"
)

// rule pairs a substring predicate with the reply it produces. Rules are
// evaluated in order, first match wins; ties break on rule order, not
// specificity.
type rule struct {
	keywords []string
	build    func(c models.Catalog) *models.ChatReply
}

// KeywordClassifier is the local fallback used when the backend declares no
// structured intent: a fixed, ordered vocabulary matched against the
// lower-cased user message. It suggests items but never mutates the cart;
// selection stays an explicit user action.
type KeywordClassifier struct {
	catalog models.Catalog
	rules   []rule
}

// NewKeywordClassifier builds the classifier over the given catalog.
func NewKeywordClassifier(catalog models.Catalog) *KeywordClassifier {
	k := &KeywordClassifier{catalog: catalog}
	k.rules = []rule{
		{
			keywords: []string{"menu", "show me"},
			build: func(c models.Catalog) *models.ChatReply {
				return &models.ChatReply{
					Response:       "Here's our menu! I've organized it by categories for you. You can tap on any item to add it to your cart, or just tell me what you're in the mood for!",
					Intent:         IntentViewMenu,
					SuggestedItems: suggest(categorySamples(c, 2, 6)),
					MenuData:       c,
				}
			},
		},
		{
			keywords: []string{"iced coffee", "cold coffee", "ice coffee", "cold brew"},
			build:    categoryReply(models.MenuCategoryIcedCoffee, "iced coffee"),
		},
		{
			keywords: []string{"espresso", "hot coffee", "latte", "cappuccino", "americano"},
			build:    categoryReply(models.MenuCategoryEspressoBased, "espresso based"),
		},
		{
			keywords: []string{"pastry", "food", "snack", "croissant", "cake"},
			build:    categoryReply(models.MenuCategoryPastry, "pastry"),
		},
		{
			keywords: []string{"popular", "recommendation", "best"},
			build: func(c models.Catalog) *models.ChatReply {
				return &models.ChatReply{
					Response:       "These are our crowd favorites! Each one is a great pick. Which one catches your eye?",
					Intent:         IntentPopular,
					SuggestedItems: suggest(popularPicks(c)),
				}
			},
		},
		{
			keywords: []string{"chocolate"},
			build: func(c models.Catalog) *models.ChatReply {
				return &models.ChatReply{
					Response:       "Chocolate lover! Here's everything on the menu with chocolate in it.",
					Intent:         IntentCategory,
					SuggestedItems: suggest(chocolateItems(c)),
				}
			},
		},
		{
			keywords: []string{"price", "cost", "how much"},
			build: func(c models.Catalog) *models.ChatReply {
				return &models.ChatReply{
					Response:       "Our prices range from IDR 12,000 to IDR 26,000. Here are some popular options with their prices:",
					Intent:         IntentAskPrice,
					SuggestedItems: suggest(categorySamples(c, 1, 4)),
				}
			},
		},
	}
	return k
}

// Reply classifies the message and builds the matching suggestion set. It
// never returns an error: an unmatched message gets the generic help reply
// with no suggestions.
func (k *KeywordClassifier) Reply(_ context.Context, _, message string) (*models.ChatReply, error) {
	lower := strings.ToLower(message)
	for _, r := range k.rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.build(k.catalog), nil
			}
		}
	}
	return &models.ChatReply{
		Response: "I'd be happy to help you! You can ask me about:\n\n" +
			"- 'Show me the menu'\n- 'I want iced coffee'\n- 'What's popular?'\n" +
			"- 'Tell me about pastries'\n- 'How much is an espresso?'\n\n" +
			"Or just tell me what you're in the mood for and I'll make some recommendations!",
		Intent:         IntentGeneral,
		SuggestedItems: []models.SuggestedItem{},
	}, nil
}

func categoryReply(category models.MenuCategory, label string) func(models.Catalog) *models.ChatReply {
	return func(c models.Catalog) *models.ChatReply {
		items := c[string(category)]
		if len(items) > 6 {
			items = items[:6]
		}
		return &models.ChatReply{
			Response:       "Great choice! Here are our " + label + " options. Which one catches your eye?",
			Intent:         IntentCategory,
			SuggestedItems: suggest(items),
		}
	}
}

// categorySamples takes up to perCategory items from each category until
// limit items are collected.
func categorySamples(c models.Catalog, perCategory, limit int) []models.MenuItem {
	var samples []models.MenuItem
	for _, cat := range orderedCategories() {
		items := c[string(cat)]
		for i := 0; i < len(items) && i < perCategory; i++ {
			samples = append(samples, items[i])
		}
		if len(samples) >= limit {
			return samples[:limit]
		}
	}
	return samples
}

// popularPicks returns a curated cross-category selection: the first item
// of each category.
func popularPicks(c models.Catalog) []models.MenuItem {
	var picks []models.MenuItem
	for _, cat := range orderedCategories() {
		if items := c[string(cat)]; len(items) > 0 {
			picks = append(picks, items[0])
		}
	}
	return picks
}

func chocolateItems(c models.Catalog) []models.MenuItem {
	var found []models.MenuItem
	for _, item := range c.Items() {
		text := strings.ToLower(item.Name + " " + item.Description)
		if strings.Contains(text, "chocolate") || strings.Contains(text, "choco") {
			found = append(found, item)
		}
	}
	return found
}

func orderedCategories() []models.MenuCategory {
	return []models.MenuCategory{
		models.MenuCategoryIcedCoffee,
		models.MenuCategoryEspressoBased,
		models.MenuCategoryNonCoffee,
		models.MenuCategoryRefreshment,
		models.MenuCategoryPastry,
		models.MenuCategoryOthers,
	}
}

func suggest(items []models.MenuItem) []models.SuggestedItem {
	out := make([]models.SuggestedItem, 0, len(items))
	for i := range items {
		item := items[i]
		out = append(out, models.SuggestedItem{Name: item.Name, Item: &item})
	}
	return out
}
