package classify

import "strings"

// CategoryOther is the fallback label when no keyword matches.
const CategoryOther = "other"

// categoryKeywords maps each category to the keywords that select it.
// First match wins, in declaration order.
var categoryKeywords = []struct {
	label    string
	keywords []string
}{
	{"electronics", []string{"phone", "laptop", "tablet", "camera", "headphone", "console", "monitor", "speaker", "tv", "keyboard", "drone"}},
	{"books", []string{"book", "novel", "comic", "manga", "textbook", "encyclopedia"}},
	{"clothing", []string{"jacket", "shirt", "dress", "shoe", "sneaker", "coat", "jeans", "hoodie"}},
	{"furniture", []string{"chair", "table", "desk", "sofa", "couch", "shelf", "wardrobe", "bed"}},
	{"sports", []string{"bike", "bicycle", "skate", "ball", "racket", "ski", "surf", "dumbbell", "tent"}},
	{"music", []string{"guitar", "piano", "violin", "drum", "synth", "vinyl", "amplifier"}},
	{"tools", []string{"drill", "saw", "hammer", "wrench", "toolbox", "sander"}},
	{"toys", []string{"toy", "lego", "puzzle", "doll", "boardgame"}},
}

// Classifier maps free text (typically an item title plus its tags) to a
// category label. Injected where classification is needed so callers can
// substitute deterministic implementations in tests.
type Classifier func(text string) string

// Category returns the category whose keywords match the text,
// case-insensitively, falling back to CategoryOther.
func Category(text string) string {
	lowered := strings.ToLower(text)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lowered, kw) {
				return c.label
			}
		}
	}
	return CategoryOther
}

// ItemText builds the classifier input from an item title and tags.
func ItemText(title string, tags []string) string {
	if len(tags) == 0 {
		return title
	}
	return title + " " + strings.Join(tags, " ")
}
