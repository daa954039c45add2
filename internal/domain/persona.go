package domain

// Category is the closed set of persona groupings.
type Category string

const (
	CategoryRomance Category = "romance"
	CategoryFamily  Category = "family"
	CategoryFriend  Category = "friend"
	CategoryPet     Category = "pet"
	CategoryHelper  Category = "helper"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryRomance, CategoryFamily, CategoryFriend, CategoryPet, CategoryHelper}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Persona is an immutable character definition.
type Persona struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Emoji        string   `json:"emoji"`
	Category     Category `json:"category"`
	SystemPrompt string   `json:"systemPrompt"`
	Greeting     string   `json:"greeting"`
}
