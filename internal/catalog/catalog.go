package catalog

import (
	"errors"
	"fmt"
	"strings"

	"character-chat/internal/domain"
)

// Catalog is a read-only persona registry. Lookups never fabricate defaults.
type Catalog struct {
	personas []domain.Persona
	byID     map[string]int
}

// New builds a Catalog, rejecting duplicate ids and unknown categories.
func New(personas []domain.Persona) (*Catalog, error) {
	if len(personas) == 0 {
		return nil, errors.New("catalog: at least one persona is required")
	}
	c := &Catalog{
		personas: make([]domain.Persona, 0, len(personas)),
		byID:     make(map[string]int, len(personas)),
	}
	for _, p := range personas {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, errors.New("catalog: persona id must not be empty")
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate persona id %q", id)
		}
		if !p.Category.Valid() {
			return nil, fmt.Errorf("catalog: persona %q has unknown category %q", id, p.Category)
		}
		p.ID = id
		c.byID[id] = len(c.personas)
		c.personas = append(c.personas, p)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultPersonas)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) GetByID(id string) (domain.Persona, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return domain.Persona{}, false
	}
	return c.personas[idx], true
}

// GetByCategory returns personas of the category in catalog order.
func (c *Catalog) GetByCategory(category domain.Category) []domain.Persona {
	out := []domain.Persona{}
	for _, p := range c.personas {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) All() []domain.Persona {
	out := make([]domain.Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// First is the persona a new chat session starts with.
func (c *Catalog) First() domain.Persona {
	return c.personas[0]
}
