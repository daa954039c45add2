package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"character-chat/internal/domain"
)

func TestDefault_HasNinePersonasWithUniqueIDs(t *testing.T) {
	c := Default()
	all := c.All()
	require.Len(t, all, 9)

	seen := map[string]bool{}
	for _, p := range all {
		require.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		require.True(t, p.Category.Valid())
		require.NotEmpty(t, p.SystemPrompt)
		require.NotEmpty(t, p.Greeting)
	}
	require.Equal(t, "elon-musk", c.First().ID)
}

func TestGetByID(t *testing.T) {
	c := Default()

	p, ok := c.GetByID("pet-dog")
	require.True(t, ok)
	require.Equal(t, domain.CategoryPet, p.Category)

	_, ok = c.GetByID("nobody")
	require.False(t, ok)

	_, ok = c.GetByID("")
	require.False(t, ok)
}

func TestGetByCategory_KeepsCatalogOrder(t *testing.T) {
	c := Default()

	romance := c.GetByCategory(domain.CategoryRomance)
	ids := make([]string, 0, len(romance))
	for _, p := range romance {
		ids = append(ids, p.ID)
	}
	require.Equal(t, []string{"ai-girlfriend", "ai-boyfriend", "tsundere-girlfriend"}, ids)

	require.Len(t, c.GetByCategory(domain.CategoryHelper), 1)
	require.Empty(t, c.GetByCategory(domain.Category("villain")))
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Name = "changed"

	p, ok := c.GetByID(all[0].ID)
	require.True(t, ok)
	require.NotEqual(t, "changed", p.Name)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New([]domain.Persona{{ID: " ", Category: domain.CategoryPet}})
	require.Error(t, err)

	_, err = New([]domain.Persona{
		{ID: "a", Category: domain.CategoryPet},
		{ID: "a", Category: domain.CategoryFriend},
	})
	require.ErrorContains(t, err, "duplicate")

	_, err = New([]domain.Persona{{ID: "a", Category: "villain"}})
	require.ErrorContains(t, err, "unknown category")
}
