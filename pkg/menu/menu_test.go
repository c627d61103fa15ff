package menu

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(DefaultItems())
	require.NoError(t, err)

	return store
}

func TestGet(t *testing.T) {
	store := newDefaultStore(t)

	item, err := store.Get("Margherita Pizza")
	require.NoError(t, err)
	assert.Equal(t, 8.99, item.Price)
	assert.Equal(t, "Classic pizza with fresh mozzarella, basil, and tomato sauce.", item.Description)

	_, err = store.Get("Nonexistent Dish")

	var notFound *ItemNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Nonexistent Dish", notFound.Name)

	_, err = store.Get("margherita pizza")
	assert.Error(t, err, "lookups are case sensitive")
}

func TestAll(t *testing.T) {
	store := newDefaultStore(t)

	all := store.All()
	assert.Len(t, all, 6)

	for _, name := range []string{
		"Margherita Pizza",
		"Spaghetti Carbonara",
		"Caesar Salad",
		"Grilled Chicken Sandwich",
		"Mango Smoothie",
		"Chocolate Lava Cake",
	} {
		assert.Contains(t, all, name)
	}

	delete(all, "Margherita Pizza")
	_, err := store.Get("Margherita Pizza")
	assert.NoError(t, err, "mutating the copy must not change the store")
	assert.Equal(t, 6, store.Len())
	assert.Equal(t, "Margherita Pizza", store.Names()[0])
}

func TestNewRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"blank name", []Item{{Name: " ", Price: 1, Description: "x"}}},
		{"zero price", []Item{{Name: "Soup", Price: 0, Description: "x"}}},
		{"negative price", []Item{{Name: "Soup", Price: -2, Description: "x"}}},
		{"blank description", []Item{{Name: "Soup", Price: 1}}},
		{"duplicate", []Item{
			{Name: "Soup", Price: 1, Description: "x"},
			{Name: "Soup", Price: 2, Description: "y"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items)
			assert.Error(t, err)
		})
	}
}

func TestItemJSON(t *testing.T) {
	item := DefaultItems()[0]

	buf, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":8.99,"description":"Classic pizza with fresh mozzarella, basil, and tomato sauce."}`, string(buf))
}

func TestNewFromConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	store, err := NewFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 6, store.Len())

	viper.Set("menu.items", []map[string]any{
		{"name": "Tomato Soup", "price": 5.5, "description": "Slow cooked tomatoes."},
	})

	store, err = NewFromConfig()
	require.NoError(t, err)

	item, err := store.Get("Tomato Soup")
	require.NoError(t, err)
	assert.Equal(t, 5.5, item.Price)
}
