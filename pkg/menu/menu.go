package menu

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cohesivestack/valgo"
	"github.com/spf13/viper"
)

/*
Item is a single dish. The name is the key of the menu and is left out of
the JSON form, which mirrors what guests see: name → price, description.
*/
type Item struct {
	Name        string  `json:"-" mapstructure:"name"`
	Price       float64 `json:"price" mapstructure:"price"`
	Description string  `json:"description" mapstructure:"description"`
}

func (item Item) Validate() error {
	v := valgo.Is(
		valgo.String(item.Name, "name").Not().Blank(),
	).Is(
		valgo.Float64(item.Price, "price").GreaterThan(0),
	).Is(
		valgo.String(item.Description, "description").Not().Blank(),
	)

	if !v.Valid() {
		return v.Error()
	}

	return nil
}

/*
Store is the read-only restaurant menu. It is built once and never
changes, so concurrent readers need no locking.
*/
type Store struct {
	items map[string]Item
	order []string
}

/*
New builds a store from items, rejecting invalid or duplicated dishes.
*/
func New(items []Item) (*Store, error) {
	store := &Store{
		items: make(map[string]Item, len(items)),
		order: make([]string, 0, len(items)),
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("invalid menu item %q: %w", item.Name, err)
		}

		if _, ok := store.items[item.Name]; ok {
			return nil, &DuplicateItemError{Name: item.Name}
		}

		store.items[item.Name] = item
		store.order = append(store.order, item.Name)
	}

	return store, nil
}

/*
NewFromConfig reads menu.items, falling back to the house menu when the
key is absent.
*/
func NewFromConfig() (*Store, error) {
	if !viper.IsSet("menu.items") {
		return New(DefaultItems())
	}

	var items []Item

	if err := viper.UnmarshalKey("menu.items", &items); err != nil {
		return nil, fmt.Errorf("failed to read menu.items: %w", err)
	}

	return New(items)
}

// Get looks a dish up by its exact name.
func (store *Store) Get(name string) (Item, error) {
	item, ok := store.items[name]

	if !ok {
		return Item{}, &ItemNotFoundError{Name: name}
	}

	return item, nil
}

// All returns a copy of the whole menu keyed by dish name.
func (store *Store) All() map[string]Item {
	return maps.Clone(store.items)
}

// Names lists the dishes in the order they were configured.
func (store *Store) Names() []string {
	return slices.Clone(store.order)
}

func (store *Store) Len() int {
	return len(store.items)
}

func DefaultItems() []Item {
	return []Item{
		{
			Name:        "Margherita Pizza",
			Price:       8.99,
			Description: "Classic pizza with fresh mozzarella, basil, and tomato sauce.",
		},
		{
			Name:        "Spaghetti Carbonara",
			Price:       12.50,
			Description: "Traditional Italian pasta with creamy egg sauce, pancetta, and parmesan.",
		},
		{
			Name:        "Caesar Salad",
			Price:       7.25,
			Description: "Crisp romaine lettuce tossed with Caesar dressing, croutons, and parmesan cheese.",
		},
		{
			Name:        "Grilled Chicken Sandwich",
			Price:       9.75,
			Description: "Juicy grilled chicken breast with lettuce, tomato, and mayo on a toasted bun.",
		},
		{
			Name:        "Mango Smoothie",
			Price:       4.50,
			Description: "Refreshing smoothie made with ripe mangoes and yogurt.",
		},
		{
			Name:        "Chocolate Lava Cake",
			Price:       6.00,
			Description: "Warm chocolate cake with a gooey molten center, served with vanilla ice cream.",
		},
	}
}
