package menu

import "fmt"

// ItemNotFoundError is returned when a dish is not on the menu.
type ItemNotFoundError struct {
	Name string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %q not found", e.Name)
}

// DuplicateItemError is returned when a menu lists the same dish twice.
type DuplicateItemError struct {
	Name string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("menu item %q listed more than once", e.Name)
}
