package list

import "strings"

// Collection identifies which view of a list an item is shown in.
type Collection int

const (
	// Active holds items still to buy.
	Active Collection = iota
	// Purchased holds items already bought.
	Purchased
)

func (c Collection) String() string {
	switch c {
	case Active:
		return "active"
	case Purchased:
		return "purchased"
	default:
		return "unknown"
	}
}

// CollectionOf returns the collection an item currently belongs to.
func CollectionOf(it Item) Collection {
	if it.Purchased {
		return Purchased
	}
	return Active
}

// ItemPatch is a partial update of an Item. Nil fields are left untouched.
type ItemPatch struct {
	Name      *string
	Quantity  *int
	Purchased *bool
}

// Validate checks the fields that are set.
func (p ItemPatch) Validate() error {
	if p.Name != nil {
		if _, err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Quantity != nil {
		if err := ValidateQuantity(*p.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns it with the patch applied. The item ID never changes.
func (p ItemPatch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Purchased != nil {
		it.Purchased = *p.Purchased
	}
	return it
}

// ValidateName trims name and rejects it when nothing is left.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return trimmed, nil
}

// ValidateQuantity rejects quantities below one.
func ValidateQuantity(q int) error {
	if q < 1 {
		return &ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}
	return nil
}
