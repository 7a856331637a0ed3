// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomizationHashToppingOrderIndependent(t *testing.T) {
	a := CustomizationHash("50", "70", []ToppingChoice{
		{ToppingID: 3, Quantity: 1},
		{ToppingID: 1, Quantity: 2},
	})
	b := CustomizationHash("50", "70", []ToppingChoice{
		{ToppingID: 1, Quantity: 2},
		{ToppingID: 3, Quantity: 1},
	})
	assert.Equal(t, a, b)
}

func TestCustomizationHashDistinguishesSelections(t *testing.T) {
	base := CustomizationHash("50", "70", []ToppingChoice{{ToppingID: 1, Quantity: 1}})

	differentIce := CustomizationHash("100", "70", []ToppingChoice{{ToppingID: 1, Quantity: 1}})
	assert.NotEqual(t, base, differentIce)

	differentSweet := CustomizationHash("50", "30", []ToppingChoice{{ToppingID: 1, Quantity: 1}})
	assert.NotEqual(t, base, differentSweet)

	differentQty := CustomizationHash("50", "70", []ToppingChoice{{ToppingID: 1, Quantity: 2}})
	assert.NotEqual(t, base, differentQty)

	differentTopping := CustomizationHash("50", "70", []ToppingChoice{{ToppingID: 2, Quantity: 1}})
	assert.NotEqual(t, base, differentTopping)
}

func TestCustomizationHashEmptyToppings(t *testing.T) {
	a := CustomizationHash("50", "70", nil)
	b := CustomizationHash("50", "70", []ToppingChoice{})
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)
}

func TestCustomizationHashCaseInsensitive(t *testing.T) {
	a := CustomizationHash("Less Ice", "Normal", nil)
	b := CustomizationHash("less ice", "normal", nil)
	assert.Equal(t, a, b)
}
