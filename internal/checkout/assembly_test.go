package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdomain "github.com/leonjames-san/familiams/internal/cart/domain"
	"github.com/leonjames-san/familiams/internal/money"
	orderdomain "github.com/leonjames-san/familiams/internal/order/domain"
)

func validCustomer() Customer {
	return Customer{
		Name:  "Maria Souza",
		Email: "maria@example.com",
		Phone: "+55 11 99999-0000",
	}
}

func cartWith(t *testing.T, lines ...cartdomain.CartLine) *cartdomain.Cart {
	t.Helper()
	c := cartdomain.New("sess-1")
	for _, l := range lines {
		require.NoError(t, c.AddItem(l))
	}
	return c
}

func productLine(id, price string, qty int) cartdomain.CartLine {
	return cartdomain.CartLine{
		ID:          id,
		Kind:        cartdomain.KindProduct,
		DisplayName: "product " + id,
		UnitPrice:   money.MustParse(price),
		Quantity:    qty,
	}
}

func serviceLine(id, price string, qty int) cartdomain.CartLine {
	return cartdomain.CartLine{
		ID:          id,
		Kind:        cartdomain.KindService,
		DisplayName: "service " + id,
		UnitPrice:   money.MustParse(price),
		Quantity:    qty,
	}
}

func TestBuildOrder_EmptyCart_Fails(t *testing.T) {
	_, err := BuildOrder(cartdomain.New("sess-1"), validCustomer(), MethodCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBuildOrder_MissingCustomerFields(t *testing.T) {
	cart := cartWith(t, productLine("p1", "10.00", 1))

	cases := []struct {
		customer Customer
		want     string
	}{
		{Customer{Name: "", Email: "a@b.c", Phone: "1"}, "name"},
		{Customer{Name: "Ana", Email: "", Phone: "1"}, "email"},
		{Customer{Name: "Ana", Email: "a@b.c", Phone: ""}, "phone"},
		{Customer{Name: "  ", Email: "", Phone: ""}, "name"}, // first missing field wins
	}

	for _, tc := range cases {
		_, err := BuildOrder(cart, tc.customer, MethodCard)
		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, tc.want, missing.Field)
	}
}

func TestBuildOrder_MapsLinesToItems(t *testing.T) {
	cart := cartWith(t,
		productLine("p1", "50.00", 2),
		serviceLine("s1", "30.00", 1),
	)

	order, err := BuildOrder(cart, validCustomer(), MethodCard)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)

	first := order.Items[0]
	require.NotNil(t, first.ProductID)
	assert.Equal(t, "p1", *first.ProductID)
	assert.Nil(t, first.ServiceID)
	assert.Equal(t, 2, first.Quantity)
	assert.Equal(t, "100.00", first.TotalPrice.String())

	second := order.Items[1]
	require.NotNil(t, second.ServiceID)
	assert.Equal(t, "s1", *second.ServiceID)
	assert.Nil(t, second.ProductID)
	assert.Equal(t, "30.00", second.TotalPrice.String())

	assert.Equal(t, orderdomain.StatusPending, order.Status)
	assert.NotEqual(t, order.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestBuildOrder_PixDiscountOnlyAtOrderLevel(t *testing.T) {
	cart := cartWith(t,
		productLine("p1", "50.00", 2),
		serviceLine("s1", "30.00", 1),
	)
	require.Equal(t, "130.00", cart.Total().String())
	require.Equal(t, 3, cart.ItemCount())

	order, err := BuildOrder(cart, validCustomer(), MethodPix)
	require.NoError(t, err)

	assert.Equal(t, "123.50", order.TotalAmount.String())

	itemSum := money.Zero
	for _, it := range order.Items {
		itemSum = itemSum.Add(it.TotalPrice)
	}
	assert.Equal(t, "130.00", itemSum.String(), "line totals stay undiscounted")
}

func TestBuildOrder_NonPixTotalMatchesItemSum(t *testing.T) {
	cart := cartWith(t, productLine("p1", "19.90", 3))

	order, err := BuildOrder(cart, validCustomer(), MethodBankSlip)
	require.NoError(t, err)

	itemSum := money.Zero
	for _, it := range order.Items {
		itemSum = itemSum.Add(it.TotalPrice)
	}
	assert.True(t, order.TotalAmount.Equal(itemSum))
}
