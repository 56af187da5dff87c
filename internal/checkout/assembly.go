package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	cartdomain "github.com/leonjames-san/familiams/internal/cart/domain"
	orderdomain "github.com/leonjames-san/familiams/internal/order/domain"
)

// ErrEmptyCart is returned when a checkout is attempted on a cart with no
// lines.
var ErrEmptyCart = errors.New("checkout: cart is empty, nothing to order")

// MissingFieldError reports the first required customer field found empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("checkout: missing required customer field %q", e.Field)
}

// Customer is the contact information collected by the checkout form.
type Customer struct {
	Name  string
	Email string
	Phone string
}

// BuildOrder turns a cart snapshot plus customer contact data into an order
// ready for persistence. It does not persist anything itself.
//
// The order total is the payable amount for the chosen payment method; each
// item's total stays undiscounted, so the Pix discount shows up only at the
// order level.
func BuildOrder(cart *cartdomain.Cart, customer Customer, method PaymentMethod) (*orderdomain.Order, error) {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", customer.Name},
		{"email", customer.Email},
		{"phone", customer.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			return nil, &MissingFieldError{Field: f.name}
		}
	}

	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]orderdomain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		item := orderdomain.OrderItem{
			DisplayName: line.DisplayName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.Subtotal(),
		}
		id := line.ID
		switch line.Kind {
		case cartdomain.KindService:
			item.ServiceID = &id
		default:
			item.ProductID = &id
		}
		items = append(items, item)
	}

	return &orderdomain.Order{
		ID:            uuid.New(),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		PaymentMethod: string(method),
		TotalAmount:   PayableAmount(cart.Total(), method),
		Status:        orderdomain.StatusPending,
		Items:         items,
	}, nil
}
