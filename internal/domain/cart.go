package domain

// Cart merge rules. These are pure functions so the conversational reducer
// and the HTTP layer apply identical semantics; none of them mutate their
// receiver.

// WithReplaced returns incoming as the new cart. A nil incoming list reads
// as an empty cart.
func (ci CartItems) WithReplaced(incoming CartItems) CartItems {
	if incoming == nil {
		return CartItems{}
	}
	return incoming
}

// WithAdded merges item into the cart: an existing line item with the same
// product identity has its quantity incremented by qty, otherwise the item
// is appended. A qty below 1 defaults to 1.
func (ci CartItems) WithAdded(item CartItem, qty int) CartItems {
	if qty < 1 {
		qty = 1
	}
	out := make(CartItems, len(ci))
	copy(out, ci)
	for i := range out {
		if out[i].ProductID == item.ProductID {
			out[i].Quantity += qty
			return out
		}
	}
	item.Quantity = qty
	return append(out, item)
}

// WithRemoved deletes the line item matching productID, if present. Absence
// is a no-op, not an error; removed reports whether anything was deleted.
func (ci CartItems) WithRemoved(productID string) (out CartItems, removed bool) {
	out = make(CartItems, 0, len(ci))
	for _, it := range ci {
		if it.ProductID == productID {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return out, removed
}
