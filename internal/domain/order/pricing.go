package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/cafefusion/backend/internal/domain/menu"
)

// Pricing is the result of resolving a cart against the catalog.
type Pricing struct {
	Total decimal.Decimal
	Items []LineItem
}

// Price resolves every id through the catalog in input order and sums the
// unit prices. The first unresolvable id aborts with *ItemNotFoundError.
// Repeated ids produce repeated line items.
func Price(ctx context.Context, catalog menu.Lookup, itemIDs []int64) (*Pricing, error) {
	if len(itemIDs) == 0 {
		return nil, ErrEmptyItems
	}
	if len(itemIDs) > MaxOrderItems {
		return nil, ErrTooManyItems
	}

	items := make([]LineItem, 0, len(itemIDs))
	total := decimal.Zero
	for _, id := range itemIDs {
		it, err := catalog.Resolve(ctx, id)
		if err != nil {
			if errors.Is(err, menu.ErrNotFound) {
				return nil, &ItemNotFoundError{ItemID: id}
			}
			return nil, errors.Wrapf(err, "resolve menu item %d", id)
		}
		items = append(items, LineItem{
			MenuItemID: it.ID,
			Name:       it.Name,
			UnitPrice:  it.Price,
		})
		total = total.Add(it.Price)
	}

	return &Pricing{Total: total, Items: items}, nil
}
