package processors

import (
	"github.com/username/receiptcheck/backend/src/models"
)

// AggregateItems collapses the operator's raw line items into one TicketItem
// per distinct product name. Quantities add up directly; sums are converted
// from minor currency units on the way in. The order of the returned slice is
// unspecified.
func AggregateItems(rawItems []models.RawTicketItem) []models.TicketItem {
	accumulators := make(map[string]*models.TicketItem)

	for _, raw := range rawItems {
		item, ok := accumulators[raw.Name]
		if !ok {
			item = &models.TicketItem{Name: raw.Name}
			accumulators[raw.Name] = item
		}
		item.Quantity += raw.Quantity
		item.Sum += 0.01 * float64(raw.Sum)
	}

	items := make([]models.TicketItem, 0, len(accumulators))
	for _, item := range accumulators {
		items = append(items, *item)
	}
	return items
}
