// Package pricing resolves the effective price, discount state, and remaining
// quota for each registration category from the camp settings.
package pricing

import (
	"time"

	"github.com/youthcamp/portal/internal/models"
	"github.com/youthcamp/portal/internal/schedule"
)

// Info is the resolved pricing for one category. A nil Original means the
// category is unavailable; a nil Quota means the category is uncapped, and
// Remaining is nil exactly when Quota is.
type Info struct {
	Category       models.Category
	Original       *float64
	Discounted     *float64
	Final          *float64
	DiscountActive bool
	Deadline       string
	Quota          *int
	Used           int
	Remaining      *int
}

// Available reports whether the category can be registered for.
func (i *Info) Available() bool {
	return i != nil && i.Original != nil
}

// SoldOut reports whether a capped category has no places left.
func (i *Info) SoldOut() bool {
	return i != nil && i.Remaining != nil && *i.Remaining == 0
}

// Resolve computes the pricing info for one category. A nil usage map means
// zero usage everywhere. Malformed numeric inputs are treated as absent;
// Resolve never panics and is idempotent for identical inputs.
func Resolve(camp *models.Camp, usage models.CategoryUsage, cat models.Category, now time.Time) *Info {
	info := &Info{
		Category: cat,
		Deadline: "",
	}
	if camp == nil {
		info.DiscountActive = true
		return info
	}

	info.Deadline = camp.Discounts.Deadline

	if p := camp.Prices[cat]; p.Positive() {
		v := p.Value
		info.Original = &v
	}

	if d := camp.Discounts.ForKey(cat.DiscountKey()); d.Valid {
		v := d.Value
		info.Discounted = &v
	}

	// No deadline means the discount never expires.
	info.DiscountActive = !schedule.DeadlinePassed(camp.Discounts.Deadline, now)

	if info.Original != nil {
		final := *info.Original
		if info.DiscountActive && info.Discounted != nil && *info.Discounted < *info.Original {
			final = *info.Discounted
		}
		info.Final = &final
	}

	if q, ok := camp.Quotas[cat].Int(); ok {
		info.Quota = &q
	}

	if u, ok := usage[cat].RegisteredCount.Int(); ok {
		info.Used = u
	}

	if info.Quota != nil {
		remaining := *info.Quota - info.Used
		if remaining < 0 {
			remaining = 0
		}
		info.Remaining = &remaining
	}

	return info
}

// ResolveAll resolves every category in display order.
func ResolveAll(camp *models.Camp, usage models.CategoryUsage, now time.Time) []*Info {
	out := make([]*Info, 0, len(models.Categories()))
	for _, cat := range models.Categories() {
		out = append(out, Resolve(camp, usage, cat, now))
	}
	return out
}
