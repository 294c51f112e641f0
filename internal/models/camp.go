package models

// Category is one of the four fixed registrant classes. Each category has
// independent pricing and quota.
type Category string

const (
	CategoryTFL           Category = "tfl"
	CategorySecondary     Category = "secondary"
	CategoryUndergraduate Category = "undergraduate"
	CategoryOthers        Category = "others"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryTFL, CategorySecondary, CategoryUndergraduate, CategoryOthers}
}

// Known reports whether c is one of the four fixed categories.
func (c Category) Known() bool {
	switch c {
	case CategoryTFL, CategorySecondary, CategoryUndergraduate, CategoryOthers:
		return true
	}
	return false
}

// DiscountKey maps a category to its field name in the discounts object.
func (c Category) DiscountKey() string {
	switch c {
	case CategoryTFL:
		return "price_tfl"
	case CategorySecondary:
		return "price_sec"
	case CategoryUndergraduate:
		return "price_und"
	case CategoryOthers:
		return "price_oth"
	}
	return ""
}

// Display returns the human-readable category name.
func (c Category) Display() string {
	switch c {
	case CategoryTFL:
		return "TFL"
	case CategorySecondary:
		return "Secondary"
	case CategoryUndergraduate:
		return "Undergraduate"
	case CategoryOthers:
		return "Others"
	}
	return string(c)
}

// Discounts holds the discount deadline and per-category discounted prices.
type Discounts struct {
	Deadline           string `yaml:"deadline" json:"deadline,omitempty"`
	PriceTFL           Num    `yaml:"price_tfl" json:"price_tfl"`
	PriceSecondary     Num    `yaml:"price_sec" json:"price_sec"`
	PriceUndergraduate Num    `yaml:"price_und" json:"price_und"`
	PriceOthers        Num    `yaml:"price_oth" json:"price_oth"`
}

// ForKey returns the discounted price stored under a discount field name.
func (d Discounts) ForKey(key string) Num {
	switch key {
	case "price_tfl":
		return d.PriceTFL
	case "price_sec":
		return d.PriceSecondary
	case "price_und":
		return d.PriceUndergraduate
	case "price_oth":
		return d.PriceOthers
	}
	return Num{}
}

// Camp represents one registration cycle's configuration. It is fetched once
// per session from the settings endpoint and treated as immutable until an
// explicit refresh.
type Camp struct {
	Code              string           `yaml:"code" json:"code"`
	Title             string           `yaml:"title" json:"title"`
	Theme             string           `yaml:"theme" json:"theme"`
	Dates             string           `yaml:"dates" json:"dates"`
	Venue             string           `yaml:"venue" json:"venue,omitempty"`
	RegistrationStart string           `yaml:"registration_start" json:"registration_start,omitempty"`
	RegistrationEnd   string           `yaml:"registration_end" json:"registration_end,omitempty"`
	Prices            map[Category]Num `yaml:"prices" json:"prices"`
	Quotas            map[Category]Num `yaml:"quotas" json:"quotas"`
	Discounts         Discounts        `yaml:"discounts" json:"discounts"`
}

// Available reports whether a category can be registered for: its nominal
// price must be a defined positive number.
func (c *Camp) Available(cat Category) bool {
	if c == nil {
		return false
	}
	return c.Prices[cat].Positive()
}

// UsageEntry is the registered-count record for one category.
type UsageEntry struct {
	RegisteredCount Num `json:"registered_count"`
}

// CategoryUsage maps category to its usage record. It is externally sourced
// and read-only; a missing entry means zero usage.
type CategoryUsage map[Category]UsageEntry

// Settings is the camp configuration served by GET /settings/website.
type Settings struct {
	Camp             Camp          `yaml:"camp" json:"camp"`
	Usage            CategoryUsage `yaml:"usage" json:"usage,omitempty"`
	PaymentsEnabled  bool          `yaml:"payments_enabled" json:"payments_enabled"`
	DonationsEnabled bool          `yaml:"donations_enabled" json:"donations_enabled"`
	PaymentGateway   string        `yaml:"payment_gateway" json:"payment_gateway,omitempty"`
	Announcement     string        `yaml:"announcement" json:"announcement,omitempty"`
}
