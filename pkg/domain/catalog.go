package domain

// Service is a single billable offering.
type Service struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	BasePrice        float64 `json:"base_price"`
	Category         string  `json:"category"`
	DeliverablesText string  `json:"deliverables_text,omitempty"`
	Active           bool    `json:"active"`
	CreatedAt        Time    `json:"created_at"`
}

// Package tiers.
const (
	TierFoundation = "foundation"
	TierSolution   = "solution"
	TierDigitAll   = "digit-all"
)

// Package bundles several services at a fixed price.
type Package struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Tier             string   `json:"tier"`
	Price            float64  `json:"price"`
	IncludedServices []string `json:"included_services"`
	Active           bool     `json:"active"`
	CreatedAt        Time     `json:"created_at"`
}

// ValidTier returns true if tier is a known package tier.
func ValidTier(tier string) bool {
	switch tier {
	case TierFoundation, TierSolution, TierDigitAll:
		return true
	}
	return false
}
