package membership

import (
	"fmt"
	"math"
	"strings"
)

// DiscountStrategy computes a discount in cents for a purchase.
type DiscountStrategy interface {
	Discount(baseCents int64, durationDays int, isStudent bool) int64
	Description() string
}

type NoDiscount struct{}

func (NoDiscount) Discount(int64, int, bool) int64 { return 0 }
func (NoDiscount) Description() string            { return "no discount" }

type StudentDiscount struct {
	Percent int64
}

func (s StudentDiscount) Discount(baseCents int64, _ int, isStudent bool) int64 {
	if !isStudent {
		return 0
	}
	return percentOf(baseCents, s.Percent)
}

func (s StudentDiscount) Description() string {
	return fmt.Sprintf("student discount %d%%", s.Percent)
}

type DiscountTier struct {
	MinDays int
	Percent int64
}

// LongTermDiscount applies the first tier whose MinDays is reached; tiers
// are ordered from the longest duration down.
type LongTermDiscount struct {
	Tiers []DiscountTier
}

var defaultLongTermTiers = []DiscountTier{
	{MinDays: 365, Percent: 20},
	{MinDays: 180, Percent: 15},
	{MinDays: 90, Percent: 10},
}

func (l LongTermDiscount) Discount(baseCents int64, durationDays int, _ bool) int64 {
	for _, tier := range l.Tiers {
		if durationDays >= tier.MinDays {
			return percentOf(baseCents, tier.Percent)
		}
	}
	return 0
}

func (l LongTermDiscount) Description() string {
	var top int64
	for _, tier := range l.Tiers {
		if tier.Percent > top {
			top = tier.Percent
		}
	}
	return fmt.Sprintf("long-term discount (up to %d%%)", top)
}

// CombinedDiscount grants the largest discount among its strategies.
type CombinedDiscount []DiscountStrategy

func (c CombinedDiscount) Discount(baseCents int64, durationDays int, isStudent bool) int64 {
	var best int64
	for _, s := range c {
		if d := s.Discount(baseCents, durationDays, isStudent); d > best {
			best = d
		}
	}
	return best
}

func (c CombinedDiscount) Description() string {
	parts := make([]string, 0, len(c))
	for _, s := range c {
		parts = append(parts, s.Description())
	}
	return "combined (" + strings.Join(parts, ", ") + ")"
}

// BestStrategy picks the strategy most favourable to the member.
func BestStrategy(isStudent bool, durationDays int) DiscountStrategy {
	var strategies []DiscountStrategy
	if isStudent {
		strategies = append(strategies, StudentDiscount{Percent: 15})
	}
	if durationDays >= defaultLongTermTiers[len(defaultLongTermTiers)-1].MinDays {
		strategies = append(strategies, LongTermDiscount{Tiers: defaultLongTermTiers})
	}

	switch len(strategies) {
	case 0:
		return NoDiscount{}
	case 1:
		return strategies[0]
	default:
		return CombinedDiscount(strategies)
	}
}

type PriceQuote struct {
	BaseCents       int64   `json:"base_cents"`
	DiscountCents   int64   `json:"discount_cents"`
	DiscountPercent float64 `json:"discount_percent"`
	FinalCents      int64   `json:"final_cents"`
	Description     string  `json:"description"`
}

func Quote(t *MembershipType, isStudent bool) PriceQuote {
	return QuoteWith(BestStrategy(isStudent, t.DurationDays), t.PriceCents, t.DurationDays, isStudent)
}

func QuoteWith(s DiscountStrategy, baseCents int64, durationDays int, isStudent bool) PriceQuote {
	discount := s.Discount(baseCents, durationDays, isStudent)
	final := baseCents - discount
	if final < 0 {
		final = 0
		discount = baseCents
	}

	var pct float64
	if baseCents > 0 {
		pct = math.Round(float64(discount)*10000/float64(baseCents)) / 100
	}

	return PriceQuote{
		BaseCents:       baseCents,
		DiscountCents:   discount,
		DiscountPercent: pct,
		FinalCents:      final,
		Description:     s.Description(),
	}
}

// percentOf rounds to the nearest cent, ties to even, so that discounts
// match the decimal amounts the club's accounting produces.
func percentOf(cents, percent int64) int64 {
	q, r := cents*percent/100, cents*percent%100
	if r > 50 || (r == 50 && q%2 == 1) {
		q++
	}
	return q
}
