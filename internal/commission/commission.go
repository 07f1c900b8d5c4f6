// Package commission turns weekly statistics into payouts and scores.
package commission

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/aggregate"
)

// Validation errors.
var (
	ErrInvalidRate    = errors.New("tier min_rate must be between 0 and 1")
	ErrNegativePct    = errors.New("tier percent cannot be negative")
	ErrDuplicateRate  = errors.New("tiers must have distinct min_rate values")
	ErrInvalidPercent = errors.New("tier percent must be a decimal number")
)

var hundred = decimal.NewFromInt(100)

// Tier pays Percent of the week's value once the conversion rate reaches MinRate.
type Tier struct {
	MinRate float64
	Percent decimal.Decimal
}

// Plan is an ordered set of commission tiers.
type Plan struct {
	tiers []Tier
}

// NewPlan validates tiers and returns a plan sorted by MinRate.
func NewPlan(tiers []Tier) (*Plan, error) {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinRate < sorted[j].MinRate })

	for i, t := range sorted {
		if t.MinRate < 0 || t.MinRate > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRate, t.MinRate)
		}
		if t.Percent.IsNegative() {
			return nil, fmt.Errorf("%w: %s", ErrNegativePct, t.Percent)
		}
		if i > 0 && sorted[i-1].MinRate == t.MinRate {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateRate, t.MinRate)
		}
	}
	return &Plan{tiers: sorted}, nil
}

// ParseTier builds a tier from a rate and a percent string such as "2.5".
func ParseTier(minRate float64, percent string) (Tier, error) {
	p, err := decimal.NewFromString(percent)
	if err != nil {
		return Tier{}, fmt.Errorf("%w: %q", ErrInvalidPercent, percent)
	}
	return Tier{MinRate: minRate, Percent: p}, nil
}

// Tiers returns the plan's tiers in ascending MinRate order.
func (p *Plan) Tiers() []Tier {
	out := make([]Tier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// TierFor returns the highest tier reached by rate.
func (p *Plan) TierFor(rate float64) (Tier, bool) {
	for i := len(p.tiers) - 1; i >= 0; i-- {
		if rate >= p.tiers[i].MinRate {
			return p.tiers[i], true
		}
	}
	return Tier{}, false
}

// Payout returns the commission earned for stat, rounded to cents.
func (p *Plan) Payout(stat aggregate.WeeklyStat) decimal.Decimal {
	tier, ok := p.TierFor(stat.Rate)
	if !ok || stat.Total == 0 {
		return decimal.Zero
	}
	return stat.Sum.Mul(tier.Percent).Div(hundred).Round(2)
}

// ScoreRules award points for weekly activity.
type ScoreRules struct {
	PerConversion int
	PerRecord     int
	BonusRate     float64 // 0 disables the bonus
	BonusPoints   int
}

// Score returns the points earned for stat.
func (r ScoreRules) Score(stat aggregate.WeeklyStat) int {
	points := stat.Converted*r.PerConversion + stat.Total*r.PerRecord
	if r.BonusRate > 0 && stat.Total > 0 && stat.Rate >= r.BonusRate {
		points += r.BonusPoints
	}
	return points
}
