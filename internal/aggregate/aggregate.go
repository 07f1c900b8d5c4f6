// Package aggregate reduces dated sales records into per-actor weekly statistics.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/javiermolinar/vendas/internal/bizweek"
	"github.com/javiermolinar/vendas/internal/sales"
)

// Classification is what a record contributes to its actor's weekly figures.
type Classification struct {
	ActorID   string
	Converted bool
	Value     decimal.Decimal
}

// Classifier maps a record to the actor it counts for. Returning false
// drops the record from the aggregation.
type Classifier func(r *sales.Record) (Classification, bool)

// WeeklyStat holds one actor's figures for one business week.
type WeeklyStat struct {
	ActorID   string
	Year      int
	Week      int
	Total     int
	Converted int
	Rate      float64
	Sum       decimal.Decimal
}

// RatePercent returns the conversion rate as a whole percentage.
func (s WeeklyStat) RatePercent() int {
	return int(s.Rate*100 + 0.5)
}

// Aggregate groups the records inside week by actor and computes totals,
// conversions, conversion rate and value sums. Actors without matching
// records are absent from the result.
func Aggregate(records []*sales.Record, week bizweek.Week, classify Classifier) map[string]WeeklyStat {
	stats := make(map[string]WeeklyStat)
	for _, r := range records {
		if r == nil || !week.Contains(r.OccurredAt) {
			continue
		}
		c, ok := classify(r)
		if !ok {
			continue
		}

		s, seen := stats[c.ActorID]
		if !seen {
			s = newStat(c.ActorID, week)
		}
		s.Total++
		if c.Converted {
			s.Converted++
		}
		s.Sum = s.Sum.Add(c.Value)
		stats[c.ActorID] = s
	}

	for id, s := range stats {
		s.Rate = rate(s.Converted, s.Total)
		stats[id] = s
	}
	return stats
}

// Fill adds a zero stat for every actor in actorIDs missing from stats.
func Fill(stats map[string]WeeklyStat, week bizweek.Week, actorIDs []string) map[string]WeeklyStat {
	if stats == nil {
		stats = make(map[string]WeeklyStat, len(actorIDs))
	}
	for _, id := range actorIDs {
		if _, ok := stats[id]; !ok {
			stats[id] = newStat(id, week)
		}
	}
	return stats
}

// Sorted returns the stats ordered by actor ID.
func Sorted(stats map[string]WeeklyStat) []WeeklyStat {
	out := make([]WeeklyStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}

// Total sums a set of stats into one team-wide figure.
func Total(stats map[string]WeeklyStat, week bizweek.Week) WeeklyStat {
	total := newStat("", week)
	for _, s := range stats {
		total.Total += s.Total
		total.Converted += s.Converted
		total.Sum = total.Sum.Add(s.Sum)
	}
	total.Rate = rate(total.Converted, total.Total)
	return total
}

func newStat(actorID string, week bizweek.Week) WeeklyStat {
	return WeeklyStat{
		ActorID: actorID,
		Year:    week.Year,
		Week:    week.Number,
		Sum:     decimal.Zero,
	}
}

func rate(converted, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(converted) / float64(total)
}
