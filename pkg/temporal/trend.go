// Package temporal classifies per-entity mention-timestamp series into
// trend labels and computes recency/frequency activity scores.
package temporal

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Trend is a categorical label over an entity's mention history.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDeclining  Trend = "declining"
	TrendBurst      Trend = "burst"
	TrendDormant    Trend = "dormant"
)

const (
	// dormantAfterDays: no mention for this long overrides every other signal.
	dormantAfterDays = 90

	// burstWindowDays / burstMinFrequency / burstShare: a burst needs at
	// least 5 all-time mentions with half of them inside the last week.
	burstWindowDays   = 7
	burstMinFrequency = 5
	burstShare        = 0.5

	// rateChangeThreshold: relative rate change for increasing/declining.
	rateChangeThreshold = 0.30

	// minTrendFrequency: below this the series carries no trend signal.
	minTrendFrequency = 3

	// recencyHalfLifeDays: activity recency halves every 30 days.
	recencyHalfLifeDays = 30.0
)

// Classify labels a mention-timestamp series. Pure function of the series
// and the reference time; no stored state.
//
// Order matters: dormancy is checked first and overrides everything,
// then burst, then the insufficient-signal floor, then rate comparison
// between the two halves of the series.
func Classify(times []time.Time, now time.Time) Trend {
	if len(times) == 0 {
		return TrendStable
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	last := sorted[len(sorted)-1]
	if now.Sub(last) >= dormantAfterDays*24*time.Hour {
		return TrendDormant
	}

	frequency := len(sorted)
	if frequency >= burstMinFrequency {
		recent := 0
		cutoff := now.Add(-burstWindowDays * 24 * time.Hour)
		for _, t := range sorted {
			if !t.Before(cutoff) {
				recent++
			}
		}
		if float64(recent) >= burstShare*float64(frequency) {
			return TrendBurst
		}
	}

	if frequency < minTrendFrequency {
		return TrendStable
	}

	mid := frequency / 2
	firstRate := mentionRate(sorted[:mid])
	secondRate := mentionRate(sorted[mid:])

	if firstRate == 0 {
		if secondRate > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}

	change := (secondRate - firstRate) / firstRate
	switch {
	case change >= rateChangeThreshold:
		return TrendIncreasing
	case change <= -rateChangeThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// mentionRate is mentions per day over the half's span, with +1 smoothing
// on the span so single-day halves don't divide by zero.
func mentionRate(times []time.Time) float64 {
	if len(times) == 0 {
		return 0
	}
	span := times[len(times)-1].Sub(times[0]).Hours() / 24.0
	return float64(len(times)) / (span + 1.0)
}

// ActivityScore blends recency decay and mention frequency into [0, 100].
// Recency halves every 30 days since the last mention (same half-life decay
// the search layer applies to memories); frequency saturates at 100
// mentions. The blend is 60% recency, 40% frequency, rounded to 1 decimal.
func ActivityScore(frequency int, lastSeen time.Time, now time.Time) float64 {
	if frequency <= 0 || lastSeen.IsZero() {
		return 0
	}

	days := now.Sub(lastSeen).Hours() / 24.0
	if days < 0 {
		days = 0
	}
	recency := 100.0 * math.Exp(math.Ln2/-recencyHalfLifeDays*days)
	if recency > 100 {
		recency = 100
	}
	if recency < 0 {
		recency = 0
	}

	frequencyComponent := float64(frequency)
	if frequencyComponent > 100 {
		frequencyComponent = 100
	}

	score := 0.6*recency + 0.4*frequencyComponent
	return math.Round(score*10) / 10
}

// Period is a histogram bucketing granularity.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// PeriodKey returns the bucket key for a timestamp at the given
// granularity: day "2024-03-09", ISO week "2024-W10", month "2024-03",
// calendar quarter "2024-Q1", year "2024".
func PeriodKey(t time.Time, period Period) (string, error) {
	switch period {
	case PeriodDay:
		return t.Format("2006-01-02"), nil
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week), nil
	case PeriodMonth:
		return t.Format("2006-01"), nil
	case PeriodQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter), nil
	case PeriodYear:
		return t.Format("2006"), nil
	default:
		return "", fmt.Errorf("unknown period %q", period)
	}
}

// Histogram buckets mention timestamps by period key.
func Histogram(times []time.Time, period Period) (map[string]int, error) {
	histogram := make(map[string]int)
	for _, t := range times {
		key, err := PeriodKey(t, period)
		if err != nil {
			return nil, err
		}
		histogram[key]++
	}
	return histogram, nil
}
