package temporal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/entigraph/entigraph/pkg/store"
)

// Timeline is an entity's mention history with its derived trend and
// activity score. Built on demand, never persisted.
type Timeline struct {
	EntityID      int64
	Text          string
	Frequency     int
	FirstMention  time.Time
	LastMention   time.Time
	Trend         Trend
	ActivityScore float64
	Mentions      []time.Time
}

// Analyzer derives temporal trends from the entity store.
type Analyzer struct {
	reader store.EntityReader

	// Now overrides the reference time in tests; nil uses time.Now.
	Now func() time.Time
}

// NewAnalyzer creates a temporal analyzer over the given reader.
func NewAnalyzer(reader store.EntityReader) *Analyzer {
	return &Analyzer{reader: reader}
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// EntityTimeline builds the timeline for one entity. Returns (nil, nil)
// when the entity is unknown; an entity with no recorded mentions gets a
// stable, zero-score timeline.
func (a *Analyzer) EntityTimeline(ctx context.Context, entityID int64) (*Timeline, error) {
	entities, err := a.reader.Entities(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}

	var entity *store.Entity
	for _, e := range entities {
		if e.ID == entityID {
			entity = e
			break
		}
	}
	if entity == nil {
		return nil, nil
	}

	times, err := a.reader.MentionTimes(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mention times: %w", err)
	}

	return a.timeline(entity, times), nil
}

func (a *Analyzer) timeline(entity *store.Entity, times []time.Time) *Timeline {
	now := a.now()
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	tl := &Timeline{
		EntityID:  entity.ID,
		Text:      entity.Text,
		Frequency: entity.Frequency,
		Mentions:  times,
		Trend:     Classify(times, now),
	}
	if len(times) > 0 {
		tl.FirstMention = times[0]
		tl.LastMention = times[len(times)-1]
		tl.ActivityScore = ActivityScore(entity.Frequency, tl.LastMention, now)
	}
	return tl
}

// TrendingEntities ranks entities by activity score descending. A non-empty
// trendFilter keeps only entities with that trend. limit <= 0 returns all.
func (a *Analyzer) TrendingEntities(ctx context.Context, limit int, trendFilter Trend) ([]*Timeline, error) {
	timelines, err := a.allTimelines(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*Timeline, 0, len(timelines))
	for _, tl := range timelines {
		if trendFilter != "" && tl.Trend != trendFilter {
			continue
		}
		filtered = append(filtered, tl)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].ActivityScore != filtered[j].ActivityScore {
			return filtered[i].ActivityScore > filtered[j].ActivityScore
		}
		return filtered[i].EntityID < filtered[j].EntityID
	})

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// DormantEntities returns entities that used to matter and went quiet:
// frequency >= 3 and trend dormant, ranked by frequency descending.
// limit <= 0 returns all.
func (a *Analyzer) DormantEntities(ctx context.Context, limit int) ([]*Timeline, error) {
	timelines, err := a.allTimelines(ctx)
	if err != nil {
		return nil, err
	}

	dormant := make([]*Timeline, 0)
	for _, tl := range timelines {
		if tl.Frequency >= minTrendFrequency && tl.Trend == TrendDormant {
			dormant = append(dormant, tl)
		}
	}

	sort.Slice(dormant, func(i, j int) bool {
		if dormant[i].Frequency != dormant[j].Frequency {
			return dormant[i].Frequency > dormant[j].Frequency
		}
		return dormant[i].EntityID < dormant[j].EntityID
	})

	if limit > 0 && len(dormant) > limit {
		dormant = dormant[:limit]
	}
	return dormant, nil
}

// allTimelines builds timelines for every entity from one bulk mention read.
func (a *Analyzer) allTimelines(ctx context.Context) ([]*Timeline, error) {
	entities, err := a.reader.Entities(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	mentions, err := a.reader.Mentions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mentions: %w", err)
	}

	byEntity := make(map[int64][]time.Time)
	for _, m := range mentions {
		byEntity[m.EntityID] = append(byEntity[m.EntityID], m.MentionedAt)
	}

	timelines := make([]*Timeline, 0, len(entities))
	for _, entity := range entities {
		timelines = append(timelines, a.timeline(entity, byEntity[entity.ID]))
	}
	return timelines, nil
}
