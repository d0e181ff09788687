package entigraph

import (
	"github.com/entigraph/entigraph/pkg/analytics"
	"github.com/entigraph/entigraph/pkg/cluster"
	"github.com/entigraph/entigraph/pkg/graph"
	"github.com/entigraph/entigraph/pkg/store"
	"github.com/entigraph/entigraph/pkg/temporal"
)

// Type re-exports for caller convenience

// Entity is re-exported from store package
type Entity = store.Entity

// Relationship is re-exported from store package
type Relationship = store.Relationship

// Mention is re-exported from store package
type Mention = store.Mention

// Cluster is re-exported from cluster package
type Cluster = cluster.Cluster

// GraphStats is re-exported from graph package
type GraphStats = graph.Stats

// Community is re-exported from analytics package
type Community = analytics.Community

// Path is re-exported from analytics package
type Path = analytics.Path

// Recommendation is re-exported from analytics package
type Recommendation = analytics.Recommendation

// Timeline is re-exported from temporal package
type Timeline = temporal.Timeline

// Trend is re-exported from temporal package
type Trend = temporal.Trend

// Trend constants re-exported from temporal package
const (
	TrendIncreasing = temporal.TrendIncreasing
	TrendStable     = temporal.TrendStable
	TrendDeclining  = temporal.TrendDeclining
	TrendBurst      = temporal.TrendBurst
	TrendDormant    = temporal.TrendDormant
)
