// Package entigraph enriches a personal memory store with an entity
// knowledge graph: fuzzy entity clustering, weighted co-occurrence
// relations, graph analytics and temporal trends.
package entigraph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/entigraph/entigraph/pkg/analytics"
	"github.com/entigraph/entigraph/pkg/cluster"
	"github.com/entigraph/entigraph/pkg/cooccur"
	"github.com/entigraph/entigraph/pkg/explorer"
	"github.com/entigraph/entigraph/pkg/graph"
	"github.com/entigraph/entigraph/pkg/metrics"
	"github.com/entigraph/entigraph/pkg/store"
	"github.com/entigraph/entigraph/pkg/temporal"
	"github.com/entigraph/entigraph/pkg/trace"
)

// Config holds configuration for the entigraph system
type Config struct {
	// DBPath is the SQLite database path (":memory:" for in-memory)
	DBPath string

	// SimilarityThreshold for entity clustering (default: 0.8)
	SimilarityThreshold float64

	// MinCoOccurrence is the minimum shared-document count for a
	// relationship (default: 2)
	MinCoOccurrence int

	// Metrics collector (default: no-op)
	Metrics metrics.Collector

	// TraceExporter for operation traces (default: no-op)
	TraceExporter trace.Exporter
}

// Entigraph is the main entry point for the entity graph subsystem.
//
// All operations are single-threaded and synchronous: every analysis
// recomputes from current rows, and the only I/O is the initial bulk read
// plus the clusterer's atomic write-back. Concurrent clustering runs
// against the same backing store must be serialized by the caller.
type Entigraph struct {
	config    Config
	store     *store.SQLiteStore
	collector metrics.Collector
	exporter  trace.Exporter
}

// New creates a new Entigraph instance backed by SQLite.
func New(cfg Config) (*Entigraph, error) {
	// Apply defaults
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DBPath cannot be empty")
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = cluster.DefaultThreshold
	}
	if cfg.MinCoOccurrence == 0 {
		cfg.MinCoOccurrence = cooccur.DefaultMinCoOccurrence
	}

	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	collector := cfg.Metrics
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}

	return &Entigraph{
		config:    cfg,
		store:     s,
		collector: collector,
		exporter:  cfg.TraceExporter,
	}, nil
}

// Store returns the underlying SQLite store.
func (e *Entigraph) Store() *store.SQLiteStore {
	return e.store
}

// Close releases the store and flushes the trace exporter.
func (e *Entigraph) Close() error {
	if e.exporter != nil {
		if err := e.exporter.Close(); err != nil {
			return err
		}
	}
	return e.store.Close()
}

// ClusterEntities performs a full batch clustering recompute.
// Unless dryRun, cluster ids are written back atomically.
func (e *Entigraph) ClusterEntities(ctx context.Context, threshold float64, entityType *string, dryRun bool) ([]*cluster.Cluster, error) {
	start := timeNowMs()
	opTrace := newTrace()

	if threshold == 0 {
		threshold = e.config.SimilarityThreshold
	}

	clusterer := cluster.NewClusterer(e.store, e.store)
	timer := newSpanTimer("pairwise", opTrace, true)
	clusters, err := clusterer.Cluster(ctx, cluster.Options{
		Threshold:  threshold,
		EntityType: entityType,
		DryRun:     dryRun,
	})
	timer.finish(err == nil, err, map[string]int64{"clusterCount": int64(len(clusters))})

	e.finishOperation(ctx, "cluster", start, opTrace, err)
	if err != nil {
		return nil, err
	}
	e.collector.SetGraphSize(ctx, "clusters", int64(len(clusters)))
	return clusters, nil
}

// RebuildRelationships derives co-occurrence relationships from current
// mention rows and replaces the stored relationship set in one
// transaction. Returns the number of relationship rows written.
func (e *Entigraph) RebuildRelationships(ctx context.Context) (int, error) {
	start := timeNowMs()
	opTrace := newTrace()

	loadTimer := newSpanTimer("load", opTrace, true)
	mentions, err := e.store.Mentions(ctx)
	loadTimer.finish(err == nil, err, map[string]int64{"mentionCount": int64(len(mentions))})
	if err != nil {
		e.finishOperation(ctx, "relationships", start, opTrace, err)
		return 0, err
	}

	idx := &cooccur.Index{MinCoOccurrence: e.config.MinCoOccurrence}
	relationships := idx.Relationships(mentions)

	writeTimer := newSpanTimer("write-back", opTrace, true)
	err = e.store.ReplaceRelationships(ctx, relationships)
	writeTimer.finish(err == nil, err, map[string]int64{"relationshipCount": int64(len(relationships))})

	e.finishOperation(ctx, "relationships", start, opTrace, err)
	if err != nil {
		return 0, err
	}
	e.collector.SetGraphSize(ctx, "edges", int64(len(relationships)))
	return len(relationships), nil
}

// AnalysisResult bundles the outputs of a full graph analysis.
type AnalysisResult struct {
	Stats       graph.Stats
	Centrality  map[int64]float64
	Communities []analytics.Community
}

// Analyze builds the graph from current rows, computes degree centrality
// and communities, writes both back as cached values and returns the
// bundled result. The graph itself is in-memory only and discarded.
func (e *Entigraph) Analyze(ctx context.Context) (*AnalysisResult, error) {
	start := timeNowMs()
	opTrace := newTrace()

	loadTimer := newSpanTimer("load", opTrace, true)
	entities, err := e.store.Entities(ctx, nil)
	if err != nil {
		loadTimer.finish(false, err, nil)
		e.finishOperation(ctx, "analyze", start, opTrace, err)
		return nil, err
	}
	relationships, err := e.store.Relationships(ctx)
	if err != nil {
		loadTimer.finish(false, err, nil)
		e.finishOperation(ctx, "analyze", start, opTrace, err)
		return nil, err
	}
	loadTimer.finish(true, nil, map[string]int64{
		"entityCount":       int64(len(entities)),
		"relationshipCount": int64(len(relationships)),
	})

	buildTimer := newSpanTimer("build-graph", opTrace, true)
	builder := &graph.Builder{}
	g := builder.Build(entities, relationships)
	buildTimer.finish(true, nil, nil)

	analyzer := analytics.New(g)

	centralityTimer := newSpanTimer("centrality", opTrace, true)
	centrality := analyzer.DegreeCentrality()
	centralityTimer.finish(true, nil, nil)

	communityTimer := newSpanTimer("communities", opTrace, true)
	communities := analyzer.Communities()
	assignment := analyzer.CommunityAssignment()
	communityTimer.finish(true, nil, map[string]int64{"communityCount": int64(len(communities))})

	writeTimer := newSpanTimer("write-back", opTrace, true)
	err = e.store.WriteAnalytics(ctx, centrality, assignment)
	writeTimer.finish(err == nil, err, nil)
	if err != nil {
		e.finishOperation(ctx, "analyze", start, opTrace, err)
		return nil, err
	}

	stats := g.Stats()
	e.collector.SetGraphSize(ctx, "nodes", int64(stats.NodeCount))
	e.collector.SetGraphSize(ctx, "edges", int64(stats.EdgeCount))
	e.collector.SetGraphSize(ctx, "communities", int64(len(communities)))
	e.finishOperation(ctx, "analyze", start, opTrace, nil)
	return &AnalysisResult{
		Stats:       stats,
		Centrality:  centrality,
		Communities: communities,
	}, nil
}

// Explorer loads a fresh graph snapshot for querying.
func (e *Entigraph) Explorer(ctx context.Context) (*explorer.Explorer, error) {
	return explorer.New(ctx, e.store)
}

// Temporal returns a trend analyzer over the store.
func (e *Entigraph) Temporal() *temporal.Analyzer {
	return temporal.NewAnalyzer(e.store)
}

// finishOperation records metrics and exports the operation trace.
func (e *Entigraph) finishOperation(ctx context.Context, operation string, startMs int64, opTrace *OperationTrace, err error) {
	duration := timeNowMs() - startMs
	status := "success"
	errorType := ""
	if err != nil {
		status = "error"
		errorType = ClassifyError(err)
		e.collector.RecordError(ctx, operation, errorType)
	}
	e.collector.RecordOperation(ctx, operation, status, duration)
	for _, span := range opTrace.Spans {
		e.collector.RecordStage(ctx, operation, span.Name, span.DurationMs)
	}

	record := &trace.TraceRecord{
		Timestamp:   time.UnixMilli(startMs),
		OperationID: uuid.New().String(),
		Operation:   operation,
		DurationMs:  duration,
		Status:      status,
		ErrorType:   errorType,
	}
	for _, span := range opTrace.Spans {
		spanRecord := trace.SpanRecord{
			Name:       span.Name,
			DurationMs: span.DurationMs,
			OK:         span.OK,
			Counters:   span.Counters,
		}
		if !span.OK && span.Error != "" {
			spanRecord.ErrorType = ClassifyError(fmt.Errorf("%s", span.Error))
		}
		record.Spans = append(record.Spans, spanRecord)
	}
	// Trace export failures are not operation failures.
	if e.exporter != nil {
		_ = e.exporter.Export(ctx, record)
	}
}
