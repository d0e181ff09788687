package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore implements EntityReader, ClusterWriter and AnalyticsWriter
// using SQLite as the backend.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time interface checks
var (
	_ EntityReader    = (*SQLiteStore)(nil)
	_ ClusterWriter   = (*SQLiteStore)(nil)
	_ AnalyticsWriter = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates a new SQLite-backed entity store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
// Creates tables and indexes if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
// Also performs schema migrations for new columns.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL COLLATE NOCASE,
		type TEXT,
		frequency INTEGER NOT NULL DEFAULT 1,
		cluster_id INTEGER,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_entities_text ON entities(text COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);

	CREATE TABLE IF NOT EXISTS mentions (
		id TEXT PRIMARY KEY,
		entity_id INTEGER NOT NULL,
		source_document_id TEXT NOT NULL,
		mentioned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (entity_id) REFERENCES entities(id)
	);

	CREATE INDEX IF NOT EXISTS idx_mentions_entity ON mentions(entity_id);
	CREATE INDEX IF NOT EXISTS idx_mentions_document ON mentions(source_document_id);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		entity1_id INTEGER NOT NULL,
		entity2_id INTEGER NOT NULL,
		co_occurrence INTEGER NOT NULL DEFAULT 1,
		relationship_type TEXT NOT NULL DEFAULT 'co-occurs',
		source_documents TEXT,
		FOREIGN KEY (entity1_id) REFERENCES entities(id),
		FOREIGN KEY (entity2_id) REFERENCES entities(id)
	);

	CREATE INDEX IF NOT EXISTS idx_relationships_e1 ON relationships(entity1_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_e2 ON relationships(entity2_id);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return err
	}

	// Run schema migrations for new columns
	return s.migrateSchema()
}

// migrateSchema adds new columns to existing tables if they don't exist.
func (s *SQLiteStore) migrateSchema() error {
	// Check and add community_id column
	if !s.columnExists("entities", "community_id") {
		_, err := s.db.Exec("ALTER TABLE entities ADD COLUMN community_id INTEGER DEFAULT NULL")
		if err != nil {
			return fmt.Errorf("failed to add community_id column: %w", err)
		}
	}

	// Check and add centrality column
	if !s.columnExists("entities", "centrality") {
		_, err := s.db.Exec("ALTER TABLE entities ADD COLUMN centrality REAL DEFAULT NULL")
		if err != nil {
			return fmt.Errorf("failed to add centrality column: %w", err)
		}
	}

	return nil
}

// columnExists checks if a column exists in a table.
func (s *SQLiteStore) columnExists(tableName, columnName string) bool {
	query := fmt.Sprintf("PRAGMA table_info(%s)", tableName)
	rows, err := s.db.Query(query)
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int

		err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk)
		if err != nil {
			return false
		}

		if name == columnName {
			return true
		}
	}

	return false
}

// UpsertEntity adds a new entity or reinforces an existing one.
// Identity is the case-insensitive (text, type) pair. On a match the
// frequency is incremented and last_seen advanced; otherwise a new row is
// inserted. Returns the entity row id.
func (s *SQLiteStore) UpsertEntity(ctx context.Context, text string, entityType *string, seenAt time.Time) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("entity text cannot be empty")
	}
	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	var id int64
	var err error
	if entityType == nil {
		err = s.db.QueryRowContext(ctx,
			"SELECT id FROM entities WHERE LOWER(text) = LOWER(?) AND type IS NULL", text).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT id FROM entities WHERE LOWER(text) = LOWER(?) AND LOWER(type) = LOWER(?)", text, *entityType).Scan(&id)
	}

	if err == sql.ErrNoRows {
		res, insErr := s.db.ExecContext(ctx,
			"INSERT INTO entities (text, type, frequency, first_seen, last_seen) VALUES (?, ?, 1, ?, ?)",
			text, entityType, seenAt, seenAt)
		if insErr != nil {
			return 0, fmt.Errorf("failed to insert entity: %w", insErr)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up entity: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE entities SET frequency = frequency + 1, last_seen = ? WHERE id = ?", seenAt, id)
	if err != nil {
		return 0, fmt.Errorf("failed to reinforce entity: %w", err)
	}
	return id, nil
}

// RecordMention records one occurrence of an entity in a source document.
func (s *SQLiteStore) RecordMention(ctx context.Context, entityID int64, sourceDocumentID string, at time.Time) error {
	if sourceDocumentID == "" {
		sourceDocumentID = uuid.New().String()
	}
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO mentions (id, entity_id, source_document_id, mentioned_at) VALUES (?, ?, ?, ?)",
		uuid.New().String(), entityID, sourceDocumentID, at)
	if err != nil {
		return fmt.Errorf("failed to record mention: %w", err)
	}
	return nil
}

// GetEntity retrieves an entity by its id.
// Returns (nil, nil) if the entity is not found (no error).
func (s *SQLiteStore) GetEntity(ctx context.Context, id int64) (*Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, type, frequency, cluster_id, community_id, centrality, first_seen, last_seen
		FROM entities
		WHERE id = ?`, id)

	entity, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// Entities returns all entities ordered by id, optionally filtered by type
// (case-insensitive).
func (s *SQLiteStore) Entities(ctx context.Context, typeFilter *string) ([]*Entity, error) {
	query := `
		SELECT id, text, type, frequency, cluster_id, community_id, centrality, first_seen, last_seen
		FROM entities`
	args := []interface{}{}
	if typeFilter != nil {
		query += " WHERE LOWER(type) = LOWER(?)"
		args = append(args, *typeFilter)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []*Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(r rowScanner) (*Entity, error) {
	var entity Entity
	var entityType sql.NullString
	var clusterID, communityID sql.NullInt64
	var centrality sql.NullFloat64

	err := r.Scan(
		&entity.ID,
		&entity.Text,
		&entityType,
		&entity.Frequency,
		&clusterID,
		&communityID,
		&centrality,
		&entity.FirstSeen,
		&entity.LastSeen,
	)
	if err != nil {
		return nil, err
	}

	if entityType.Valid {
		entity.Type = &entityType.String
	}
	if clusterID.Valid {
		entity.ClusterID = &clusterID.Int64
	}
	if communityID.Valid {
		entity.CommunityID = &communityID.Int64
	}
	if centrality.Valid {
		entity.Centrality = &centrality.Float64
	}

	return &entity, nil
}

// Mentions returns all mention rows joined with entity text, ordered by
// document then timestamp.
func (s *SQLiteStore) Mentions(ctx context.Context) ([]*Mention, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.entity_id, e.text, m.source_document_id, m.mentioned_at
		FROM mentions m
		JOIN entities e ON e.id = m.entity_id
		ORDER BY m.source_document_id, m.mentioned_at, m.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentions: %w", err)
	}
	defer rows.Close()

	var mentions []*Mention
	for rows.Next() {
		var m Mention
		if err := rows.Scan(&m.ID, &m.EntityID, &m.EntityText, &m.SourceDocumentID, &m.MentionedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mention: %w", err)
		}
		mentions = append(mentions, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentions: %w", err)
	}

	return mentions, nil
}

// MentionTimes returns the ordered mention timestamps for one entity.
func (s *SQLiteStore) MentionTimes(ctx context.Context, entityID int64) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT mentioned_at FROM mentions WHERE entity_id = ? ORDER BY mentioned_at", entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mention times: %w", err)
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan mention time: %w", err)
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mention times: %w", err)
	}

	return times, nil
}

// Relationships returns all co-occurrence relationship rows ordered by pair.
func (s *SQLiteStore) Relationships(ctx context.Context) ([]*Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entity1_id, entity2_id, co_occurrence, relationship_type, source_documents
		FROM relationships
		ORDER BY entity1_id, entity2_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var relationships []*Relationship
	for rows.Next() {
		var rel Relationship
		var docsJSON sql.NullString
		if err := rows.Scan(&rel.ID, &rel.Entity1ID, &rel.Entity2ID, &rel.CoOccurrence, &rel.RelationshipType, &docsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		if docsJSON.Valid && docsJSON.String != "" {
			if err := json.Unmarshal([]byte(docsJSON.String), &rel.SourceDocuments); err != nil {
				return nil, fmt.Errorf("failed to unmarshal source documents: %w", err)
			}
		}
		relationships = append(relationships, &rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	return relationships, nil
}

// ReplaceRelationships rebuilds the relationships table from the given rows
// inside a single transaction. The previous rows are removed; a failure
// rolls the whole rebuild back.
func (s *SQLiteStore) ReplaceRelationships(ctx context.Context, relationships []*Relationship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships"); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, entity1_id, entity2_id, co_occurrence, relationship_type, source_documents)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rel := range relationships {
		id := rel.ID
		if id == "" {
			id = uuid.New().String()
		}
		relType := rel.RelationshipType
		if relType == "" {
			relType = DefaultRelationshipType
		}

		var docsJSON interface{}
		if len(rel.SourceDocuments) > 0 {
			b, err := json.Marshal(rel.SourceDocuments)
			if err != nil {
				return fmt.Errorf("failed to marshal source documents: %w", err)
			}
			docsJSON = string(b)
		}

		if _, err := stmt.ExecContext(ctx, id, rel.Entity1ID, rel.Entity2ID, rel.CoOccurrence, relType, docsJSON); err != nil {
			return fmt.Errorf("failed to insert relationship: %w", err)
		}
	}

	return tx.Commit()
}

// WriteClusterAssignments sets cluster_id for every entity in the map inside
// a single transaction. All-or-nothing: a failure rolls back every
// assignment already applied.
func (s *SQLiteStore) WriteClusterAssignments(ctx context.Context, assignments map[int64]int64) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "UPDATE entities SET cluster_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare cluster update: %w", err)
	}
	defer stmt.Close()

	for entityID, clusterID := range assignments {
		if _, err := stmt.ExecContext(ctx, clusterID, entityID); err != nil {
			return fmt.Errorf("failed to assign cluster %d to entity %d: %w", clusterID, entityID, err)
		}
	}

	return tx.Commit()
}

// ClearClusterAssignments resets cluster_id to NULL for all entities.
func (s *SQLiteStore) ClearClusterAssignments(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE entities SET cluster_id = NULL")
	if err != nil {
		return fmt.Errorf("failed to clear cluster assignments: %w", err)
	}
	return nil
}

// WriteAnalytics sets cached centrality and community_id values inside a
// single transaction.
func (s *SQLiteStore) WriteAnalytics(ctx context.Context, centrality map[int64]float64, community map[int64]int64) error {
	if len(centrality) == 0 && len(community) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	centralityStmt, err := tx.PrepareContext(ctx, "UPDATE entities SET centrality = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare centrality update: %w", err)
	}
	defer centralityStmt.Close()

	for entityID, score := range centrality {
		if _, err := centralityStmt.ExecContext(ctx, score, entityID); err != nil {
			return fmt.Errorf("failed to write centrality for entity %d: %w", entityID, err)
		}
	}

	communityStmt, err := tx.PrepareContext(ctx, "UPDATE entities SET community_id = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare community update: %w", err)
	}
	defer communityStmt.Close()

	for entityID, communityID := range community {
		if _, err := communityStmt.ExecContext(ctx, communityID, entityID); err != nil {
			return fmt.Errorf("failed to write community for entity %d: %w", entityID, err)
		}
	}

	return tx.Commit()
}

// EntityCount returns the total number of entities in the store.
func (s *SQLiteStore) EntityCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return count, nil
}

// RelationshipCount returns the total number of relationship rows.
func (s *SQLiteStore) RelationshipCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count relationships: %w", err)
	}
	return count, nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
