// Package errlog persists the sanitized record of every handled failure.
// One insert per error, keyed by the user-visible error id so support staff
// can recover full detail from the reference alone.
package errlog

import (
	"context"
	"encoding/json"
	"fmt"

	"postforge/internal/common/database"
	"postforge/internal/common/errors"
	"postforge/internal/common/logger"
)

// maxContextBytes caps the serialized context payload per record. Oversized
// context is replaced by a stub rather than truncated mid-JSON, keeping the
// stored column valid.
const maxContextBytes = 8 << 10

const insertRecord = `
	INSERT INTO error_logs (
		id, kind, category, severity, message, context,
		endpoint, method, user_id, admin_id, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Store writes error log records to Postgres, with an optional secondary
// copy in Elasticsearch for ad hoc search.
type Store struct {
	db    *database.PostgresClient
	es    *database.ElasticsearchClient
	index string
	log   logger.Logger
}

func NewStore(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// WithElasticsearch enables best-effort secondary indexing. Index failures
// never fail the primary write.
func (s *Store) WithElasticsearch(es *database.ElasticsearchClient, index string) *Store {
	s.es = es
	s.index = index
	return s
}

// Write persists one record. The primary Postgres insert decides the return
// value; the Elasticsearch copy is fire-and-forget.
func (s *Store) Write(ctx context.Context, rec *errors.LogRecord) error {
	contextJSON, err := marshalContext(rec.Context)
	if err != nil {
		contextJSON = []byte(`{"marshal_failed": true}`)
	}

	_, err = s.db.Exec(ctx, insertRecord,
		rec.ErrorID,
		rec.Kind,
		rec.Category,
		rec.Severity,
		rec.Message,
		contextJSON,
		rec.Endpoint,
		rec.Method,
		nullable(rec.UserID),
		nullable(rec.AdminID),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert error log %s: %w", rec.ErrorID, err)
	}

	s.indexSecondary(ctx, rec)
	return nil
}

// marshalContext serializes the context map, replacing oversized payloads
// with a stub noting the original size.
func marshalContext(m map[string]interface{}) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if len(data) > maxContextBytes {
		return json.Marshal(map[string]interface{}{
			"truncated":      true,
			"original_bytes": len(data),
		})
	}
	return data, nil
}

func (s *Store) indexSecondary(ctx context.Context, rec *errors.LogRecord) {
	if s.es == nil {
		return
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.es.Index(ctx, s.index, rec.ErrorID, body); err != nil && s.log != nil {
		s.log.Warn("secondary error log index failed", map[string]interface{}{
			"errorId": rec.ErrorID,
			"error":   err.Error(),
		})
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
