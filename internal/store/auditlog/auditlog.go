// internal/store/auditlog/auditlog.go
package auditlog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/lib/pq"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
)

// Store appends immutable notification logs to Postgres. When an
// Elasticsearch client is configured the entry is also indexed, best effort,
// for operational search; only the Postgres write is load-bearing.
type Store struct {
	db     *sql.DB
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// WithSearchIndex enables the best-effort Elasticsearch mirror.
func (s *Store) WithSearchIndex(es *elasticsearch.Client, index string) *Store {
	s.es = es
	s.index = index
	return s
}

// Append writes one audit row. The row is never updated afterwards.
func (s *Store) Append(ctx context.Context, entry models.NotificationLog) error {
	variablesJSON, err := json.Marshal(entry.Variables)
	if err != nil {
		return fmt.Errorf("marshal log variables: %w", err)
	}
	resultsJSON, err := json.Marshal(entry.Results)
	if err != nil {
		return fmt.Errorf("marshal log results: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_logs
			(id, event_id, template_id, user_id, recipient_type, variables, channels, results, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.EventID, entry.TemplateID, entry.UserID, entry.RecipientType,
		variablesJSON, pq.Array(entry.Channels), resultsJSON, entry.Success, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append notification log: %w", err)
	}

	s.mirrorToSearch(ctx, entry)
	return nil
}

func (s *Store) mirrorToSearch(ctx context.Context, entry models.NotificationLog) {
	if s.es == nil {
		return
	}

	doc, err := json.Marshal(entry)
	if err != nil {
		return
	}

	res, err := s.es.Index(
		s.index,
		bytes.NewReader(doc),
		s.es.Index.WithDocumentID(entry.ID),
		s.es.Index.WithContext(ctx),
	)
	if err != nil {
		s.logger.Warn("audit log search mirror failed", map[string]interface{}{
			"logId": entry.ID,
			"error": err,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		s.logger.Warn("audit log search mirror rejected", map[string]interface{}{
			"logId":  entry.ID,
			"status": res.Status(),
		})
	}
}
