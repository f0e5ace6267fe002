package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

const defaultHistoryLimit = 50

type conversationRow struct {
	bun.BaseModel `bun:"table:conversations,alias:c"`

	ID             int64     `bun:"id,pk,autoincrement"`
	SessionID      string    `bun:"session_id,notnull"`
	UserMessage    string    `bun:"user_message"`
	AgentReasoning string    `bun:"agent_reasoning,nullzero"`
	AgentResponse  string    `bun:"agent_response,nullzero"`
	ToolsUsed      string    `bun:"tools_used,nullzero"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PostgresAuditLog appends workflow invocations to the conversations table.
type PostgresAuditLog struct {
	db  *bun.DB
	now func() time.Time
}

func NewPostgresAuditLog(db *bun.DB) (*PostgresAuditLog, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresAuditLog{db: db, now: time.Now}, nil
}

// Init creates the conversations table if it does not exist yet.
func (l *PostgresAuditLog) Init(ctx context.Context) error {
	if _, err := l.db.NewCreateTable().
		Model((*conversationRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create conversations table: %w", err)
	}
	return nil
}

// Log appends one entry. The sink is append-only; entries are never
// updated or deleted.
func (l *PostgresAuditLog) Log(ctx context.Context, entry contractx.AuditEntry) error {
	if strings.TrimSpace(entry.SessionID) == "" {
		return errors.New("audit entry session id is empty")
	}

	row := rowFromEntry(entry)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = l.now().UTC()
	}

	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the most recent entries first. An empty sessionID spans
// all sessions; limit <= 0 falls back to the default page size.
func (l *PostgresAuditLog) History(ctx context.Context, sessionID string, limit int) ([]contractx.AuditEntry, error) {
	return l.history(ctx, sessionID, time.Time{}, time.Time{}, limit)
}

// HistoryRange is History restricted to entries created in [from, to).
// A zero bound leaves that side open.
func (l *PostgresAuditLog) HistoryRange(ctx context.Context, sessionID string, from, to time.Time, limit int) ([]contractx.AuditEntry, error) {
	return l.history(ctx, sessionID, from, to, limit)
}

func (l *PostgresAuditLog) history(ctx context.Context, sessionID string, from, to time.Time, limit int) ([]contractx.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var rows []conversationRow
	q := l.db.NewSelect().
		Model(&rows).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)
	if session := strings.TrimSpace(sessionID); session != "" {
		q = q.Where("session_id = ?", session)
	}
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}

	entries := make([]contractx.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries, nil
}

func rowFromEntry(entry contractx.AuditEntry) conversationRow {
	return conversationRow{
		SessionID:      entry.SessionID,
		UserMessage:    entry.UserMessage,
		AgentReasoning: entry.Reasoning,
		AgentResponse:  entry.Response,
		ToolsUsed:      joinTools(entry.ToolsUsed),
		CreatedAt:      entry.CreatedAt,
	}
}

func entryFromRow(row conversationRow) contractx.AuditEntry {
	return contractx.AuditEntry{
		SessionID:   row.SessionID,
		UserMessage: row.UserMessage,
		Reasoning:   row.AgentReasoning,
		Response:    row.AgentResponse,
		ToolsUsed:   splitTools(row.ToolsUsed),
		CreatedAt:   row.CreatedAt,
	}
}

func joinTools(tools []string) string {
	return strings.Join(tools, ", ")
}

func splitTools(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tools := make([]string, 0, len(parts))
	for _, part := range parts {
		if tool := strings.TrimSpace(part); tool != "" {
			tools = append(tools, tool)
		}
	}
	return tools
}

// NopSink discards every entry. Used when audit logging is disabled.
type NopSink struct{}

func (NopSink) Log(context.Context, contractx.AuditEntry) error {
	return nil
}
