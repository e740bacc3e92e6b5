package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"smeerp/internal/core/id"
	"smeerp/internal/domain"
	"smeerp/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // e.g. "expense_sheet"
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // e.g. "approval.requested"
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

var outboxColumns = ExtractDBColumns[OutboxMessage]()

// OutboxPublisher writes events to sys_outbox in the caller's transaction.
type OutboxPublisher struct{}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher() *OutboxPublisher {
	return &OutboxPublisher{}
}

// Publish implements domain.EventPublisher. MUST be called inside a transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	txm := MustGetTxManager(ctx)
	if txm.GetTx(ctx) == nil {
		return fmt.Errorf("outbox publish requires transaction context")
	}

	q, err := outboxInsert(events, time.Now().UTC())
	if err != nil {
		return err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}
	if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox messages: %w", err)
	}
	return nil
}

func outboxInsert(events []domain.Event, now time.Time) (squirrel.InsertBuilder, error) {
	q := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("sys_outbox").
		Columns("id", "aggregate_type", "aggregate_id", "event_type", "payload", "status", "created_at")
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return q, fmt.Errorf("marshal %s payload: %w", e.EventType, err)
		}
		q = q.Values(id.New(), e.AggregateType, e.AggregateID, e.EventType, payload, OutboxStatusPending, now)
	}
	return q, nil
}

// OutboxHandler processes outbox messages.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay reads pending messages and hands them to a handler.
// Used by the background worker.
type OutboxRelay struct {
	txManager  *TxManager
	batchSize  int
	maxRetries int
	handler    OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize, maxRetries int, handler OutboxHandler) *OutboxRelay {
	return &OutboxRelay{
		txManager:  txManager,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		handler:    handler,
	}
}

func (r *OutboxRelay) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ProcessBatch locks a batch of due messages, handles them and records
// the outcome in the same transaction. Returns the number handled.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sql, args, err := r.builder().
			Select(outboxColumns...).
			From("sys_outbox").
			Where(squirrel.Eq{"status": OutboxStatusPending}).
			Where(squirrel.Or{squirrel.Eq{"next_retry_at": nil}, squirrel.Expr("next_retry_at <= NOW()")}).
			OrderBy("created_at").
			Limit(uint64(r.batchSize)).
			Suffix("FOR UPDATE SKIP LOCKED").
			ToSql()
		if err != nil {
			return fmt.Errorf("build outbox fetch: %w", err)
		}

		var messages []*OutboxMessage
		if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, sql, args...); err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			if err := r.processMessage(ctx, msg); err != nil {
				logger.Warn(ctx, "outbox message failed", "id", msg.ID, "event_type", msg.EventType, "error", err)
				continue
			}
			processed++
		}
		return nil
	})
	return processed, err
}

func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	handleErr := r.handler.Handle(ctx, msg)

	q := r.builder().Update("sys_outbox").Where(squirrel.Eq{"id": msg.ID})
	if handleErr != nil {
		retries := msg.RetryCount + 1
		status := OutboxStatusPending
		if retries >= r.maxRetries {
			status = OutboxStatusFailed
		}
		q = q.Set("retry_count", retries).
			Set("last_error", handleErr.Error()).
			Set("next_retry_at", time.Now().UTC().Add(time.Duration(retries)*time.Minute)).
			Set("status", status)
	} else {
		q = q.Set("status", OutboxStatusPublished).Set("published_at", time.Now().UTC())
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build outbox update: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update outbox message: %w", err)
	}
	return handleErr
}

// MoveToDLQ moves messages that ran out of retries to sys_outbox_dlq.
func (r *OutboxRelay) MoveToDLQ(ctx context.Context) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		WITH moved AS (
			DELETE FROM sys_outbox
			WHERE status = $1 AND retry_count >= $2
			RETURNING *
		)
		INSERT INTO sys_outbox_dlq
		SELECT *, NOW() AS failed_at, last_error AS failure_reason FROM moved
	`, OutboxStatusFailed, r.maxRetries)
	if err != nil {
		return 0, fmt.Errorf("move to DLQ: %w", err)
	}
	return result.RowsAffected(), nil
}

// Cleanup deletes messages published before olderThan.
func (r *OutboxRelay) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	sql, args, err := r.builder().
		Delete("sys_outbox").
		Where(squirrel.Eq{"status": OutboxStatusPublished}).
		Where(squirrel.Lt{"published_at": olderThan}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build outbox cleanup: %w", err)
	}
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup outbox: %w", err)
	}
	return result.RowsAffected(), nil
}

var _ domain.EventPublisher = (*OutboxPublisher)(nil)
