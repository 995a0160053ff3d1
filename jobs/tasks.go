package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ses-manager/ses-manager/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord persists one authorization decision.
	TaskAuditRecord = "authz:decision:record"
	// TaskAuditPurge deletes decisions past the retention window.
	TaskAuditPurge = "authz:decision:purge"
)

// NewAuditRecordTask builds a record task for evt.
func NewAuditRecordTask(evt audit.Event) (*asynq.Task, error) {
	body, err := json.Marshal(evt.WithDefaults())
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// AuditPurgePayload configures a purge run.
type AuditPurgePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditPurgeTask builds a purge task.
func NewAuditPurgeTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(AuditPurgePayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, body, asynq.Queue(QueueDefault)), nil
}

// AuditStore is the persistence used by AuditJob.
type AuditStore interface {
	Insert(ctx context.Context, evt audit.Event) error
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// AuditJob handles the decision audit tasks.
type AuditJob struct {
	Store  AuditStore
	Logger *slog.Logger
	clock  func() time.Time
}

// NewAuditJob initialises the audit task handlers.
func NewAuditJob(store AuditStore, logger *slog.Logger) *AuditJob {
	return &AuditJob{
		Store:  store,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandleRecord persists the event carried by a TaskAuditRecord task.
func (j *AuditJob) HandleRecord(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("audit record: handler not configured")
	}
	var evt audit.Event
	if err := json.Unmarshal(t.Payload(), &evt); err != nil {
		return fmt.Errorf("audit record: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	return j.Store.Insert(ctx, evt)
}

// HandlePurge removes decisions older than the payload retention.
func (j *AuditJob) HandlePurge(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("audit purge: handler not configured")
	}
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("audit purge: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Retention <= 0 {
		return fmt.Errorf("audit purge: retention must be positive: %w", asynq.SkipRetry)
	}
	cutoff := j.now().Add(-payload.Retention)
	removed, err := j.Store.Purge(ctx, cutoff)
	if err != nil {
		return err
	}
	j.logger().Info("purged authorization decisions",
		slog.Int64("removed", removed),
		slog.Time("before", cutoff),
	)
	return nil
}

func (j *AuditJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *AuditJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}
