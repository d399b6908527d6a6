package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/quarrylab/quarry/internal/sandbox"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSandboxReset restores the sandbox fixtures.
	TaskTypeSandboxReset = "sandbox:reset"
)

// SandboxResetPayload carries scheduling metadata for a reset run.
type SandboxResetPayload struct {
	Reason       string    `json:"reason"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSandboxResetTask constructs an Asynq task for a sandbox reset.
func NewSandboxResetTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(SandboxResetPayload{Reason: reason, ScheduledFor: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSandboxReset, body, asynq.Queue(QueueDefault)), nil
}

// Resetter is the slice of the sandbox service the reset handler needs.
type Resetter interface {
	ResetInternal(ctx context.Context) (sandbox.ResetResult, error)
}

// SandboxResetHandler processes TaskTypeSandboxReset tasks by wiping and
// reseeding the database through the sandbox service.
type SandboxResetHandler struct {
	Service Resetter
	Logger  *slog.Logger
}

func (h *SandboxResetHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SandboxResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	result, err := h.Service.ResetInternal(ctx)
	if err != nil {
		h.Logger.Error("scheduled sandbox reset failed", slog.Any("error", err))
		return err
	}
	h.Logger.Info("scheduled sandbox reset",
		slog.String("reason", payload.Reason),
		slog.Int("users_created", result.UsersCreated),
		slog.Int("orders_created", result.OrdersCreated))
	return nil
}
