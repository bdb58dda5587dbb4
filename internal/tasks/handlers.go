package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/raminkz/gotodo/internal/todo"
)

// Handler executes queued jobs in the worker process.
type Handler struct {
	store  *todo.Store
	mailer *Mailer
	logger *slog.Logger
}

func NewHandler(store *todo.Store, mailer *Mailer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, mailer: mailer, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeActivationEmail, h.HandleActivationEmail)
	mux.HandleFunc(TypeResetEmail, h.HandleResetEmail)
	mux.HandleFunc(TypePurgeCompleted, h.HandlePurgeCompleted)
}

func (h *Handler) HandleActivationEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal activation payload: %w", err)
	}

	if err := h.mailer.SendActivationMail(payload.Email, payload.Token); err != nil {
		h.logger.Error("activation mail failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("activation mail sent", "email", payload.Email)
	return nil
}

func (h *Handler) HandleResetEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal reset payload: %w", err)
	}

	if err := h.mailer.SendResetMail(payload.Email, payload.Token); err != nil {
		h.logger.Error("reset mail failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("reset mail sent", "email", payload.Email)
	return nil
}

// HandlePurgeCompleted deletes every completed task. Running it with no
// matching rows is a no-op.
func (h *Handler) HandlePurgeCompleted(ctx context.Context, t *asynq.Task) error {
	count, err := h.store.PurgeCompleted(ctx)
	if err != nil {
		return fmt.Errorf("purging completed tasks: %w", err)
	}

	h.logger.Info("purged completed tasks", "count", count)
	return nil
}
