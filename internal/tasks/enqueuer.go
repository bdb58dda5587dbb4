package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/raminkz/gotodo/internal/auth"
)

// Enqueuer implements auth.Notifier by pushing mail jobs onto the queue.
// The HTTP response never waits on SMTP; it only waits on the enqueue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) SendActivation(ctx context.Context, email, token string) error {
	task, err := NewActivationEmailTask(EmailPayload{Email: email, Token: token})
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) SendPasswordReset(ctx context.Context, email, token string) error {
	task, err := NewResetEmailTask(EmailPayload{Email: email, Token: token})
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task) error {
	if e.client == nil {
		return fmt.Errorf("queue client not configured")
	}
	_, err := e.client.EnqueueContext(ctx, task)
	return err
}

var _ auth.Notifier = (*Enqueuer)(nil)
