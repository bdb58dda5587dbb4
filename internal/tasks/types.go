package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeActivationEmail = "email:activation"
	TypeResetEmail      = "email:reset"
	TypePurgeCompleted  = "todo:purge_completed"
)

// EmailPayload carries the recipient and the signed token to embed in the
// mailed link.
type EmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func NewActivationEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeActivationEmail, data, asynq.Queue("mail")), nil
}

func NewResetEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResetEmail, data, asynq.Queue("mail")), nil
}

// NewPurgeCompletedTask has no payload; the handler purges everything that
// is complete at execution time.
func NewPurgeCompletedTask() *asynq.Task {
	return asynq.NewTask(TypePurgeCompleted, nil, asynq.Queue("low"))
}
