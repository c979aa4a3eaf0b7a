package jobs

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTimekeepingWarmup pre-computes dashboard row counts.
	TaskTimekeepingWarmup = "timekeeping:warmup"
)

// defaultWarmupUsers bounds the warmup fan-out when the payload leaves
// TopUsers unset.
const defaultWarmupUsers = 25

var validate = validator.New()

// WarmupPayload configures a warmup run: how many of the most active users
// get their per-user counts pre-computed alongside the admin-wide count.
type WarmupPayload struct {
	TopUsers int `json:"top_users" validate:"omitempty,min=1,max=500"`
}

// NewTimekeepingWarmupTask constructs a validated warmup task.
func NewTimekeepingWarmupTask(topUsers int) (*asynq.Task, error) {
	payload := WarmupPayload{TopUsers: topUsers}
	if err := validate.Struct(payload); err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTimekeepingWarmup, data), nil
}
