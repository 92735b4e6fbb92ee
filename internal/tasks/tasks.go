package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeSweepCovers = "catalog:covers:sweep"
)

type SweepCoversPayload struct{}

func NewSweepCoversTask(opts ...asynq.Option) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(SweepCoversPayload{})
	if err != nil {
		return nil, err
	}

	uniqueOpt := asynq.Unique(1 * time.Hour)
	allOpts := append(opts, uniqueOpt)

	return asynq.NewTask(TypeSweepCovers, payloadBytes, allOpts...), nil
}
