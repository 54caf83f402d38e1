package application

import (
	"context"
	"time"
)

// EventPublisher pushes domain events to the notification queue.
// Satisfied by helpers.RabbitPublisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TaskAssignedEvent is consumed by the notifier worker whenever a task
// gains an assignee.
type TaskAssignedEvent struct {
	Type       string    `json:"type"`
	TaskID     string    `json:"task_id"`
	Title      string    `json:"title"`
	AssignedTo string    `json:"assigned_to"`
	AssignedBy string    `json:"assigned_by"`
	At         time.Time `json:"at"`
}

const EventTaskAssigned = "task.assigned"
