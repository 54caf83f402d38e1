package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/teamtasks/team-tasks-api/config"
	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/pkg/helpers"
)

// Notifier consumes task assignment events from the queue and records
// them. Delivery channels (email, chat) plug in here without touching
// the API process.
func main() {
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if _, err := ch.QueueDeclare(cfg.RabbitMQEventQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEventQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	logger.Infof("notifier consuming from %s", cfg.RabbitMQEventQueue)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for d := range msgs {
			var evt application.TaskAssignedEvent
			if err := json.Unmarshal(d.Body, &evt); err != nil {
				logger.WithError(err).Warn("discarding malformed event")
				_ = d.Nack(false, false)
				continue
			}
			logger.WithFields(map[string]interface{}{
				"type":        evt.Type,
				"task_id":     evt.TaskID,
				"title":       evt.Title,
				"assigned_to": evt.AssignedTo,
				"assigned_by": evt.AssignedBy,
			}).Info("task assignment notification")
			_ = d.Ack(false)
		}
	}()

	<-done
	logger.Info("notifier shutting down")
}
