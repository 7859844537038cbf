package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"resume-screener/internal/platform/rabbitmq"
	"resume-screener/internal/repository"
)

// UsageWorker consumes usage events and applies them to the user_usage
// table, keeping accounting writes off the screening request path.
type UsageWorker struct {
	conn      *amqp.Connection
	repo      *repository.UsageRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewUsageWorker(conn *amqp.Connection, repo *repository.UsageRepository, queueName string) *UsageWorker {
	return &UsageWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *UsageWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var event rabbitmq.UsageEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode usage event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}
				if event.UserID == 0 || event.Resumes <= 0 {
					log.Printf("worker skipping malformed usage event: %+v", event)
					_ = d.Ack(false)
					continue
				}

				if err := w.repo.Increment(event.UserID, event.Resumes); err != nil {
					log.Printf("worker apply usage event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *UsageWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
