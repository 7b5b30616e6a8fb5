package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-signup-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore resolves recipients to push subscriptions.
type SubscriptionStore interface {
	PersonIDsWithRole(ctx context.Context, role model.Role) ([]int64, error)
	SubscriptionsForPeople(ctx context.Context, personIDs []int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Dispatcher accepts events for asynchronous delivery.
type Dispatcher interface {
	Dispatch(ev Event)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Event
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, store SubscriptionStore, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, queueSize),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.With(zap.Int("worker", id))
	log.Debug("notification worker started")
	for {
		select {
		case ev := <-wp.jobs:
			log.Debug("processing notification", zap.String("event_id", ev.ID), zap.String("kind", string(ev.Kind)))
			wp.deliver(ctx, ev)
		case <-ctx.Done():
			log.Debug("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues an event without blocking. When the queue is full the event
// is dropped and a warning logged.
func (wp *WorkerPool) Dispatch(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	select {
	case wp.jobs <- ev:
	default:
		wp.log.Warn("notification queue full, dropping event",
			zap.String("event_id", ev.ID),
			zap.String("kind", string(ev.Kind)),
		)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

func (wp *WorkerPool) deliver(ctx context.Context, ev Event) {
	personIDs := []int64{ev.Recipient.PersonID}
	if ev.Recipient.Role != 0 {
		ids, err := wp.store.PersonIDsWithRole(ctx, ev.Recipient.Role)
		if err != nil {
			wp.log.Error("failed to resolve notification role", zap.String("event_id", ev.ID), zap.Error(err))
			return
		}
		personIDs = ids
	}

	subscriptions, err := wp.store.SubscriptionsForPeople(ctx, personIDs)
	if err != nil {
		wp.log.Error("failed to fetch subscriptions", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	title, body := ev.Message()
	payload, err := json.Marshal(map[string]any{
		"id":    ev.ID,
		"kind":  ev.Kind,
		"title": title,
		"body":  body,
		"data":  ev.Payload,
	})
	if err != nil {
		wp.log.Error("failed to marshal notification", zap.String("event_id", ev.ID), zap.Error(err))
		return
	}

	wp.log.Info("sending notifications",
		zap.String("event_id", ev.ID),
		zap.String("kind", string(ev.Kind)),
		zap.Int("subscriptions", len(subscriptions)),
	)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Warn("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
