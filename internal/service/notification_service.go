package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-desk/pqrs-service/internal/config"
	"github.com/campus-desk/pqrs-service/internal/events"
)

// NotificationService fans domain events out to operators: every event is
// logged, and when Redis is reachable it is also queued for external
// consumers (mailers, dashboards).
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	queue      *redis.Client
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. queue may be nil; events are
// then log-only.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, queue *redis.Client, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		queue:      queue,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to every ticket lifecycle event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketRegistered,
		events.EventTicketClassified,
		events.EventTicketPrioritized,
		events.EventTicketAssigned,
		events.EventTicketResolved,
		events.EventTicketClosed,
	} {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.Actor.ID))
	n.enqueue(ctx, event)
	return nil
}

func (n *NotificationService) enqueue(ctx context.Context, event events.Event) {
	if n.queue == nil || n.cfg.QueueKey == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("marshal event", zap.Error(err))
		return
	}
	if err := n.queue.LPush(ctx, n.cfg.QueueKey, payload).Err(); err != nil {
		n.logger.Warn("enqueue notification", zap.Error(err),
			zap.String("queue", n.cfg.QueueKey))
	}
}
