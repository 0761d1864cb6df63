// Package notify runs the post-checkout notification pipeline on protoactor.
// Checkout fires an OrderPlaced message and moves on; confirmation delivery
// never holds up or fails an order.
package notify

import (
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// OrderPlaced tells the order actor that checkout committed an order.
type OrderPlaced struct {
	OrderID     string
	UserID      string
	Email       string
	FullName    string
	TotalAmount float64
}

// OrderAck is the order actor's response once the confirmation was handed
// off.
type OrderAck struct {
	OrderID string
	Status  string
	Message string
}

// SendNotification asks the notification actor to deliver one message.
type SendNotification struct {
	Recipient string
	Type      string // email, sms, push
	Message   string
}

type NotificationResponse struct {
	Success bool
	Message string
}

// OrderActor receives placed orders and dispatches their confirmations.
type OrderActor struct {
	notifier *actor.PID
	logger   *zap.Logger
}

func (a *OrderActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *OrderPlaced:
		a.logger.Info("Processing placed order",
			zap.String("order_id", msg.OrderID),
			zap.String("user_id", msg.UserID),
			zap.Float64("total_amount", msg.TotalAmount))

		ctx.Send(a.notifier, &SendNotification{
			Recipient: msg.Email,
			Type:      "email",
			Message:   fmt.Sprintf("تم استلام طلبك رقم %s بنجاح", msg.OrderID),
		})

		ctx.Respond(&OrderAck{
			OrderID: msg.OrderID,
			Status:  "notified",
			Message: "Order confirmation dispatched",
		})

	case *actor.Started:
		a.logger.Info("Order actor started")

	case *actor.Stopping:
		a.logger.Info("Order actor stopping")

	case *actor.Stopped:
		a.logger.Info("Order actor stopped")
	}
}

// NotificationActor delivers confirmations. Delivery is a log line here; the
// mail transport sits outside this service.
type NotificationActor struct {
	logger *zap.Logger
}

func (a *NotificationActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *SendNotification:
		a.logger.Info("Sending notification",
			zap.String("recipient", msg.Recipient),
			zap.String("type", msg.Type),
			zap.String("message", msg.Message))

		if ctx.Sender() != nil {
			ctx.Respond(&NotificationResponse{
				Success: true,
				Message: "Notification sent successfully",
			})
		}

	case *actor.Started:
		a.logger.Info("Notification actor started")
	}
}

// Service owns the actor system and offers a fire-and-forget entry point for
// checkout.
type Service struct {
	system   *actor.ActorSystem
	orderPID *actor.PID
	logger   *zap.Logger
}

func NewService(logger *zap.Logger) (*Service, error) {
	system := actor.NewActorSystem()

	notifierProps := actor.PropsFromProducer(func() actor.Actor {
		return &NotificationActor{logger: logger.Named("notification-actor")}
	})
	notifierPID, err := system.Root.SpawnNamed(notifierProps, "notification-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn notification actor: %w", err)
	}

	orderProps := actor.PropsFromProducer(func() actor.Actor {
		return &OrderActor{notifier: notifierPID, logger: logger.Named("order-actor")}
	})
	orderPID, err := system.Root.SpawnNamed(orderProps, "order-actor")
	if err != nil {
		return nil, fmt.Errorf("failed to spawn order actor: %w", err)
	}

	return &Service{
		system:   system,
		orderPID: orderPID,
		logger:   logger,
	}, nil
}

// OrderPlaced dispatches the confirmation flow for one order in the
// background. Failures are logged, never returned.
func (s *Service) OrderPlaced(msg *OrderPlaced) {
	go func() {
		future := s.system.Root.RequestFuture(s.orderPID, msg, 5*time.Second)
		result, err := future.Result()
		if err != nil {
			s.logger.Error("Order notification failed",
				zap.String("order_id", msg.OrderID), zap.Error(err))
			return
		}
		if ack, ok := result.(*OrderAck); ok {
			s.logger.Info("Order notification handled",
				zap.String("order_id", ack.OrderID),
				zap.String("status", ack.Status))
		}
	}()
}

func (s *Service) Shutdown() {
	s.system.Shutdown()
}
