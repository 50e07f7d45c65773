package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ewaste-pickup/metrics"
	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

// maxOrderIDAttempts bounds regeneration after an order id collision.
const maxOrderIDAttempts = 3

// Zone-less layouts are read as UTC.
var scheduledDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

type OrderService struct {
	orders   OrderRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	newID    func(time.Time) (string, error)
}

// NewOrderService wires the order rules. notifier may be nil.
func NewOrderService(orders OrderRepository, notifier Notifier, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:   orders,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    utils.NewOrderID,
	}
}

// ParseScheduledDate accepts a calendar date, a datetime-local value or an
// RFC 3339 timestamp.
func ParseScheduledDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range scheduledDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid scheduled date %q", s)
	}
	return t.UTC(), nil
}

func (s *OrderService) buildOrder(in models.OrderInput) (models.Order, error) {
	wasteType := strings.TrimSpace(in.WasteType)
	address := strings.TrimSpace(in.Address)
	city := strings.TrimSpace(in.City)
	phone := strings.TrimSpace(in.Phone)
	if wasteType == "" || address == "" || city == "" || phone == "" ||
		strings.TrimSpace(in.ScheduledDate) == "" || in.Quantity == 0 {
		return models.Order{}, utils.ValidationError("Missing required order fields")
	}
	if in.Quantity < 0 {
		return models.Order{}, utils.ValidationError("Quantity must be greater than zero")
	}
	scheduled, err := ParseScheduledDate(in.ScheduledDate)
	if err != nil {
		return models.Order{}, utils.ValidationError("Please provide a valid scheduled date")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = models.DefaultUnit
	}

	now := s.now()
	return models.Order{
		WasteType:     wasteType,
		Quantity:      in.Quantity,
		Unit:          unit,
		Address:       address,
		City:          city,
		Phone:         phone,
		ScheduledDate: scheduled,
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// PlaceOrder appends a pending order to the account. A colliding order id
// is replaced with a fresh one up to maxOrderIDAttempts times.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in models.OrderInput) (*models.Order, error) {
	order, err := s.buildOrder(in)
	if err != nil {
		return nil, err
	}
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		order.OrderID, err = s.newID(order.CreatedAt)
		if err != nil {
			return nil, utils.InternalError(err)
		}
		err = s.orders.AppendOrder(ctx, id, order)
		if err == nil {
			break
		}
		if !errors.Is(err, utils.ErrOrderIDTaken) {
			return nil, err
		}
		if attempt == maxOrderIDAttempts {
			return nil, utils.InternalError(fmt.Errorf("no free order id after %d attempts: %w", attempt, err))
		}
		s.logger.Warn("order id collision, regenerating", zap.String("order_id", order.OrderID))
	}

	metrics.OrdersPlacedTotal.Inc()
	s.logger.Info("order placed", zap.String("user_id", userID), zap.String("order_id", order.OrderID))
	s.notify("order_confirmation", id, order, Notifier.SendOrderConfirmationEmail)
	return &order, nil
}

// ListOrders returns the account's orders oldest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListOrders(ctx, id)
}

// CancelOrder deletes the order and returns what was removed.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, utils.ValidationError("Order id is required")
	}
	id, err := parseUserID(userID)
	if err != nil {
		return nil, utils.NotFoundError("Order not found")
	}

	removed, err := s.orders.RemoveOrder(ctx, id, orderID, s.now())
	if err != nil {
		return nil, err
	}

	metrics.OrdersCancelledTotal.Inc()
	s.logger.Info("order cancelled", zap.String("user_id", userID), zap.String("order_id", orderID))
	s.notify("order_cancelled", id, *removed, Notifier.SendOrderCancelledEmail)
	return removed, nil
}

// notify looks the owner up in the background so the email can address them by name.
func (s *OrderService) notify(what string, userID primitive.ObjectID, order models.Order, send func(Notifier, *models.User, models.Order) error) {
	if s.notifier == nil {
		return
	}
	notifyAsync(s.logger, what, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		user, err := s.orders.FindUserByID(ctx, userID)
		if err != nil {
			return err
		}
		return send(s.notifier, user, order)
	})
}
