// Package services holds the account and order rules. Services return
// typed utils errors and never know about HTTP.
package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"ewaste-pickup/models"
)

// UserRepository is the account storage used by AccountService.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, now time.Time) (*models.User, error)
	SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) (*models.User, error)
}

// OrderRepository is the order storage used by OrderService.
type OrderRepository interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	AppendOrder(ctx context.Context, id primitive.ObjectID, order models.Order) error
	ListOrders(ctx context.Context, id primitive.ObjectID) ([]models.Order, error)
	RemoveOrder(ctx context.Context, id primitive.ObjectID, orderID string, now time.Time) (*models.Order, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

// Notifier sends account and order emails.
type Notifier interface {
	SendWelcomeEmail(user *models.User) error
	SendOrderConfirmationEmail(user *models.User, order models.Order) error
	SendOrderCancelledEmail(user *models.User, order models.Order) error
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, publicID string) (string, error)
}

const notifyTimeout = 15 * time.Second

// notifyAsync runs send in the background. Failures are only logged.
func notifyAsync(logger *zap.Logger, what string, send func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("notification panicked", zap.String("notification", what), zap.Any("panic", r))
			}
		}()
		if err := send(); err != nil {
			logger.Warn("failed to send notification", zap.String("notification", what), zap.Error(err))
		}
	}()
}
