//go:generate mockgen -source ./services.go -destination=./mocks/services.go -package=mock_controllers
package controllers

import (
	"context"
	"io"

	"ewaste-pickup/models"
	"ewaste-pickup/services"
)

type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, in models.OrderInput) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}
