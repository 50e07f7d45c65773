package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

// MemoryUserStore is an in-process store with the same contract as
// MongoUserStore. Every operation holds the lock for its whole duration.
type MemoryUserStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	byEmail  map[string]primitive.ObjectID
	orderIDs map[string]primitive.ObjectID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:    make(map[primitive.ObjectID]*models.User),
		byEmail:  make(map[string]primitive.ObjectID),
		orderIDs: make(map[string]primitive.ObjectID),
	}
}

func (s *MemoryUserStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, utils.ConflictError("Email already registered")
	}
	user.ID = primitive.NewObjectID()
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}
	s.users[user.ID] = cloneUser(user)
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *MemoryUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *MemoryUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, utils.NotFoundError("User not found")
	}
	return cloneUser(s.users[id]), nil
}

func (s *MemoryUserStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("User not found")
	}
	out := cloneUser(user)
	out.Password = ""
	return out, nil
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("User not found")
	}
	assign(&user.FullName, update.FullName)
	assign(&user.Phone, update.Phone)
	assign(&user.Address, update.Address)
	assign(&user.City, update.City)
	assign(&user.State, update.State)
	assign(&user.ZipCode, update.ZipCode)
	user.UpdatedAt = now

	out := cloneUser(user)
	out.Password = ""
	return out, nil
}

func (s *MemoryUserStore) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("User not found")
	}
	user.ProfilePicture = url
	user.UpdatedAt = now

	out := cloneUser(user)
	out.Password = ""
	return out, nil
}

func (s *MemoryUserStore) AppendOrder(ctx context.Context, id primitive.ObjectID, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NotFoundError("User not found")
	}
	if _, taken := s.orderIDs[order.OrderID]; taken {
		return utils.ErrOrderIDTaken
	}
	user.Orders = append(user.Orders, order)
	user.UpdatedAt = order.UpdatedAt
	s.orderIDs[order.OrderID] = id
	return nil
}

func (s *MemoryUserStore) ListOrders(ctx context.Context, id primitive.ObjectID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("User not found")
	}
	return append([]models.Order{}, user.Orders...), nil
}

func (s *MemoryUserStore) RemoveOrder(ctx context.Context, id primitive.ObjectID, orderID string, now time.Time) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NotFoundError("Order not found")
	}
	for i, order := range user.Orders {
		if order.OrderID != orderID {
			continue
		}
		user.Orders = append(user.Orders[:i:i], user.Orders[i+1:]...)
		user.UpdatedAt = now
		delete(s.orderIDs, orderID)
		removed := order
		return &removed, nil
	}
	return nil, utils.NotFoundError("Order not found")
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Orders = append([]models.Order{}, u.Orders...)
	return &out
}
