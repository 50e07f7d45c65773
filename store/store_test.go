package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

type userStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, now time.Time) (*models.User, error)
	SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) (*models.User, error)
	AppendOrder(ctx context.Context, id primitive.ObjectID, order models.Order) error
	ListOrders(ctx context.Context, id primitive.ObjectID) ([]models.Order, error)
	RemoveOrder(ctx context.Context, id primitive.ObjectID, orderID string, now time.Time) (*models.Order, error)
	Ping(ctx context.Context) error
}

var (
	_ userStore = (*MemoryUserStore)(nil)
	_ userStore = (*MongoUserStore)(nil)
)

func newTestUser(email string) *models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.User{
		FullName:  "Jane Doe",
		Email:     email,
		Password:  "$2a$12$hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestOrder(id string) models.Order {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Order{
		OrderID:       id,
		WasteType:     "computers",
		Quantity:      3,
		Unit:          models.DefaultUnit,
		Address:       "1 Main St",
		City:          "Metropolis",
		Phone:         "555-0100",
		ScheduledDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func strPtr(s string) *string { return &s }

func testUserStore(t *testing.T, s userStore, prefix string) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		email := prefix + "create@example.com"
		created, err := s.CreateUser(ctx, newTestUser(email))
		require.NoError(t, err)
		require.False(t, created.ID.IsZero())

		exists, err := s.EmailExists(ctx, email)
		require.NoError(t, err)
		assert.True(t, exists)

		byEmail, err := s.FindUserByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.NotEmpty(t, byEmail.Password)

		byID, err := s.FindUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", byID.FullName)
		assert.Empty(t, byID.Password)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		email := prefix + "dup@example.com"
		_, err := s.CreateUser(ctx, newTestUser(email))
		require.NoError(t, err)

		_, err = s.CreateUser(ctx, newTestUser(email))
		require.Error(t, err)
		assert.Equal(t, utils.KindConflict, utils.KindOf(err))
	})

	t.Run("concurrent duplicate email", func(t *testing.T) {
		email := prefix + "race@example.com"
		const workers = 8

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateUser(ctx, newTestUser(email))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.Equal(t, utils.KindConflict, utils.KindOf(err))
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("missing account", func(t *testing.T) {
		missing := primitive.NewObjectID()

		_, err := s.FindUserByID(ctx, missing)
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		_, err = s.FindUserByEmail(ctx, prefix+"nobody@example.com")
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		_, err = s.UpdateProfile(ctx, missing, models.ProfileUpdate{City: strPtr("x")}, time.Now())
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		err = s.AppendOrder(ctx, missing, newTestOrder(prefix+"ORD-MISSING"))
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		_, err = s.ListOrders(ctx, missing)
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		_, err = s.RemoveOrder(ctx, missing, "ORD-1", time.Now())
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})

	t.Run("profile update leaves absent fields", func(t *testing.T) {
		created, err := s.CreateUser(ctx, newTestUser(prefix+"profile@example.com"))
		require.NoError(t, err)

		_, err = s.UpdateProfile(ctx, created.ID, models.ProfileUpdate{
			Phone: strPtr("555-0100"),
			City:  strPtr("Gotham"),
		}, time.Now().UTC())
		require.NoError(t, err)

		later := time.Now().UTC().Add(time.Second).Truncate(time.Millisecond)
		updated, err := s.UpdateProfile(ctx, created.ID, models.ProfileUpdate{
			City:  strPtr("Metropolis"),
			State: strPtr(""),
		}, later)
		require.NoError(t, err)
		assert.Equal(t, "Metropolis", updated.City)
		assert.Equal(t, "555-0100", updated.Phone)
		assert.Equal(t, "Jane Doe", updated.FullName)
		assert.Empty(t, updated.State)
		assert.Empty(t, updated.Password)
		assert.True(t, updated.UpdatedAt.Equal(later))
	})

	t.Run("profile picture", func(t *testing.T) {
		created, err := s.CreateUser(ctx, newTestUser(prefix+"picture@example.com"))
		require.NoError(t, err)

		updated, err := s.SetProfilePicture(ctx, created.ID, "https://img.example.com/a.png", time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, "https://img.example.com/a.png", updated.ProfilePicture)
	})

	t.Run("order lifecycle", func(t *testing.T) {
		created, err := s.CreateUser(ctx, newTestUser(prefix+"orders@example.com"))
		require.NoError(t, err)

		orders, err := s.ListOrders(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.NotNil(t, orders)

		first := newTestOrder(prefix + "ORD-1-AAAAAAAAA")
		second := newTestOrder(prefix + "ORD-2-BBBBBBBBB")
		require.NoError(t, s.AppendOrder(ctx, created.ID, first))
		require.NoError(t, s.AppendOrder(ctx, created.ID, second))

		orders, err = s.ListOrders(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, first.OrderID, orders[0].OrderID)
		assert.Equal(t, second.OrderID, orders[1].OrderID)
		assert.Equal(t, models.OrderStatusPending, orders[0].Status)
		assert.Equal(t, 3.0, orders[0].Quantity)

		removed, err := s.RemoveOrder(ctx, created.ID, first.OrderID, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, first.OrderID, removed.OrderID)
		assert.Equal(t, "computers", removed.WasteType)

		_, err = s.RemoveOrder(ctx, created.ID, first.OrderID, time.Now().UTC())
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

		orders, err = s.ListOrders(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, second.OrderID, orders[0].OrderID)
	})

	t.Run("order id reuse", func(t *testing.T) {
		owner, err := s.CreateUser(ctx, newTestUser(prefix+"owner@example.com"))
		require.NoError(t, err)
		other, err := s.CreateUser(ctx, newTestUser(prefix+"other@example.com"))
		require.NoError(t, err)

		order := newTestOrder(prefix + "ORD-3-CCCCCCCCC")
		require.NoError(t, s.AppendOrder(ctx, owner.ID, order))

		assert.ErrorIs(t, s.AppendOrder(ctx, owner.ID, order), utils.ErrOrderIDTaken)
		assert.ErrorIs(t, s.AppendOrder(ctx, other.ID, order), utils.ErrOrderIDTaken)

		_, err = s.RemoveOrder(ctx, other.ID, order.OrderID, time.Now().UTC())
		assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	})

	t.Run("concurrent appends keep every order", func(t *testing.T) {
		created, err := s.CreateUser(ctx, newTestUser(prefix+"concurrent@example.com"))
		require.NoError(t, err)

		const workers = 10
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.AppendOrder(ctx, created.ID, newTestOrder(fmt.Sprintf("%sORD-C-%09d", prefix, i))))
			}(i)
		}
		wg.Wait()

		orders, err := s.ListOrders(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, orders, workers)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryUserStore(t *testing.T) {
	testUserStore(t, NewMemoryUserStore(), "")
}

func TestMemoryUserStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	created, err := s.CreateUser(ctx, newTestUser("copy@example.com"))
	require.NoError(t, err)
	require.NoError(t, s.AppendOrder(ctx, created.ID, newTestOrder("ORD-1-AAAAAAAAA")))

	orders, err := s.ListOrders(ctx, created.ID)
	require.NoError(t, err)
	orders[0].WasteType = "changed"

	user, err := s.FindUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "computers", user.Orders[0].WasteType)
}

func TestMongoUserStore(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	client, err := ConnectDB(ctx, uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("ewaste_test_%d", time.Now().UnixNano()))
	defer func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	}()

	s := NewMongoUserStore(db)
	require.NoError(t, s.EnsureIndexes(ctx))
	// Creating the same indexes again is a no-op.
	require.NoError(t, s.EnsureIndexes(ctx))

	testUserStore(t, s, "it-")
}

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError(nil))

	typed := utils.NotFoundError("User not found")
	assert.Same(t, typed, wrapDBError(typed))

	err := wrapDBError(context.DeadlineExceeded)
	assert.Equal(t, utils.KindUnavailable, utils.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = wrapDBError(fmt.Errorf("boom"))
	assert.Equal(t, utils.KindInternal, utils.KindOf(err))
	assert.Equal(t, "Server error", utils.MessageOf(err))
}
