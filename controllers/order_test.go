package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_controllers "ewaste-pickup/controllers/mocks"
	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

func testOrder() *models.Order {
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	return &models.Order{
		OrderID:       "ORD-1733047200000-ABCDEFGHI",
		WasteType:     "computers",
		Quantity:      3,
		Unit:          "kg",
		Address:       "1 Main St",
		City:          "Metropolis",
		Phone:         "555-0100",
		ScheduledDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCreateOrderHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	orders := mock_controllers.NewMockOrderService(ctrl)
	oc := NewOrderController(orders, time.Second)

	tests := []struct {
		name           string
		body           string
		setupMocks     func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "created",
			body: `{"wasteType":"computers","quantity":3,"address":"1 Main St","city":"Metropolis","phone":"555-0100","scheduledDate":"2025-01-01"}`,
			setupMocks: func() {
				orders.EXPECT().
					PlaceOrder(gomock.Any(), testUserID, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, in models.OrderInput) (*models.Order, error) {
						assert.Equal(t, "computers", in.WasteType)
						assert.Equal(t, 3.0, in.Quantity)
						assert.Equal(t, "2025-01-01", in.ScheduledDate)
						assert.Empty(t, in.Unit)
						return testOrder(), nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "quantity of wrong type",
			body:           `{"wasteType":"computers","quantity":"lots"}`,
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Invalid request body"}`,
		},
		{
			name: "missing fields",
			body: `{"wasteType":"computers"}`,
			setupMocks: func() {
				orders.EXPECT().PlaceOrder(gomock.Any(), testUserID, gomock.Any()).
					Return(nil, utils.ValidationError("Missing required order fields"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Missing required order fields"}`,
		},
		{
			name: "account gone",
			body: `{"wasteType":"computers","quantity":3,"address":"1 Main St","city":"Metropolis","phone":"555-0100","scheduledDate":"2025-01-01"}`,
			setupMocks: func() {
				orders.EXPECT().PlaceOrder(gomock.Any(), testUserID, gomock.Any()).
					Return(nil, utils.NotFoundError("User not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"User not found"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			req := authed(httptest.NewRequest(http.MethodPost, "/api/auth/orders", strings.NewReader(tc.body)))
			rr := httptest.NewRecorder()
			oc.CreateOrder(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestCreateOrderResponseShape(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mock_controllers.NewMockOrderService(ctrl)
	oc := NewOrderController(orders, time.Second)

	orders.EXPECT().PlaceOrder(gomock.Any(), testUserID, gomock.Any()).Return(testOrder(), nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/api/auth/orders", strings.NewReader(`{}`)))
	rr := httptest.NewRecorder()
	oc.CreateOrder(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		Order   map[string]any `json:"order"`
		Message string         `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Order created successfully", resp.Message)
	assert.Equal(t, "ORD-1733047200000-ABCDEFGHI", resp.Order["orderId"])
	assert.Equal(t, "pending", resp.Order["status"])
	assert.Equal(t, "2025-01-01T00:00:00Z", resp.Order["scheduledDate"])
}

func TestGetOrdersHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mock_controllers.NewMockOrderService(ctrl)
	oc := NewOrderController(orders, time.Second)

	t.Run("empty list is an array", func(t *testing.T) {
		orders.EXPECT().ListOrders(gomock.Any(), testUserID).Return(nil, nil)

		rr := httptest.NewRecorder()
		oc.GetOrders(rr, authed(httptest.NewRequest(http.MethodGet, "/api/auth/orders", nil)))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"orders":[]}`, rr.Body.String())
	})

	t.Run("insertion order is kept", func(t *testing.T) {
		first, second := testOrder(), testOrder()
		second.OrderID = "ORD-1733047200001-ZZZZZZZZZ"
		orders.EXPECT().ListOrders(gomock.Any(), testUserID).Return([]models.Order{*first, *second}, nil)

		rr := httptest.NewRecorder()
		oc.GetOrders(rr, authed(httptest.NewRequest(http.MethodGet, "/api/auth/orders", nil)))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Orders []models.Order `json:"orders"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Orders, 2)
		assert.Equal(t, first.OrderID, resp.Orders[0].OrderID)
		assert.Equal(t, second.OrderID, resp.Orders[1].OrderID)
	})
}

func TestCancelOrderHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	orders := mock_controllers.NewMockOrderService(ctrl)
	oc := NewOrderController(orders, time.Second)

	router := mux.NewRouter()
	router.HandleFunc("/api/auth/orders/{orderId}", func(w http.ResponseWriter, r *http.Request) {
		oc.CancelOrder(w, authed(r))
	}).Methods(http.MethodDelete)

	t.Run("cancelled", func(t *testing.T) {
		orders.EXPECT().CancelOrder(gomock.Any(), testUserID, "ORD-1733047200000-ABCDEFGHI").Return(testOrder(), nil)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/auth/orders/ORD-1733047200000-ABCDEFGHI", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Message string       `json:"message"`
			Order   models.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Order cancelled successfully", resp.Message)
		assert.Equal(t, "ORD-1733047200000-ABCDEFGHI", resp.Order.OrderID)
	})

	t.Run("unknown order", func(t *testing.T) {
		orders.EXPECT().CancelOrder(gomock.Any(), testUserID, "ORD-404").Return(nil, utils.NotFoundError("Order not found"))

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/auth/orders/ORD-404", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"Order not found"}`, rr.Body.String())
	})
}

func TestRequestContextHasDeadline(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	ctx, cancel := requestContext(req, 50*time.Millisecond)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)

	ctx, cancel = requestContext(req, 0)
	defer cancel()
	deadline, ok = ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(DefaultRequestTimeout), deadline, time.Second)
}
