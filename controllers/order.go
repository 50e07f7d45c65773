package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

// OrderController handles pickup order requests
type OrderController struct {
	Orders  OrderService
	Timeout time.Duration
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderService, timeout time.Duration) *OrderController {
	return &OrderController{Orders: orders, Timeout: timeout}
}

// CreateOrder schedules a new pickup for the authenticated user
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in models.OrderInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, oc.Timeout)
	defer cancel()
	order, err := oc.Orders.PlaceOrder(ctx, userID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"order":   order,
		"message": "Order created successfully",
	})
}

// GetOrders lists the authenticated user's orders, oldest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestContext(r, oc.Timeout)
	defer cancel()
	orders, err := oc.Orders.ListOrders(ctx, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// CancelOrder deletes one of the authenticated user's orders
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID := mux.Vars(r)["orderId"]

	ctx, cancel := requestContext(r, oc.Timeout)
	defer cancel()
	order, err := oc.Orders.CancelOrder(ctx, userID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}
