package models

import (
	"time"
)

// OrderStatus is the pickup progress of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusScheduled  OrderStatus = "scheduled"
	OrderStatusInProgress OrderStatus = "in-progress"
	OrderStatusCompleted  OrderStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusScheduled, OrderStatusInProgress, OrderStatusCompleted:
		return true
	}
	return false
}

// DefaultUnit is used when an order does not name a unit.
const DefaultUnit = "kg"

// Order is a pickup request embedded in its owner's user document.
type Order struct {
	OrderID       string      `bson:"orderId" json:"orderId"`
	WasteType     string      `bson:"wasteType" json:"wasteType"`
	Quantity      float64     `bson:"quantity" json:"quantity"`
	Unit          string      `bson:"unit" json:"unit"`
	Address       string      `bson:"address" json:"address"`
	City          string      `bson:"city" json:"city"`
	Phone         string      `bson:"phone" json:"phone"`
	ScheduledDate time.Time   `bson:"scheduledDate" json:"scheduledDate"`
	Status        OrderStatus `bson:"status" json:"status"`
	CreatedAt     time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// OrderInput carries the caller-supplied fields of a new order.
type OrderInput struct {
	WasteType     string  `json:"wasteType"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	Phone         string  `json:"phone"`
	ScheduledDate string  `json:"scheduledDate"`
}
