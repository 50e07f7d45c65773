package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitized(t *testing.T) {
	tests := []struct {
		name   string
		orders []Order
	}{
		{"nil orders", nil},
		{"empty orders", []Order{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{Email: "jane@x.com", Password: "hash", Orders: tc.orders}
			out := u.Sanitized()

			require.NotNil(t, out.Orders)
			assert.Empty(t, out.Password)
			assert.Equal(t, "hash", u.Password)

			raw, err := json.Marshal(out)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"orders":[]`)
			assert.NotContains(t, string(raw), "hash")
		})
	}
}

func TestSanitizedCopiesOrders(t *testing.T) {
	u := &User{Orders: []Order{{OrderID: "ORD-1"}}}
	out := u.Sanitized()

	out.Orders[0].OrderID = "ORD-2"
	assert.Equal(t, "ORD-1", u.Orders[0].OrderID)
}
