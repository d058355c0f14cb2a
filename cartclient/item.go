// Package cartclient holds a shopping cart for the current session. Guests
// keep their cart in a durable local copy only; once a token is set the
// server-held cart is adopted as source of truth and every local mutation is
// pushed back as a full replace.
package cartclient

import (
	"encoding/json"
	"strconv"
)

// LineItem is one product entry in the cart. The identity field marshals as
// "_id" to stay compatible with carts persisted by earlier clients.
type LineItem struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// toPrice coerces a decoded JSON value to a price, defaulting to 0.
func toPrice(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return 0
}

// toQuantity coerces a decoded JSON value to a positive quantity,
// defaulting to 1.
func toQuantity(v interface{}) int {
	var q float64
	switch n := v.(type) {
	case float64:
		q = n
	case json.Number:
		q, _ = n.Float64()
	case string:
		q, _ = strconv.ParseFloat(n, 64)
	}
	if q < 1 {
		return 1
	}
	return int(q)
}
