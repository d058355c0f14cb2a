package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SyncItem is the wire form of a line item pushed to the backend. Display
// fields are not re-sent; the server recomputes them.
type SyncItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Backend is the network contract the container depends on.
type Backend interface {
	FetchCart(ctx context.Context, token string) ([]LineItem, error)
	ReplaceCart(ctx context.Context, token string, items []SyncItem) error
}

// Client talks to the cart endpoints of the backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchCart retrieves and normalizes the server-held cart.
func (c *Client) FetchCart(ctx context.Context, token string) ([]LineItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/cart", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch server cart: status %d", resp.StatusCode)
	}
	var cart struct {
		Items []serverItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, err
	}
	return normalizeServerItems(cart.Items), nil
}

// ReplaceCart overwrites the server-held cart with items.
func (c *Client) ReplaceCart(ctx context.Context, token string, items []SyncItem) error {
	if items == nil {
		items = []SyncItem{}
	}
	body, err := json.Marshal(map[string]interface{}{"items": items})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/cart", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sync cart: status %d", resp.StatusCode)
	}
	return nil
}

// productRef accepts both a plain id and an expanded product object, which
// is what the backend returns when the reference is populated.
type productRef struct {
	ID    string
	Name  string
	Price *float64
	Image string
}

func (p *productRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		p.ID = id
		return nil
	}
	var obj struct {
		ID    string   `json:"_id"`
		Name  string   `json:"name"`
		Price *float64 `json:"price"`
		Image string   `json:"image"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// null or an unexpected shape: leave the ref empty so the
		// item gets filtered out.
		return nil
	}
	p.ID = obj.ID
	p.Name = obj.Name
	p.Price = obj.Price
	p.Image = obj.Image
	return nil
}

type serverItem struct {
	ProductID productRef  `json:"productId"`
	Name      string      `json:"name"`
	Price     *float64    `json:"price"`
	Image     string      `json:"image"`
	Quantity  interface{} `json:"quantity"`
}

// normalizeServerItems converts server items into line items: entries
// without a resolvable product identity are dropped, display fields fall
// back to the expanded reference, price defaults to 0 and quantity to 1.
func normalizeServerItems(in []serverItem) []LineItem {
	out := make([]LineItem, 0, len(in))
	for _, it := range in {
		if it.ProductID.ID == "" {
			continue
		}
		name := it.Name
		if name == "" {
			name = it.ProductID.Name
		}
		image := it.Image
		if image == "" {
			image = it.ProductID.Image
		}
		var price float64
		if it.Price != nil {
			price = *it.Price
		} else if it.ProductID.Price != nil {
			price = *it.ProductID.Price
		}
		out = append(out, LineItem{
			ID:       it.ProductID.ID,
			Name:     name,
			Price:    price,
			Image:    image,
			Quantity: toQuantity(it.Quantity),
		})
	}
	return out
}
