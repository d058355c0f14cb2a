package cartclient

import (
	"context"
	"log"
	"sync"
)

// Container owns the in-memory cart for one session. Construct one per
// session and hand it to UI collaborators; there is no package-level state.
//
// Every mutation is mirrored to storage. While a token is set and the
// server cart has been adopted, every mutation is also pushed to the
// backend as a full replace. Push and adoption failures are logged and the
// local cart stays authoritative.
type Container struct {
	mu          sync.Mutex
	items       []LineItem
	token       string
	readyToSync bool

	storage Storage
	backend Backend
	logger  *log.Logger
}

// NewContainer seeds the cart from storage, whatever the authentication
// state is at that moment. A later SetToken overwrites the seed.
func NewContainer(storage Storage, backend Backend, logger *log.Logger) *Container {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{storage: storage, backend: backend, logger: logger}
	items, err := storage.Load()
	if err != nil {
		logger.Println("load stored cart:", err)
	}
	c.items = items
	return c
}

// Items returns a snapshot of the cart.
func (c *Container) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LineItem(nil), c.items...)
}

// ReadyToSync reports whether mutations are currently pushed to the
// backend.
func (c *Container) ReadyToSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readyToSync
}

// AddToCart appends product with quantity 1, or increments the quantity if
// the identity is already present. The Quantity field of the argument is
// ignored.
func (c *Container) AddToCart(product LineItem) {
	c.mu.Lock()
	found := false
	for i := range c.items {
		if c.items[i].ID == product.ID {
			c.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		product.Quantity = 1
		c.items = append(c.items, product)
	}
	c.afterMutation()
}

// RemoveFromCart removes the line item with the given identity. Removing an
// absent identity is a no-op with no storage or backend side effects.
func (c *Container) RemoveFromCart(id string) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.afterMutation()
			return
		}
	}
	c.mu.Unlock()
}

// UpdateQuantity sets the quantity for the given identity. A quantity below
// 1 removes the line item, matching the server's own update semantics.
// An absent identity is a no-op with no storage or backend side effects.
func (c *Container) UpdateQuantity(id string, quantity int) {
	if quantity < 1 {
		c.RemoveFromCart(id)
		return
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = quantity
			c.afterMutation()
			return
		}
	}
	c.mu.Unlock()
}

// ClearCart empties the cart and erases the durable copy.
func (c *Container) ClearCart() {
	c.mu.Lock()
	c.items = nil
	items, push, token := c.snapshotLocked()
	c.mu.Unlock()
	if err := c.storage.Clear(); err != nil {
		c.logger.Println("clear stored cart:", err)
	}
	if push {
		c.push(token, items)
	}
}

// SetToken reacts to an authentication transition. A non-empty token
// suspends pushes, adopts the server-held cart as source of truth, then
// re-enables pushes. An empty token (logout) clears the cart and the
// durable copy and disables pushes until the next login completes.
func (c *Container) SetToken(ctx context.Context, token string) {
	c.mu.Lock()
	c.token = token
	c.readyToSync = false
	if token == "" {
		c.items = nil
		c.mu.Unlock()
		if err := c.storage.Clear(); err != nil {
			c.logger.Println("clear stored cart:", err)
		}
		return
	}
	c.mu.Unlock()
	c.adopt(ctx, token)
}

// adopt fetches the server cart and replaces the local one with it (server
// wins, so two lists are never merged into duplicates). On failure the
// local cart is kept. Either way pushes are re-enabled, unless a newer
// SetToken superseded this adoption while the fetch was in flight.
func (c *Container) adopt(ctx context.Context, token string) {
	items, err := c.backend.FetchCart(ctx, token)
	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return
	}
	var snapshot []LineItem
	if err == nil {
		c.items = items
		// save a copy, not the installed slice: a mutation running
		// after unlock must not race with the write below
		snapshot = append([]LineItem(nil), items...)
	}
	c.readyToSync = true
	c.mu.Unlock()
	if err != nil {
		c.logger.Println("load server cart:", err)
		return
	}
	if err := c.storage.Save(snapshot); err != nil {
		c.logger.Println("persist adopted cart:", err)
	}
}

// afterMutation mirrors the cart to storage and pushes it to the backend if
// eligible. Called with the lock held; releases it.
func (c *Container) afterMutation() {
	items, push, token := c.snapshotLocked()
	c.mu.Unlock()
	if err := c.storage.Save(items); err != nil {
		c.logger.Println("persist cart:", err)
	}
	if push {
		c.push(token, items)
	}
}

func (c *Container) snapshotLocked() (items []LineItem, push bool, token string) {
	items = append([]LineItem(nil), c.items...)
	return items, c.token != "" && c.readyToSync, c.token
}

// push sends a full replace of the cart, reduced to identity and quantity.
// Items without an identity are skipped. Failures are logged, never
// retried, and never roll back local state.
func (c *Container) push(token string, items []LineItem) {
	payload := make([]SyncItem, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		payload = append(payload, SyncItem{ProductID: it.ID, Quantity: it.Quantity})
	}
	if err := c.backend.ReplaceCart(context.Background(), token, payload); err != nil {
		c.logger.Println("sync cart to backend:", err)
	}
}
