package cartclient

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// storageKey names the durable local copy of the cart.
const storageKey = "guest_cart"

// Storage is the durable local copy of the cart. It survives restarts so a
// guest cart, or an authenticated cart that has not re-synced yet, can be
// restored.
type Storage interface {
	Load() ([]LineItem, error)
	Save(items []LineItem) error
	Clear() error
}

// FileStorage keeps the cart as a JSON file under dir.
type FileStorage struct {
	path string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, storageKey+".json")}
}

// Load reads the stored cart. A missing file yields an empty cart, and so
// does a file that no longer parses; malformed numeric fields are coerced
// instead of rejected.
func (f *FileStorage) Load() ([]LineItem, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStored(data), nil
}

func (f *FileStorage) Save(items []LineItem) error {
	clean := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		if it.Price < 0 {
			it.Price = 0
		}
		clean = append(clean, it)
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// storedItem tolerates numeric fields persisted as strings by older clients.
type storedItem struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Price    interface{} `json:"price"`
	Image    string      `json:"image"`
	Quantity interface{} `json:"quantity"`
}

func decodeStored(data []byte) []LineItem {
	var raw []storedItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, LineItem{
			ID:       r.ID,
			Name:     r.Name,
			Price:    toPrice(r.Price),
			Image:    r.Image,
			Quantity: toQuantity(r.Quantity),
		})
	}
	return items
}
