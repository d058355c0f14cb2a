package server

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncomingItem is one entry of the replace payload sent by clients.
type IncomingItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) getCart(c *gin.Context) {
	userID, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	var cart Cart
	err := s.db.Collection("carts").FindOne(context.Background(), bson.M{"userId": userID}).Decode(&cart)
	if err != nil && err != mongo.ErrNoDocuments {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	cart.UserID = userID
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	c.JSON(200, cart)
}

// replaceCart overwrites the caller's cart with the posted items, creating
// the cart document if it does not exist yet.
func (s *Server) replaceCart(c *gin.Context) {
	userID, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	var req struct {
		Items []IncomingItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	items := mergeIncoming(req.Items)
	if err := s.denormalize(context.Background(), items); err != nil {
		log.Println("denormalize cart items:", err)
	}
	now := time.Now()
	_, err := s.db.Collection("carts").UpdateOne(
		context.Background(),
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, Cart{UserID: userID, Items: items, UpdatedAt: now})
}

func (s *Server) updateCartItem(c *gin.Context) {
	userID, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	prodID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid product id"})
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	var cart Cart
	s.db.Collection("carts").FindOne(context.Background(), bson.M{"userId": userID}).Decode(&cart)
	for i, item := range cart.Items {
		if item.ProductID == prodID {
			if req.Quantity > 0 {
				cart.Items[i].Quantity = req.Quantity
			} else {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			}
			break
		}
	}
	s.saveItems(c, userID, cart.Items)
}

func (s *Server) removeCartItem(c *gin.Context) {
	userID, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	prodID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid product id"})
		return
	}
	var cart Cart
	s.db.Collection("carts").FindOne(context.Background(), bson.M{"userId": userID}).Decode(&cart)
	for i, item := range cart.Items {
		if item.ProductID == prodID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	s.saveItems(c, userID, cart.Items)
}

func (s *Server) clearCart(c *gin.Context) {
	userID, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	s.saveItems(c, userID, []CartItem{})
}

func (s *Server) saveItems(c *gin.Context, userID primitive.ObjectID, items []CartItem) {
	if items == nil {
		items = []CartItem{}
	}
	now := time.Now()
	_, err := s.db.Collection("carts").UpdateOne(
		context.Background(),
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, Cart{UserID: userID, Items: items, UpdatedAt: now})
}

// mergeIncoming converts the raw payload into cart items: invalid product
// ids are dropped, quantities below 1 are clamped to 1, and duplicate ids
// are folded into a single line.
func mergeIncoming(in []IncomingItem) []CartItem {
	items := make([]CartItem, 0, len(in))
	index := make(map[primitive.ObjectID]int)
	for _, it := range in {
		id, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			continue
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		if i, ok := index[id]; ok {
			items[i].Quantity += qty
			continue
		}
		index[id] = len(items)
		items = append(items, CartItem{ProductID: id, Quantity: qty})
	}
	return items
}

// denormalize copies name/price/image from the products collection onto the
// items. Items whose product no longer exists keep just id and quantity.
func (s *Server) denormalize(ctx context.Context, items []CartItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	cur, err := s.db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	var products []Product
	if err := cur.All(ctx, &products); err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	applyProductFields(items, byID)
	return nil
}

func applyProductFields(items []CartItem, products map[primitive.ObjectID]Product) {
	for i := range items {
		p, ok := products[items[i].ProductID]
		if !ok {
			continue
		}
		items[i].Name = p.Name
		items[i].Price = p.Price
		items[i].Image = p.Image
	}
}
