package server

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Server owns the database handle and JWT secret for all handlers.
type Server struct {
	db        *mongo.Database
	jwtSecret []byte
}

func New(db *mongo.Database, jwtSecret []byte) *Server {
	return &Server{db: db, jwtSecret: jwtSecret}
}

// Routes registers all endpoints on r.
func (s *Server) Routes(r *gin.Engine) {
	r.POST("/api/register", s.register)
	r.POST("/api/login", s.login)

	auth := r.Group("/", s.AuthMiddleware)
	{
		auth.GET("/cart", s.getCart)
		auth.POST("/cart", s.replaceCart)
		auth.PUT("/cart/:productId", s.updateCartItem)
		auth.DELETE("/cart/:productId", s.removeCartItem)
		auth.POST("/cart/clear", s.clearCart)
	}
}

// EnsureIndexes creates the unique index that guarantees at most one cart
// document per user. Call once at startup; a failure is logged and the
// server still comes up.
func (s *Server) EnsureIndexes(ctx context.Context) {
	_, err := s.db.Collection("carts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Println("cart index:", err)
	}
}
