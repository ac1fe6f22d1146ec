package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/exception-service/internal/domain"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		URI:            "mongodb://localhost:27017",
		Database:       "exceptions_db",
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    10,
	}
}

// Connect establishes a verified MongoDB connection.
func Connect(ctx context.Context, config *Config) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(config.ConnectTimeout).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// OrderRepository implements domain.OrderRepository on MongoDB.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates the repository and ensures its indexes.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	collection := db.Collection("orders")

	repo := &OrderRepository{collection: collection}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "items.itemId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Find retrieves orders matching the search parameters. Zero-valued
// parameter fields do not constrain the query.
func (r *OrderRepository) Find(ctx context.Context, params domain.SearchParameters) ([]*domain.Order, error) {
	filter := bson.M{}

	if len(params.IDs) > 0 {
		filter["orderId"] = bson.M{"$in": params.IDs}
	}
	if len(params.Statuses) > 0 {
		filter["status"] = bson.M{"$in": params.Statuses}
	}
	if len(params.Types) > 0 {
		filter["type"] = bson.M{"$in": params.Types}
	}
	if len(params.OrderNumbers) > 0 {
		filter["orderNumber"] = bson.M{"$in": params.OrderNumbers}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// Save upserts an order by order number, stamping its last update.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	order.LastUpdate = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"orderNumber": order.Number}
	update := bson.M{"$set": order}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save order %d: %w", order.Number, err)
	}

	return nil
}

// SaveItem writes a single mutated order line back into its owning
// order document.
func (r *OrderRepository) SaveItem(ctx context.Context, item *domain.OrderItem) error {
	filter := bson.M{"items.itemId": item.ItemID}
	update := bson.M{"$set": bson.M{
		"items.$":    item,
		"lastUpdate": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save order item %s: %w", item.ItemID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no order owns item %s", item.ItemID)
	}

	return nil
}
