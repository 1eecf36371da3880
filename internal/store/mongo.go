package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/PratikDhanave/funnel-analytics-service/internal/models"
)

const eventsCollection = "events"

/*
MongoDB document structure:

events: {
  _id: <objectId>,
  event_type: <string>,
  timestamp: <date>,
  product_id: <string|null>,
  order_amount: <double|null>,
  created_at: <date>
}
*/
type eventDocument struct {
	EventType   string    `bson:"event_type"`
	Timestamp   time.Time `bson:"timestamp"`
	ProductID   *string   `bson:"product_id"`
	OrderAmount *float64  `bson:"order_amount"`
	CreatedAt   time.Time `bson:"created_at"`
}

// MongoStore reads the event log from a MongoDB collection using aggregation pipelines.
type MongoStore struct {
	client *mongo.Client
	events *mongo.Collection
	schema schemaGuard
}

// NewMongoStore connects to uri and uses the events collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		events: client.Database(database).Collection(eventsCollection),
	}, nil
}

// EnsureSchema creates the lookup indexes. The collection itself is implicit.
func (m *MongoStore) EnsureSchema(ctx context.Context) error {
	return m.schema.do(func() error {
		_, err := m.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "event_type", Value: 1}}},
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		})
		if err != nil {
			return fmt.Errorf("create mongo indexes: %w", err)
		}
		return nil
	})
}

// Ping checks that the primary is reachable.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

// CountByType counts events whose type matches eventType exactly.
func (m *MongoStore) CountByType(ctx context.Context, eventType string) (int64, error) {
	count, err := m.events.CountDocuments(ctx, bson.M{"event_type": eventType})
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", eventType, err)
	}
	return count, nil
}

// PurchaseStats returns the average, maximum and minimum purchase amount.
// Purchases without an amount are left out.
func (m *MongoStore) PurchaseStats(ctx context.Context) (models.PurchaseStats, error) {
	var row struct {
		Avg *float64 `bson:"avg"`
		Max *float64 `bson:"max"`
		Min *float64 `bson:"min"`
	}
	found, err := m.aggregateOne(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"event_type":   models.EventTypePurchase,
			"order_amount": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$order_amount"},
			"max": bson.M{"$max": "$order_amount"},
			"min": bson.M{"$min": "$order_amount"},
		}}},
	}, &row)
	if err != nil {
		return models.PurchaseStats{}, fmt.Errorf("purchase stats: %w", err)
	}
	if !found {
		return models.PurchaseStats{}, nil
	}
	return purchaseStats(row.Avg, row.Max, row.Min), nil
}

// TopViewedProduct returns the product with the most page views, or nil when
// no page view names a product. Ties go to the smallest id.
func (m *MongoStore) TopViewedProduct(ctx context.Context) (*string, error) {
	var row struct {
		ProductID string `bson:"_id"`
	}
	found, err := m.aggregateOne(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"event_type": models.EventTypePageView,
			"product_id": bson.M{"$ne": nil},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$product_id",
			"views": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
	}, &row)
	if err != nil {
		return nil, fmt.Errorf("top viewed product: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &row.ProductID, nil
}

// CountsByType returns every event type with its count, most frequent first.
func (m *MongoStore) CountsByType(ctx context.Context) ([]models.EventTypeCount, error) {
	cursor, err := m.events.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$event_type",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.EventTypeCount{}
	for cursor.Next(ctx) {
		var row struct {
			EventType string `bson:"_id"`
			Count     int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode event type count: %w", err)
		}
		counts = append(counts, models.EventTypeCount{EventType: row.EventType, Count: row.Count})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate event type counts: %w", err)
	}
	return counts, nil
}

// aggregateOne runs pipeline and decodes the first result into out.
// It reports false when the pipeline produced nothing.
func (m *MongoStore) aggregateOne(ctx context.Context, pipeline mongo.Pipeline, out interface{}) (bool, error) {
	cursor, err := m.events.Aggregate(ctx, pipeline)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return false, cursor.Err()
	}
	if err := cursor.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
