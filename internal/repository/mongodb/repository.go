package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// Archive stores weekly digest snapshots.
type Archive interface {
	SaveDigest(ctx context.Context, digest models.WeeklyDigest) error
}

// MongoDBRepository implements Archive on a MongoDB collection.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// digestDocument is the stored shape of a digest. Money is kept as Decimal128.
type digestDocument struct {
	UserID            string               `bson:"user_id"`
	FarmName          string               `bson:"farm_name,omitempty"`
	From              string               `bson:"from"`
	To                string               `bson:"to"`
	DayCount          int                  `bson:"day_count"`
	AverageProduction int64                `bson:"average_production"`
	AverageProfit     primitive.Decimal128 `bson:"average_profit"`
	TotalRevenue      primitive.Decimal128 `bson:"total_revenue"`
	TotalExpense      primitive.Decimal128 `bson:"total_expense"`
	Days              []dayDocument        `bson:"days"`
	GeneratedAt       time.Time            `bson:"generated_at"`
}

type dayDocument struct {
	Date         string               `bson:"date"`
	EggsProduced int64                `bson:"eggs_produced"`
	EggsSold     int64                `bson:"eggs_sold"`
	TotalRevenue primitive.Decimal128 `bson:"total_revenue"`
	TotalExpense primitive.Decimal128 `bson:"total_expense"`
	NetProfit    primitive.Decimal128 `bson:"net_profit"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "weekly_digests",
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "to", Value: -1}},
		Options: options.Index().SetName("user_period"),
	}
	if _, err := repo.collection().Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create digest index: %w", err)
	}

	return repo, nil
}

// SaveDigest saves a weekly digest snapshot, replacing any earlier snapshot of
// the same user and period.
func (r *MongoDBRepository) SaveDigest(ctx context.Context, digest models.WeeklyDigest) error {
	doc, err := toDocument(digest)
	if err != nil {
		return err
	}

	filter := bson.M{"user_id": doc.UserID, "from": doc.From, "to": doc.To}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection().ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to store weekly digest: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

func toDocument(digest models.WeeklyDigest) (digestDocument, error) {
	ind := digest.Indicators
	doc := digestDocument{
		UserID:            digest.UserID,
		FarmName:          digest.FarmName,
		From:              ind.From,
		To:                ind.To,
		DayCount:          ind.DayCount,
		AverageProduction: ind.AverageProduction,
		Days:              make([]dayDocument, 0, len(ind.Days)),
		GeneratedAt:       digest.GeneratedAt.UTC(),
	}

	var err error
	if doc.AverageProfit, err = decimal128(ind.AverageProfit); err != nil {
		return digestDocument{}, err
	}
	if doc.TotalRevenue, err = decimal128(ind.TotalRevenue); err != nil {
		return digestDocument{}, err
	}
	if doc.TotalExpense, err = decimal128(ind.TotalExpense); err != nil {
		return digestDocument{}, err
	}

	for _, day := range ind.Days {
		d := dayDocument{Date: day.Date, EggsProduced: day.EggsProduced, EggsSold: day.EggsSold}
		if d.TotalRevenue, err = decimal128(day.TotalRevenue); err != nil {
			return digestDocument{}, err
		}
		if d.TotalExpense, err = decimal128(day.TotalExpense); err != nil {
			return digestDocument{}, err
		}
		if d.NetProfit, err = decimal128(day.NetProfit); err != nil {
			return digestDocument{}, err
		}
		doc.Days = append(doc.Days, d)
	}

	return doc, nil
}

func decimal128(value decimal.Decimal) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(value.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", value, err)
	}
	return d, nil
}
