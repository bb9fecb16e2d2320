package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fitGuideCollection = "fit_guides"

// MongoRepository stores fit guides as documents keyed by public id.
type MongoRepository struct {
	client     *mongo.Client
	fitGuides  *mongo.Collection
	ownsClient bool
}

var _ Repository = (*MongoRepository)(nil)

// OpenMongo connects to uri, pings the server and returns a repository on database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	repo := NewMongoRepository(client.Database(database))
	repo.client = client
	repo.ownsClient = true
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return repo, nil
}

// NewMongoRepository wraps an existing database handle.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{fitGuides: db.Collection(fitGuideCollection)}
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.fitGuides.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "public_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "top_country", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "confidence_level", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// SaveFitGuide upserts the document by public id.
func (r *MongoRepository) SaveFitGuide(ctx context.Context, f *FitGuide) error {
	if f == nil {
		return errors.New("fit guide is nil")
	}
	if f.PublicID == "" {
		f.PublicID = uuid.NewString()
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	opts := options.Replace().SetUpsert(true)
	_, err := r.fitGuides.ReplaceOne(ctx, bson.M{"public_id": f.PublicID}, f, opts)
	return err
}

// GetFitGuide loads a document by public id.
func (r *MongoRepository) GetFitGuide(ctx context.Context, publicID string) (*FitGuide, error) {
	var f FitGuide
	err := r.fitGuides.FindOne(ctx, bson.M{"public_id": strings.TrimSpace(publicID)}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFitGuides mirrors the SQLite filters: free text, top country and confidence.
func (r *MongoRepository) ListFitGuides(ctx context.Context, opts FitGuideQuery) ([]FitGuide, int64, error) {
	filter := mongoFilter(opts)
	total, err := r.fitGuides.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSort(mongoSort(opts.Sort))
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}
	cursor, err := r.fitGuides.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []FitGuide
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateNotificationStatus sets the email outcome fields.
func (r *MongoRepository) UpdateNotificationStatus(ctx context.Context, publicID string, status NotificationStatus) error {
	res, err := r.fitGuides.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{"$set": bson.M{
		"internal_email_status": status.Internal,
		"pastor_email_status":   status.Pastor,
		"email_error":           status.Error,
		"updated_at":            time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client when the repository opened it.
func (r *MongoRepository) Close() error {
	if r == nil || r.client == nil || !r.ownsClient {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func mongoFilter(opts FitGuideQuery) bson.M {
	filter := bson.M{}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"church_name": pattern},
			bson.M{"contact_name": pattern},
			bson.M{"email": pattern},
		}
	}
	if country := strings.TrimSpace(opts.Country); country != "" {
		filter["top_country"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(country) + "$", Options: "i"}
	}
	if confidence := strings.TrimSpace(opts.Confidence); confidence != "" {
		filter["confidence_level"] = strings.ToLower(confidence)
	}
	return filter
}

func mongoSort(sort string) bson.D {
	switch normalizeSort(sort) {
	case SortCreatedAsc:
		return bson.D{{Key: "created_at", Value: 1}}
	case SortChurchAsc:
		return bson.D{{Key: "church_name", Value: 1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
