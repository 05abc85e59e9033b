package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for [MongoConfig].
const (
	DefaultDatabase   = "catdiagram"
	DefaultCollection = "libraries"
)

// MongoConfig configures a [MongoLibrary].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // per-operation; zero means 10s
}

// MongoLibrary stores entries as documents keyed by name.
type MongoLibrary struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoLibrary connects to MongoDB and pings the server.
func NewMongoLibrary(ctx context.Context, cfg MongoConfig) (*MongoLibrary, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoLibrary{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
	}, nil
}

func (l *MongoLibrary) Put(ctx context.Context, e *Entry) error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	stored := *e
	stored.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err := l.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: e.Name}}, stored, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put %s: %w", e.Name, err)
	}
	e.UpdatedAt = stored.UpdatedAt
	return nil
}

func (l *MongoLibrary) Get(ctx context.Context, name string) (*Entry, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var e Entry
	err := l.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return &e, nil
}

func (l *MongoLibrary) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := l.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer cur.Close(ctx)

	var out []Summary
	for cur.Next(ctx) {
		var e Entry
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		out = append(out, summarize(&e))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return out, nil
}

func (l *MongoLibrary) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	res, err := l.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Close disconnects the client.
func (l *MongoLibrary) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

var _ Library = (*MongoLibrary)(nil)
