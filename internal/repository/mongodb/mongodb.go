package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
	"solicitudes-backend/internal/repository"
)

const (
	solicitudesCollection = "solicitudes"
	configCollection      = "config"
	countersCollection    = "pending_counters"
)

type Store struct {
	client *mongo.Client
	*SolicitudRepository
	*ConfigRepository
}

var (
	_ repository.Store          = (*Store)(nil)
	_ repository.CounterAuditor = (*Store)(nil)
)

// Connect opens the process-wide client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

func NewStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:              client,
		SolicitudRepository: NewSolicitudRepository(db),
		ConfigRepository:    NewConfigRepository(db),
	}
}

// Prepare creates the indexes the queries rely on and rebuilds the pending counters.
func (s *Store) Prepare(ctx context.Context) error {
	logger.DatabaseCall("createIndexes", solicitudesCollection)
	_, err := s.solicitudes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "solicitante", Value: 1}, {Key: "estado", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create solicitudes index: %w", err)
	}

	logger.DatabaseCall("createIndexes", configCollection)
	_, err = s.config.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create config index: %w", err)
	}

	return s.SyncPendingCounters(ctx)
}

// Reset drops every solicitud and inserts fixtures. Only the seeding utility calls it.
func (s *Store) Reset(ctx context.Context, fixtures []domain.Solicitud) error {
	logger.DatabaseCall("deleteMany", solicitudesCollection)
	res, err := s.solicitudes.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to clear solicitudes: %w", err)
	}
	logger.DatabaseResult("deleteMany", res.DeletedCount, nil)

	if len(fixtures) > 0 {
		docs := make([]interface{}, 0, len(fixtures))
		for i := range fixtures {
			doc := newSolicitudDocument(&fixtures[i])
			doc.ID = newObjectID()
			fixtures[i].ID = doc.ID.Hex()
			docs = append(docs, doc)
		}
		logger.DatabaseCall("insertMany", solicitudesCollection, "count", len(docs))
		if _, err := s.solicitudes.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("failed to insert fixtures: %w", err)
		}
	}

	return s.SyncPendingCounters(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
