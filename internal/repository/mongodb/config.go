package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

type ConfigRepository struct {
	config *mongo.Collection
}

func NewConfigRepository(db *mongo.Database) *ConfigRepository {
	return &ConfigRepository{config: db.Collection(configCollection)}
}

func (r *ConfigRepository) GetValidNits(ctx context.Context) (*domain.NitConfig, error) {
	var doc nitConfigDocument
	err := r.config.FindOne(ctx, bson.M{"name": domain.ValidNitsConfigName}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get valid nits: %w", err)
	}
	return &domain.NitConfig{Name: doc.Name, Nits: doc.Nits}, nil
}

// EnsureValidNits upserts with $setOnInsert so an existing allow-list is never touched.
func (r *ConfigRepository) EnsureValidNits(ctx context.Context, defaults []string) (bool, error) {
	filter := bson.M{"name": domain.ValidNitsConfigName}
	update := bson.M{"$setOnInsert": bson.M{"name": domain.ValidNitsConfigName, "nits": defaults}}
	logger.DatabaseCall("updateOne", configCollection, "name", domain.ValidNitsConfigName)
	res, err := r.config.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to seed valid nits: %w", err)
	}
	return res.UpsertedCount > 0, nil
}
