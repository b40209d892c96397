package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"solicitudes-backend/internal/domain"
	"solicitudes-backend/internal/logger"
)

var (
	newObjectID = primitive.NewObjectID
	now         = time.Now
)

const (
	releaseTimeout     = 5 * time.Second
	counterRepairGrace = time.Minute
)

// SolicitudRepository keeps the solicitudes collection and a per-solicitante
// pending counter. The counter is what makes the pending cap atomic: a
// conditional upsert either increments it below the cap or collides on _id.
type SolicitudRepository struct {
	solicitudes *mongo.Collection
	counters    *mongo.Collection
}

func NewSolicitudRepository(db *mongo.Database) *SolicitudRepository {
	return &SolicitudRepository{
		solicitudes: db.Collection(solicitudesCollection),
		counters:    db.Collection(countersCollection),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *SolicitudRepository) List(ctx context.Context) ([]domain.Solicitud, error) {
	logger.DatabaseCall("find", solicitudesCollection)
	cur, err := r.solicitudes.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}
	var docs []solicitudDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode solicitudes: %w", err)
	}

	out := make([]domain.Solicitud, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *SolicitudRepository) GetByID(ctx context.Context, id string) (*domain.Solicitud, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc solicitudDocument
	err = r.solicitudes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get solicitud %s: %w", id, err)
	}
	s := doc.toDomain()
	return &s, nil
}

// Create reserves a pending slot, then inserts. A collision on a counter that
// overstates the stored pending solicitudes is repaired and retried once.
func (r *SolicitudRepository) Create(ctx context.Context, s *domain.Solicitud, maxPending int) error {
	err := r.reserve(ctx, s.Solicitante, maxPending)
	if errors.Is(err, domain.ErrLimitExceeded) {
		repaired, repairErr := r.repairCounter(ctx, s.Solicitante, maxPending)
		if repairErr != nil {
			return repairErr
		}
		if repaired {
			err = r.reserve(ctx, s.Solicitante, maxPending)
		}
	}
	if err != nil {
		return err
	}

	doc := newSolicitudDocument(s)
	doc.ID = newObjectID()
	logger.DatabaseCall("insertOne", solicitudesCollection, "solicitante", s.Solicitante)
	if _, err := r.solicitudes.InsertOne(ctx, doc); err != nil {
		logger.DatabaseResult("insertOne", 0, err)
		if relErr := r.release(ctx, s.Solicitante); relErr != nil {
			logger.Error("Failed to release pending slot", "solicitante", s.Solicitante, "error", relErr)
		}
		return fmt.Errorf("failed to insert solicitud: %w", err)
	}
	logger.DatabaseResult("insertOne", 1, nil)

	s.ID = doc.ID.Hex()
	return nil
}

func (r *SolicitudRepository) reserve(ctx context.Context, solicitante string, maxPending int) error {
	filter := bson.M{"_id": solicitante, "pending": bson.M{"$lt": maxPending}}
	update := bson.M{"$inc": bson.M{"pending": 1}, "$set": bson.M{"updated_at": now().UTC()}}
	logger.DatabaseCall("updateOne", countersCollection, "solicitante", solicitante)
	_, err := r.counters.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", domain.ErrLimitExceeded, solicitante)
	}
	if err != nil {
		return fmt.Errorf("failed to reserve pending slot: %w", err)
	}
	return nil
}

// release gives a slot back. It runs detached from ctx: once the solicitud is
// written the counter must follow even if the caller has gone away.
func (r *SolicitudRepository) release(ctx context.Context, solicitante string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	filter := bson.M{"_id": solicitante, "pending": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"pending": -1}, "$set": bson.M{"updated_at": now().UTC()}}
	logger.DatabaseCall("updateOne", countersCollection, "solicitante", solicitante, "release", true)
	_, err := r.counters.UpdateOne(ctx, filter, update)
	return err
}

// repairCounter lowers a counter that overstates the pending solicitudes of
// solicitante. Counters touched within counterRepairGrace are left alone since
// they may hold a reservation whose insert is still in flight. The write is
// conditional on the value read, so concurrent reservations win.
func (r *SolicitudRepository) repairCounter(ctx context.Context, solicitante string, maxPending int) (bool, error) {
	var counter pendingCounterDocument
	err := r.counters.FindOne(ctx, bson.M{"_id": solicitante}).Decode(&counter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read pending counter: %w", err)
	}
	if now().Sub(counter.UpdatedAt) < counterRepairGrace {
		return false, nil
	}

	actual, err := r.CountPending(ctx, solicitante)
	if err != nil {
		return false, err
	}
	if actual >= int64(maxPending) || actual >= int64(counter.Pending) {
		return false, nil
	}

	filter := bson.M{"_id": solicitante, "pending": counter.Pending, "updated_at": counter.UpdatedAt}
	if counter.UpdatedAt.IsZero() {
		filter["updated_at"] = bson.M{"$exists": false}
	}
	update := bson.M{"$set": bson.M{"pending": actual, "updated_at": now().UTC()}}
	logger.DatabaseCall("updateOne", countersCollection, "solicitante", solicitante, "repair", true)
	res, err := r.counters.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to repair pending counter: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	logger.Warn("Pending counter repaired", "solicitante", solicitante, "counter", counter.Pending, "pending", actual)
	return true, nil
}

func (r *SolicitudRepository) UpdateStatus(ctx context.Context, id string, estado domain.Estado, comentario *domain.Comentario) (*domain.Solicitud, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "estado": string(domain.EstadoPendiente)}
	update := bson.M{"$set": bson.M{"estado": string(estado)}}
	if comentario != nil {
		update["$push"] = bson.M{"comentarios": newComentarioDocument(*comentario)}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	logger.DatabaseCall("findOneAndUpdate", solicitudesCollection, "id", id, "estado", estado)
	var doc solicitudDocument
	err = r.solicitudes.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missingOrResolved(ctx, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update solicitud %s: %w", id, err)
	}

	// A counter left high here is repaired by Create once it goes stale.
	if err := r.release(ctx, doc.Solicitante); err != nil {
		logger.Error("Failed to release pending slot", "solicitante", doc.Solicitante, "error", err)
	}

	s := doc.toDomain()
	return &s, nil
}

func (r *SolicitudRepository) missingOrResolved(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.solicitudes.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to load solicitud %s: %w", oid.Hex(), err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyResolved
}

func (r *SolicitudRepository) CountPending(ctx context.Context, solicitante string) (int64, error) {
	n, err := r.solicitudes.CountDocuments(ctx, bson.M{"solicitante": solicitante, "estado": string(domain.EstadoPendiente)})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending solicitudes: %w", err)
	}
	return n, nil
}

func (r *SolicitudRepository) pendingBySolicitante(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "estado", Value: string(domain.EstadoPendiente)}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$solicitante"},
			{Key: "pending", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	logger.DatabaseCall("aggregate", solicitudesCollection)
	cur, err := r.solicitudes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pending solicitudes: %w", err)
	}
	var counts []pendingCounterDocument
	if err := cur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode pending counts: %w", err)
	}
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Solicitante] = c.Pending
	}
	return out, nil
}

// PendingCounterDrift lists the solicitantes whose counter disagrees with the
// pending solicitudes actually stored. Counters are read before the
// solicitudes so an in-flight create shows up as drift at most once.
func (r *SolicitudRepository) PendingCounterDrift(ctx context.Context) ([]string, error) {
	logger.DatabaseCall("find", countersCollection)
	cur, err := r.counters.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to read pending counters: %w", err)
	}
	var counters []pendingCounterDocument
	if err := cur.All(ctx, &counters); err != nil {
		return nil, fmt.Errorf("failed to decode pending counters: %w", err)
	}

	actual, err := r.pendingBySolicitante(ctx)
	if err != nil {
		return nil, err
	}

	var drift []string
	for _, c := range counters {
		if actual[c.Solicitante] != c.Pending {
			drift = append(drift, c.Solicitante)
		}
		delete(actual, c.Solicitante)
	}
	for solicitante, n := range actual {
		if n > 0 {
			drift = append(drift, solicitante)
		}
	}
	sort.Strings(drift)
	return drift, nil
}

// SyncPendingCounters rebuilds the counters from the solicitudes collection.
// It is not atomic with concurrent writes and runs at startup and after seeding.
func (r *SolicitudRepository) SyncPendingCounters(ctx context.Context) error {
	actual, err := r.pendingBySolicitante(ctx)
	if err != nil {
		return err
	}

	if _, err := r.counters.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to clear pending counters: %w", err)
	}
	if len(actual) == 0 {
		return nil
	}
	synced := now().UTC()
	docs := make([]interface{}, 0, len(actual))
	for solicitante, n := range actual {
		docs = append(docs, pendingCounterDocument{Solicitante: solicitante, Pending: n, UpdatedAt: synced})
	}
	if _, err := r.counters.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to store pending counters: %w", err)
	}
	logger.DatabaseResult("syncCounters", int64(len(docs)), nil)
	return nil
}
