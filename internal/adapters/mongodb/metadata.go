// Package mongodb is the MongoDB-backed implementation of
// metadata.Repository, grounded on the teacher's MetadataMongoDBRepository
// (_examples/LerianStudio-midaz/components/ledger/internal/adapters/database/mongodb/metadata.mongodb.go).
package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/corebank-platform/core/internal/domain/metadata"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/platform/mmongo"
)

// Repository is a MongoDB-specific implementation of metadata.Repository.
type Repository struct {
	connection *mmongo.Connection
}

// New returns a Repository backed by conn.
func New(conn *mmongo.Connection) *Repository {
	return &Repository{connection: conn}
}

func (r *Repository) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := r.connection.GetDatabase(ctx)
	if err != nil {
		return nil, err
	}

	return db.Collection(strings.ToLower(name)), nil
}

// metadataDocument is the bson-tagged shape Mongo stores for a
// domain.Metadata, mirroring the teacher's MetadataMongoDBModel.
type metadataDocument struct {
	ID         interface{}    `bson:"_id,omitempty"`
	EntityID   string         `bson:"entity_id"`
	EntityName string         `bson:"entity_name"`
	Data       domain.JSON    `bson:"metadata"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

// Create inserts a new metadata document.
func (r *Repository) Create(ctx context.Context, collection string, md *domain.Metadata) error {
	coll, err := r.collection(ctx, collection)
	if err != nil {
		return err
	}

	doc := metadataDocument{
		ID:         md.ID,
		EntityID:   md.EntityID,
		EntityName: md.EntityName,
		Data:       md.Data,
		CreatedAt:  md.CreatedAt,
		UpdatedAt:  md.UpdatedAt,
	}

	_, err = coll.InsertOne(ctx, doc)

	return err
}

// FindByEntity retrieves the metadata document for entityID, or a NotFound
// error when none exists.
func (r *Repository) FindByEntity(ctx context.Context, collection, entityID string) (*domain.Metadata, error) {
	coll, err := r.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	var doc metadataDocument
	if err := coll.FindOne(ctx, bson.M{"entity_id": entityID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerr.Translate(errors.New("metadata not found"), "Metadata")
		}

		return nil, err
	}

	return &domain.Metadata{
		EntityID:   doc.EntityID,
		EntityName: doc.EntityName,
		Data:       doc.Data,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// Update upserts the document's data field for entityID.
func (r *Repository) Update(ctx context.Context, collection, entityID string, data domain.JSON) error {
	coll, err := r.collection(ctx, collection)
	if err != nil {
		return err
	}

	filter := bson.M{"entity_id": entityID}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "metadata", Value: data}, {Key: "updated_at", Value: time.Now().UTC()}}}}

	_, err = coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))

	return err
}

// Delete removes the metadata document for entityID.
func (r *Repository) Delete(ctx context.Context, collection, entityID string) error {
	coll, err := r.collection(ctx, collection)
	if err != nil {
		return err
	}

	_, err = coll.DeleteOne(ctx, bson.M{"entity_id": entityID})

	return err
}
