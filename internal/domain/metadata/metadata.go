// Package metadata models the free-form key/value side-store Customers and
// Accounts may carry, persisted to MongoDB alongside the relational core.
// Grounded directly on the teacher's domain/metadata package
// (_examples/LerianStudio-midaz/components/ledger/internal/domain/metadata/metadata.go),
// which this spec's "SUPPLEMENTED FEATURES" section adopts verbatim in
// shape: the JSON-document-per-entity model decouples arbitrary annotations
// (KYC notes, risk flags, integration ids) from the relational schema.
package metadata

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JSON is a free-form document stored alongside an entity.
type JSON map[string]any

// Metadata associates a JSON document with one entity, identified by its
// entity name (e.g. "Customer", "Account") and id.
type Metadata struct {
	ID         primitive.ObjectID
	EntityID   string
	EntityName string
	Data       JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New builds a Metadata document ready for insertion.
func New(entityName, entityID string, data JSON) *Metadata {
	now := time.Now().UTC()

	return &Metadata{
		ID:         primitive.NewObjectID(),
		EntityID:   entityID,
		EntityName: entityName,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
