package metadata

import "context"

// Repository provides operations on metadata entities scoped by collection
// (mirrors the teacher's metadata.Repository).
//
//go:generate mockgen --destination=mock/metadata_repository_mock.go --package=mock . Repository
type Repository interface {
	Create(ctx context.Context, collection string, md *Metadata) error
	FindByEntity(ctx context.Context, collection, entityID string) (*Metadata, error)
	Update(ctx context.Context, collection, entityID string, data JSON) error
	Delete(ctx context.Context, collection, entityID string) error
}
