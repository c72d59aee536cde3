package site

import "context"

// Repository defines the data access contract.
type Repository interface {
	Register(context context.Context, actorID, name string) error
	All(context context.Context) ([]*Site, error)
	LastPostPage(context context.Context, actorID string) (int, error)
	SetLastPostPage(context context.Context, actorID string, page int) error
}
