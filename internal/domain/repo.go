package domain

import (
	"context"
)

// SatelliteRepository is the persistence contract. Missing ids surface as
// ErrNotFound. InsertMany expects ids to be set by the caller.
type SatelliteRepository interface {
	Insert(ctx context.Context, sat *Satellite) (string, error)
	InsertMany(ctx context.Context, sats []Satellite) (int, error)
	FindAll(ctx context.Context) ([]Satellite, error)
	FindByID(ctx context.Context, id string) (*Satellite, error)
	Save(ctx context.Context, sat *Satellite) error
	RemoveByID(ctx context.Context, id string) (*Satellite, error)
}
