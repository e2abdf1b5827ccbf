// Package store persists the agency's actor and movie records.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Actor is a performer on the agency's roster.
type Actor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// Movie is a production the agency casts for.
type Movie struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"release_date"`
}

// Store is the persistence interface the API layer depends on.
type Store interface {
	ListActors(ctx context.Context) ([]Actor, error)
	GetActor(ctx context.Context, id int64) (*Actor, error)
	CreateActor(ctx context.Context, actor *Actor) (int64, error)
	UpdateActor(ctx context.Context, actor *Actor) error
	DeleteActor(ctx context.Context, id int64) error

	ListMovies(ctx context.Context) ([]Movie, error)
	GetMovie(ctx context.Context, id int64) (*Movie, error)
	CreateMovie(ctx context.Context, movie *Movie) (int64, error)
	UpdateMovie(ctx context.Context, movie *Movie) error
	DeleteMovie(ctx context.Context, id int64) error

	Close() error
}
