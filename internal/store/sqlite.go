package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
// The schema is created if it doesn't exist. Pass ":memory:" for an
// in-memory database.
func NewSQLiteStore(path string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.WithField("path", path).Info("SQLite store initialized")
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS actors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			gender TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			release_date TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListActors(ctx context.Context) ([]Actor, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, age, gender FROM actors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing actors: %w", err)
	}
	defer rows.Close()

	var actors []Actor
	for rows.Next() {
		var a Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.Age, &a.Gender); err != nil {
			return nil, fmt.Errorf("scanning actor: %w", err)
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

func (s *SQLiteStore) GetActor(ctx context.Context, id int64) (*Actor, error) {
	var a Actor
	err := s.db.QueryRowContext(ctx, "SELECT id, name, age, gender FROM actors WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &a.Age, &a.Gender)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting actor %d: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) CreateActor(ctx context.Context, actor *Actor) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO actors (name, age, gender) VALUES (?, ?, ?)",
		actor.Name, actor.Age, actor.Gender)
	if err != nil {
		return 0, fmt.Errorf("creating actor: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating actor: %w", err)
	}
	actor.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateActor(ctx context.Context, actor *Actor) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE actors SET name = ?, age = ?, gender = ? WHERE id = ?",
		actor.Name, actor.Age, actor.Gender, actor.ID)
	if err != nil {
		return fmt.Errorf("updating actor %d: %w", actor.ID, err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLiteStore) DeleteActor(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting actor %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLiteStore) ListMovies(ctx context.Context) ([]Movie, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, release_date FROM movies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	defer rows.Close()

	var movies []Movie
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

func (s *SQLiteStore) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, title, release_date FROM movies WHERE id = ?", id)
	m, err := scanMovie(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting movie %d: %w", id, err)
	}
	return m, nil
}

func (s *SQLiteStore) CreateMovie(ctx context.Context, movie *Movie) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO movies (title, release_date) VALUES (?, ?)",
		movie.Title, movie.ReleaseDate.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("creating movie: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("creating movie: %w", err)
	}
	movie.ID = id
	return id, nil
}

func (s *SQLiteStore) UpdateMovie(ctx context.Context, movie *Movie) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE movies SET title = ?, release_date = ? WHERE id = ?",
		movie.Title, movie.ReleaseDate.UTC().Format(time.RFC3339), movie.ID)
	if err != nil {
		return fmt.Errorf("updating movie %d: %w", movie.ID, err)
	}
	return affectedOrNotFound(res)
}

func (s *SQLiteStore) DeleteMovie(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting movie %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

func scanMovie(scan func(dest ...any) error) (*Movie, error) {
	var m Movie
	var releaseDate string
	if err := scan(&m.ID, &m.Title, &releaseDate); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, releaseDate)
	if err != nil {
		return nil, fmt.Errorf("parsing release date %q: %w", releaseDate, err)
	}
	m.ReleaseDate = t
	return &m, nil
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
