package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TableName holds one row per artifact:
//
//	CREATE TABLE model_artifacts (
//	    name   TEXT PRIMARY KEY,
//	    format TEXT NOT NULL,
//	    body   BYTEA NOT NULL
//	);
const TableName = "model_artifacts"

const fetchQuery = `SELECT format, body FROM ` + TableName + ` WHERE name = $1`

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads artifact blobs from the model_artifacts table.
type PostgresStore struct {
	db Querier
}

func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Fetch(ctx context.Context, name string) (Blob, error) {
	var (
		format string
		body   []byte
	)
	if err := s.db.QueryRow(ctx, fetchQuery, name).Scan(&format, &body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blob{}, fmt.Errorf("%w: %s row %q", ErrArtifactNotFound, TableName, name)
		}
		return Blob{}, fmt.Errorf("query artifact %q: %w", name, err)
	}
	f, err := ParseFormat(format)
	if err != nil {
		return Blob{}, err
	}
	return Blob{
		Name:   name,
		Format: f,
		Source: fmt.Sprintf("postgres:%s/%s", TableName, name),
		Data:   body,
	}, nil
}

// Connect opens a pgx pool and checks it answers within five seconds.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// Settings selects and configures an artifact store.
type Settings struct {
	Source     string
	ScalerName string
	ModelName  string
	ScalerPath string
	ModelPath  string
}

// NewStore builds the store named by settings.Source. db is only used for
// the postgres source and may be nil otherwise.
func NewStore(settings Settings, db Querier) (Store, error) {
	switch settings.Source {
	case "", SourceFile:
		return NewFileStore(map[string]string{
			settings.ScalerName: ResolvePath(settings.ScalerPath),
			settings.ModelName:  ResolvePath(settings.ModelPath),
		}), nil
	case SourcePostgres:
		if db == nil {
			return nil, errors.New("postgres artifact source needs a database connection")
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, settings.Source)
	}
}
