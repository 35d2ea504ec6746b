package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestFormatFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Format
	}{
		{"models/scaler.json", FormatJSON},
		{"scaler.YAML", FormatYAML},
		{"scaler.yml", FormatYAML},
		{"heart_disease_model.msgpack", FormatMsgpack},
		{"model.mp", FormatMsgpack},
	}
	for _, tc := range cases {
		got, err := FormatFromPath(tc.path)
		if err != nil {
			t.Fatalf("FormatFromPath(%q): unexpected error: %v", tc.path, err)
		}
		if got != tc.want {
			t.Fatalf("FormatFromPath(%q) = %s, want %s", tc.path, got, tc.want)
		}
	}

	for _, path := range []string{"scaler.pkl", "scaler"} {
		if _, err := FormatFromPath(path); !errors.Is(err, ErrUnknownFormat) {
			t.Fatalf("FormatFromPath(%q): expected ErrUnknownFormat, got %v", path, err)
		}
	}
}

func TestFileStoreFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scaler.json")
	if err := os.WriteFile(path, []byte(`{"kind":"standard"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := NewFileStore(map[string]string{
		"scaler":  path,
		"missing": filepath.Join(dir, "model.json"),
	})

	blob, err := store.Fetch(context.Background(), "scaler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob.Format != FormatJSON || blob.Name != "scaler" || blob.Source != path {
		t.Fatalf("unexpected blob: %+v", blob)
	}
	if string(blob.Data) != `{"kind":"standard"}` {
		t.Fatalf("unexpected data: %s", blob.Data)
	}

	if _, err := store.Fetch(context.Background(), "missing"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound for absent file, got %v", err)
	}
	if _, err := store.Fetch(context.Background(), "unknown"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound for unconfigured name, got %v", err)
	}
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(map[string]string{"scaler": "scaler.json"})
	if _, err := store.Fetch(ctx, "scaler"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeRow struct {
	format string
	body   []byte
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.format
	*(dest[1].(*[]byte)) = r.body
	return nil
}

type fakeQuerier struct {
	rows  map[string]fakeRow
	query string
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.query = sql
	row, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func TestPostgresStoreFetch(t *testing.T) {
	db := &fakeQuerier{rows: map[string]fakeRow{
		"scaler":              {format: "yaml", body: []byte("kind: standard\n")},
		"heart_disease_model": {format: "pickle", body: []byte{0x80}},
	}}
	store := NewPostgresStore(db)

	blob, err := store.Fetch(context.Background(), "scaler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob.Format != FormatYAML || string(blob.Data) != "kind: standard\n" {
		t.Fatalf("unexpected blob: %+v", blob)
	}
	if db.query != fetchQuery {
		t.Fatalf("unexpected query: %s", db.query)
	}

	if _, err := store.Fetch(context.Background(), "heart_disease_model"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := store.Fetch(context.Background(), "absent"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestPostgresStoreWrapsQueryErrors(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewPostgresStore(&fakeQuerier{rows: map[string]fakeRow{"scaler": {err: boom}}})
	if _, err := store.Fetch(context.Background(), "scaler"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(Settings{Source: SourceFile, ScalerName: "scaler", ModelName: "model", ScalerPath: "a.json", ModelPath: "b.json"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*FileStore); !ok {
		t.Fatalf("expected *FileStore, got %T", store)
	}

	if _, err := NewStore(Settings{Source: SourcePostgres}, nil); err == nil {
		t.Fatal("expected error for postgres source without a connection")
	}
	store, err = NewStore(Settings{Source: SourcePostgres}, &fakeQuerier{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.(*PostgresStore); !ok {
		t.Fatalf("expected *PostgresStore, got %T", store)
	}

	if _, err := NewStore(Settings{Source: "s3"}, nil); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}
