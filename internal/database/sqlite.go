package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"healthtrack/internal/database/migrations"
	"healthtrack/internal/database/sqlc"
	"healthtrack/internal/health"
	"healthtrack/internal/model"
)

var _ health.Store = (*SQLiteStore)(nil)

// SQLiteStore implements health.Store over a single SQLite file. Records
// live in one table keyed by (collection, id) and ordered by seq.
type SQLiteStore struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	clock   health.Clock
}

// NewSQLiteStore opens the database at path (":memory:" for a throwaway
// one). The schema is not touched until Migrate is called. A nil clock
// uses the real one.
func NewSQLiteStore(path string, clock health.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = health.RealClock{}
	}
	return &SQLiteStore{db: db, queries: sqlc.New(db), path: path, clock: clock}, nil
}

// OpenConnection opens a SQLite connection with foreign keys on and a busy
// timeout so a CLI command and a running daemon can share the file.
// The pool is limited to one connection: SQLite has a single writer, and
// an in-memory database exists only inside its connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Migrate brings the schema up to date and upgrades records stored in an
// older format. It reports whether the database was freshly created.
func (s *SQLiteStore) Migrate() (bool, error) {
	before, err := migrations.Version(s.db)
	if err != nil {
		return false, err
	}
	if err := migrations.MigrateUp(s.db); err != nil {
		return false, err
	}
	if err := migrations.CheckDBMigrationStatus(s.db); err != nil {
		return false, err
	}
	if err := s.upgradeRecords(); err != nil {
		return false, fmt.Errorf("upgrading records: %w", err)
	}
	return before == 0, nil
}

// Path returns the file the store was opened on.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) withTx(fn func(ctx context.Context, qtx *sqlc.Queries) error) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, s.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Collections

func (s *SQLiteStore) List(c model.Collection) ([]json.RawMessage, error) {
	bodies, err := s.queries.ListRecords(context.Background(), string(c))
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	out := make([]json.RawMessage, 0, len(bodies))
	for _, body := range bodies {
		out = append(out, json.RawMessage(body))
	}
	return out, nil
}

func (s *SQLiteStore) Get(c model.Collection, id string) (json.RawMessage, error) {
	body, err := s.queries.GetRecord(context.Background(), sqlc.GetRecordParams{Collection: string(c), ID: id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding record: %w", err)
	}
	return json.RawMessage(body), nil
}

func (s *SQLiteStore) Insert(c model.Collection, id string, body json.RawMessage) error {
	return s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		seq, err := qtx.NextRecordSeq(ctx, string(c))
		if err != nil {
			return fmt.Errorf("reading next position: %w", err)
		}
		err = qtx.InsertRecord(ctx, sqlc.InsertRecordParams{
			Collection: string(c),
			ID:         id,
			Seq:        seq,
			Version:    model.SchemaVersion,
			Body:       string(body),
		})
		if isPrimaryKeyViolation(err) {
			return health.ErrExists
		}
		if err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Update(c model.Collection, id string, fn health.Mutator) (bool, error) {
	found := false
	err := s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		body, err := qtx.GetRecord(ctx, sqlc.GetRecordParams{Collection: string(c), ID: id})
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("finding record: %w", err)
		}
		found = true

		updated, err := fn(json.RawMessage(body))
		if err != nil {
			return err
		}
		err = qtx.UpdateRecord(ctx, sqlc.UpdateRecordParams{
			Body:       string(updated),
			Version:    model.SchemaVersion,
			Collection: string(c),
			ID:         id,
		})
		if err != nil {
			return fmt.Errorf("updating record: %w", err)
		}
		return nil
	})
	return found, err
}

func (s *SQLiteStore) Delete(c model.Collection, id string) (bool, error) {
	n, err := s.queries.DeleteRecord(context.Background(), sqlc.DeleteRecordParams{Collection: string(c), ID: id})
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	return n > 0, nil
}

// Documents

func (s *SQLiteStore) GetDocument(k model.DocumentKey) (json.RawMessage, error) {
	body, err := s.queries.GetDocument(context.Background(), string(k))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding document: %w", err)
	}
	return json.RawMessage(body), nil
}

func (s *SQLiteStore) UpdateDocument(k model.DocumentKey, fn health.Mutator) error {
	return s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		var current json.RawMessage
		body, err := qtx.GetDocument(ctx, string(k))
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return fmt.Errorf("finding document: %w", err)
		default:
			current = json.RawMessage(body)
		}

		updated, err := fn(current)
		if err != nil {
			return err
		}
		return putDocument(ctx, qtx, k, updated)
	})
}

func putDocument(ctx context.Context, qtx *sqlc.Queries, k model.DocumentKey, body json.RawMessage) error {
	err := qtx.UpsertDocument(ctx, sqlc.UpsertDocumentParams{
		Key:     string(k),
		Version: model.SchemaVersion,
		Body:    string(body),
	})
	if err != nil {
		return fmt.Errorf("writing document %s: %w", k, err)
	}
	return nil
}

// Snapshots

func (s *SQLiteStore) Export() (*health.Snapshot, error) {
	snap := &health.Snapshot{
		Collections: map[model.Collection][]json.RawMessage{},
		Documents:   map[model.DocumentKey]json.RawMessage{},
	}
	err := s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		records, err := qtx.ListAllRecords(ctx)
		if err != nil {
			return fmt.Errorf("querying records: %w", err)
		}
		for _, r := range records {
			coll := model.Collection(r.Collection)
			snap.Collections[coll] = append(snap.Collections[coll], json.RawMessage(r.Body))
		}

		docs, err := qtx.ListDocuments(ctx)
		if err != nil {
			return fmt.Errorf("querying documents: %w", err)
		}
		for _, d := range docs {
			snap.Documents[model.DocumentKey(d.Key)] = json.RawMessage(d.Body)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) Import(snap *health.Snapshot) error {
	return s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		for c, records := range snap.Collections {
			if err := replaceCollection(ctx, qtx, c, records); err != nil {
				return err
			}
		}
		for k, body := range snap.Documents {
			if body == nil {
				if err := qtx.DeleteDocument(ctx, string(k)); err != nil {
					return fmt.Errorf("removing document %s: %w", k, err)
				}
				continue
			}
			if err := putDocument(ctx, qtx, k, body); err != nil {
				return err
			}
		}
		return nil
	})
}

// replaceCollection rewrites a collection with the given records in order.
func replaceCollection(ctx context.Context, qtx *sqlc.Queries, c model.Collection, records []json.RawMessage) error {
	if err := qtx.DeleteCollection(ctx, string(c)); err != nil {
		return fmt.Errorf("clearing %s: %w", c, err)
	}

	for i, body := range records {
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &rec); err != nil || rec.ID == "" {
			return fmt.Errorf("%s record %d has no id", c, i)
		}
		err := qtx.InsertRecord(ctx, sqlc.InsertRecordParams{
			Collection: string(c),
			ID:         rec.ID,
			Seq:        int64(i + 1),
			Version:    model.SchemaVersion,
			Body:       string(body),
		})
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("%s: duplicate id %q: %w", c, rec.ID, health.ErrExists)
		}
		if err != nil {
			return fmt.Errorf("inserting %s record: %w", c, err)
		}
	}
	return nil
}

// upgradeRecords rewrites every collection holding records older than the
// current version, keeping their order.
func (s *SQLiteStore) upgradeRecords() error {
	return s.withTx(func(ctx context.Context, qtx *sqlc.Queries) error {
		stale, err := qtx.ListStaleCollections(ctx, model.SchemaVersion)
		if err != nil {
			return fmt.Errorf("finding stale records: %w", err)
		}
		for _, name := range stale {
			c := model.Collection(name)
			rows, err := qtx.ListCollectionRecords(ctx, name)
			if err != nil {
				return fmt.Errorf("querying %s: %w", c, err)
			}
			var upgraded []json.RawMessage
			for i, row := range rows {
				if row.Version >= model.SchemaVersion {
					upgraded = append(upgraded, json.RawMessage(row.Body))
					continue
				}
				recs, err := health.UpgradeRecord(c, json.RawMessage(row.Body), i)
				if err != nil {
					return err
				}
				upgraded = append(upgraded, recs...)
			}
			if err := replaceCollection(ctx, qtx, c, upgraded); err != nil {
				return err
			}
		}

		docs, err := qtx.ListStaleDocuments(ctx, model.SchemaVersion)
		if err != nil {
			return fmt.Errorf("querying documents: %w", err)
		}
		for _, d := range docs {
			k := model.DocumentKey(d.Key)
			canon, err := health.CanonicalDocument(k, json.RawMessage(d.Body))
			if err != nil {
				return err
			}
			if err := putDocument(ctx, qtx, k, canon); err != nil {
				return err
			}
		}
		return nil
	})
}

// Operations

func (s *SQLiteStore) CreateOperation(name, parameters string) (*health.Operation, error) {
	started := s.clock.Now().UTC()
	res, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		Name:       name,
		Parameters: parameters,
		StartedAt:  started.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("inserting operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading operation id: %w", err)
	}
	return &health.Operation{ID: id, Name: name, Parameters: parameters, Status: "running", StartedAt: started}, nil
}

func (s *SQLiteStore) FinishOperation(id int64, status string) error {
	finished := s.clock.Now().UTC().Format(time.RFC3339Nano)
	err := s.queries.FinishOperation(context.Background(), sqlc.FinishOperationParams{
		Status:     status,
		FinishedAt: sql.NullString{String: finished, Valid: true},
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListOperations(limit int) ([]*health.Operation, error) {
	rows, err := s.queries.ListOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	ops := make([]*health.Operation, 0, len(rows))
	for _, row := range rows {
		op := &health.Operation{ID: row.ID, Name: row.Name, Parameters: row.Parameters, Status: row.Status}
		if op.StartedAt, err = time.Parse(time.RFC3339Nano, row.StartedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if row.FinishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, row.FinishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing finished_at: %w", err)
			}
			op.FinishedAt = &t
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (s *SQLiteStore) MaxOperationID() (int64, error) {
	id, err := s.queries.MaxOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("reading max operation id: %w", err)
	}
	return id, nil
}

// BackupTo writes a consistent copy of the database to destPath.
func (s *SQLiteStore) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isPrimaryKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
