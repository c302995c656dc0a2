// Package bridge materializes spreadsheet datasets as tables in an embedded
// SQLite engine, runs query and mutation text against them, and writes the
// modified datasets back through a tabular store.
//
// A Bridge is single threaded. It owns one engine connection and, when no
// database path is configured, one temporary database file that Close
// deletes.
package bridge

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/KaramelBytes/sheetql-cli/internal/dataset"
	"github.com/KaramelBytes/sheetql-cli/internal/sqlite"
)

// State is the lifecycle position of a Bridge.
type State int

const (
	Unopened State = iota
	Connected
	Loaded
	TablesReady
	Queried
	Updated
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Connected:
		return "connected"
	case Loaded:
		return "loaded"
	case TablesReady:
		return "tables_ready"
	case Queried:
		return "queried"
	case Updated:
		return "updated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options configures a Bridge.
type Options struct {
	// DBPath keeps the engine database in a persistent file. Empty means an
	// ephemeral file in TempDir that is removed on Close.
	DBPath string
	// TempDir holds the ephemeral database. Empty means os.TempDir().
	TempDir string
	// Logger receives operation logs. Nil discards them.
	Logger *slog.Logger
	// Opener opens the engine. Nil means sqlite.Open.
	Opener func(dsn string) (*sql.DB, error)
}

// Bridge connects a source document to the relational engine.
type Bridge struct {
	source    string
	dbPath    string
	ephemeral bool
	tempDir   string
	opener    func(dsn string) (*sql.DB, error)
	logger    *slog.Logger

	db    *sql.DB
	state State

	// original is the load-time baseline and is never mutated.
	original *dataset.Set
	// modified starts as a copy of original and is what Persist writes.
	modified *dataset.Set
}

// New constructs a bridge for the document at source. No resources are
// acquired until Connect.
func New(source string, opt Options) *Bridge {
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opener := opt.Opener
	if opener == nil {
		opener = sqlite.Open
	}
	return &Bridge{
		source:    source,
		dbPath:    opt.DBPath,
		ephemeral: opt.DBPath == "",
		tempDir:   opt.TempDir,
		opener:    opener,
		logger:    logger.With(slog.String("source", source)),
	}
}

// Source returns the path of the source document.
func (b *Bridge) Source() string { return b.source }

// DBPath returns the engine database file, empty before Connect for an
// ephemeral bridge.
func (b *Bridge) DBPath() string { return b.dbPath }

// Ephemeral reports whether the engine file is deleted on Close.
func (b *Bridge) Ephemeral() bool { return b.ephemeral }

// State returns the current lifecycle state.
func (b *Bridge) State() State { return b.state }

func (b *Bridge) advance(s State) {
	if b.state != Closed {
		b.state = s
	}
}

// Connect opens the engine connection. Calling it again on a connected
// bridge is a no-op.
func (b *Bridge) Connect(ctx context.Context) error {
	if b.state == Closed {
		return ErrClosed
	}
	if b.db != nil {
		return nil
	}
	if b.ephemeral && b.dbPath == "" {
		f, err := os.CreateTemp(b.tempDir, "sheetql-*.db")
		if err != nil {
			b.logger.Error("create temporary database failed", slog.Any("error", err))
			return &ConnectionError{Err: err}
		}
		b.dbPath = f.Name()
		_ = f.Close()
	}
	db, err := b.opener(b.dbPath)
	if err == nil {
		err = db.PingContext(ctx)
		if err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		dsn := b.dbPath
		b.logger.Error("database connection failed", slog.String("db", dsn), slog.Any("error", err))
		if b.ephemeral {
			b.removeDBFiles()
			b.dbPath = ""
		}
		return &ConnectionError{DSN: dsn, Err: err}
	}
	b.db = db
	if b.state < Connected {
		b.advance(Connected)
	}
	b.logger.Info("database connection established",
		slog.String("db", b.dbPath), slog.Bool("ephemeral", b.ephemeral), slog.String("driver", sqlite.DriverType()))
	return nil
}

// Close releases the connection and removes an ephemeral database file.
// Cleanup failures are logged, never returned; Close is idempotent.
func (b *Bridge) Close() error {
	if b.state == Closed {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			b.logger.Warn("closing database connection failed", slog.Any("error", err))
		} else {
			b.logger.Info("database connection closed")
		}
		b.db = nil
	}
	if b.ephemeral && b.dbPath != "" {
		b.removeDBFiles()
	}
	b.state = Closed
	return nil
}

// removeDBFiles deletes the ephemeral database and its journal side files.
func (b *Bridge) removeDBFiles() {
	for _, p := range []string{b.dbPath, b.dbPath + "-journal", b.dbPath + "-wal", b.dbPath + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			b.logger.Debug("temporary database file removed", slog.String("path", p))
		case errors.Is(err, fs.ErrNotExist):
		default:
			b.logger.Warn("cannot remove temporary database file", slog.String("path", p), slog.Any("error", err))
		}
	}
}

// conn returns the live connection or the error explaining why there is none.
func (b *Bridge) conn() (*sql.DB, error) {
	if b.state == Closed {
		return nil, ErrClosed
	}
	if b.db == nil {
		return nil, &ConnectionError{DSN: b.dbPath, Err: errNotConnected}
	}
	return b.db, nil
}
