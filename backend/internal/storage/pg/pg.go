package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/logger"
	shared_pg "github.com/threadly-dev/threadly/shared/storage/pg"
)

//go:embed migrations/init.sql
var initSQL string

// Querier is shared with the transaction helpers in shared/storage/pg.
type Querier = shared_pg.Querier

type Storage struct {
	db *sql.DB
}

var (
	connectOnce sync.Once
	shared      *Storage
	connectErr  error
)

// New returns the process-wide storage. The pool is established on the
// first call; later calls return the same handle and ignore cfg.
func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	connectOnce.Do(func() {
		logger.Log.Info("connecting to database", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
		db, err := shared_pg.Connect(ctx, cfg, shared_pg.DefaultConnectionConfig())
		if err != nil {
			connectErr = err
			return
		}
		shared = &Storage{db: db}
		logger.Log.Info("successfully connected to database")

		if cfg.Public.AutoMigrate {
			if err := shared.Migrate(ctx); err != nil {
				connectErr = err
				return
			}
		}
	})
	return shared, connectErr
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, initSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Log.Info("database schema is up to date")
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return shared_pg.WithTx(ctx, s.db, fn)
}

func newId() string {
	return uuid.NewString()
}

// validId reports whether id can be bound to a uuid column.
// Anything else cannot exist in the store.
func validId(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// filterValidIds drops ids that are not uuids.
func filterValidIds(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validId(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// isUniqueViolation reports whether err is a unique constraint violation on constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}

// likePattern turns a user search string into a literal substring pattern.
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(search) + "%"
}
