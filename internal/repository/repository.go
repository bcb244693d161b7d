package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"djbooks_back_end/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is the set of writes that must run inside one transaction.
type Tx interface {
	LockOpenOrder(ctx context.Context, userID string) (models.Order, error)
	CreateOpenOrder(ctx context.Context, userID, refCode string, now time.Time) (models.Order, error)
	LockOrderByRef(ctx context.Context, refCode string) (models.Order, error)
	InsertLine(ctx context.Context, orderID int64, userID string, bookID int64, quantity int) error
	UpdateLineQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, lineID int64) error
	MarkLinesOrdered(ctx context.Context, orderID int64) error
	UpdateOrder(ctx context.Context, order models.Order) error
	CreateAddress(ctx context.Context, addr models.Address) (models.Address, error)
	SetDefaultAddress(ctx context.Context, userID string, addressID int64) (models.Address, error)
	CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error)
	DecrementStock(ctx context.Context, bookID int64, quantity int) error
	SaveBook(ctx context.Context, book models.Book) (models.Book, error)
	CreateImage(ctx context.Context, img models.ExtraImage) (models.ExtraImage, error)
}

var ErrConflict = errors.New("conflict")

// mapError turns driver errors into the errors the services match on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}

var openStatesSQL = func() string {
	quoted := make([]string, 0, len(models.OpenStates))
	for _, st := range models.OpenStates {
		quoted = append(quoted, "'"+string(st)+"'")
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

type queries struct {
	db DBTX
}

// Store is the postgres-backed repository. Reads run on the pool; writes
// that must be atomic go through InTx.
type Store struct {
	queries
	pool   *sql.DB
	logger *zap.Logger
}

func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{queries: queries{db: db}, pool: db, logger: logger}
}

type sqlTx struct {
	queries
}

func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("failed to rollback transaction", zap.Error(err))
		}
	}()

	if err := fn(&sqlTx{queries{db: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ Tx = (*sqlTx)(nil)
