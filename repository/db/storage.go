package db

import (
	"context"
	stderrors "errors"
	"time"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	queryTimeout   = 15 * time.Second
	connectTimeout = 15 * time.Second
)

// Postgres error codes the repository translates into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(connStr string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure database pool")
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("failed to connect to database")
		return nil, err
	}

	log.Info().Msg("database connection established")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// inTx runs fn in a transaction and commits when fn returns nil.
func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// notFound maps a missing row, or an id that is not a valid uuid, to
// notFoundErr. Other errors pass through.
func notFound(err, notFoundErr error) error {
	if stderrors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	if code, _ := pgCode(err); code == codeInvalidTextRepr {
		return notFoundErr
	}
	return err
}

// foreignKey maps an FK violation to the not-found error of the referenced
// table.
func foreignKey(err error) error {
	code, constraint := pgCode(err)
	if code == codeInvalidTextRepr {
		return errors.ErrInvalidInput
	}
	if code != codeForeignKeyViolation {
		return err
	}
	switch constraint {
	case "project_members_project_id_fkey", "tasks_project_id_fkey":
		return errors.ErrProjectNotFound
	case "task_assignees_task_id_fkey", "comments_task_id_fkey", "attachments_task_id_fkey":
		return errors.ErrTaskNotFound
	default:
		return errors.ErrUserNotFound
	}
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func dateOf(d pgtype.Date) *models.Date {
	if !d.Valid {
		return nil
	}
	date := models.DateOf(d.Time)
	return &date
}
