package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notes_service/internal/config"
	"notes_service/internal/models"
	"notes_service/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, string(user.PassHash), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return storage.ErrUserExists
		}

		return fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1;
	`

	row := r.pool.QueryRow(ctx, query, email)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PassHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE id = $1;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PassHash,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

func (r *PostgresRepo) SaveRefreshToken(ctx context.Context, token models.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, user_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, token.ID, token.UserID, token.ExpiresAt, token.Revoked, token.CreatedAt)
	return err
}

func (r *PostgresRepo) RefreshToken(ctx context.Context, id string) (models.RefreshToken, error) {
	const query = `
		SELECT id, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE id = $1;
	`

	var rt models.RefreshToken
	err := r.pool.QueryRow(ctx, query, id).Scan(&rt.ID, &rt.UserID, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.RefreshToken{}, storage.ErrRefreshTokenNotFound
	}

	return rt, err
}

// RevokeRefreshToken marks the row as revoked. Revoked rows are kept so a
// second logout attempt with the same id fails the active check.
func (r *PostgresRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)

	return err
}

func (r *PostgresRepo) SaveNote(ctx context.Context, note models.Note) error {
	const op = "storage.postgres.SaveNote"

	query := `
		INSERT INTO notes (id, user_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.pool.Exec(ctx, query, note.ID, note.UserID, note.Title, note.Content, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: failed to save note: %w", op, err)
	}

	return nil
}

// Note looks up a note scoped to its owner.
func (r *PostgresRepo) Note(ctx context.Context, id, userID string) (models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at
		FROM notes
		WHERE id = $1 AND user_id = $2;
	`

	var n models.Note
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Note{}, storage.ErrNoteNotFound
	}

	return n, err
}

// NoteByID looks up a note without the owner filter so callers can tell
// "does not exist" apart from "belongs to someone else".
func (r *PostgresRepo) NoteByID(ctx context.Context, id string) (models.Note, error) {
	query := `
		SELECT id, user_id, title, content, created_at
		FROM notes
		WHERE id = $1;
	`

	var n models.Note
	err := r.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Note{}, storage.ErrNoteNotFound
	}

	return n, err
}

func (r *PostgresRepo) Notes(ctx context.Context, userID string, limit, offset uint64) ([]models.Note, error) {
	const op = "storage.postgres.Notes"

	queryBuilder := squirrel.
		Select("id",
			"user_id",
			"title",
			"content",
			"created_at").
		From("notes").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query notes: %w", op, err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: failed to scan note: %w", op, err)
		}
		notes = append(notes, n)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return notes, nil
}

func (r *PostgresRepo) CountNotes(ctx context.Context, userID string) (int64, error) {
	const op = "storage.postgres.CountNotes"

	query := `SELECT COUNT(*) FROM notes WHERE user_id = $1`

	var total int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: failed to count notes: %w", op, err)
	}

	return total, nil
}

func (r *PostgresRepo) UpdateNote(ctx context.Context, id, title, content string) (models.Note, error) {
	const query = `
		UPDATE notes
		SET title = $1, content = $2
		WHERE id = $3
		RETURNING id, user_id, title, content, created_at;
	`

	var n models.Note
	err := r.pool.QueryRow(ctx, query, title, content, id).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Note{}, storage.ErrNoteNotFound
	}

	return n, err
}

func (r *PostgresRepo) DeleteNote(ctx context.Context, id, userID string) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`

	_, err := r.pool.Exec(ctx, query, id, userID)

	return err
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

// * dsn формирует конфигурацию базы данных.
func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
