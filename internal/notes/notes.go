package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "notes_service/internal/lib/logger"
	"notes_service/internal/models"
	"notes_service/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrNoUser       = errors.New("missing authenticated user")
	ErrNoteNotFound = errors.New("note not found")
	ErrNotOwner     = errors.New("note does not belong to user")
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type NoteStore interface {
	SaveNote(ctx context.Context, note models.Note) error
	Note(ctx context.Context, id, userID string) (models.Note, error)
	NoteByID(ctx context.Context, id string) (models.Note, error)
	Notes(ctx context.Context, userID string, limit, offset uint64) ([]models.Note, error)
	CountNotes(ctx context.Context, userID string) (int64, error)
	UpdateNote(ctx context.Context, id, title, content string) (models.Note, error)
	DeleteNote(ctx context.Context, id, userID string) error
}

type Notes struct {
	log   *slog.Logger
	store NoteStore
}

func New(log *slog.Logger, store NoteStore) *Notes {
	return &Notes{
		log:   log,
		store: store,
	}
}

func (n *Notes) Create(
	ctx context.Context,
	userID, title, content string,
) (models.Note, error) {
	const op = "notes.Create"

	log := n.log.With(slog.String("op", op))

	// The auth gate guarantees a user id on protected routes; this check
	// is a backstop for direct service use.
	if userID == "" {
		log.Warn("create called without user id")
		return models.Note{}, ErrNoUser
	}

	note := models.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := n.store.SaveNote(ctx, note); err != nil {
		log.Error("failed to save note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("note created", slog.String("note_id", note.ID))

	return note, nil
}

// List returns one page of the user's notes, newest first.
func (n *Notes) List(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]models.Note, models.Pagination, error) {
	const op = "notes.List"

	log := n.log.With(slog.String("op", op))

	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := n.store.CountNotes(ctx, userID)
	if err != nil {
		log.Error("failed to count notes", sl.Err(err))
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}

	offset := uint64(page-1) * uint64(pageSize)

	list, err := n.store.Notes(ctx, userID, uint64(pageSize), offset)
	if err != nil {
		log.Error("failed to list notes", sl.Err(err))
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}

	pagination := models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalNotes: total,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	return list, pagination, nil
}

// Get fetches a single note scoped to its owner. A note owned by someone
// else is indistinguishable from a missing one.
func (n *Notes) Get(
	ctx context.Context,
	userID, noteID string,
) (models.Note, error) {
	const op = "notes.Get"

	// The id columns are uuid; a malformed id would error out of the
	// query instead of missing cleanly.
	if _, err := uuid.Parse(noteID); err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	note, err := n.store.Note(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			return models.Note{}, ErrNoteNotFound
		}

		n.log.With(slog.String("op", op)).Error("failed to get note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	return note, nil
}

func (n *Notes) Update(
	ctx context.Context,
	userID, noteID, title, content string,
) (models.Note, error) {
	const op = "notes.Update"

	log := n.log.With(slog.String("op", op))

	if _, err := uuid.Parse(noteID); err != nil {
		return models.Note{}, ErrNoteNotFound
	}

	existing, err := n.store.NoteByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			return models.Note{}, ErrNoteNotFound
		}

		log.Error("failed to get note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	if existing.UserID != userID {
		log.Warn("update rejected: not the owner", slog.String("note_id", noteID))
		return models.Note{}, ErrNotOwner
	}

	updated, err := n.store.UpdateNote(ctx, noteID, title, content)
	if err != nil {
		log.Error("failed to update note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// Delete removes the note after an owner-scoped lookup. A failed lookup
// stops the operation; nothing is ever deleted unconditionally.
func (n *Notes) Delete(
	ctx context.Context,
	userID, noteID string,
) (models.Note, error) {
	const op = "notes.Delete"

	log := n.log.With(slog.String("op", op))

	if _, err := uuid.Parse(noteID); err != nil {
		log.Warn("delete rejected: malformed note id")
		return models.Note{}, ErrNotOwner
	}

	note, err := n.store.Note(ctx, noteID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			log.Warn("delete rejected: not found or not the owner", slog.String("note_id", noteID))
			return models.Note{}, ErrNotOwner
		}

		log.Error("failed to get note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := n.store.DeleteNote(ctx, noteID, userID); err != nil {
		log.Error("failed to delete note", sl.Err(err))
		return models.Note{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("note deleted", slog.String("note_id", noteID))

	return note, nil
}
