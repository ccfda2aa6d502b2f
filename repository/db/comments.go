package db

import (
	"context"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const (
	listCommentsSQL  = `SELECT id, task_id, author_id, content, created_at FROM comments WHERE task_id = $1 ORDER BY created_at, id`
	getCommentSQL    = `SELECT id, task_id, author_id, content, created_at FROM comments WHERE id = $1`
	createCommentSQL = `INSERT INTO comments (id, task_id, author_id, content) VALUES ($1, $2, $3, $4) RETURNING created_at`
	deleteCommentSQL = `DELETE FROM comments WHERE id = $1`

	attachmentColumns   = `id, task_id, uploaded_by, file_name, file_url, content_type, size, created_at`
	listAttachmentsSQL  = `SELECT ` + attachmentColumns + ` FROM attachments WHERE task_id = $1 ORDER BY created_at, id`
	getAttachmentSQL    = `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`
	createAttachmentSQL = `INSERT INTO attachments (id, task_id, uploaded_by, file_name, file_url, content_type, size) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	deleteAttachmentSQL = `DELETE FROM attachments WHERE id = $1`
)

func scanComment(row pgx.Row) (*models.Comment, error) {
	c := &models.Comment{}
	var author *string
	if err := row.Scan(&c.ID, &c.TaskID, &author, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.AuthorID = stringOrEmpty(author)
	return c, nil
}

func scanAttachment(row pgx.Row) (*models.Attachment, error) {
	a := &models.Attachment{}
	var uploader *string
	err := row.Scan(&a.ID, &a.TaskID, &uploader, &a.FileName, &a.FileURL, &a.ContentType, &a.Size, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.UploadedByID = stringOrEmpty(uploader)
	return a, nil
}

func (s *Storage) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, listCommentsSQL, taskID)
	if err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("failed to list comments")
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, notFound(err, errors.ErrTaskNotFound)
	}
	return comments, nil
}

func (s *Storage) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	c, err := scanComment(s.pool.QueryRow(ctx, getCommentSQL, id))
	if err != nil {
		return nil, notFound(err, errors.ErrCommentNotFound)
	}
	return c, nil
}

func (s *Storage) CreateComment(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	err := s.pool.QueryRow(ctx, createCommentSQL,
		id, comment.TaskID, nullableID(comment.AuthorID), comment.Content,
	).Scan(&comment.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("task_id", comment.TaskID).Msg("failed to create comment")
		return foreignKey(err)
	}
	comment.ID = id
	return nil
}

func (s *Storage) DeleteComment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, deleteCommentSQL, id, errors.ErrCommentNotFound)
}

func (s *Storage) ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, listAttachmentsSQL, taskID)
	if err != nil {
		log.Error().Err(err).Str("task_id", taskID).Msg("failed to list attachments")
		return nil, err
	}
	defer rows.Close()

	attachments := []models.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, notFound(err, errors.ErrTaskNotFound)
	}
	return attachments, nil
}

func (s *Storage) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAttachment(s.pool.QueryRow(ctx, getAttachmentSQL, id))
	if err != nil {
		return nil, notFound(err, errors.ErrAttachmentNotFound)
	}
	return a, nil
}

func (s *Storage) CreateAttachment(ctx context.Context, attachment *models.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	err := s.pool.QueryRow(ctx, createAttachmentSQL,
		id, attachment.TaskID, nullableID(attachment.UploadedByID),
		attachment.FileName, attachment.FileURL, attachment.ContentType, attachment.Size,
	).Scan(&attachment.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("task_id", attachment.TaskID).Msg("failed to create attachment")
		return foreignKey(err)
	}
	attachment.ID = id
	return nil
}

func (s *Storage) DeleteAttachment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, deleteAttachmentSQL, id, errors.ErrAttachmentNotFound)
}

func (s *Storage) deleteByID(ctx context.Context, query, id string, notFoundErr error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete row")
		return notFound(err, notFoundErr)
	}
	if ct.RowsAffected() == 0 {
		return notFoundErr
	}
	return nil
}
