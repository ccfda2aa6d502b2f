package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	AuthorID  string    `json:"authorId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment is file metadata only; the bytes live wherever FileURL points.
type Attachment struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	UploadedByID string    `json:"uploadedById,omitempty"`
	FileName     string    `json:"fileName"`
	FileURL      string    `json:"fileUrl"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}
