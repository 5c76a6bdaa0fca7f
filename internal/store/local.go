package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("store: database handle is required")

// Comment is one locally stored comment row. The autoincrement id stands in
// for thread order.
type Comment struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement"`
	IssueNumber int       `gorm:"column:issue_number;not null;index"`
	Body        string    `gorm:"column:body;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Comment) TableName() string {
	return "issue_comments"
}

// LocalStore keeps comments in sqlite, mirroring the remote thread's
// append/list contract for development runs.
type LocalStore struct {
	db *gorm.DB
}

// NewLocalStore wraps an open database handle.
func NewLocalStore(db *gorm.DB) (*LocalStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	return &LocalStore{db: db}, nil
}

// AppendComment inserts one comment row.
func (s *LocalStore) AppendComment(ctx context.Context, issueNumber int, body string) error {
	record := Comment{IssueNumber: issueNumber, Body: body}
	return s.db.WithContext(ctx).Create(&record).Error
}

// ListComments returns every comment body for the issue in insertion order.
func (s *LocalStore) ListComments(ctx context.Context, issueNumber int) ([]string, error) {
	var records []Comment
	if err := s.db.WithContext(ctx).
		Where("issue_number = ?", issueNumber).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	bodies := make([]string, 0, len(records))
	for _, record := range records {
		bodies = append(bodies, record.Body)
	}
	return bodies, nil
}
