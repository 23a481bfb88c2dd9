package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthEvent is one audited session transition.
type AuthEvent struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"index;size:64" json:"user_id"`
	BranchCode string    `gorm:"size:16" json:"branch_code"`
	Kind       string    `gorm:"index;size:32" json:"kind"`
	Message    string    `json:"message"`
	RemoteAddr string    `gorm:"size:64" json:"remote_addr"`
	RequestID  string    `gorm:"size:36" json:"request_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (e AuthEvent) TableName() string {
	return "auth_event"
}

// NewAuthEvent stamps a new event with an id and the current time.
func NewAuthEvent(kind, userID, branchCode, message string) *AuthEvent {
	return &AuthEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		BranchCode: branchCode,
		Kind:       kind,
		Message:    message,
		CreatedAt:  time.Now(),
	}
}

// ExecTask persists the event; it runs on the task manager.
func (e *AuthEvent) ExecTask() error {
	return CreateAuthEvent(e)
}

func CreateAuthEvent(e *AuthEvent) error {
	return GetDB().Create(e).Error
}

// AuthEventQuery filters GetAuthEventList; empty fields match everything.
type AuthEventQuery struct {
	UserID     string
	BranchCode string
	Kind       string
	Offset     int
	Limit      int
}

// GetAuthEventList returns one page of events, newest first, and the total count.
func GetAuthEventList(q AuthEventQuery) ([]*AuthEvent, int64, error) {
	var (
		list  []*AuthEvent
		total int64
	)
	tx := GetDB().Model(&AuthEvent{})
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.BranchCode != "" {
		tx = tx.Where("branch_code = ?", q.BranchCode)
	}
	if q.Kind != "" {
		tx = tx.Where("kind = ?", q.Kind)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if q.Limit > 0 {
		tx = tx.Offset(q.Offset).Limit(q.Limit)
	}
	if err := tx.Order("created_at desc").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
