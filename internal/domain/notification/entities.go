package notification

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("notification not found")
)

// Table: notifications
type Notification struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(32)" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index:idx_notifications_user_read" json:"user_id"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	Link      *string   `gorm:"column:link;type:text" json:"link"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
