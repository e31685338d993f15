package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/elarose/storefront/pkg/enums"
)

// Contact is a message sent through the public contact form.
type Contact struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null"`
	Subject   string    `gorm:"column:subject"`
	Message   string    `gorm:"column:message;not null"`
	ClientIP  string    `gorm:"column:client_ip"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// SupportMessage is a signed-in customer's support request.
type SupportMessage struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string              `gorm:"column:user_id;not null;index"`
	Subject   string              `gorm:"column:subject;not null"`
	Body      string              `gorm:"column:body;not null"`
	OrderID   *uuid.UUID          `gorm:"column:order_id;type:uuid"`
	Status    enums.SupportStatus `gorm:"column:status;not null"`
	Reply     *string             `gorm:"column:reply"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// UserProfile mirrors identity-provider users the storefront has seen.
type UserProfile struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Email       string     `gorm:"column:email;not null"`
	Role        enums.Role `gorm:"column:role;not null"`
	DisplayName string     `gorm:"column:display_name"`
	Phone       string     `gorm:"column:phone"`
	LastSeenAt  time.Time  `gorm:"column:last_seen_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
