package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Delivery is the challenge delivery capability of an account. It is chosen
// at registration and never inferred at runtime.
type Delivery string

const (
	DeliveryEmailLink      Delivery = "email_link"
	DeliveryEmailShortcode Delivery = "email_shortcode"
	DeliverySMS            Delivery = "sms"
)

func (d Delivery) Valid() bool {
	switch d {
	case DeliveryEmailLink, DeliveryEmailShortcode, DeliverySMS:
		return true
	}
	return false
}

// UsesShortcode reports whether the account resolves its challenge with a
// numeric shortcode rather than an auth link.
func (d Delivery) UsesShortcode() bool {
	return d == DeliveryEmailShortcode || d == DeliverySMS
}

type User struct {
	ID              uuid.UUID
	Username        string
	Email           sql.NullString
	PasswordHash    string
	Delivery        Delivery
	IsAdmin         bool
	IsActive        bool
	IsVerified      bool
	Shortcode       sql.NullString
	AuthLinkRoute   sql.NullString
	BearerToken     sql.NullString
	CreatedAt       time.Time
	LastLogin       sql.NullTime
	CurrentAuthTime sql.NullTime
}

// PublicUser is the representation exposed over the admin listing endpoints.
// password_hash and email are never serialized.
type PublicUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Delivery      Delivery  `json:"delivery"`
	IsAdmin       bool      `json:"is_admin"`
	IsActive      bool      `json:"is_active"`
	IsVerified    bool      `json:"is_verified"`
	CreatedAt     time.Time `json:"created_at"`
	LastLogin     time.Time `json:"last_login,omitempty"`
}

func (u *User) Public() *PublicUser {
	p := &PublicUser{
		ID:         u.ID.String(),
		Username:   u.Username,
		Delivery:   u.Delivery,
		IsAdmin:    u.IsAdmin,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
	if u.LastLogin.Valid {
		p.LastLogin = u.LastLogin.Time
	}
	return p
}
