package models

import (
	"strings"
	"time"
)

// GuestUsername is the sentinel principal for orders placed without an account.
const GuestUsername = "guest"

// AdminUsername is the single administrative principal.
const AdminUsername = "admin"

// Account represents a registered marketplace identity. Username is stored
// normalized (lowercase, trimmed) and is the unique key.
type Account struct {
	Username       string    `gorm:"column:username;type:text;primaryKey" json:"username"`
	FullName       string    `gorm:"column:full_name;not null" json:"full_name"`
	IsAdmin        bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CredentialHash string    `gorm:"column:credential_hash;not null" json:"-"`
	Wishlist       []int64   `gorm:"column:wishlist;serializer:json" json:"wishlist"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// NormalizeUsername lowercases and trims a principal name.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// IsGuest reports whether the principal name is the guest sentinel or empty.
func IsGuest(username string) bool {
	normalized := NormalizeUsername(username)
	return normalized == "" || normalized == GuestUsername
}
