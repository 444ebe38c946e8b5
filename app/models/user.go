package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Tokens holds the last issued access token. Only that token is accepted.
type Tokens struct {
	AccessToken string `bson:"access_token" json:"-"`
}

// User is a persisted account.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name,omitempty" json:"Name,omitempty"`
	Email     string             `bson:"email" json:"Email"`
	EmailKey  string             `bson:"email_key" json:"-"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialised
	Role      string             `bson:"role" json:"Role"`
	Tokens    Tokens             `bson:"tokens" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// EmailKey normalises an address for uniqueness checks and lookups.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserView is the public projection of a User.
type UserView struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"Name,omitempty"`
	Email string             `json:"Email"`
	Role  string             `json:"Role"`
}

// View returns the public projection of u.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserStats summarises the user base.
type UserStats struct {
	TotalUsers int64 `json:"totalUsers"`
	AdminUsers int64 `json:"adminUsers"`
}
