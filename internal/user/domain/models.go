// Package domain contains the registry user and the authorization
// precondition applied to certificate actions. The authentication protocol
// itself lives outside the core; a user arrives here already resolved.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID             snowflake.ID                `gorm:"primaryKey"`
	Name           string                      `gorm:"type:text;not null"`
	Email          string                      `gorm:"type:text;not null"`
	OrganisationID snowflake.ID                `gorm:"not null;index"`
	Roles          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	// AccountIDs are the accounts this user may act on.
	AccountIDs datatypes.JSONSlice[int64] `gorm:"type:jsonb"`
	IsDeleted  bool                       `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt  time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "registry_users" }

func (u *User) GetID() snowflake.ID { return u.ID }

func (u *User) EntityName() string { return "User" }

func (u *User) MarkDeleted() { u.IsDeleted = true }

// HasAccountAccess reports whether the user is linked to the account.
func (u *User) HasAccountAccess(accountID snowflake.ID) bool {
	for _, id := range u.AccountIDs {
		if snowflake.ID(id) == accountID {
			return true
		}
	}
	return false
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
}

var (
	ErrUserNotFound = errors.New("user_not_found")
	// ErrAccountAccessDenied rejects an action whose user is not linked to
	// the source account.
	ErrAccountAccessDenied = errors.New("user_account_access_denied")
)
