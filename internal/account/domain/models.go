// Package domain contains the account reference entity. An organisation can
// hold multiple accounts, into which certificate bundles are issued and
// managed by its users; each account is linked to zero or more devices.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Account struct {
	ID             snowflake.ID                 `gorm:"primaryKey"`
	OrganisationID snowflake.ID                 `gorm:"not null;index"`
	AccountName    string                       `gorm:"type:text;not null"`
	UserIDs        datatypes.JSONSlice[int64]   `gorm:"type:jsonb"`
	// Whitelist holds the accounts allowed to transfer certificates into
	// this account.
	Whitelist datatypes.JSONSlice[int64] `gorm:"type:jsonb"`
	IsDeleted bool                       `gorm:"not null;default:false;column:is_deleted"`
	CreatedAt time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }

func (a *Account) GetID() snowflake.ID { return a.ID }

func (a *Account) EntityName() string { return "Account" }

func (a *Account) MarkDeleted() { a.IsDeleted = true }

// HasWhitelisted reports whether source may transfer bundles into this
// account.
func (a *Account) HasWhitelisted(source snowflake.ID) bool {
	for _, id := range a.Whitelist {
		if snowflake.ID(id) == source {
			return true
		}
	}
	return false
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
}

var ErrAccountNotFound = errors.New("account_not_found")
