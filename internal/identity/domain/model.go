package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
)

// Account maps one login to a role. A tenant account holds at most one
// FlatID; the pointer is kept in lock-step with Flat.TenantID by the
// tenancy service and never written anywhere else.
type Account struct {
	ID        snowflake.ID  `json:"id" gorm:"primaryKey"`
	Role      Role          `json:"role" gorm:"type:varchar(10);not null"`
	Name      string        `json:"name" gorm:"type:text;not null"`
	Email     string        `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Phone     string        `json:"phone" gorm:"type:text"`
	FlatID    *snowflake.ID `json:"flat_id,omitempty" gorm:"index"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null"`
}

func (Account) TableName() string { return "accounts" }

func (a *Account) IsOwner() bool  { return a.Role == RoleOwner }
func (a *Account) IsTenant() bool { return a.Role == RoleTenant }
