// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the account type stored on User.
type Role string

const (
	RoleGeneric    Role = "generic"
	RoleSubscriber Role = "subscriber"
	RoleTrainer    Role = "trainer"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleGeneric, RoleSubscriber, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick r for themselves.
func (r Role) SelfAssignable() bool {
	return r == RoleGeneric || r == RoleSubscriber || r == RoleTrainer
}

// User is the base account. Subscriber and Trainer rows extend it 1:1.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);default:'generic';not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserPatch carries optional user fields. Password must already be hashed.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
}

// IsEmpty reports whether no field is set.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Role == nil
}

// Columns returns the column/value pairs to write.
func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	setIf(cols, "name", p.Name)
	setIf(cols, "email", p.Email)
	setIf(cols, "password", p.Password)
	setIf(cols, "role", p.Role)
	return cols
}

// setIf stores *v under col when v is non-nil.
func setIf[T any](cols map[string]any, col string, v *T) {
	if v != nil {
		cols[col] = *v
	}
}
