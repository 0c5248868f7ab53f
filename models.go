package jwtcookie

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the locally persisted identity record, keyed by username. Records
// are created on first successful authentication for a previously unseen
// username and mutated only through the IdentityResolver.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string         `bun:"email" json:"email,omitempty"`
	Name          string         `bun:"name" json:"name,omitempty"`
	Phone         string         `bun:"phone_number" json:"phone_number,omitempty"`
	IsStaff       bool           `bun:"is_staff" json:"is_staff,omitempty"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Attribute returns the named attribute. Column-backed attributes are looked
// up first; anything else reads from the Metadata map, which is where
// dictionary-valued mergeable attributes live.
func (u *User) Attribute(name string) (any, bool) {
	switch name {
	case "username":
		return u.Username, true
	case "email":
		return u.Email, true
	case "name":
		return u.Name, true
	case "phone":
		return u.Phone, true
	case "is_staff":
		return u.IsStaff, true
	}

	if u.Metadata == nil {
		return nil, false
	}
	v, ok := u.Metadata[name]
	return v, ok
}

// SetAttribute assigns the named attribute. Scalar columns accept strings and
// bools where the column type matches; any other name lands in Metadata.
func (u *User) SetAttribute(name string, value any) error {
	switch name {
	case "username":
		return u.setString(&u.Username, name, value)
	case "email":
		return u.setString(&u.Email, name, value)
	case "name":
		return u.setString(&u.Name, name, value)
	case "phone":
		return u.setString(&u.Phone, name, value)
	case "is_staff":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("attribute %s requires bool, got %T", name, value)
		}
		u.IsStaff = b
		return nil
	}

	u.AddMetadata(name, value)
	return nil
}

func (u *User) setString(dst *string, name string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("attribute %s requires string, got %T", name, value)
	}
	*dst = s
	return nil
}

// AddMetadata will append information to the metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}
