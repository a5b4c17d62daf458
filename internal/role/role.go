// AngelaMos | 2026
// role.go

package role

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// Role is a named permission tier. Roles are rows, not an enum, so
// administrators can add tiers without a deploy; the three seeded names
// below are the ones the platform ships with.
type Role struct {
	ID          string      `db:"id"   json:"id"`
	Name        string      `db:"name" json:"name"`
	Description string      `db:"description" json:"description"`
	Permissions Permissions `db:"permissions" json:"permissions"`
	CreatedAt   time.Time   `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"  json:"updated_at"`
}

// Permissions is a list of capability strings stored as jsonb.
type Permissions []string

func (p Permissions) Contains(name string) bool {
	return slices.Contains(p, name)
}

func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

func (p *Permissions) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("scan permissions: unsupported type %T", src)
	}
}

const (
	Admin      = "admin"
	Instructor = "instructor"
	Student    = "student"
)

// DefaultName is the role assigned at registration.
const DefaultName = Student
