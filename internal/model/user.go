package model

import "time"

// Role is the authorization role stored on a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an account row in the users table.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex:users_email_unique;size:255;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"` // bcrypt hash, never exposed
	Role      Role      `json:"role" gorm:"size:50;not null;default:'user'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by the store.
func (User) TableName() string {
	return "users"
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse strips the password hash.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserUpdate carries the fields of a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Fields lists the names of the fields present in the update.
func (u UserUpdate) Fields() []string {
	fields := make([]string, 0, 4)
	if u.Name != nil {
		fields = append(fields, "name")
	}
	if u.Email != nil {
		fields = append(fields, "email")
	}
	if u.Password != nil {
		fields = append(fields, "password")
	}
	if u.Role != nil {
		fields = append(fields, "role")
	}
	return fields
}
