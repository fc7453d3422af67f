package model

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

const (
	RoleAdmin    = "admin"
	RoleSchool   = "school"
	RoleOperator = "operator"
)

var AllRoles = []string{RoleAdmin, RoleSchool, RoleOperator}

type User struct {
	Login     string `gorm:"primaryKey" yaml:"login"`
	Email     string `gorm:"uniqueIndex;not null" yaml:"email"`
	Name      string `gorm:"not null;default:''" yaml:"name,omitempty"`
	Role      string `gorm:"index;not null" yaml:"role"`
	Password  string `gorm:"not null" yaml:"password"`
	Approved  bool   `gorm:"not null;default:false" yaml:"approved,omitempty"`
	Disabled  bool   `gorm:"not null;default:false" yaml:"disabled,omitempty"`
	CreatedAt time.Time
}

type UserDTO struct {
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Approved  bool      `json:"approved"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPostDTO struct {
	Login    string `json:"login" validate:"required,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"required,oneof=admin school operator"`
	Password string `json:"password" validate:"required,min=6"`
	Approved bool   `json:"approved"`
}

func (u *User) GetLogin() string {
	if u == nil {
		return ""
	}

	return u.Login
}

func (u *User) GetRole() string {
	if u == nil {
		return ""
	}

	return u.Role
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsSchool() bool {
	return u != nil && u.Role == RoleSchool
}

func (u *User) IsOperator() bool {
	return u != nil && u.Role == RoleOperator
}

func (u *User) CheckPassword(password string) bool {
	if u == nil {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	if err != nil {
		slog.Debug("password check failed", slog.Any("error", err))
		return false
	}

	return true
}

func (u *User) SetPassword(password string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	u.Password = string(b)

	return nil
}

func (u *User) DTO() *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		Login:     u.Login,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Approved:  u.Approved,
		Disabled:  u.Disabled,
		CreatedAt: u.CreatedAt,
	}
}
