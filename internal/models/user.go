// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	DisplayName  string     `json:"display_name" gorm:"size:100"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);default:'operator'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID.String(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}
