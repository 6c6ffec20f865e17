package models

import "time"

// User is an authenticated account. Every course, lesson and task belongs to one.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	DisplayName  string    `json:"displayName"`
	PhotoURL     string    `json:"photoUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// ProfileUpdate changes the display metadata of a user
type ProfileUpdate struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=100"`
	PhotoURL    *string `json:"photoUrl" validate:"omitempty,max=2048"`
}

// Credentials is the sign-in / sign-up payload
type Credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// AuthResponse is returned after a successful sign-in or sign-up
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
