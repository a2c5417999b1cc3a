package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Fullname  string        `json:"fullname" bson:"fullname" validate:"required,min=2,max=100"`
	Email     string        `json:"email" bson:"email" validate:"required,email"`
	Password  string        `json:"-" bson:"password"`
	IsAdmin   bool          `json:"isAdmin" bson:"is_admin"`
	AvatarSrc string        `json:"avatarSrc,omitempty" bson:"avatar_src,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

func (u *User) SetTimestamps() {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

type RegisterRequest struct {
	Fullname string `json:"fullname" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
