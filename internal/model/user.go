package model

import "time"

// User - учетная запись, которой управляет администратор.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Session - сохраненная сессия: пользователь и непрозрачный bearer-токен.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
