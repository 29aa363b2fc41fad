package model

type User struct {
	UserID       int64
	Email        string
	Username     string
	PasswordHash string
	IsVerified   bool
}
