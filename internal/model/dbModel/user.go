package dbModel

import "database/sql"

type User struct {
	UserID            int64          `db:"user_id"`
	Email             string         `db:"email"`
	Username          string         `db:"username"`
	PasswordHash      string         `db:"password_hash"`
	IsVerified        bool           `db:"is_verified"`
	VerificationToken sql.NullString `db:"verification_token"`
}
