package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // argon2id PHC or bcrypt modular crypt
	CreatedAt    time.Time
}
