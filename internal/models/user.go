package models

// User is a row in the users table. Password carries the plaintext only
// on the way in (register/login request bodies); handlers never echo it.
type User struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`

	Score      uint64 `json:"score"`
	TotalCount uint32 `json:"total_count"`
	WinCount   uint32 `json:"win_count"`
}
