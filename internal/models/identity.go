package models

// User is the JSON-encoded `user` field of a launch payload.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// Identity is what a verified launch payload tells us about the caller.
type Identity struct {
	// Fields holds every signed field except the hash.
	Fields map[string]string
	User   User
}
