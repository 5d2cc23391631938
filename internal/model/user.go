package model

// User represents a user in the database.
type User struct {
	ID              int64   `db:"id"`
	Username        string  `db:"username"`
	PasswordHash    string  `db:"password_hash"`
	EncryptedAPIKey *string `db:"encrypted_api_key"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
}

// HasAPIKey reports whether the user has stored a vendor key.
func (u *User) HasAPIKey() bool {
	return u.EncryptedAPIKey != nil && *u.EncryptedAPIKey != ""
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response with a JWT token and user info.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	HasAPIKey bool   `json:"has_api_key"`
	CreatedAt int64  `json:"created_at"`
}

// APIKeyRequest stores a vendor key. Verify asks the provider to accept it first.
type APIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required,vendorkey"`
	Verify bool   `json:"verify"`
}

// APIKeyStatusResponse describes the stored vendor key without revealing it.
type APIKeyStatusResponse struct {
	HasAPIKey bool   `json:"has_api_key"`
	MaskedKey string `json:"masked_key,omitempty"`
}
