package domain

// LoginCredentials is the body sent to auth/local. Request-scoped, never stored.
type LoginCredentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthPayload is the login response body kept verbatim as session auth state.
type AuthPayload []byte
