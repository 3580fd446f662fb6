package auth

import "tidechain-backend/internal/domain"

var (
	ErrEmailPasswordRequired = domain.Validation("Email and password are required")
	ErrInvalidCredentials    = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Invalid email or password"}
	ErrEmailTaken            = domain.Conflict("Email already registered")
	ErrTokenExpired          = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Token has expired"}
	ErrInvalidToken          = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Invalid token"}
)
