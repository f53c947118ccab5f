package auth

import (
	"github.com/agencypulse/reporting-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID uuid.UUID
	Role       enums.OperatorRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to console sessions.
type AccessTokenClaims struct {
	OperatorID uuid.UUID          `json:"operator_id"`
	Role       enums.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}
