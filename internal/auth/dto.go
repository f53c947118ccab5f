package auth

import (
	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
)

// LoginInput carries operator credentials from the login endpoint.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OperatorItem is the wire shape of an operator account.
type OperatorItem struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name,omitempty"`
	Role        enums.OperatorRole `json:"role"`
}

// TokenPair is an access token plus its rotating refresh token.
type TokenPair struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// LoginResult bundles the issued tokens with the authenticated operator.
type LoginResult struct {
	Operator OperatorItem `json:"operator"`
	Tokens   TokenPair    `json:"tokens"`
}

func toOperatorItem(row models.Operator) OperatorItem {
	return OperatorItem{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Role:        row.Role,
	}
}
