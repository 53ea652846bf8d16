package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/core/model"
)

// Authenticator logs a brother in and stores the session
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.Brother, error)
}

// LoginInput is the login form
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login validates the form locally and then authenticates
func Login(ctx context.Context, auth Authenticator, logger *zap.Logger, in LoginInput) (*model.Brother, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("login validation failed: %w", err)
	}

	brother, err := auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	logger.Info("Logged in",
		zap.String("brother_id", brother.ID),
		zap.String("position", string(brother.Position)))
	return brother, nil
}
