package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/internal/config"
	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/clients/imageclient"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/core/services"
	"github.com/rushtracker/rushtracker/pkg/session"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg     *config.Config
	API     *apiclient.Client
	Images  *imageclient.Client
	Session *session.Store
	Prompt  *Prompter
	Logger  *zap.Logger
	Ctx     context.Context
}

// ErrNotLoggedIn is returned by commands that need a session when there is none
var ErrNotLoggedIn = errors.New("not logged in (run 'login' first)")

// authorize checks the stored session against perm. It never touches the network.
func (app *AppContext) authorize(perm Permission) (model.Brother, error) {
	brother, ok := app.Session.Brother()
	if !ok {
		return model.Brother{}, ErrNotLoggedIn
	}
	if !Allowed(brother.Position, perm) {
		return model.Brother{}, fmt.Errorf("%w: %s cannot %s", ErrForbidden, brother.Position, perm)
	}
	return brother, nil
}

// userMessage turns a service error into the text shown to the user
func userMessage(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) || errors.Is(err, session.ErrNoSession) {
		return errors.New(apiclient.Message(err, fallback))
	}
	if errors.Is(err, services.ErrPasswordMismatch) {
		return errors.New("New passwords do not match")
	}
	return err
}
