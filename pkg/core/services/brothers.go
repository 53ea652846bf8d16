package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/listing"
	"github.com/rushtracker/rushtracker/pkg/core/model"
	"github.com/rushtracker/rushtracker/pkg/csvexport"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ErrPasswordMismatch is returned when the new password and its confirmation differ
var ErrPasswordMismatch = errors.New("new passwords do not match")

// ListBrothers returns active brothers, or all of them when showAll is set
func ListBrothers(ctx context.Context, store BrotherStore, logger *zap.Logger, showAll bool) ([]model.Brother, error) {
	brothers, err := store.ListBrothers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch brothers: %w", err)
	}
	out := listing.ActiveBrothers(brothers, showAll)
	logger.Debug("Fetched brothers", zap.Int("total", len(brothers)), zap.Int("shown", len(out)))
	return out, nil
}

// ChangePosition sets a brother's position. Unknown names are rejected locally.
func ChangePosition(ctx context.Context, store BrotherStore, logger *zap.Logger, brotherID, position string) (model.Position, error) {
	parsed, err := model.ParsePosition(position)
	if err != nil {
		return "", err
	}
	if err := store.UpdatePosition(ctx, brotherID, parsed); err != nil {
		return "", fmt.Errorf("failed to update position: %w", err)
	}
	logger.Info("Updated position", zap.String("brother_id", brotherID), zap.String("position", string(parsed)))
	return parsed, nil
}

func ToggleBrotherActive(ctx context.Context, store BrotherStore, logger *zap.Logger, brotherID string) error {
	if err := store.ToggleActive(ctx, brotherID); err != nil {
		return fmt.Errorf("failed to toggle active: %w", err)
	}
	logger.Info("Toggled brother active flag", zap.String("brother_id", brotherID))
	return nil
}

// ProfileInput is the caller's editable profile
type ProfileInput struct {
	Phone string `validate:"required"`
	Major string `validate:"required"`
	Year  string `validate:"omitempty,oneof=1 2 3 4"`
}

// UpdateOwnProfile validates and saves the caller's profile
func UpdateOwnProfile(ctx context.Context, store BrotherStore, logger *zap.Logger, in ProfileInput) (*model.Brother, error) {
	in.Phone = strings.TrimSpace(in.Phone)
	in.Major = strings.TrimSpace(in.Major)
	in.Year = strings.TrimSpace(in.Year)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}

	updated, err := store.UpdateProfile(ctx, apiclient.ProfileUpdate{Phone: in.Phone, Major: in.Major, Year: in.Year})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	logger.Info("Updated profile")
	return updated, nil
}

// PasswordChange is the change password form
type PasswordChange struct {
	Current string `validate:"required"`
	New     string `validate:"required"`
	Confirm string `validate:"required"`
}

// ChangePassword checks the confirmation locally before calling the API
func ChangePassword(ctx context.Context, store BrotherStore, logger *zap.Logger, in PasswordChange) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("all password fields are required: %w", err)
	}
	if in.New != in.Confirm {
		return ErrPasswordMismatch
	}
	if err := store.ResetPassword(ctx, in.Current, in.New); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	logger.Info("Password changed")
	return nil
}

// ImportFailure is a row of an import file that was not created
type ImportFailure struct {
	Line int
	Name string
	Err  error
}

// ImportResult counts the outcome of a brother import
type ImportResult struct {
	Created []model.Brother
	Failed  []ImportFailure
}

func (r *ImportResult) Message() string {
	return fmt.Sprintf("Created %d brothers successfully. Failed to create %d brothers.", len(r.Created), len(r.Failed))
}

// ImportBrothers creates a brother for each row of a CSV file, in order. Rows with a missing
// field or a position other than President, Rush Chair or Brother (exact spelling) fail
// without a request. Creation continues past failures.
func ImportBrothers(ctx context.Context, store BrotherStore, logger *zap.Logger, r io.Reader) (*ImportResult, error) {
	rows, err := csvexport.ParseBrothers(r)
	if err != nil {
		return nil, err
	}

	logger.Debug("Importing brothers", zap.Int("rows", len(rows)))

	result := &ImportResult{}
	for _, row := range rows {
		if err := checkImportRow(row); err != nil {
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Name: row.Name, Err: err})
			continue
		}

		created, err := store.CreateBrother(ctx, apiclient.NewBrother{
			Name:     row.Name,
			Email:    row.Email,
			Position: model.Position(row.Position),
		})
		if err != nil {
			logger.Warn("Failed to create brother", zap.Int("line", row.Line), zap.Error(err))
			result.Failed = append(result.Failed, ImportFailure{Line: row.Line, Name: row.Name, Err: err})
			continue
		}
		result.Created = append(result.Created, *created)
	}

	logger.Info("Brother import finished",
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func checkImportRow(row csvexport.BrotherRow) error {
	var missing []string
	if row.Name == "" {
		missing = append(missing, "Name")
	}
	if row.Email == "" {
		missing = append(missing, "Email")
	}
	if row.Position == "" {
		missing = append(missing, "Position")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	if !model.Position(row.Position).IsValid() {
		return fmt.Errorf("invalid position %q", row.Position)
	}
	return nil
}

// AttendanceStore is what the attendance export needs
type AttendanceStore interface {
	ListBrothers(ctx context.Context) ([]model.Brother, error)
	ListEvents(ctx context.Context, filter apiclient.EventFilter) ([]model.Event, error)
}

// ExportAttendance writes brotherhood_attendance_<date>.csv using a freshly fetched event list
func ExportAttendance(ctx context.Context, store AttendanceStore, logger *zap.Logger, showAll bool, dir string, now time.Time) (string, error) {
	brothers, err := store.ListBrothers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch brothers: %w", err)
	}
	events, err := store.ListEvents(ctx, apiclient.EventFilter{})
	if err != nil {
		return "", fmt.Errorf("failed to fetch events: %w", err)
	}

	table := csvexport.BrotherAttendance(listing.ActiveBrothers(brothers, showAll), events)
	path, err := csvexport.Write(dir, csvexport.Filename("brotherhood_attendance", now), table.String())
	if err != nil {
		return "", err
	}
	logger.Info("Exported attendance", zap.String("path", path), zap.Int("events", len(events)))
	return path, nil
}
