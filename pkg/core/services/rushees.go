package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/rushtracker/rushtracker/pkg/clients/apiclient"
	"github.com/rushtracker/rushtracker/pkg/core/model"
)

var (
	// ErrEmptyNote is returned before any network call when a note has no content
	ErrEmptyNote = errors.New("note content cannot be empty")
	// ErrEmptyTag is returned when a blank tag is added or removed
	ErrEmptyTag = errors.New("tag cannot be empty")
	// ErrUnknownTag is returned when a tag outside the fraternity vocabulary is added
	ErrUnknownTag = errors.New("tag is not in the fraternity's tag list")
)

// FindOrCreateResult reports the resolved rushee and whether it had to be created
type FindOrCreateResult struct {
	Rushee  *model.Rushee
	Created bool
}

// FindOrCreateRushee looks the rushee up by email within r.Fraternity and creates it when the
// lookup returns not found. Any other lookup error is returned as is.
func FindOrCreateRushee(ctx context.Context, store RusheeStore, logger *zap.Logger, r apiclient.NewRushee) (*FindOrCreateResult, error) {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return nil, fmt.Errorf("rushee email is required")
	}

	logger.Debug("Looking up rushee", zap.String("email", r.Email), zap.String("fraternity", r.Fraternity))
	existing, err := store.FindRusheeByEmail(ctx, r.Fraternity, r.Email)
	if err == nil {
		return &FindOrCreateResult{Rushee: existing}, nil
	}
	if !errors.Is(err, apiclient.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rushee: %w", err)
	}

	if r.Status == "" {
		r.Status = model.StatusPotential
	}
	created, err := store.CreateRushee(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create rushee: %w", err)
	}

	logger.Info("Created rushee", zap.String("id", created.ID), zap.String("email", r.Email))
	return &FindOrCreateResult{Rushee: created, Created: true}, nil
}

// UpdateRusheeStatus moves a rushee to any status. Unknown status names are rejected locally.
func UpdateRusheeStatus(ctx context.Context, store RusheeStore, logger *zap.Logger, rusheeID, status string) (model.Status, error) {
	parsed, err := model.ParseStatus(status)
	if err != nil {
		return "", err
	}

	if err := store.UpdateRusheeStatus(ctx, rusheeID, parsed); err != nil {
		return "", fmt.Errorf("failed to update status: %w", err)
	}

	logger.Info("Updated rushee status", zap.String("rushee_id", rusheeID), zap.String("status", string(parsed)))
	return parsed, nil
}

// AddRusheeNote posts a note and returns the refetched rushee
func AddRusheeNote(ctx context.Context, store RusheeStore, logger *zap.Logger, rusheeID, content string, anonymous bool) (*model.Rushee, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyNote
	}

	if err := store.AddNote(ctx, rusheeID, content, anonymous); err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	logger.Debug("Added note", zap.String("rushee_id", rusheeID), zap.Bool("anonymous", anonymous))

	return refetchRushee(ctx, store, rusheeID)
}

// AddRusheeTag tags a rushee with a tag from the fraternity vocabulary and returns the
// refetched rushee
func AddRusheeTag(ctx context.Context, store RusheeStore, logger *zap.Logger, frat *model.Fraternity, rusheeID, tag string) (*model.Rushee, error) {
	tag, err := vocabularyTag(frat, tag)
	if err != nil {
		return nil, err
	}
	if err := store.AddRusheeTag(ctx, rusheeID, tag); err != nil {
		return nil, fmt.Errorf("failed to add tag: %w", err)
	}
	logger.Debug("Tagged rushee", zap.String("rushee_id", rusheeID), zap.String("tag", tag))
	return refetchRushee(ctx, store, rusheeID)
}

// vocabularyTag trims tag and checks it against frat.Tags. Removal does not go through
// here so retired tags can still be cleared.
func vocabularyTag(frat *model.Fraternity, tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", ErrEmptyTag
	}
	if frat == nil || !slices.Contains(frat.Tags, tag) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}
	return tag, nil
}

// RemoveRusheeTag untags a rushee and returns the refetched rushee
func RemoveRusheeTag(ctx context.Context, store RusheeStore, logger *zap.Logger, rusheeID, tag string) (*model.Rushee, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if err := store.RemoveRusheeTag(ctx, rusheeID, tag); err != nil {
		return nil, fmt.Errorf("failed to remove tag: %w", err)
	}
	logger.Debug("Untagged rushee", zap.String("rushee_id", rusheeID), zap.String("tag", tag))
	return refetchRushee(ctx, store, rusheeID)
}

// UpdateRusheeProfile patches the editable profile fields and returns the refetched rushee
func UpdateRusheeProfile(ctx context.Context, store RusheeStore, logger *zap.Logger, fratID, rusheeID string, u apiclient.RusheeUpdate) (*model.Rushee, error) {
	if err := store.UpdateRushee(ctx, fratID, rusheeID, u); err != nil {
		return nil, fmt.Errorf("failed to update rushee: %w", err)
	}
	logger.Info("Updated rushee profile", zap.String("rushee_id", rusheeID))
	return refetchRushee(ctx, store, rusheeID)
}

func refetchRushee(ctx context.Context, store interface {
	GetRushee(ctx context.Context, id string) (*model.Rushee, error)
}, rusheeID string) (*model.Rushee, error) {
	r, err := store.GetRushee(ctx, rusheeID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh rushee: %w", err)
	}
	return r, nil
}

// OfferedTags is the fraternity vocabulary followed by any tag the rushee carries that the
// vocabulary no longer has
func OfferedTags(frat *model.Fraternity, rushee model.Rushee) []string {
	seen := map[string]bool{}
	var tags []string
	if frat != nil {
		for _, t := range frat.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	for _, t := range rushee.Tags {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// AddFraternityTag adds a tag to the vocabulary and returns the refetched fraternity
func AddFraternityTag(ctx context.Context, store FratStore, logger *zap.Logger, fratID, tag string) (*model.Fraternity, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if err := store.AddFraternityTag(ctx, fratID, tag); err != nil {
		return nil, fmt.Errorf("failed to add fraternity tag: %w", err)
	}
	logger.Info("Added fraternity tag", zap.String("tag", tag))
	return refetchFraternity(ctx, store, fratID)
}

// RemoveFraternityTag removes a tag from the vocabulary. Rushees keep the tag.
func RemoveFraternityTag(ctx context.Context, store FratStore, logger *zap.Logger, fratID, tag string) (*model.Fraternity, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if err := store.RemoveFraternityTag(ctx, fratID, tag); err != nil {
		return nil, fmt.Errorf("failed to remove fraternity tag: %w", err)
	}
	logger.Info("Removed fraternity tag", zap.String("tag", tag))
	return refetchFraternity(ctx, store, fratID)
}

func refetchFraternity(ctx context.Context, store FratStore, fratID string) (*model.Fraternity, error) {
	frat, err := store.GetFraternity(ctx, fratID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh fraternity: %w", err)
	}
	return frat, nil
}

// BatchFailure is one item a batch operation could not process
type BatchFailure struct {
	ID  string
	Err error
}

// BatchResult lists per-item outcomes of a best-effort batch. Nothing is rolled back.
type BatchResult struct {
	Succeeded []string
	Failed    []BatchFailure
}

// OK reports whether every item succeeded
func (b *BatchResult) OK() bool {
	return len(b.Failed) == 0
}

func (b *BatchResult) Summary(verb string) string {
	if b.OK() {
		return fmt.Sprintf("%s %d rushees", verb, len(b.Succeeded))
	}
	return fmt.Sprintf("%s %d rushees, %d failed", verb, len(b.Succeeded), len(b.Failed))
}

// BatchDeleteRushees deletes rushees one at a time, continuing past failures
func BatchDeleteRushees(ctx context.Context, store RusheeStore, logger *zap.Logger, rusheeIDs []string) *BatchResult {
	result := &BatchResult{}
	for _, id := range rusheeIDs {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Err: err})
			continue
		}
		if err := store.DeleteRushee(ctx, id); err != nil {
			logger.Warn("Failed to delete rushee", zap.String("rushee_id", id), zap.Error(err))
			result.Failed = append(result.Failed, BatchFailure{ID: id, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	logger.Info("Batch delete finished",
		zap.Int("deleted", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result
}

// BulkAddTag tags every given rushee with a vocabulary tag. Rushees already carrying the tag
// count as succeeded without a request.
func BulkAddTag(ctx context.Context, store RusheeStore, logger *zap.Logger, frat *model.Fraternity, rushees []model.Rushee, tag string) (*BatchResult, error) {
	tag, err := vocabularyTag(frat, tag)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for _, r := range rushees {
		if r.HasTag(tag) {
			result.Succeeded = append(result.Succeeded, r.ID)
			continue
		}
		if err := store.AddRusheeTag(ctx, r.ID, tag); err != nil {
			logger.Warn("Failed to tag rushee", zap.String("rushee_id", r.ID), zap.Error(err))
			result.Failed = append(result.Failed, BatchFailure{ID: r.ID, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, r.ID)
	}

	logger.Info("Bulk tag finished",
		zap.String("tag", tag),
		zap.Int("tagged", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}
