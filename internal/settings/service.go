package settings

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/dates"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	settingsDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/settings"
	"github.com/frahmantamala/worklog/internal/core/events"
	"github.com/frahmantamala/worklog/internal/storage"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*settingsDatamodel.Setting, error)
	// Get reports found=false when the key has no row.
	Get(ctx context.Context, key string) (string, bool, error)
	UpsertMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

const logoDir = "logos"

type Service struct {
	repo      RepositoryAPI
	cache     *Cache
	files     storage.FileStore
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, files storage.FileStore, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &Service{
		repo:      repo,
		files:     files,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
	s.cache = NewCache(repo.Get)
	return s
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Cache() *Cache {
	return s.cache
}

// Value returns the stored value for key, or its default. Store failures fall back to the default.
func (s *Service) Value(ctx context.Context, key string) string {
	v, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Error("failed to load setting", "key", key, "error", err)
		return Defaults[key]
	}
	if !found {
		return Defaults[key]
	}
	return v
}

// Location is the configured business timezone. An unloadable zone falls back to the default,
// then to UTC.
func (s *Service) Location(ctx context.Context) *time.Location {
	name := s.Value(ctx, KeyTimezone)
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	s.logger.Warn("invalid timezone setting", "timezone", name)
	if loc, err := time.LoadLocation(Defaults[KeyTimezone]); err == nil {
		return loc
	}
	return time.UTC
}

func (s *Service) WeekStart(ctx context.Context) time.Weekday {
	switch strings.ToLower(s.Value(ctx, KeyWeekStartsOn)) {
	case "sunday":
		return time.Sunday
	default:
		return time.Monday
	}
}

// Now is the current instant in the business timezone.
func (s *Service) Now(ctx context.Context) time.Time {
	return s.now().In(s.Location(ctx))
}

// Today is the current business day as a UTC-midnight date.
func (s *Service) Today(ctx context.Context) time.Time {
	return dates.Day(s.Now(ctx))
}

func (s *Service) Public(ctx context.Context) map[string]string {
	out := make(map[string]string, len(PublicKeys))
	for _, k := range PublicKeys {
		out[k] = s.Value(ctx, k)
	}
	return out
}

func (s *Service) All(ctx context.Context, actor *auth.Actor) (map[string]string, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrForbidden
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list settings", "error", err)
		return nil, err
	}

	out := make(map[string]string, len(Defaults)+len(rows))
	for k, v := range Defaults {
		out[k] = v
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, dto UpdateSettingsDTO) (map[string]string, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("settings update denied", "actor_id", actor.UserID())
		return nil, internal.ErrForbidden
	}

	dto.SiteName = strings.TrimSpace(dto.SiteName)
	dto.Timezone = strings.TrimSpace(dto.Timezone)
	if err := validation.Merge(validation.Struct(dto), validateTimezone(dto.Timezone)); err != nil {
		return nil, err
	}

	values := dto.values()
	if err := s.repo.UpsertMany(ctx, values); err != nil {
		s.logger.Error("failed to save settings", "error", err)
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.changed(ctx, actor, keys...)

	s.logger.Info("settings updated", "actor_id", actor.ID, "keys", keys)
	return s.All(ctx, actor)
}

// UploadLogo stores a new site logo and points site_logo at it. The previous file is
// removed once the new path is saved.
func (s *Service) UploadLogo(ctx context.Context, actor *auth.Actor, upload storage.Upload) (map[string]string, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("logo upload denied", "actor_id", actor.UserID())
		return nil, internal.ErrForbidden
	}

	previous, _, err := s.repo.Get(ctx, KeySiteLogo)
	if err != nil {
		s.logger.Error("failed to load logo setting", "error", err)
		return nil, err
	}

	stored, err := storage.PutImage(ctx, s.files, logoDir, upload, storage.ImageLimit)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, internal.NewValidationFieldError(KeySiteLogo, "The logo may not be greater than 2048 kilobytes", internal.ErrCodeFileTooLarge)
		case errors.Is(err, storage.ErrNotImage):
			return nil, internal.NewValidationFieldError(KeySiteLogo, "The logo must be a JPEG or PNG image", internal.ErrCodeInvalidFormat)
		}
		s.logger.Error("failed to store logo", "error", err)
		return nil, internal.NewStorageError(err)
	}

	if err := s.repo.UpsertMany(ctx, map[string]string{KeySiteLogo: stored.Path}); err != nil {
		if derr := s.files.Delete(ctx, stored.Path); derr != nil {
			s.logger.Error("failed to remove orphaned logo", "error", derr, "path", stored.Path)
		}
		s.logger.Error("failed to save logo setting", "error", err)
		return nil, err
	}
	if previous != "" {
		if err := s.files.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to remove previous logo", "error", err, "path", previous)
		}
	}
	s.changed(ctx, actor, KeySiteLogo)

	s.logger.Info("logo uploaded", "actor_id", actor.ID, "path", stored.Path)
	return s.All(ctx, actor)
}

// RemoveLogo deletes the logo file and its setting together. Removing an absent logo succeeds.
func (s *Service) RemoveLogo(ctx context.Context, actor *auth.Actor) error {
	if !actor.IsAdmin() {
		s.logger.Warn("logo removal denied", "actor_id", actor.UserID())
		return internal.ErrForbidden
	}

	current, found, err := s.repo.Get(ctx, KeySiteLogo)
	if err != nil {
		s.logger.Error("failed to load logo setting", "error", err)
		return err
	}
	if !found {
		return nil
	}

	var trashed storage.Trashed
	if current != "" {
		trashed, err = s.files.Trash(ctx, current)
		if err != nil {
			s.logger.Error("failed to move logo aside", "error", err, "path", current)
			return internal.NewStorageError(err)
		}
	}

	if err := s.repo.Delete(ctx, KeySiteLogo); err != nil {
		if trashed != nil {
			if rerr := trashed.Restore(); rerr != nil {
				s.logger.Error("failed to restore logo", "error", rerr, "path", current)
			}
		}
		s.logger.Error("failed to delete logo setting", "error", err)
		return err
	}
	if trashed != nil {
		if err := trashed.Purge(); err != nil {
			s.logger.Warn("failed to purge logo", "error", err, "path", current)
		}
	}
	s.changed(ctx, actor, KeySiteLogo)

	s.logger.Info("logo removed", "actor_id", actor.ID)
	return nil
}

func (s *Service) changed(ctx context.Context, actor *auth.Actor, keys ...string) {
	s.cache.Invalidate(keys...)
	if err := s.publisher.Publish(ctx, events.NewSettingsUpdatedEvent(actor.ID, keys)); err != nil {
		s.logger.Error("failed to publish settings event", "error", err)
	}
}

func validateTimezone(name string) *internal.AppError {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return internal.NewValidationFieldError(KeyTimezone, "Timezone must be a valid IANA zone", internal.ErrCodeInvalidFormat)
	}
	return nil
}
