package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/user"
	"github.com/frahmantamala/worklog/internal/storage"
)

const avatarDir = "avatars"

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, int64, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) error
	CountEntries(ctx context.Context, id int64) (int64, error)
}

// DepartmentChecker is satisfied by department.Service.
type DepartmentChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo        RepositoryAPI
	departments DepartmentChecker
	hasher      *auth.PasswordHasher
	policy      *auth.Policy
	files       storage.FileStore
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, departments DepartmentChecker, hasher *auth.PasswordHasher, policy *auth.Policy, files storage.FileStore, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		hasher:      hasher,
		policy:      policy,
		files:       files,
		logger:      logger,
	}
}

// List returns users ordered by name. Actors without view_any only see their own department.
func (s *Service) List(ctx context.Context, actor *auth.Actor, filter ListFilter) (*pagination.Page[*User], error) {
	if actor == nil {
		return nil, internal.ErrForbidden
	}
	if !s.policy.Authorize(actor, auth.ActionViewAny, auth.ForKind(auth.KindUser)) {
		dept := actor.Department()
		filter.DepartmentID = &dept
	}

	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page, filter.PerPage = pagination.Normalize(filter.Page, filter.PerPage)

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}

	out := make([]*User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return pagination.New(out, total, filter.Page, filter.PerPage), nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, auth.ActionView, auth.ForUser(row.ID, row.DepartmentID)); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Me returns the actor's own record with its department.
func (s *Service) Me(ctx context.Context, actor *auth.Actor) (*User, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	row, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateUserDTO) (*User, error) {
	if err := s.policy.Check(actor, auth.ActionCreate, auth.ForKind(auth.KindUser)); err != nil {
		s.logger.Warn("user create denied", "actor_id", actor.UserID())
		return nil, err
	}

	dto.Name = strings.TrimSpace(dto.Name)
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, dto.Email, 0); err != nil {
		return nil, err
	}
	if err := s.ensureDepartment(ctx, dto.DepartmentID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("Failed to create user", err)
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(dto.Phone),
		Role:         auth.Role(dto.Role),
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", row.ID, "role", row.Role, "actor_id", actor.UserID())
	return s.reload(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForUser(row.ID, row.DepartmentID)); err != nil {
		s.logger.Warn("user update denied", "actor_id", actor.UserID(), "user_id", id)
		return nil, err
	}
	if dto.touchesAdminFields() && !actor.IsAdmin() {
		s.logger.Warn("non-admin tried to change role, department or status", "actor_id", actor.UserID(), "user_id", id)
		return nil, internal.ErrForbidden
	}

	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		dto.Email = &email
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil && *dto.Email != row.Email {
		if err := s.ensureEmailAvailable(ctx, *dto.Email, row.ID); err != nil {
			return nil, err
		}
		row.Email = *dto.Email
	}
	if dto.Phone != nil {
		row.Phone = strings.TrimSpace(*dto.Phone)
	}
	if dto.Password != nil {
		hash, err := s.hasher.Hash(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("Failed to update user", err)
		}
		row.PasswordHash = hash
	}
	if dto.Role != nil {
		row.Role = *dto.Role
	}
	if dto.DepartmentID != nil {
		if err := s.ensureDepartment(ctx, dto.DepartmentID); err != nil {
			return nil, err
		}
		row.DepartmentID = dto.DepartmentID
		row.Department = nil
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return s.reload(ctx, row.ID)
}

// UpdateProfile lets any actor edit their own name, email, phone and password.
func (s *Service) UpdateProfile(ctx context.Context, actor *auth.Actor, dto UpdateProfileDTO) (*User, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if dto.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*dto.Email))
		dto.Email = &email
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if dto.Password != "" {
		if dto.CurrentPassword == "" {
			return nil, internal.NewValidationFieldError("current_password", "Current password is required", internal.ErrCodeRequired)
		}
		if !s.hasher.Verify(row.PasswordHash, dto.CurrentPassword) {
			return nil, internal.NewValidationFieldError("current_password", "Current password is incorrect", internal.ErrCodeInvalidCredentials)
		}
		hash, err := s.hasher.Hash(dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("Failed to update profile", err)
		}
		row.PasswordHash = hash
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil && *dto.Email != row.Email {
		if err := s.ensureEmailAvailable(ctx, *dto.Email, row.ID); err != nil {
			return nil, err
		}
		row.Email = *dto.Email
	}
	if dto.Phone != nil {
		row.Phone = strings.TrimSpace(*dto.Phone)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", actor.ID)
	return s.reload(ctx, row.ID)
}

// UploadAvatar replaces the actor's avatar. The previous file is removed once the new path is saved.
func (s *Service) UploadAvatar(ctx context.Context, actor *auth.Actor, upload storage.Upload) (*User, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	row, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	stored, err := storage.PutImage(ctx, s.files, avatarDir, upload, storage.ImageLimit)
	if err != nil {
		return nil, s.imageError("avatar", err, actor.ID)
	}

	previous := row.Avatar
	row.Avatar = stored.Path
	if err := s.repo.Update(ctx, row); err != nil {
		if derr := s.files.Delete(ctx, stored.Path); derr != nil {
			s.logger.Error("failed to remove orphaned avatar", "error", derr, "path", stored.Path)
		}
		s.logger.Error("failed to save avatar", "error", err, "user_id", actor.ID)
		return nil, err
	}

	if previous != "" {
		if err := s.files.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to remove previous avatar", "error", err, "path", previous)
		}
	}

	s.logger.Info("avatar uploaded", "user_id", actor.ID, "size", stored.Size)
	return s.reload(ctx, row.ID)
}

func (s *Service) imageError(field string, err error, userID int64) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return internal.NewValidationFieldError(field, "The image may not be greater than 2048 kilobytes", internal.ErrCodeFileTooLarge)
	case errors.Is(err, storage.ErrNotImage):
		return internal.NewValidationFieldError(field, "The file must be a JPEG or PNG image", internal.ErrCodeInvalidFormat)
	}
	s.logger.Error("failed to store image", "error", err, "user_id", userID)
	return internal.NewStorageError(err)
}

// Delete reports self-deletion as a conflict before the policy runs.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if actor != nil && actor.ID == id {
		return internal.ErrSelfDelete
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Check(actor, auth.ActionDelete, auth.ForUser(row.ID, row.DepartmentID)); err != nil {
		s.logger.Warn("user delete denied", "actor_id", actor.UserID(), "user_id", id)
		return err
	}

	n, err := s.repo.CountEntries(ctx, id)
	if err != nil {
		s.logger.Error("failed to count user references", "error", err, "user_id", id)
		return err
	}
	if n > 0 {
		return internal.NewInUseError("user", "work entries")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.UserID())
	return nil
}

func (s *Service) reload(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return internal.NewValidationFieldError("email", "email has already been taken", internal.ErrCodeDuplicate)
}

func (s *Service) ensureDepartment(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.departments.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return internal.NewValidationFieldError("department_id", "selected department does not exist", internal.ErrCodeInvalidReference)
	}
	return nil
}
