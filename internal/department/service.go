package department

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	GetByCode(ctx context.Context, code string) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, d *departmentDatamodel.Department) error
	Update(ctx context.Context, d *departmentDatamodel.Department) error
	Delete(ctx context.Context, id int64) error
	// References counts the users and work entries pointing at a department.
	References(ctx context.Context, id int64) (users int64, entries int64, err error)
}

type Service struct {
	repo   RepositoryAPI
	policy *auth.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter ListFilter) ([]*Department, error) {
	if err := s.policy.Check(actor, auth.ActionViewAny, auth.ForKind(auth.KindDepartment)); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}

	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Department, error) {
	if err := s.policy.Check(actor, auth.ActionView, auth.ForKind(auth.KindDepartment)); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateDepartmentDTO) (*Department, error) {
	if err := s.policy.Check(actor, auth.ActionCreate, auth.ForKind(auth.KindDepartment)); err != nil {
		s.logger.Warn("department create denied", "actor_id", actor.UserID())
		return nil, err
	}

	dto.Name = strings.TrimSpace(dto.Name)
	dto.Code = strings.TrimSpace(dto.Code)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if err := s.ensureCodeAvailable(ctx, dto.Code, 0); err != nil {
		return nil, err
	}

	d := &Department{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		Color:       dto.Color,
		IsActive:    true,
	}
	if d.Color == "" {
		d.Color = DefaultColor
	}
	if dto.IsActive != nil {
		d.IsActive = *dto.IsActive
	}

	row := ToDataModel(d)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create department", "error", err, "code", d.Code)
		return nil, err
	}

	s.logger.Info("department created", "department_id", row.ID, "actor_id", actor.UserID())
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForKind(auth.KindDepartment)); err != nil {
		s.logger.Warn("department update denied", "actor_id", actor.UserID(), "department_id", id)
		return nil, err
	}
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Code != nil {
		code := strings.TrimSpace(*dto.Code)
		if err := s.ensureCodeAvailable(ctx, code, id); err != nil {
			return nil, err
		}
		row.Code = code
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Color != nil {
		row.Color = *dto.Color
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	s.logger.Info("department updated", "department_id", id, "actor_id", actor.UserID())
	return FromDataModel(row), nil
}

// Delete refuses while any user or work entry still references the department.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.policy.Check(actor, auth.ActionDelete, auth.ForKind(auth.KindDepartment)); err != nil {
		s.logger.Warn("department delete denied", "actor_id", actor.UserID(), "department_id", id)
		return err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	users, entries, err := s.repo.References(ctx, id)
	if err != nil {
		s.logger.Error("failed to count department references", "error", err, "department_id", id)
		return err
	}
	if users > 0 || entries > 0 {
		var refs []string
		if users > 0 {
			refs = append(refs, "users")
		}
		if entries > 0 {
			refs = append(refs, "work entries")
		}
		return internal.NewInUseError("department", refs...)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id, "actor_id", actor.UserID())
	return nil
}

// Exists backs foreign-key validation in other packages.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, internal.ErrDepartmentNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) ensureCodeAvailable(ctx context.Context, code string, selfID int64) error {
	existing, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, internal.ErrDepartmentNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return internal.NewValidationFieldError("code", "code has already been taken", internal.ErrCodeDuplicate)
	}
	return nil
}
