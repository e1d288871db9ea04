package worktype

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
)

type RepositoryAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*worktypeDatamodel.WorkType, error)
	GetByID(ctx context.Context, id int64) (*worktypeDatamodel.WorkType, error)
	Create(ctx context.Context, w *worktypeDatamodel.WorkType) error
	Update(ctx context.Context, w *worktypeDatamodel.WorkType) error
	Delete(ctx context.Context, id int64) error
	CountEntries(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	policy *auth.Policy
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.Policy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, activeOnly bool) ([]*WorkType, error) {
	if err := s.policy.Check(actor, auth.ActionViewAny, auth.ForKind(auth.KindWorkType)); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("failed to list work types", "error", err)
		return nil, err
	}

	out := make([]*WorkType, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*WorkType, error) {
	if err := s.policy.Check(actor, auth.ActionView, auth.ForKind(auth.KindWorkType)); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateWorkTypeDTO) (*WorkType, error) {
	if err := s.policy.Check(actor, auth.ActionCreate, auth.ForKind(auth.KindWorkType)); err != nil {
		s.logger.Warn("work type create denied", "actor_id", actor.UserID())
		return nil, err
	}

	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	w := &WorkType{
		Name:     dto.Name,
		Icon:     dto.Icon,
		Color:    dto.Color,
		Order:    dto.Order,
		IsActive: true,
	}
	if w.Color == "" {
		w.Color = DefaultColor
	}
	if dto.IsActive != nil {
		w.IsActive = *dto.IsActive
	}

	row := ToDataModel(w)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create work type", "error", err)
		return nil, err
	}

	s.logger.Info("work type created", "work_type_id", row.ID, "actor_id", actor.UserID())
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateWorkTypeDTO) (*WorkType, error) {
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForKind(auth.KindWorkType)); err != nil {
		s.logger.Warn("work type update denied", "actor_id", actor.UserID(), "work_type_id", id)
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
	if dto.Icon != nil {
		row.Icon = *dto.Icon
	}
	if dto.Color != nil {
		row.Color = *dto.Color
	}
	if dto.Order != nil {
		row.SortOrder = *dto.Order
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update work type", "error", err, "work_type_id", id)
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.policy.Check(actor, auth.ActionDelete, auth.ForKind(auth.KindWorkType)); err != nil {
		s.logger.Warn("work type delete denied", "actor_id", actor.UserID(), "work_type_id", id)
		return err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountEntries(ctx, id)
	if err != nil {
		s.logger.Error("failed to count work type references", "error", err, "work_type_id", id)
		return err
	}
	if n > 0 {
		return internal.NewInUseError("work type", "work entries")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete work type", "error", err, "work_type_id", id)
		return err
	}

	s.logger.Info("work type deleted", "work_type_id", id, "actor_id", actor.UserID())
	return nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, internal.ErrWorkTypeNotFound) {
		return false, nil
	}
	return false, err
}
