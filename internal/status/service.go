package status

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*statusDatamodel.Status, error)
	GetByID(ctx context.Context, id int64) (*statusDatamodel.Status, error)
	Create(ctx context.Context, s *statusDatamodel.Status) error
	Update(ctx context.Context, s *statusDatamodel.Status) error
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

func (s *Service) List(ctx context.Context, actor *auth.Actor) ([]*Status, error) {
	if err := s.policy.Check(actor, auth.ActionViewAny, auth.ForKind(auth.KindStatus)); err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list statuses", "error", err)
		return nil, err
	}

	out := make([]*Status, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*Status, error) {
	if err := s.policy.Check(actor, auth.ActionView, auth.ForKind(auth.KindStatus)); err != nil {
		return nil, err
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateStatusDTO) (*Status, error) {
	if err := s.policy.Check(actor, auth.ActionCreate, auth.ForKind(auth.KindStatus)); err != nil {
		s.logger.Warn("status create denied", "actor_id", actor.UserID())
		return nil, err
	}

	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	st := &Status{
		Name:    dto.Name,
		Color:   dto.Color,
		Order:   dto.Order,
		IsFinal: dto.IsFinal,
	}
	if st.Color == "" {
		st.Color = DefaultColor
	}

	row := ToDataModel(st)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create status", "error", err)
		return nil, err
	}

	s.logger.Info("status created", "status_id", row.ID, "actor_id", actor.UserID())
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateStatusDTO) (*Status, error) {
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForKind(auth.KindStatus)); err != nil {
		s.logger.Warn("status update denied", "actor_id", actor.UserID(), "status_id", id)
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
	if dto.Color != nil {
		row.Color = *dto.Color
	}
	if dto.Order != nil {
		row.SortOrder = *dto.Order
	}
	if dto.IsFinal != nil {
		row.IsFinal = *dto.IsFinal
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update status", "error", err, "status_id", id)
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if err := s.policy.Check(actor, auth.ActionDelete, auth.ForKind(auth.KindStatus)); err != nil {
		s.logger.Warn("status delete denied", "actor_id", actor.UserID(), "status_id", id)
		return err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountEntries(ctx, id)
	if err != nil {
		s.logger.Error("failed to count status references", "error", err, "status_id", id)
		return err
	}
	if n > 0 {
		return internal.NewInUseError("status", "work entries")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete status", "error", err, "status_id", id)
		return err
	}

	s.logger.Info("status deleted", "status_id", id, "actor_id", actor.UserID())
	return nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, internal.ErrStatusNotFound) {
		return false, nil
	}
	return false, err
}
