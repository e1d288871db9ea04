package workentry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/common/dates"
	"github.com/frahmantamala/worklog/internal/core/common/pagination"
	"github.com/frahmantamala/worklog/internal/core/common/validation"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	"github.com/frahmantamala/worklog/internal/core/events"
	"github.com/frahmantamala/worklog/internal/storage"
)

const (
	MaxHoursPerEntry = 24
	MaxTagLength     = 50
	sniffLen         = 512
)

type RepositoryAPI interface {
	Page(ctx context.Context, c Criteria) ([]*workentryDatamodel.WorkEntry, int64, error)
	Find(ctx context.Context, c Criteria) ([]*workentryDatamodel.WorkEntry, error)
	Totals(ctx context.Context, c Criteria) (Totals, error)
	GetByID(ctx context.Context, id int64) (*workentryDatamodel.WorkEntry, error)
	Create(ctx context.Context, e *workentryDatamodel.WorkEntry) error
	Update(ctx context.Context, e *workentryDatamodel.WorkEntry) error
	Delete(ctx context.Context, id int64, beforeCommit func([]workentryDatamodel.Attachment) error) error
	CreateAttachment(ctx context.Context, a *workentryDatamodel.Attachment) error
	GetAttachment(ctx context.Context, entryID, attachmentID int64) (*workentryDatamodel.Attachment, error)
	DeleteAttachment(ctx context.Context, id int64, beforeCommit func() error) error
}

// Totals is an entry count and hour sum over a Criteria.
type Totals struct {
	Entries int64 `json:"entries"`
	Hours   int64 `json:"hours"`
}

// ReferenceChecker is satisfied by the department, work type and status services.
type ReferenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type References struct {
	Departments ReferenceChecker
	WorkTypes   ReferenceChecker
	Statuses    ReferenceChecker
}

// Clock yields the current business day; settings.Service implements it.
type Clock interface {
	Today(ctx context.Context) time.Time
}

// Upload is one file received for an entry.
type Upload = storage.Upload

type Service struct {
	repo      RepositoryAPI
	refs      References
	clock     Clock
	files     storage.FileStore
	publisher events.Publisher
	policy    *auth.Policy
	logger    *slog.Logger
	maxUpload int64
}

func NewService(
	repo RepositoryAPI,
	refs References,
	clock Clock,
	files storage.FileStore,
	publisher events.Publisher,
	policy *auth.Policy,
	logger *slog.Logger,
	maxUpload int64,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		refs:      refs,
		clock:     clock,
		files:     files,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

func (s *Service) List(ctx context.Context, actor *auth.Actor, filter Filter) (*pagination.Page[*WorkEntry], error) {
	if err := s.policy.Check(actor, auth.ActionViewAny, auth.ForKind(auth.KindWorkEntry)); err != nil {
		return nil, err
	}

	c := Scope(actor, filter)
	rows, total, err := s.repo.Page(ctx, c)
	if err != nil {
		s.logger.Error("failed to list work entries", "error", err)
		return nil, err
	}
	return pagination.New(FromDataModels(rows), total, c.Page, c.PerPage), nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Actor, id int64) (*WorkEntry, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, auth.ActionView, auth.ForWorkEntry(row.ID, row.UserID, row.DepartmentID)); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.Actor, dto CreateWorkEntryDTO) (*WorkEntry, error) {
	if err := s.policy.Check(actor, auth.ActionCreate, auth.ForKind(auth.KindWorkEntry)); err != nil {
		return nil, err
	}

	dto.Title = strings.TrimSpace(dto.Title)
	dto.Location = strings.TrimSpace(dto.Location)
	today := s.clock.Today(ctx)

	v := validation.NewValidator()
	v.Field("hours_spent", dto.HoursSpent).
		MinInt(0, internal.ErrCodeOutOfRange).
		MaxInt(MaxHoursPerEntry, internal.ErrCodeOutOfRange)
	v.Field("tags", dto.Tags).EachMaxLength(MaxTagLength)
	if d, err := dates.Parse(dto.WorkDate); err == nil {
		v.Field("work_date", d).NotAfter(today)
	}
	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return nil, err
	}

	departmentID, err := s.departmentFor(actor, dto.DepartmentID)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &departmentID, &dto.WorkTypeID, &dto.StatusID); err != nil {
		return nil, err
	}

	workDate, _ := dates.Parse(dto.WorkDate)
	entry := &WorkEntry{
		UserID:       actor.ID,
		DepartmentID: departmentID,
		WorkTypeID:   dto.WorkTypeID,
		StatusID:     dto.StatusID,
		WorkDate:     dates.NewDate(workDate),
		Title:        dto.Title,
		Description:  dto.Description,
		HoursSpent:   *dto.HoursSpent,
		KPIMetrics:   dto.KPIMetrics,
		Location:     dto.Location,
		Tags:         cleanTags(dto.Tags),
	}

	row := ToDataModel(entry)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create work entry", "error", err, "user_id", actor.ID)
		return nil, err
	}

	s.publish(ctx, events.NewWorkEntryEvent(events.WorkEntryCreated, actor.ID, row.ID, row.DepartmentID))
	s.logger.Info("work entry created", "work_entry_id", row.ID, "user_id", actor.ID, "department_id", row.DepartmentID)
	return s.reload(ctx, row.ID)
}

func (s *Service) Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateWorkEntryDTO) (*WorkEntry, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForWorkEntry(row.ID, row.UserID, row.DepartmentID)); err != nil {
		s.logger.Warn("work entry update denied", "actor_id", actor.UserID(), "work_entry_id", id)
		return nil, err
	}

	v := validation.NewValidator()
	if dto.HoursSpent != nil {
		v.Field("hours_spent", dto.HoursSpent).
			MinInt(0, internal.ErrCodeOutOfRange).
			MaxInt(MaxHoursPerEntry, internal.ErrCodeOutOfRange)
	}
	if dto.Tags != nil {
		v.Field("tags", *dto.Tags).EachMaxLength(MaxTagLength)
	}
	if dto.WorkDate != nil {
		if d, err := dates.Parse(*dto.WorkDate); err == nil {
			v.Field("work_date", d).NotAfter(s.clock.Today(ctx))
		}
	}
	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return nil, err
	}

	departmentID := row.DepartmentID
	if actor.CanViewAllDepartments() {
		if dto.DepartmentID != nil {
			departmentID = *dto.DepartmentID
		}
	} else {
		departmentID, err = s.departmentFor(actor, nil)
		if err != nil {
			return nil, err
		}
	}

	var deptCheck *int64
	if departmentID != row.DepartmentID {
		deptCheck = &departmentID
	}
	if err := s.checkReferences(ctx, deptCheck, dto.WorkTypeID, dto.StatusID); err != nil {
		return nil, err
	}

	row.DepartmentID = departmentID
	if dto.Title != nil {
		row.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.WorkDate != nil {
		d, _ := dates.Parse(*dto.WorkDate)
		row.WorkDate = dates.Day(d)
	}
	if dto.HoursSpent != nil {
		row.HoursSpent = *dto.HoursSpent
	}
	if dto.WorkTypeID != nil {
		row.WorkTypeID = *dto.WorkTypeID
	}
	if dto.StatusID != nil {
		row.StatusID = *dto.StatusID
	}
	if dto.KPIMetrics != nil {
		row.KPIMetrics = *dto.KPIMetrics
	}
	if dto.Location != nil {
		row.Location = strings.TrimSpace(*dto.Location)
	}
	if dto.Tags != nil {
		row.Tags = cleanTags(*dto.Tags)
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update work entry", "error", err, "work_entry_id", id)
		return nil, err
	}

	s.publish(ctx, events.NewWorkEntryEvent(events.WorkEntryUpdated, actor.ID, row.ID, row.DepartmentID))
	return s.reload(ctx, row.ID)
}

// Delete removes the entry, its attachment rows and its files as one unit. Files are moved to
// the trash inside the transaction and only purged after commit; any failure puts them back.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.Check(actor, auth.ActionDelete, auth.ForWorkEntry(row.ID, row.UserID, row.DepartmentID)); err != nil {
		s.logger.Warn("work entry delete denied", "actor_id", actor.UserID(), "work_entry_id", id)
		return err
	}

	var trashed []storage.Trashed
	restore := func() {
		for i := len(trashed) - 1; i >= 0; i-- {
			if err := trashed[i].Restore(); err != nil {
				s.logger.Error("failed to restore attachment file", "error", err, "work_entry_id", id)
			}
		}
		trashed = nil
	}

	err = s.repo.Delete(ctx, id, func(atts []workentryDatamodel.Attachment) error {
		for _, a := range atts {
			t, err := s.files.Trash(ctx, a.FilePath)
			if err != nil {
				s.logger.Error("failed to move attachment file", "error", err, "path", a.FilePath)
				restore()
				return internal.NewStorageError(err)
			}
			trashed = append(trashed, t)
		}
		return nil
	})
	if err != nil {
		restore()
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to delete work entry", "error", err, "work_entry_id", id)
		return internal.NewStorageError(err)
	}

	for _, t := range trashed {
		if err := t.Purge(); err != nil {
			s.logger.Warn("failed to purge attachment file", "error", err, "work_entry_id", id)
		}
	}

	s.publish(ctx, events.NewWorkEntryEvent(events.WorkEntryDeleted, actor.ID, row.ID, row.DepartmentID))
	s.logger.Info("work entry deleted", "work_entry_id", id, "actor_id", actor.ID, "files", len(trashed))
	return nil
}

// UploadAttachments stores each file and records it against the entry. Sizes are checked up
// front; a file whose row cannot be written is removed again.
func (s *Service) UploadAttachments(ctx context.Context, actor *auth.Actor, id int64, uploads []Upload) ([]*Attachment, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForWorkEntry(row.ID, row.UserID, row.DepartmentID)); err != nil {
		return nil, err
	}

	if len(uploads) == 0 {
		return nil, internal.NewValidationFieldError("files", "At least one file is required", internal.ErrCodeRequired)
	}
	var verrs internal.ValidationErrors
	for i, u := range uploads {
		if u.Size > s.maxUpload {
			verrs.Add(fmt.Sprintf("files.%d", i), fmt.Sprintf("%s exceeds the maximum upload size", u.FileName), internal.ErrCodeFileTooLarge)
		}
	}
	if verrs.HasErrors() {
		return nil, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(verrs)
	}

	dir := fmt.Sprintf("work-entries/%d", id)
	out := make([]*Attachment, 0, len(uploads))
	for i, u := range uploads {
		br := bufio.NewReaderSize(u.Reader, sniffLen)
		mime := u.ContentType
		if mime == "" || mime == "application/octet-stream" {
			head, _ := br.Peek(sniffLen)
			mime = http.DetectContentType(head)
		}

		stored, err := s.files.Put(ctx, dir, u.FileName, br, s.maxUpload)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, internal.NewValidationFieldError(fmt.Sprintf("files.%d", i), fmt.Sprintf("%s exceeds the maximum upload size", u.FileName), internal.ErrCodeFileTooLarge)
			}
			s.logger.Error("failed to store attachment", "error", err, "work_entry_id", id)
			return nil, internal.NewStorageError(err)
		}

		att := &workentryDatamodel.Attachment{
			WorkEntryID: id,
			FileName:    u.FileName,
			FilePath:    stored.Path,
			FileSize:    stored.Size,
			MimeType:    mime,
		}
		if err := s.repo.CreateAttachment(ctx, att); err != nil {
			if derr := s.files.Delete(ctx, stored.Path); derr != nil {
				s.logger.Error("failed to remove orphaned attachment file", "error", derr, "path", stored.Path)
			}
			s.logger.Error("failed to record attachment", "error", err, "work_entry_id", id)
			return nil, err
		}

		s.publish(ctx, events.NewAttachmentEvent(events.AttachmentUploaded, actor.ID, id, att.ID))
		out = append(out, AttachmentFromDataModel(att))
	}

	s.logger.Info("attachments uploaded", "work_entry_id", id, "count", len(out), "actor_id", actor.ID)
	return out, nil
}

func (s *Service) DeleteAttachment(ctx context.Context, actor *auth.Actor, entryID, attachmentID int64) error {
	row, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.policy.Check(actor, auth.ActionUpdate, auth.ForWorkEntry(row.ID, row.UserID, row.DepartmentID)); err != nil {
		return err
	}

	att, err := s.repo.GetAttachment(ctx, entryID, attachmentID)
	if err != nil {
		return err
	}

	var trashed storage.Trashed
	err = s.repo.DeleteAttachment(ctx, att.ID, func() error {
		t, err := s.files.Trash(ctx, att.FilePath)
		if err != nil {
			s.logger.Error("failed to move attachment file", "error", err, "path", att.FilePath)
			return internal.NewStorageError(err)
		}
		trashed = t
		return nil
	})
	if err != nil {
		if trashed != nil {
			if rerr := trashed.Restore(); rerr != nil {
				s.logger.Error("failed to restore attachment file", "error", rerr, "path", att.FilePath)
			}
		}
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		s.logger.Error("failed to delete attachment", "error", err, "attachment_id", att.ID)
		return internal.NewStorageError(err)
	}
	if err := trashed.Purge(); err != nil {
		s.logger.Warn("failed to purge attachment file", "error", err, "path", att.FilePath)
	}

	s.publish(ctx, events.NewAttachmentEvent(events.AttachmentDeleted, actor.ID, entryID, att.ID))
	return nil
}

// departmentFor picks the department an entry is billed to. Actors limited to their own
// department always get it; others may choose, defaulting to their own.
func (s *Service) departmentFor(actor *auth.Actor, requested *int64) (int64, error) {
	if actor.CanViewAllDepartments() && requested != nil {
		return *requested, nil
	}
	if d := actor.Department(); d != 0 {
		return d, nil
	}
	return 0, internal.NewValidationFieldError("department_id", "Department id is required", internal.ErrCodeRequired)
}

func (s *Service) checkReferences(ctx context.Context, departmentID, workTypeID, statusID *int64) error {
	var verrs internal.ValidationErrors
	checks := []struct {
		field   string
		id      *int64
		checker ReferenceChecker
	}{
		{"department_id", departmentID, s.refs.Departments},
		{"work_type_id", workTypeID, s.refs.WorkTypes},
		{"status_id", statusID, s.refs.Statuses},
	}
	for _, c := range checks {
		if c.id == nil || c.checker == nil {
			continue
		}
		ok, err := c.checker.Exists(ctx, *c.id)
		if err != nil {
			return err
		}
		if !ok {
			verrs.Add(c.field, fmt.Sprintf("The selected %s is invalid", strings.ReplaceAll(c.field, "_", " ")), internal.ErrCodeInvalidReference)
		}
	}
	if verrs.HasErrors() {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(verrs)
	}
	return nil
}

func (s *Service) reload(ctx context.Context, id int64) (*WorkEntry, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", e.EventType())
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
