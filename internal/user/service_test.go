package user_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
	"github.com/frahmantamala/worklog/internal/core/database"
	departmentDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/department"
	statusDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/status"
	workentryDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/workentry"
	worktypeDatamodel "github.com/frahmantamala/worklog/internal/core/datamodel/worktype"
	"github.com/frahmantamala/worklog/internal/department"
	departmentPostgres "github.com/frahmantamala/worklog/internal/department/postgres"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/internal/user"
	userPostgres "github.com/frahmantamala/worklog/internal/user/postgres"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

const pngHeader = "\x89PNG\r\n\x1a\n"

func avatarUpload(body string) storage.Upload {
	return storage.Upload{FileName: "me.png", ContentType: "image/png", Size: int64(len(body)), Reader: strings.NewReader(body)}
}

var _ = Describe("User Service", func() {
	var (
		db      *gorm.DB
		fs      afero.Fs
		service *user.Service
		hasher  *auth.PasswordHasher
		ctx     context.Context

		itID, hrID int64
		admin      *auth.Actor
	)

	BeforeEach(func() {
		handles, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(handles.Close)
		db = handles.Gorm

		it := &departmentDatamodel.Department{Name: "IT Department", Code: "IT", Color: "#3B82F6", IsActive: true}
		hr := &departmentDatamodel.Department{Name: "HR Department", Code: "HR", Color: "#10B981", IsActive: true}
		Expect(db.Create(it).Error).To(Succeed())
		Expect(db.Create(hr).Error).To(Succeed())
		itID, hrID = it.ID, hr.ID

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		policy := auth.NewPolicy()
		hasher = auth.NewPasswordHasher(4)
		departments := department.NewService(departmentPostgres.NewDepartmentRepository(db), policy, slogger)
		fs = afero.NewMemMapFs()
		service = user.NewService(userPostgres.NewUserRepository(db), departments, hasher, policy, storage.New(fs), slogger)
		ctx = context.Background()
		admin = &auth.Actor{ID: 1000, Role: auth.RoleAdmin}
	})

	create := func(name, email, role string, departmentID int64) *user.User {
		u, err := service.Create(ctx, admin, user.CreateUserDTO{
			Name: name, Email: email, Password: "password123", Role: role, DepartmentID: int64Ptr(departmentID),
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	actorFor := func(u *user.User) *auth.Actor {
		return &auth.Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, DepartmentID: u.DepartmentID}
	}

	Describe("Create", func() {
		It("hashes the password, lowercases the email and loads the department", func() {
			u := create("IT Manager", "  IT.Manager@Example.com ", "department_owner", itID)

			Expect(u.Email).To(Equal("it.manager@example.com"))
			Expect(u.IsActive).To(BeTrue())
			Expect(hasher.Verify(u.PasswordHash, "password123")).To(BeTrue())
			Expect(u.Department).NotTo(BeNil())
			Expect(u.Department.Code).To(Equal("IT"))
		})

		It("rejects an email that is already taken", func() {
			create("First", "dup@example.com", "cto", itID)

			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				Name: "Second", Email: "DUP@example.com", Password: "password123", Role: "cto",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("email"))
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeDuplicate)))
		})

		It("rejects an unknown department", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				Name: "Ghost", Email: "ghost@example.com", Password: "password123", Role: "cto", DepartmentID: int64Ptr(999),
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("department_id"))
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidReference)))
		})

		It("rejects roles outside the closed set", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				Name: "Guest", Email: "guest@example.com", Password: "password123", Role: "guest",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			create("Alice", "alice@example.com", "department_owner", itID)
			create("Bob", "bob@example.com", "department_owner", hrID)
			create("Carol", "carol@example.com", "cto", itID)
		})

		It("shows every department to the CTO", func() {
			page, err := service.List(ctx, &auth.Actor{ID: 1, Role: auth.RoleCTO}, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(3))
			Expect(page.Data[0].Name).To(Equal("Alice"))
		})

		It("scopes department owners to their own department", func() {
			owner := &auth.Actor{ID: 1, Role: auth.RoleDepartmentOwner, DepartmentID: int64Ptr(hrID)}
			page, err := service.List(ctx, owner, user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(1))
			Expect(page.Data[0].Name).To(Equal("Bob"))
		})

		It("ignores a department filter that tries to widen an owner's scope", func() {
			owner := &auth.Actor{ID: 1, Role: auth.RoleDepartmentOwner, DepartmentID: int64Ptr(hrID)}
			page, err := service.List(ctx, owner, user.ListFilter{DepartmentID: int64Ptr(itID)})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Name).To(Equal("Bob"))
		})

		It("searches by name or email and paginates", func() {
			page, err := service.List(ctx, admin, user.ListFilter{Search: "CAROL"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Data).To(HaveLen(1))

			page, err = service.List(ctx, admin, user.ListFilter{PerPage: 2, Page: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Total).To(BeEquivalentTo(3))
			Expect(page.LastPage).To(Equal(2))
			Expect(page.Data).To(HaveLen(1))
			Expect(page.Data[0].Name).To(Equal("Carol"))
		})
	})

	Describe("Update", func() {
		It("lets users edit themselves but not their role", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)
			self := actorFor(u)

			updated, err := service.Update(ctx, self, u.ID, user.UpdateUserDTO{Name: strPtr("Alice Smith")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Alice Smith"))

			_, err = service.Update(ctx, self, u.ID, user.UpdateUserDTO{Role: strPtr("admin")})
			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		})

		It("lets admins move users between departments", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)

			updated, err := service.Update(ctx, admin, u.ID, user.UpdateUserDTO{DepartmentID: int64Ptr(hrID)})
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.DepartmentID).To(Equal(hrID))
			Expect(updated.Department.Code).To(Equal("HR"))
		})

		It("forbids editing someone else without admin rights", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)
			other := create("Bob", "bob@example.com", "department_owner", itID)

			_, err := service.Update(ctx, actorFor(other), u.ID, user.UpdateUserDTO{Name: strPtr("Mallory")})
			Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		})
	})

	Describe("UpdateProfile", func() {
		var (
			u    *user.User
			self *auth.Actor
		)

		BeforeEach(func() {
			u = create("Alice", "alice@example.com", "cto", itID)
			self = actorFor(u)
		})

		It("requires the current password to change the password", func() {
			_, err := service.UpdateProfile(ctx, self, user.UpdateProfileDTO{Password: "newpassword"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Field).To(Equal("current_password"))

			_, err = service.UpdateProfile(ctx, self, user.UpdateProfileDTO{Password: "newpassword", CurrentPassword: "wrong-password"})
			Expect(err).To(HaveOccurred())
		})

		It("changes the password when the current one matches", func() {
			updated, err := service.UpdateProfile(ctx, self, user.UpdateProfileDTO{
				Password: "newpassword", CurrentPassword: "password123", Phone: strPtr(" 555-0100 "),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Phone).To(Equal("555-0100"))
			Expect(hasher.Verify(updated.PasswordHash, "newpassword")).To(BeTrue())
		})

		It("returns the actor's own record from Me", func() {
			me, err := service.Me(ctx, self)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.ID).To(Equal(u.ID))
			Expect(me.Department.Name).To(Equal("IT Department"))
		})
	})

	Describe("UploadAvatar", func() {
		var (
			u    *user.User
			self *auth.Actor
		)

		BeforeEach(func() {
			u = create("Alice", "alice@example.com", "cto", itID)
			self = actorFor(u)
		})

		exists := func(p string) bool {
			ok, err := afero.Exists(fs, p)
			Expect(err).NotTo(HaveOccurred())
			return ok
		}

		It("stores the avatar and removes the one it replaces", func() {
			first, err := service.UploadAvatar(ctx, self, avatarUpload(pngHeader+"first"))
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Avatar).To(HavePrefix("avatars/"))
			Expect(exists(first.Avatar)).To(BeTrue())

			second, err := service.UploadAvatar(ctx, self, avatarUpload(pngHeader+"second"))
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Avatar).NotTo(Equal(first.Avatar))
			Expect(exists(first.Avatar)).To(BeFalse())
			Expect(exists(second.Avatar)).To(BeTrue())

			me, err := service.Me(ctx, self)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Avatar).To(Equal(second.Avatar))
		})

		It("rejects a file that is not an image and keeps the current avatar", func() {
			current, err := service.UploadAvatar(ctx, self, avatarUpload(pngHeader+"current"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UploadAvatar(ctx, self, storage.Upload{FileName: "me.png", Size: 9, Reader: strings.NewReader("not image")})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("avatar"))
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidFormat)))

			me, err := service.Me(ctx, self)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Avatar).To(Equal(current.Avatar))
			Expect(exists(current.Avatar)).To(BeTrue())
		})

		It("rejects avatars over the image limit", func() {
			big := avatarUpload(pngHeader)
			big.Size = storage.ImageLimit + 1
			_, err := service.UploadAvatar(ctx, self, big)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeFileTooLarge)))
		})

		It("reports a storage failure when the file cannot be written", func() {
			readOnly := user.NewService(userPostgres.NewUserRepository(db), nil, hasher, auth.NewPolicy(), storage.New(afero.NewReadOnlyFs(fs)), slog.New(slog.NewTextHandler(io.Discard, nil)))
			_, err := readOnly.UploadAvatar(ctx, self, avatarUpload(pngHeader+"pixels"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStorageFailure))

			me, err := service.Me(ctx, self)
			Expect(err).NotTo(HaveOccurred())
			Expect(me.Avatar).To(BeEmpty())
		})

		It("requires an authenticated actor", func() {
			_, err := service.UploadAvatar(ctx, nil, avatarUpload(pngHeader))
			Expect(errors.Is(err, internal.ErrUnauthenticated)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("refuses self deletion before checking permissions", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)
			err := service.Delete(ctx, actorFor(u), u.ID)
			Expect(errors.Is(err, internal.ErrSelfDelete)).To(BeTrue())
		})

		It("refuses while the user owns work entries", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)
			wt := &worktypeDatamodel.WorkType{Name: "Development", Color: "#3B82F6", IsActive: true}
			st := &statusDatamodel.Status{Name: "Pending", Color: "#6B7280"}
			Expect(db.Create(wt).Error).To(Succeed())
			Expect(db.Create(st).Error).To(Succeed())
			Expect(db.Create(&workentryDatamodel.WorkEntry{
				UserID: u.ID, DepartmentID: itID, WorkTypeID: wt.ID, StatusID: st.ID,
				WorkDate: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), Title: "API", Description: "Build API", HoursSpent: 8,
			}).Error).To(Succeed())

			err := service.Delete(ctx, admin, u.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInUse))
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		})

		It("deletes a user without entries", func() {
			u := create("Alice", "alice@example.com", "department_owner", itID)
			Expect(service.Delete(ctx, admin, u.ID)).To(Succeed())

			_, err := service.Get(ctx, admin, u.ID)
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})
	})
})
