package auth_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/auth"
)

func int64Ptr(v int64) *int64 { return &v }

var (
	admin    = &auth.Actor{ID: 1, Role: auth.RoleAdmin, DepartmentID: int64Ptr(10)}
	cto      = &auth.Actor{ID: 2, Role: auth.RoleCTO, DepartmentID: int64Ptr(10)}
	owner    = &auth.Actor{ID: 3, Role: auth.RoleDepartmentOwner, DepartmentID: int64Ptr(20)}
	orphan   = &auth.Actor{ID: 4, Role: auth.RoleDepartmentOwner}
	stranger = &auth.Actor{ID: 5, Role: auth.Role("guest")}
)

var _ = Describe("Policy", func() {
	policy := auth.NewPolicy()

	DescribeTable("lookup tables",
		func(actor *auth.Actor, action auth.Action, expected bool) {
			for _, kind := range []auth.Kind{auth.KindDepartment, auth.KindWorkType, auth.KindStatus} {
				Expect(policy.Authorize(actor, action, auth.ForKind(kind))).To(Equal(expected), string(kind))
			}
		},
		Entry("admin creates", admin, auth.ActionCreate, true),
		Entry("admin deletes", admin, auth.ActionDelete, true),
		Entry("cto views", cto, auth.ActionViewAny, true),
		Entry("cto cannot update", cto, auth.ActionUpdate, false),
		Entry("owner views one", owner, auth.ActionView, true),
		Entry("owner cannot create", owner, auth.ActionCreate, false),
		Entry("unknown role views nothing", stranger, auth.ActionView, false),
	)

	DescribeTable("users",
		func(actor *auth.Actor, action auth.Action, target auth.Target, expected bool) {
			Expect(policy.Authorize(actor, action, target)).To(Equal(expected))
		},
		Entry("anyone views self", owner, auth.ActionView, auth.ForUser(3, int64Ptr(20)), true),
		Entry("owner views own department", owner, auth.ActionView, auth.ForUser(9, int64Ptr(20)), true),
		Entry("owner cannot view other department", owner, auth.ActionView, auth.ForUser(9, int64Ptr(10)), false),
		Entry("owner without department views nobody else", orphan, auth.ActionView, auth.ForUser(9, nil), false),
		Entry("cto views anyone", cto, auth.ActionView, auth.ForUser(9, int64Ptr(30)), true),
		Entry("cto lists everyone", cto, auth.ActionViewAny, auth.ForKind(auth.KindUser), true),
		Entry("owner cannot list everyone", owner, auth.ActionViewAny, auth.ForKind(auth.KindUser), false),
		Entry("only admin creates", cto, auth.ActionCreate, auth.ForKind(auth.KindUser), false),
		Entry("self update", owner, auth.ActionUpdate, auth.ForUser(3, int64Ptr(20)), true),
		Entry("owner cannot update others", owner, auth.ActionUpdate, auth.ForUser(9, int64Ptr(20)), false),
		Entry("admin updates others", admin, auth.ActionUpdate, auth.ForUser(9, nil), true),
		Entry("admin cannot delete self", admin, auth.ActionDelete, auth.ForUser(1, int64Ptr(10)), false),
		Entry("admin deletes others", admin, auth.ActionDelete, auth.ForUser(9, nil), true),
		Entry("cto cannot delete", cto, auth.ActionDelete, auth.ForUser(9, nil), false),
	)

	DescribeTable("work entries",
		func(actor *auth.Actor, action auth.Action, target auth.Target, expected bool) {
			Expect(policy.Authorize(actor, action, target)).To(Equal(expected))
		},
		Entry("cto views any department", cto, auth.ActionView, auth.ForWorkEntry(1, 9, 30), true),
		Entry("owner views own department", owner, auth.ActionView, auth.ForWorkEntry(1, 9, 20), true),
		Entry("owner cannot view other department", owner, auth.ActionView, auth.ForWorkEntry(1, 9, 10), false),
		Entry("orphan owner views nothing", orphan, auth.ActionView, auth.ForWorkEntry(1, 9, 0), false),
		Entry("everyone may create", owner, auth.ActionCreate, auth.ForKind(auth.KindWorkEntry), true),
		Entry("admin updates any", admin, auth.ActionUpdate, auth.ForWorkEntry(1, 9, 30), true),
		Entry("owner updates own entry", owner, auth.ActionUpdate, auth.ForWorkEntry(1, 3, 20), true),
		Entry("owner cannot update colleague entry", owner, auth.ActionUpdate, auth.ForWorkEntry(1, 9, 20), false),
		Entry("cto cannot delete others' entry", cto, auth.ActionDelete, auth.ForWorkEntry(1, 9, 10), false),
		Entry("cto deletes own entry", cto, auth.ActionDelete, auth.ForWorkEntry(1, 2, 10), true),
	)

	It("denies a nil actor", func() {
		Expect(policy.Authorize(nil, auth.ActionView, auth.ForKind(auth.KindStatus))).To(BeFalse())
	})

	It("turns a denial into the forbidden error", func() {
		err := policy.Check(owner, auth.ActionCreate, auth.ForKind(auth.KindDepartment))
		Expect(errors.Is(err, internal.ErrForbidden)).To(BeTrue())
		Expect(policy.Check(admin, auth.ActionCreate, auth.ForKind(auth.KindDepartment))).To(Succeed())
	})
})

var _ = Describe("Role", func() {
	It("parses the closed set", func() {
		for _, name := range auth.RoleNames() {
			role, err := auth.ParseRole(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(role.Valid()).To(BeTrue())
		}
		_, err := auth.ParseRole("superuser")
		Expect(err).To(HaveOccurred())
	})

	It("lets admin and cto see every department", func() {
		Expect(auth.RoleAdmin.CanViewAllDepartments()).To(BeTrue())
		Expect(auth.RoleCTO.CanViewAllDepartments()).To(BeTrue())
		Expect(auth.RoleDepartmentOwner.CanViewAllDepartments()).To(BeFalse())
	})
})
