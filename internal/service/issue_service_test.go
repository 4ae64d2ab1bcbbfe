package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func httpStatusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

var _ = ginkgo.Describe("IssueService", func() {
	var (
		ctx         context.Context
		userRepo    *memUserRepo
		issueRepo   *memIssueRepo
		commentRepo *memCommentRepo
		svc         *IssueService

		employee   *domain.User
		intruder   *domain.User
		technician *domain.User
		admin      *domain.User
	)

	seedUser := func(name string, role domain.Role) *domain.User {
		user := &domain.User{
			Name:         name,
			Email:        strings.ToLower(name) + "@example.com",
			PasswordHash: "x",
			Role:         role,
			Status:       domain.UserStatusActive,
		}
		gomega.Expect(userRepo.Create(ctx, user)).To(gomega.Succeed())
		return user
	}

	createIssue := func(reporter *domain.User, title string) *domain.Issue {
		issue, err := svc.Create(ctx, reporter, IssueCreateInput{
			Title:       title,
			Description: "the " + title + " is broken",
			Category:    domain.CategoryIT,
			Location:    "Building A",
		})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return issue
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		clock := newMemClock()
		userRepo = newMemUserRepo(clock)
		issueRepo = newMemIssueRepo(clock)
		commentRepo = newMemCommentRepo(clock)
		svc = NewIssueService(IssueDependencies{
			IssueRepo:   issueRepo,
			CommentRepo: commentRepo,
			UserRepo:    userRepo,
			Dispatcher:  events.NewInMemoryDispatcher(),
		})

		employee = seedUser("alice", domain.RoleEmployee)
		intruder = seedUser("bob", domain.RoleEmployee)
		technician = seedUser("tariq", domain.RoleTechnician)
		admin = seedUser("ada", domain.RoleAdmin)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("forces Pending status and the caller as reporter", func() {
			issue := createIssue(employee, "projector")

			gomega.Expect(issue.Status).To(gomega.Equal(domain.IssueStatusPending))
			gomega.Expect(issue.ReportedBy).To(gomega.Equal(employee.ID))
			gomega.Expect(issue.AssignedTo).To(gomega.BeNil())
			gomega.Expect(issue.Comments).To(gomega.BeEmpty())
		})

		ginkgo.It("defaults priority to Medium when omitted", func() {
			issue := createIssue(employee, "printer")
			gomega.Expect(issue.Priority).To(gomega.Equal(domain.PriorityMedium))
		})

		ginkgo.It("rejects a blank title", func() {
			_, err := svc.Create(ctx, employee, IssueCreateInput{
				Title:       "   ",
				Description: "something",
				Category:    domain.CategoryIT,
				Location:    "here",
			})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("rejects a title over 200 characters", func() {
			_, err := svc.Create(ctx, employee, IssueCreateInput{
				Title:       strings.Repeat("a", 201),
				Description: "something",
				Category:    domain.CategoryIT,
				Location:    "here",
			})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("rejects an unknown category", func() {
			_, err := svc.Create(ctx, employee, IssueCreateInput{
				Title:       "desk",
				Description: "wobbly",
				Category:    domain.IssueCategory("Gardening"),
				Location:    "here",
			})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("round-trips through GetByID", func() {
			created := createIssue(employee, "router")

			fetched, err := svc.GetByID(ctx, employee, created.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(fetched.ID).To(gomega.Equal(created.ID))
			gomega.Expect(fetched.Title).To(gomega.Equal(created.Title))
			gomega.Expect(fetched.Description).To(gomega.Equal(created.Description))
			gomega.Expect(fetched.Status).To(gomega.Equal(domain.IssueStatusPending))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("shows an employee only their own issues", func() {
			mine := createIssue(employee, "laptop")
			createIssue(intruder, "chair")

			issues, err := svc.List(ctx, employee, IssueListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issues).To(gomega.HaveLen(1))
			gomega.Expect(issues[0].ID).To(gomega.Equal(mine.ID))
		})

		ginkgo.It("shows a technician only issues assigned to them", func() {
			assigned := createIssue(employee, "server")
			createIssue(employee, "monitor")
			_, err := svc.Assign(ctx, admin, assigned.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			issues, err := svc.List(ctx, technician, IssueListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issues).To(gomega.HaveLen(1))
			gomega.Expect(issues[0].ID).To(gomega.Equal(assigned.ID))
		})

		ginkgo.It("shows an admin everything, newest first", func() {
			first := createIssue(employee, "kettle")
			second := createIssue(intruder, "window")

			issues, err := svc.List(ctx, admin, IssueListFilter{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issues).To(gomega.HaveLen(2))
			gomega.Expect(issues[0].ID).To(gomega.Equal(second.ID))
			gomega.Expect(issues[1].ID).To(gomega.Equal(first.ID))
		})

		ginkgo.It("applies a status filter inside the visibility scope", func() {
			pending := createIssue(employee, "door")
			assigned := createIssue(employee, "light")
			_, err := svc.Assign(ctx, admin, assigned.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			status := domain.IssueStatusPending
			issues, err := svc.List(ctx, employee, IssueListFilter{Status: &status})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issues).To(gomega.HaveLen(1))
			gomega.Expect(issues[0].ID).To(gomega.Equal(pending.ID))
		})

		ginkgo.It("matches a search term against title, description and location", func() {
			createIssue(employee, "coffee machine")
			createIssue(employee, "fan")

			term := "coffee"
			issues, err := svc.List(ctx, employee, IssueListFilter{Search: &term})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issues).To(gomega.HaveLen(1))
			gomega.Expect(issues[0].Title).To(gomega.Equal("coffee machine"))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("denies an employee who did not report the issue", func() {
			issue := createIssue(employee, "scanner")

			_, err := svc.GetByID(ctx, intruder, issue.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("denies a technician not assigned to the issue", func() {
			issue := createIssue(employee, "ac unit")

			_, err := svc.GetByID(ctx, technician, issue.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("returns 404 for an unknown id", func() {
			_, err := svc.GetByID(ctx, admin, "00000000-0000-0000-0000-000000000000")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("lets the reporter change descriptive fields", func() {
			issue := createIssue(employee, "badge reader")

			title := "badge reader at gate 2"
			updated, err := svc.Update(ctx, employee, issue.ID, IssueUpdateInput{Title: &title})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Title).To(gomega.Equal(title))
		})

		ginkgo.It("denies an employee updating someone else's issue", func() {
			issue := createIssue(employee, "whiteboard")

			title := "hijacked"
			_, err := svc.Update(ctx, intruder, issue.ID, IssueUpdateInput{Title: &title})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))

			unchanged, err := svc.GetByID(ctx, employee, issue.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unchanged.Title).To(gomega.Equal("whiteboard"))
		})

		ginkgo.It("rejects an employee trying to set status, without partial application", func() {
			issue := createIssue(employee, "elevator")

			title := "elevator stuck"
			status := domain.IssueStatusCompleted
			_, err := svc.Update(ctx, employee, issue.ID, IssueUpdateInput{Title: &title, Status: &status})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))

			unchanged, err := svc.GetByID(ctx, employee, issue.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unchanged.Title).To(gomega.Equal("elevator"))
			gomega.Expect(unchanged.Status).To(gomega.Equal(domain.IssueStatusPending))
		})

		ginkgo.It("lets an admin set status and resolution notes", func() {
			issue := createIssue(employee, "fuse box")

			status := domain.IssueStatusRejected
			notes := "duplicate of an earlier report"
			updated, err := svc.Update(ctx, admin, issue.ID, IssueUpdateInput{Status: &status, ResolutionNotes: &notes})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(domain.IssueStatusRejected))
			gomega.Expect(updated.ResolutionNotes).NotTo(gomega.BeNil())
			gomega.Expect(*updated.ResolutionNotes).To(gomega.Equal(notes))
		})

		ginkgo.It("rejects an invalid priority value", func() {
			issue := createIssue(employee, "carpet")

			bad := domain.IssuePriority("Extreme")
			_, err := svc.Update(ctx, employee, issue.ID, IssueUpdateInput{Priority: &bad})
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Assign", func() {
		ginkgo.It("binds the technician and advances status to Assigned", func() {
			issue := createIssue(employee, "rack")

			assigned, err := svc.Assign(ctx, admin, issue.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(assigned.Status).To(gomega.Equal(domain.IssueStatusAssigned))
			gomega.Expect(assigned.AssignedTo).NotTo(gomega.BeNil())
			gomega.Expect(*assigned.AssignedTo).To(gomega.Equal(technician.ID))
		})

		ginkgo.It("rejects assignment to a non-technician and leaves the issue unchanged", func() {
			issue := createIssue(employee, "switchboard")

			_, err := svc.Assign(ctx, admin, issue.ID, intruder.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))

			unchanged, err := svc.GetByID(ctx, admin, issue.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unchanged.Status).To(gomega.Equal(domain.IssueStatusPending))
			gomega.Expect(unchanged.AssignedTo).To(gomega.BeNil())
		})

		ginkgo.It("rejects an unknown technician id", func() {
			issue := createIssue(employee, "boiler")

			_, err := svc.Assign(ctx, admin, issue.ID, "00000000-0000-0000-0000-000000000000")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("returns 404 for an unknown issue", func() {
			_, err := svc.Assign(ctx, admin, "00000000-0000-0000-0000-000000000000", technician.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("UpdateStatus", func() {
		var issue *domain.Issue

		ginkgo.BeforeEach(func() {
			issue = createIssue(employee, "hvac")
			var err error
			issue, err = svc.Assign(ctx, admin, issue.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("lets the assignee move the issue forward and record notes", func() {
			notes := "replaced the compressor"
			updated, err := svc.UpdateStatus(ctx, technician, issue.ID, domain.IssueStatusCompleted, &notes)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(updated.Status).To(gomega.Equal(domain.IssueStatusCompleted))
			gomega.Expect(updated.ResolutionNotes).NotTo(gomega.BeNil())
			gomega.Expect(*updated.ResolutionNotes).To(gomega.Equal(notes))
		})

		ginkgo.It("denies a technician who is not the assignee and leaves status intact", func() {
			other := seedUser("tessa", domain.RoleTechnician)

			_, err := svc.UpdateStatus(ctx, other, issue.ID, domain.IssueStatusInProgress, nil)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))

			unchanged, err := svc.GetByID(ctx, admin, issue.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(unchanged.Status).To(gomega.Equal(domain.IssueStatusAssigned))
		})

		ginkgo.It("rejects an unknown status value", func() {
			_, err := svc.UpdateStatus(ctx, technician, issue.ID, domain.IssueStatus("Archived"), nil)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AddComment", func() {
		ginkgo.It("appends comments in order for participants", func() {
			issue := createIssue(employee, "sink")
			_, err := svc.Assign(ctx, admin, issue.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = svc.AddComment(ctx, employee, issue.ID, "still leaking")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			_, err = svc.AddComment(ctx, technician, issue.ID, "on my way")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			withComments, err := svc.AddComment(ctx, admin, issue.ID, "prioritized")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(withComments.Comments).To(gomega.HaveLen(3))
			gomega.Expect(withComments.Comments[0].Text).To(gomega.Equal("still leaking"))
			gomega.Expect(withComments.Comments[0].AuthorID).To(gomega.Equal(employee.ID))
			gomega.Expect(withComments.Comments[1].Text).To(gomega.Equal("on my way"))
			gomega.Expect(withComments.Comments[2].Text).To(gomega.Equal("prioritized"))
		})

		ginkgo.It("denies a non-participant", func() {
			issue := createIssue(employee, "fridge")

			_, err := svc.AddComment(ctx, intruder, issue.ID, "me too")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("rejects a comment over 1000 characters", func() {
			issue := createIssue(employee, "shelf")

			_, err := svc.AddComment(ctx, employee, issue.ID, strings.Repeat("x", 1001))
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("removes the issue", func() {
			issue := createIssue(employee, "cabinet")

			gomega.Expect(svc.Delete(ctx, admin, issue.ID)).To(gomega.Succeed())

			_, err := svc.GetByID(ctx, admin, issue.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("returns 404 on a second delete", func() {
			issue := createIssue(employee, "lamp")

			gomega.Expect(svc.Delete(ctx, admin, issue.ID)).To(gomega.Succeed())
			err := svc.Delete(ctx, admin, issue.ID)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("full lifecycle", func() {
		ginkgo.It("walks an issue from report to completion", func() {
			issue := createIssue(employee, "ac broken in room 4")

			issue, err := svc.Assign(ctx, admin, issue.ID, technician.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issue.Status).To(gomega.Equal(domain.IssueStatusAssigned))

			issue, err = svc.UpdateStatus(ctx, technician, issue.ID, domain.IssueStatusInProgress, nil)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issue.Status).To(gomega.Equal(domain.IssueStatusInProgress))

			notes := "recharged refrigerant"
			issue, err = svc.UpdateStatus(ctx, technician, issue.ID, domain.IssueStatusCompleted, &notes)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(issue.Status).To(gomega.Equal(domain.IssueStatusCompleted))

			final, err := svc.GetByID(ctx, employee, issue.ID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(final.ResolutionNotes).NotTo(gomega.BeNil())
			gomega.Expect(*final.ResolutionNotes).To(gomega.Equal(notes))
		})
	})
})
