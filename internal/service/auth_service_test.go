package service

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
)

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx      context.Context
		userRepo *memUserRepo
		svc      *AuthService
	)

	registerInput := func(email string) RegisterInput {
		return RegisterInput{
			Name:     "Alice Smith",
			Email:    email,
			Password: "s3cret!",
		}
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		userRepo = newMemUserRepo(newMemClock())
		cfg := &config.Config{}
		cfg.Auth.AccessSecret = "access-secret"
		cfg.Auth.RefreshSecret = "refresh-secret"
		cfg.Auth.AccessTokenTTLMinutes = 60
		cfg.Auth.RefreshTokenTTLMinutes = 7 * 24 * 60
		cfg.Auth.BcryptCost = bcrypt.MinCost
		svc = NewAuthService(cfg, AuthDependencies{UserRepo: userRepo})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("creates an active account with the Employee role by default", func() {
			user, tokens, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Role).To(gomega.Equal(domain.RoleEmployee))
			gomega.Expect(user.Status).To(gomega.Equal(domain.UserStatusActive))
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("lowercases the email before storing it", func() {
			user, _, err := svc.Register(ctx, registerInput("Alice@Example.COM"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Email).To(gomega.Equal("alice@example.com"))
		})

		ginkgo.It("rejects a duplicate email and creates no second record", func() {
			_, _, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, _, err = svc.Register(ctx, registerInput("ALICE@example.com"))
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))

			users, err := userRepo.List(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(1))
		})

		ginkgo.It("rejects a password shorter than 6 characters", func() {
			input := registerInput("short@example.com")
			input.Password = "12345"
			_, _, err := svc.Register(ctx, input)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("rejects an unknown role", func() {
			input := registerInput("role@example.com")
			input.Role = domain.Role("Superuser")
			_, _, err := svc.Register(ctx, input)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("rejects a malformed phone number", func() {
			input := registerInput("phone@example.com")
			input.Phone = "call-me-maybe"
			_, _, err := svc.Register(ctx, input)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.BeforeEach(func() {
			_, _, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("authenticates valid credentials", func() {
			user, tokens, err := svc.Login(ctx, "alice@example.com", "s3cret!")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(user.Email).To(gomega.Equal("alice@example.com"))
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("returns 401 for a wrong password", func() {
			_, _, err := svc.Login(ctx, "alice@example.com", "not-it")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 401 for an unknown email", func() {
			_, _, err := svc.Login(ctx, "ghost@example.com", "s3cret!")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 403 for an inactive account even with the right password", func() {
			user, err := userRepo.GetByEmail(ctx, "alice@example.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			user.Status = domain.UserStatusInactive
			gomega.Expect(userRepo.Update(ctx, user)).To(gomega.Succeed())

			_, _, err = svc.Login(ctx, "alice@example.com", "s3cret!")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("RefreshToken", func() {
		ginkgo.It("exchanges a valid refresh token for a working access token", func() {
			user, tokens, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			access, _, err := svc.RefreshToken(ctx, tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := svc.TokenManager().ParseAccessToken(access)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(user.ID))
		})

		ginkgo.It("returns 401 for a garbage token", func() {
			_, _, err := svc.RefreshToken(ctx, "not-a-jwt")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 401 when an access token is presented as a refresh token", func() {
			_, tokens, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, _, err = svc.RefreshToken(ctx, tokens.AccessToken)
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("ChangePassword", func() {
		ginkgo.It("requires the current password and accepts the new one afterwards", func() {
			user, _, err := svc.Register(ctx, registerInput("alice@example.com"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			err = svc.ChangePassword(ctx, user.ID, "wrong", "brand-new-pass")
			gomega.Expect(httpStatusOf(err)).To(gomega.Equal(http.StatusUnauthorized))

			gomega.Expect(svc.ChangePassword(ctx, user.ID, "s3cret!", "brand-new-pass")).To(gomega.Succeed())

			_, _, err = svc.Login(ctx, "alice@example.com", "brand-new-pass")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})
	})
})
