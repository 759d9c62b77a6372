package user_services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/finsarthi/internal/auth"
	"github.com/iyunix/finsarthi/internal/database"
	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/repository/user"
)

var testSecret = []byte("test-secret")

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type claimRecorder struct {
	key    string
	userID uint
	err    error
}

func (c *claimRecorder) claim(_ context.Context, key string, userID uint) error {
	c.key, c.userID = key, userID
	return c.err
}

func newTestAuthService(t *testing.T, claim ClaimFunc) *AuthService {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewAuthService(user.NewGormUserRepository(db), testSecret, claim, nopLogger{})
}

func TestSignupIssuesTokenAndClaimsSession(t *testing.T) {
	rec := &claimRecorder{}
	svc := newTestAuthService(t, rec.claim)

	res, err := svc.Signup(context.Background(), SignupInput{
		Name:             "Asha Patil",
		Email:            " Asha@Example.com ",
		Password:         "correct-horse",
		City:             "Pune",
		AdviceSessionKey: "3f1c9a52-8d4e-4b7a-9f3e-2a6b5c7d8e9f",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	require.NotNil(t, res.User.Email)
	assert.Equal(t, "asha@example.com", *res.User.Email)
	assert.NotEqual(t, "correct-horse", res.User.Password)
	assert.True(t, res.Claimed)
	assert.Equal(t, "3f1c9a52-8d4e-4b7a-9f3e-2a6b5c7d8e9f", rec.key)
	assert.Equal(t, res.User.ID, rec.userID)

	id, role, err := auth.ValidateToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)
	assert.Equal(t, "customer", role)
}

func TestSignupSucceedsWhenClaimFails(t *testing.T) {
	rec := &claimRecorder{err: errors.New("already claimed")}
	svc := newTestAuthService(t, rec.claim)

	res, err := svc.Signup(context.Background(), SignupInput{
		Role: domain.RoleCoach, Name: "Kavya Rao", Phone: "+919876543210",
		Password: "coach-password", AdviceSessionKey: "k",
	})
	require.NoError(t, err)
	assert.False(t, res.Claimed)
	assert.Equal(t, domain.RoleCoach, res.User.Role)
	assert.False(t, res.User.IsAvailable)
}

func TestSignupValidation(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	cases := map[string]SignupInput{
		"no identifier":  {Name: "Asha", Password: "long-enough"},
		"bad email":      {Name: "Asha", Email: "asha.example.com", Password: "long-enough"},
		"bad phone":      {Name: "Asha", Phone: "12345", Password: "long-enough"},
		"short password": {Name: "Asha", Email: "a@example.com", Password: "short"},
		"bad role":       {Name: "Asha", Email: "a@example.com", Password: "long-enough", Role: "admin"},
		"short name":     {Name: "A", Email: "a@example.com", Password: "long-enough"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidSignup)
		})
	}
}

func TestSignupRejectsDuplicates(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Name: "Asha", Email: "asha@example.com", Password: "long-enough"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Name: "Other", Email: "ASHA@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLogin(t *testing.T) {
	rec := &claimRecorder{}
	svc := newTestAuthService(t, rec.claim)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, SignupInput{
		Name: "Ravi", Email: "ravi@example.com", Phone: "9876543210", Password: "long-enough",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginInput{Identifier: "ravi@example.com", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)
	assert.False(t, res.Claimed)

	res, err = svc.Login(ctx, LoginInput{Identifier: "9876543210", Password: "long-enough", AdviceSessionKey: "abc"})
	require.NoError(t, err)
	assert.True(t, res.Claimed)
	assert.Equal(t, "abc", rec.key)

	_, err = svc.Login(ctx, LoginInput{Identifier: "ravi@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Identifier: "nobody@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type brokenUsers struct {
	user.UserRepository
	err error
}

func (b brokenUsers) FindByEmail(context.Context, string) (*domain.User, error) { return nil, b.err }
func (b brokenUsers) FindByPhone(context.Context, string) (*domain.User, error) { return nil, b.err }

func TestLoginPropagatesLookupFailures(t *testing.T) {
	outage := errors.New("database is down")
	svc := NewAuthService(brokenUsers{err: outage}, testSecret, nil, nopLogger{})

	for _, identifier := range []string{"ravi@example.com", "9876543210"} {
		_, err := svc.Login(context.Background(), LoginInput{Identifier: identifier, Password: "long-enough"})
		assert.ErrorIs(t, err, outage, identifier)
		assert.NotErrorIs(t, err, ErrInvalidCredentials, identifier)
	}
}

func TestLoginWithMalformedPhoneIsInvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t, nil)

	_, err := svc.Login(context.Background(), LoginInput{Identifier: "not-a-phone", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Identifier: "9876543210", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc := newTestAuthService(t, nil)
	ctx := context.Background()

	res, err := svc.Signup(ctx, SignupInput{Name: "Meera", Email: "meera@example.com", Password: "long-enough"})
	require.NoError(t, err)

	u, err := svc.Profile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", u.Name)

	_, err = svc.Profile(ctx, res.User.ID+100)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
