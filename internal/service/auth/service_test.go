package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/user"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/LoosePrince/Huisheen/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "huisheen.com"

type fakeUserRepo struct {
	byID       map[string]*user.User
	byNotifyID map[string]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:       make(map[string]*user.User),
		byNotifyID: make(map[string]*user.User),
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byNotifyID[u.NotifyID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByNotifyID(ctx context.Context, notifyID string) (*user.User, error) {
	u, ok := f.byNotifyID[notifyID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) RotateNotifyCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	u, ok := f.byID[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.VerificationCode = &code
	u.VerificationCodeExpires = &expiresAt
	return nil
}

func newTestService(t *testing.T, repo user.Repository) auth.Service {
	t.Helper()
	tokens, err := token.NewTokenService("test-secret", "8760h", "720h")
	require.NoError(t, err)
	return NewAuthService(repo, tokens, testDomain)
}

func seedUser(code string, expiresIn time.Duration) *user.User {
	u := &user.User{
		ID:       "user-1",
		Username: "alice",
		NotifyID: "abcd-ef01-2345",
		IsActive: true,
	}
	if code != "" {
		expires := time.Now().Add(expiresIn)
		u.VerificationCode = &code
		u.VerificationCodeExpires = &expires
	}
	return u
}

func TestGenerateNotifyCode(t *testing.T) {
	u := seedUser("", 0)
	repo := newFakeUserRepo(u)
	svc := newTestService(t, repo)

	resp, err := svc.GenerateNotifyCode(context.Background(), u.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.NotifyCode, "notify:user:"+u.NotifyID+":"))
	assert.True(t, strings.HasSuffix(resp.NotifyCode, "@"+testDomain))
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), resp.ExpiresAt, 5*time.Second)
	require.NotNil(t, u.VerificationCode, "code stored on the user")
}

func TestGenerateNotifyCodeRotates(t *testing.T) {
	u := seedUser("OLDOLD", time.Minute)
	repo := newFakeUserRepo(u)
	svc := newTestService(t, repo)

	resp, err := svc.GenerateNotifyCode(context.Background(), u.ID)
	require.NoError(t, err)

	require.NotNil(t, u.VerificationCode)
	assert.NotEqual(t, "OLDOLD", *u.VerificationCode, "previous code replaced")
	assert.Contains(t, resp.NotifyCode, *u.VerificationCode)

	// The replaced code no longer resolves.
	_, err = svc.ResolveNotifyCode(context.Background(), token.FormatNotifyCode(u.NotifyID, "OLDOLD", testDomain))
	assert.ErrorIs(t, err, auth.ErrInvalidNotifyCode)
}

func TestGenerateNotifyCodeDisabledUser(t *testing.T) {
	u := seedUser("", 0)
	u.IsActive = false
	svc := newTestService(t, newFakeUserRepo(u))

	_, err := svc.GenerateNotifyCode(context.Background(), u.ID)
	assert.ErrorIs(t, err, user.ErrUserDisabled)
}

func TestExchangeNotifyCode(t *testing.T) {
	u := seedUser("A1B2C3", 5*time.Minute)
	svc := newTestService(t, newFakeUserRepo(u))

	resp, err := svc.ExchangeNotifyCode(context.Background(), auth.ExchangeNotifyCodeRequest{
		NotifyCode:     token.FormatNotifyCode(u.NotifyID, "A1B2C3", testDomain),
		ThirdPartyName: "Dashboard",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	assert.Equal(t, u.NotifyID, resp.UserInfo.NotifyID)
	assert.Equal(t, "alice", resp.UserInfo.Username)
}

func TestExchangeNotifyCodeRequiresName(t *testing.T) {
	u := seedUser("A1B2C3", 5*time.Minute)
	svc := newTestService(t, newFakeUserRepo(u))

	_, err := svc.ExchangeNotifyCode(context.Background(), auth.ExchangeNotifyCodeRequest{
		NotifyCode: token.FormatNotifyCode(u.NotifyID, "A1B2C3", testDomain),
	})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestResolveNotifyCodeReusableUntilExpiry(t *testing.T) {
	u := seedUser("A1B2C3", 5*time.Minute)
	svc := newTestService(t, newFakeUserRepo(u))
	code := token.FormatNotifyCode(u.NotifyID, "A1B2C3", testDomain)

	for i := 0; i < 3; i++ {
		got, err := svc.ResolveNotifyCode(context.Background(), code)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	}
}

func TestResolveNotifyCodeErrors(t *testing.T) {
	u := seedUser("A1B2C3", 5*time.Minute)
	expired := seedUser("D4E5F6", -time.Minute)
	expired.ID = "user-2"
	expired.NotifyID = "9876-5432-10fe"
	disabled := seedUser("G7H8I9", 5*time.Minute)
	disabled.ID = "user-3"
	disabled.NotifyID = "1111-2222-3333"
	disabled.IsActive = false

	svc := newTestService(t, newFakeUserRepo(u, expired, disabled))

	cases := []struct {
		name string
		code string
		want error
	}{
		{"malformed", "nonsense", auth.ErrInvalidNotifyCode},
		{"unknown notify id", token.FormatNotifyCode("0000-0000-0000", "A1B2C3", testDomain), auth.ErrInvalidNotifyCode},
		{"wrong code", token.FormatNotifyCode(u.NotifyID, "ZZZZZZ", testDomain), auth.ErrInvalidNotifyCode},
		{"expired code", token.FormatNotifyCode(expired.NotifyID, "D4E5F6", testDomain), auth.ErrNotifyCodeExpired},
		{"disabled user", token.FormatNotifyCode(disabled.NotifyID, "G7H8I9", testDomain), user.ErrUserDisabled},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.ResolveNotifyCode(context.Background(), c.code)
			assert.ErrorIs(t, err, c.want)
		})
	}
}
