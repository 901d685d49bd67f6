package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/confirm"
	"yamdb/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "0123456789abcdef0123456789abcdef"

type authTestDeps struct {
	users    *MockUserRepository
	mailer   *MockMailer
	tokens   *confirm.Generator
	issuer   *TokenIssuer
	attempts *stubAttempts
	svc      AuthService
}

// stubAttempts is an in-memory AttemptLimiter.
type stubAttempts struct {
	max      int
	failures map[string]int
}

func (s *stubAttempts) Allow(_ context.Context, key string) (bool, error) {
	return s.failures[key] < s.max, nil
}

func (s *stubAttempts) Fail(_ context.Context, key string) error {
	s.failures[key]++
	return nil
}

func (s *stubAttempts) Reset(_ context.Context, key string) error {
	delete(s.failures, key)
	return nil
}

func newAuthTestService() *authTestDeps {
	d := &authTestDeps{
		users:    new(MockUserRepository),
		mailer:   new(MockMailer),
		tokens:   confirm.NewGenerator("test-confirmation-secret", time.Hour),
		issuer:   NewTokenIssuer(testJWTSecret, time.Hour),
		attempts: &stubAttempts{max: 3, failures: map[string]int{}},
	}
	sender := NewConfirmationSender(d.tokens, d.mailer, discardLogger())
	userSvc := NewUserService(d.users, nil, nil, passthroughTx{}, sender, discardLogger())
	d.svc = NewAuthService(userSvc, d.users, d.tokens, d.issuer, d.attempts, sender, nil, discardLogger())
	return d
}

func TestRegister_SendsConfirmationCode(t *testing.T) {
	d := newAuthTestService()

	var body string
	d.users.On("FindByEmail", mock.Anything, "reader@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
	d.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	d.mailer.On("Send", mock.Anything, "reader@example.com", confirmationSubject, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { body = args.String(3) }).
		Return(nil).Once()

	user, err := d.svc.Register(context.Background(), "reader@example.com")

	require.NoError(t, err)
	assert.False(t, user.IsActive)
	code := strings.TrimPrefix(body, "Your confirmation code: ")
	assert.LessOrEqual(t, len(code), confirm.MaxLength)
	assert.True(t, d.tokens.CheckToken(user, code))
	d.mailer.AssertExpectations(t)
}

func TestRegister_MailFailureIsNotFatal(t *testing.T) {
	d := newAuthTestService()

	d.users.On("FindByEmail", mock.Anything, "reader@example.com").Return(nil, gorm.ErrRecordNotFound).Once()
	d.users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	d.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	_, err := d.svc.Register(context.Background(), "reader@example.com")

	assert.NoError(t, err)
}

func TestExchangeCode_Success(t *testing.T) {
	d := newAuthTestService()
	user := &models.User{ID: "u1", Email: "reader@example.com", Role: models.RoleUser}
	code := d.tokens.MakeToken(user)

	d.users.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil).Once()
	d.users.On("Update", mock.Anything, user).Return(nil).Once()

	token, err := d.svc.ExchangeCode(context.Background(), "reader@EXAMPLE.com", code)

	require.NoError(t, err)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.LastLogin)

	claims, err := d.issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)

	// the code cannot be used a second time
	assert.False(t, d.tokens.CheckToken(user, code))
}

func TestExchangeCode_UnknownEmail(t *testing.T) {
	d := newAuthTestService()
	d.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := d.svc.ExchangeCode(context.Background(), "nobody@example.com", "abc-123")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]string{"email": "no user with such email"}, appErr.Body())
}

func TestExchangeCode_WrongCode(t *testing.T) {
	d := newAuthTestService()
	user := &models.User{ID: "u1", Email: "reader@example.com"}
	d.users.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil).Once()

	_, err := d.svc.ExchangeCode(context.Background(), "reader@example.com", "wrong-code")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]string{"confirmation_code": "wrong code"}, appErr.Body())
	d.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Equal(t, 1, d.attempts.failures["reader@example.com"])
}

func TestExchangeCode_Throttled(t *testing.T) {
	d := newAuthTestService()
	user := &models.User{ID: "u1", Email: "reader@example.com"}
	d.users.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := d.svc.ExchangeCode(context.Background(), "reader@example.com", "nope-nope")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	}

	// even the right code is refused while throttled
	_, err := d.svc.ExchangeCode(context.Background(), "reader@example.com", d.tokens.MakeToken(user))
	assert.True(t, apperr.Is(err, apperr.KindThrottled))
	d.users.AssertExpectations(t)
}

func TestAuthenticate(t *testing.T) {
	d := newAuthTestService()
	active := &models.User{ID: "u1", Role: models.RoleUser, IsActive: true}
	inactive := &models.User{ID: "u2", Role: models.RoleUser}

	activeToken, err := d.issuer.Issue(active)
	require.NoError(t, err)
	inactiveToken, err := d.issuer.Issue(inactive)
	require.NoError(t, err)

	d.users.On("FindByID", mock.Anything, "u1").Return(active, nil).Once()
	d.users.On("FindByID", mock.Anything, "u2").Return(inactive, nil).Once()

	user, err := d.svc.Authenticate(context.Background(), activeToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = d.svc.Authenticate(context.Background(), inactiveToken)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))

	_, err = d.svc.Authenticate(context.Background(), "garbage")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestTokenIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	issuer := NewTokenIssuer(testJWTSecret, time.Minute)
	user := &models.User{ID: "u1", Role: models.RoleUser}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Minute)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
