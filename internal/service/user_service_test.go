package service

import (
	"context"
	"testing"
	"time"

	"github.com/rubaiyatxeren/note-master-service/internal/domain"
	"github.com/rubaiyatxeren/note-master-service/internal/dto"
	"github.com/rubaiyatxeren/note-master-service/pkg/app"
	"github.com/rubaiyatxeren/note-master-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	domain.UserRepository
	users  map[int64]*domain.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (m *mockUserRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	cp := *user
	cp.UID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = time.Now()
	m.nextID++
	m.users[cp.UID] = &cp
	out := cp
	return &out, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, password string, uid int64) error {
	u, ok := m.users[uid]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = password
	return nil
}

func newTestUserService(repo domain.UserRepository, registerEnabled bool) UserService {
	tm := app.NewTokenManager(app.TokenConfig{SecretKey: "test-key", Expiry: time.Hour})
	return NewUserService(repo, tm, zap.NewNop(), &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: registerEnabled},
	})
}

func TestUserRegisterAndLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "alice@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.Token)

	// 密码以哈希存储
	stored := repo.users[user.UID]
	assert.NotEqual(t, "secret123", stored.Password)

	logged, err := svc.Login(ctx, &dto.UserLoginRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, user.UID, logged.UID)
	assert.NotEmpty(t, logged.Token)
}

func TestUserRegisterDisabled(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), false)

	_, err := svc.Register(context.Background(), &dto.UserCreateRequest{
		Email:           "bob@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	assert.Equal(t, code.ErrorUserRegisterIsDisable, err)
}

func TestUserRegisterValidation(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), true)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "not-an-email",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	assert.Equal(t, code.ErrorUserEmailNotValid, err)

	_, err = svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "bob@example.com",
		Password:        "secret123",
		ConfirmPassword: "other",
	}, "")
	assert.Equal(t, code.ErrorUserPasswordNotMatch, err)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	svc := newTestUserService(newMockUserRepo(), true)
	ctx := context.Background()

	req := &dto.UserCreateRequest{
		Email:           "carol@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
	_, err := svc.Register(ctx, req, "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, req, "")
	assert.Equal(t, code.ErrorUserEmailAlreadyExists, err)
}

func TestUserLoginFailures(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "dave@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	require.NoError(t, err)

	// 密码错误和用户不存在返回同一错误码
	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "dave@example.com", Password: "wrong"}, "")
	assert.Equal(t, code.ErrorUserLoginPasswordFailed, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "nobody@example.com", Password: "secret123"}, "")
	assert.Equal(t, code.ErrorUserLoginPasswordFailed, err)
}

func TestUserChangePassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "erin@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.UID, &dto.UserChangePasswordRequest{
		OldPassword:     "secret123",
		Password:        "newsecret",
		ConfirmPassword: "newsecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.UserLoginRequest{Email: "erin@example.com", Password: "newsecret"}, "")
	assert.NoError(t, err)
}

func TestUserExists(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(repo, true)
	ctx := context.Background()

	user, err := svc.Register(ctx, &dto.UserCreateRequest{
		Email:           "frank@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}, "")
	require.NoError(t, err)

	assert.NoError(t, svc.Exists(ctx, user.UID))
	assert.Equal(t, code.ErrorUserNotFound, svc.Exists(ctx, user.UID+100))
}
