package rest

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"garmentFactory/business/user"
	"garmentFactory/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input user.RegisterInput) (domain.User, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	args := m.Called(ctx, email, password, ipAddress, userAgent)
	return args.String(0), args.Get(1).(domain.User), args.Error(2)
}

func (m *MockUserService) Logout(ctx context.Context, userID uint, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserService) VerifyEmail(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uint, input user.UpdateProfileInput) (domain.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUserRole(ctx context.Context, actor domain.Actor, id uint, role string) (domain.User, error) {
	args := m.Called(ctx, actor, id, role)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor domain.Actor, id uint) error {
	return m.Called(ctx, actor, id).Error(0)
}

func newUserServer(svc *MockUserService, actor domain.Actor) *echo.Echo {
	h := NewUserHandler(svc, time.Second)
	e := echo.New()
	api := e.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/verify-email/:code", h.VerifyEmail)

	authed := api.Group("", asActor(actor))
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/auth/is-auth", h.IsAuthenticated)
	authed.GET("/user/data", h.GetUserData)
	authed.PUT("/user/:id/role", h.UpdateUserRole)
	authed.DELETE("/user/:id", h.DeleteUser)
	return e
}

func TestRegisterHandler(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, domain.Actor{})

	input := user.RegisterInput{Name: "Ana", Email: "ana@factory.test", Password: "secret1"}
	svc.On("Register", mock.Anything, input).Return(domain.User{ID: 1, Name: "Ana", Email: "ana@factory.test", Role: domain.RoleUser}, nil)

	rec := do(e, http.MethodPost, "/api/auth/register", `{"name":"Ana","email":"ana@factory.test","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user", decodeData(t, rec)["user"].(map[string]any)["role"])

	rec = do(e, http.MethodPost, "/api/auth/register", `{"name":"Ana","email":"nope","password":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec)["details"].(map[string]any)
	assert.Contains(t, details, "Email")
	assert.Contains(t, details, "Password")

	svc.On("Register", mock.Anything, user.RegisterInput{Name: "Bo", Email: "bo@factory.test", Password: "secret1"}).
		Return(domain.User{}, fmt.Errorf("email already exists: %w", domain.ErrConflict))
	rec = do(e, http.MethodPost, "/api/auth/register", `{"name":"Bo","email":"bo@factory.test","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, domain.Actor{})

	svc.On("Login", mock.Anything, "ana@factory.test", "secret1", mock.Anything, mock.Anything).
		Return("jwt-token", domain.User{ID: 1, Name: "Ana", Role: domain.RoleFinance, IsAccountVerified: true}, nil)
	svc.On("Login", mock.Anything, "ana@factory.test", "wrong", mock.Anything, mock.Anything).
		Return("", domain.User{}, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized))

	rec := do(e, http.MethodPost, "/api/auth/login", `{"email":"ana@factory.test","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, "finance", data["user"].(map[string]any)["role"])

	rec = do(e, http.MethodPost, "/api/auth/login", `{"email":"ana@factory.test","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["code"])
}

func TestLogoutHandler_RevokesCurrentToken(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, domain.Actor{UserID: 7, Role: domain.RoleUser})

	svc.On("Logout", mock.Anything, uint(7), "test-token").Return(nil)

	rec := do(e, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestIsAuthenticated(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, domain.Actor{UserID: 7, Role: domain.RoleSales})

	svc.On("GetUserByID", mock.Anything, uint(7)).
		Return(domain.User{ID: 7, Name: "Sam", Email: "sam@factory.test", Role: domain.RoleSales}, nil)

	for _, path := range []string{"/api/auth/is-auth", "/api/user/data"} {
		rec := do(e, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		userData := decodeData(t, rec)["userData"].(map[string]any)
		assert.Equal(t, "sales", userData["role"])
		assert.Equal(t, float64(7), userData["_id"])
	}
}

func TestVerifyEmailHandler(t *testing.T) {
	svc := new(MockUserService)
	e := newUserServer(svc, domain.Actor{})

	svc.On("VerifyEmail", mock.Anything, "good").Return(nil)
	svc.On("VerifyEmail", mock.Anything, "stale").Return(fmt.Errorf("invalid or expired url: %w", domain.ErrValidation))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/auth/verify-email/good", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/auth/verify-email/stale", "").Code)
}

func TestUpdateUserRoleHandler(t *testing.T) {
	svc := new(MockUserService)
	admin := domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	e := newUserServer(svc, admin)

	svc.On("UpdateUserRole", mock.Anything, admin, uint(9), "inventory").
		Return(domain.User{ID: 9, Role: domain.RoleInventory}, nil)

	rec := do(e, http.MethodPut, "/api/user/9/role", `{"role":"inventory"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inventory", decodeData(t, rec)["user"].(map[string]any)["role"])

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPut, "/api/user/9/role", `{}`).Code)
}
