package user

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"garmentFactory/domain"
	redisRepo "garmentFactory/internal/repository/redis"
	"garmentFactory/pkg/logger"
	"garmentFactory/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id uint, role domain.Role) error
	Delete(ctx context.Context, id uint) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, message string) error
}

// TokenStore keeps issued session tokens so they can be revoked.
type TokenStore interface {
	StoreToken(ctx context.Context, data redisRepo.TokenData, ttl time.Duration) error
	GetTokenData(ctx context.Context, userID string) (*redisRepo.TokenData, error)
	ValidateToken(ctx context.Context, token string) (string, error)
	RefreshTokenTTL(ctx context.Context, userID string, newTTL time.Duration) error
	DeleteToken(ctx context.Context, userID, token string) error
}

type userService struct {
	userRepo                UserRepository
	tokenStore              TokenStore
	validate                *validator.Validate
	notifRepo               NotificationRepository
	appEmailVerificationKey string
	appDeploymentUrl        string
	sessionIdleTimeout      time.Duration
	now                     func() time.Time
}

const (
	verificationCodeTTL      = 30
	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is valid for %v minutes`
)

var (
	errInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	errInvalidLink        = fmt.Errorf("invalid or expired url: %w", domain.ErrValidation)
)

func NewUserService(
	userRepo UserRepository,
	tokenStore TokenStore,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	appEmailVerificationKey string,
	appDeploymentUrl string,
	sessionIdleTimeout time.Duration,
) *userService {
	return &userService{
		userRepo:                userRepo,
		tokenStore:              tokenStore,
		validate:                validate,
		notifRepo:               notifRepo,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        strings.TrimRight(appDeploymentUrl, "/"),
		sessionIdleTimeout:      sessionIdleTimeout,
		now:                     time.Now,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		logger.Error("Failed to validate user register", err)
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existingUser.ID > 0 {
		return domain.User{}, fmt.Errorf("email already exists: %w", domain.ErrConflict)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Failed to look up email", err)
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: string(passwordHash),
		Role:     domain.RoleUser,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, err
	}

	activationLink, err := s.VerificationLink(newUser.Email)
	if err != nil {
		logger.Error("Failed to build verification link", err)
	} else {
		body := fmt.Sprintf(EmailBodyRegisterAccount, newUser.Name, activationLink, verificationCodeTTL)
		if err := s.notifRepo.SendEmail(ctx, newUser.Name, newUser.Email, SubjectRegisterAccount, body); err != nil {
			logger.Warn("Failed to send verification email", err)
		}
	}

	newUser.Password = ""
	return newUser, nil
}

// VerificationLink builds the expiring activation link mailed after registration. The
// code is "email|unix-expiry" encrypted with AES-CBC and base64 encoded.
func (s *userService) VerificationLink(email string) (string, error) {
	expAt := s.now().Add(verificationCodeTTL * time.Minute).Unix()

	verificationCode := fmt.Sprintf("%v|%v", email, expAt)
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt verification code: %w", err)
	}

	code := url.PathEscape(goshortcute.StringtoBase64Encode(encrypted))
	return s.appDeploymentUrl + "/api/auth/verify-email/" + code, nil
}

func (s *userService) VerifyEmail(ctx context.Context, code string) error {
	if unescaped, err := url.PathUnescape(code); err == nil {
		code = unescaped
	}

	strDecode := goshortcute.StringtoBase64Decode(code)
	decrypted, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Warn("Verifying email error", err)
		return errInvalidLink
	}

	parts := strings.Split(decrypted, "|")
	if len(parts) != 2 {
		return errInvalidLink
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return errInvalidLink
	}
	if s.now().After(time.Unix(ts, 0)) {
		return errInvalidLink
	}

	user, err := s.userRepo.FindByEmail(ctx, parts[0])
	if err != nil {
		logger.Warn("Verifying email for unknown user", err)
		return errInvalidLink
	}

	if user.IsAccountVerified {
		return errInvalidLink
	}

	if err := s.userRepo.UpdateEmailVerification(ctx, user.ID, true); err != nil {
		logger.Error("Verify email err", err)
		return err
	}

	return nil
}

// Login checks the credentials, issues a JWT and records it in the token store.
func (s *userService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, errInvalidCredentials
		}
		logger.Error("Failed to find user for login", err)
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return "", domain.User{}, errInvalidCredentials
	}

	if !user.IsAccountVerified {
		return "", domain.User{}, fmt.Errorf("email address has not been verified: %w", domain.ErrForbidden)
	}

	userIDStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIDStr, string(user.Role))
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	issuedAt := s.now()
	ttl := utils.TokenTTL()
	err = s.tokenStore.StoreToken(ctx, redisRepo.TokenData{
		UserID:    userIDStr,
		Role:      string(user.Role),
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}, s.sessionTTL(ttl))
	if err != nil {
		logger.Error("Failed to store token", err)
		return "", domain.User{}, err
	}

	user.Password = ""
	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	if err := s.tokenStore.DeleteToken(ctx, strconv.FormatUint(uint64(userID), 10), token); err != nil {
		logger.Error("Failed to revoke token", err)
		return err
	}
	return nil
}

// sessionTTL is how long a session survives without requests. It never exceeds the
// token lifetime.
func (s *userService) sessionTTL(tokenTTL time.Duration) time.Duration {
	if s.sessionIdleTimeout > 0 && s.sessionIdleTimeout < tokenTTL {
		return s.sessionIdleTimeout
	}
	return tokenTTL
}

// ValidateTokenFromRedis satisfies the auth middleware's token validator. With an idle
// timeout configured every authenticated request pushes the session expiry forward.
func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	userID, err := s.tokenStore.ValidateToken(ctx, token)
	if err != nil {
		return "", err
	}

	if s.sessionIdleTimeout > 0 {
		if err := s.tokenStore.RefreshTokenTTL(ctx, userID, s.sessionIdleTimeout); err != nil {
			logger.Warn("Failed to extend session", "user_id", userID, "error", err)
		}
	}

	return userID, nil
}

// revokeSession drops the live session of a user, if any. Tokens carry the role, so
// role changes and deletions must not leave an old token usable.
func (s *userService) revokeSession(ctx context.Context, id uint) error {
	userID := strconv.FormatUint(uint64(id), 10)
	data, err := s.tokenStore.GetTokenData(ctx, userID)
	if errors.Is(err, redisRepo.ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.tokenStore.DeleteToken(ctx, userID, data.Token); err != nil {
		return err
	}
	logger.Info("Session revoked", "user_id", userID)
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return nil, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return users, nil
}

type UpdateProfileInput struct {
	Name     string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6"`
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, input UpdateProfileInput) (domain.User, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		existingUser.Name = name
	}

	if input.Email != "" {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		userWithEmail, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && userWithEmail.ID != id {
			return domain.User{}, fmt.Errorf("email already exists: %w", domain.ErrConflict)
		}
		existingUser.Email = email
	}

	if input.Password != "" {
		passwordHash, err := utils.HashPassword(input.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.User{}, errors.New("failed to hash password")
		}
		existingUser.Password = string(passwordHash)
	}

	if err := s.userRepo.Update(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	existingUser.Password = ""
	return existingUser, nil
}

// UpdateUserRole changes another user's role and ends their current session. Admins
// cannot demote themselves.
func (s *userService) UpdateUserRole(ctx context.Context, actor domain.Actor, id uint, role string) (domain.User, error) {
	if !actor.Can(domain.CapUsersManage) {
		return domain.User{}, fmt.Errorf("changing roles: %w", domain.ErrForbidden)
	}

	newRole, ok := domain.ParseRole(role)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: invalid role %q", domain.ErrValidation, role)
	}

	if actor.Owns(id) && !newRole.Can(domain.CapUsersManage) {
		return domain.User{}, fmt.Errorf("%w: cannot remove your own admin role", domain.ErrValidation)
	}

	if err := s.userRepo.UpdateRole(ctx, id, newRole); err != nil {
		return domain.User{}, err
	}

	if err := s.revokeSession(ctx, id); err != nil {
		logger.Error("Failed to revoke session after role change", "user_id", id, "error", err)
		return domain.User{}, err
	}

	return s.GetUserByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Actor, id uint) error {
	if !actor.Can(domain.CapUsersManage) {
		return fmt.Errorf("deleting users: %w", domain.ErrForbidden)
	}
	if actor.Owns(id) {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("Failed to delete user", err)
		return err
	}

	if err := s.revokeSession(ctx, id); err != nil {
		logger.Error("Failed to revoke session of deleted user", "user_id", id, "error", err)
		return err
	}

	return nil
}
