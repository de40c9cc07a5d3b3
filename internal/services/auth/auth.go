// Package services содержит бизнес-логику регистрации, аутентификации
// и восстановления пароля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mobilka/subscription-portal/internal/lib/jwt"
	"github.com/mobilka/subscription-portal/internal/lib/password"
	"github.com/mobilka/subscription-portal/internal/lib/resettoken"
	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/models"
	"github.com/mobilka/subscription-portal/internal/storage/repository"
)

// Ошибки бизнес-логики аутентификации.
var (
	// ErrEmailTaken пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials неверный email или пароль.
	// Одна ошибка на оба случая: наличие аккаунта не раскрывается.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled аккаунт деактивирован.
	ErrAccountDisabled = errors.New("account is deactivated")
	// ErrResetTokenInvalid токен восстановления не найден или истек.
	ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired")
	// ErrResetDispatch не удалось поставить письмо восстановления в очередь.
	ErrResetDispatch = errors.New("failed to dispatch password reset email")
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByUID возвращает пользователя по UID.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
	// UpdateLastLogin фиксирует время последнего входа.
	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
	// UpdateProfile частично обновляет профиль.
	UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error)
	// SetResetToken сохраняет хэш токена восстановления и срок действия.
	SetResetToken(ctx context.Context, userUID, tokenHash string, expires time.Time) error
	// ClearResetToken сбрасывает поля восстановления пароля.
	ClearResetToken(ctx context.Context, userUID string) error
	// GetUserByResetTokenHash ищет пользователя по хэшу непросроченного токена.
	GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	// UpdatePassword устанавливает новый хэш пароля и сбрасывает поля восстановления.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
}

// MailQueue описывает публикацию задания на отправку письма восстановления.
type MailQueue interface {
	PublishResetEmail(job models.ResetEmailJob) error
}

// AuthService отвечает за регистрацию, авторизацию и восстановление пароля.
type AuthService struct {
	users     UserRepository
	mailQueue MailQueue
	jwtMaker  jwt.Maker
	resetTTL  time.Duration
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, mailQueue MailQueue, jwtMaker jwt.Maker, resetTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		mailQueue: mailQueue,
		jwtMaker:  jwtMaker,
		resetTTL:  resetTTL,
		log:       log,
	}
}

// NormalizeEmail приводит email к каноническому виду для хранения и поиска.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью user,
// сразу выдает токен сессии.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string, phone *string) (string, *models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", nil, err
	}
	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hashed,
		Phone:        phone,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, err
	}
	s.log.Info("registered new user", slog.String("uid", uid))

	return s.openSession(ctx, uid)
}

// Login проверяет учетные данные и выдает токен сессии.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user.UID)
}

// openSession фиксирует вход и генерирует токен, возвращая свежую запись пользователя.
func (s *AuthService) openSession(ctx context.Context, userUID string) (string, *models.User, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, userUID, now); err != nil {
		return "", nil, err
	}
	token, err := s.jwtMaker.GenerateToken(userUID)
	if err != nil {
		return "", nil, err
	}
	user, err := s.users.GetUserByUID(ctx, userUID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// RequestPasswordReset генерирует одноразовый токен восстановления и ставит
// письмо в очередь отправки. Для незарегистрированного email возвращает nil:
// наружу всегда уходит один и тот же ответ.
//
// Если публикация в очередь не удалась, сохраненный токен сбрасывается,
// чтобы неотправленный токен не мог позже пройти проверку.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	rawToken, tokenHash, err := resettoken.New()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.UID, tokenHash, expires); err != nil {
		return err
	}

	job := models.ResetEmailJob{
		Email: user.Email,
		Name:  user.Name,
		Token: rawToken,
	}
	if err := s.mailQueue.PublishResetEmail(job); err != nil {
		s.log.Error("failed to enqueue password reset email", sl.Err(err))
		if clearErr := s.users.ClearResetToken(ctx, user.UID); clearErr != nil {
			s.log.Error("failed to clear reset token after dispatch failure", sl.Err(clearErr))
		}
		return fmt.Errorf("%w: %w", ErrResetDispatch, err)
	}

	s.log.Info("password reset token issued", slog.String("uid", user.UID))
	return nil
}

// ResetPassword проверяет одноразовый токен восстановления, устанавливает
// новый пароль и выдает свежий токен сессии. Токен одноразовый: поля
// восстановления сбрасываются вместе с обновлением пароля.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	user, err := s.users.GetUserByResetTokenHash(ctx, resettoken.Hash(rawToken), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, user.UID, hashed); err != nil {
		return "", err
	}
	s.log.Info("password reset completed", slog.String("uid", user.UID))

	return s.jwtMaker.GenerateToken(user.UID)
}

// UpdateProfile частично обновляет профиль пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, userUID string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, userUID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
