package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/confeccionesismael/storefront-backend/pkg/auth"
	"github.com/confeccionesismael/storefront-backend/pkg/auth/session"
	"github.com/confeccionesismael/storefront-backend/pkg/config"
	pkgdb "github.com/confeccionesismael/storefront-backend/pkg/db"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/confeccionesismael/storefront-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

const minPasswordLength = 8

// RegisterInput captures the signup form.
type RegisterInput struct {
	Email           string
	Password        string
	FullName        string
	Phone           string
	Address         string
	GuestSessionKey string
}

// LoginInput captures the login form. GuestSessionKey, when present, folds
// the anonymous cart into the user's cart after authentication.
type LoginInput struct {
	Email           string
	Password        string
	GuestSessionKey string
}

// UpdateProfileInput applies a partial profile edit; nil fields stay as-is.
type UpdateProfileInput struct {
	FullName *string
	Phone    *string
	Address  *string
}

// Service defines the behavior needed by the accounts controller.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthSession, error)
	Login(ctx context.Context, input LoginInput) (*AuthSession, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type cartMerger interface {
	MergeGuestCart(ctx context.Context, sessionKey string, userID uuid.UUID) error
}

type service struct {
	users       userRepository
	session     sessionManager
	carts       cartMerger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an accounts service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	CartMerger     cartMerger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		carts:       params.CartMerger,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthSession, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters").
			WithDetails(map[string]any{"min_length": minPasswordLength})
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueSession(ctx, user, input.GuestSessionKey)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthSession, error) {
	user, err := s.authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, input.GuestSessionKey)
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}

	if len(updates) > 0 {
		if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
		}
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) issueSession(ctx context.Context, user *models.User, guestSessionKey string) (*AuthSession, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	if guestSessionKey != "" && s.carts != nil {
		if err := s.carts.MergeGuestCart(ctx, guestSessionKey, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge guest cart")
		}
	}

	return &AuthSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FromModel(user),
	}, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return user, nil
}
