package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/platform/ctxutil"
	"github.com/yungbote/smartassist-backend/internal/platform/dbctx"
	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

const minPasswordLen = 6

var errInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))

type SignupInput struct {
	Email         string
	Password      string
	Name          string
	UserType      string
	StudentNumber string
}

type JWTClaims struct {
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Signup creates the credentials row and the profile in one transaction.
	Signup(ctx context.Context, in SignupInput) (*types.Profile, string, error)
	Login(ctx context.Context, email, password string) (*types.Profile, string, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	users        repos.UserRepo
	profiles     repos.ProfileRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          Clock
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	profiles repos.ProfileRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:           db,
		log:          baseLog.With("service", "AuthService"),
		users:        users,
		profiles:     profiles,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          SystemClock,
	}
}

func (as *authService) Signup(ctx context.Context, in SignupInput) (*types.Profile, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	userType := strings.ToLower(strings.TrimSpace(in.UserType))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", apierr.Validation("invalid_email", "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, "", apierr.Validation("weak_password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if name == "" {
		return nil, "", apierr.Validation("empty_name", "name is required")
	}
	if !types.ValidUserType(userType) {
		return nil, "", apierr.Validation("invalid_user_type", "user_type must be student or teacher")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := as.now()
	user := &types.User{ID: uuid.New(), Email: email, PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now}
	profile := &types.Profile{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      name,
		UserType:  userType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if num := strings.TrimSpace(in.StudentNumber); num != "" && userType == types.UserTypeStudent {
		profile.StudentNumber = &num
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := as.users.Create(dbc, user); err != nil {
			if errors.Is(err, apierr.ErrConflict) {
				return apierr.Conflict("email_taken", "an account with this email already exists")
			}
			return err
		}
		return as.profiles.Create(dbc, profile)
	})
	if err != nil {
		return nil, "", err
	}

	tok, err := as.generateAccessToken(user.ID, profile.UserType)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("User signed up", "user_id", user.ID, "user_type", profile.UserType)
	return profile, tok, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.Profile, string, error) {
	dbc := dbctx.New(ctx)
	user, err := as.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errInvalidCredentials
	}
	profile, err := as.profiles.GetByUserID(dbc, user.ID)
	if err != nil {
		return nil, "", err
	}
	userType := ""
	if profile != nil {
		userType = profile.UserType
	}
	tok, err := as.generateAccessToken(user.ID, userType)
	if err != nil {
		return nil, "", err
	}
	return profile, tok, nil
}

func (as *authService) generateAccessToken(userID uuid.UUID, userType string) (string, error) {
	now := as.now()
	claims := JWTClaims{
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.AuthRequired()
	}
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		as.log.Debug("Rejected access token", "error", err)
		return ctx, apierr.AuthRequired()
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.AuthRequired()
	}
	tokenID, _ := uuid.Parse(claims.ID)
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:   userID,
		UserType: claims.UserType,
		TokenID:  tokenID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
