package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/libratrack/backend/internal/config"
	"github.com/libratrack/backend/internal/domain"
	"github.com/libratrack/backend/internal/token"
)

var (
	// ErrInvalidCredentials is deliberately silent about which factor was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
	// Rotation failures force a full re-login, unlike an expired access
	// token which only prompts a silent refresh.
	ErrRefreshTokenUnknown = errors.New("refresh token not found")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// createRetries bounds the reject-and-retry loop on refresh-token value
// collisions. A v4 UUID carries 122 random bits, so a second attempt is
// already effectively unreachable.
const createRetries = 3

type AuthUsecase struct {
	userRepo  domain.UserRepository
	tokenRepo domain.RefreshTokenRepository
	codec     *token.Codec
	cfg       *config.JWTConfig
	now       func() time.Time
}

// TokenPair is the credential set handed to a client on login and echoed
// (with a fresh access token) on rotation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresAt    int64  `json:"expiresAt"`
}

func NewAuthUsecase(userRepo domain.UserRepository, tokenRepo domain.RefreshTokenRepository, codec *token.Codec, cfg *config.JWTConfig) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		codec:     codec,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (u *AuthUsecase) Register(username, email, password string) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := u.userRepo.Create(user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues one access token plus one persisted
// refresh token. Each login creates its own refresh token, so a user may hold
// several live sessions, one per device.
func (u *AuthUsecase) Login(username, password string) (*domain.User, *TokenPair, error) {
	user, err := u.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := u.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Rotate exchanges a live refresh token for a new access token. The refresh
// token itself is reused until its own expiry; an expired one is deleted on
// sight (lazy cleanup) and the caller must log in again.
func (u *AuthUsecase) Rotate(refreshToken string) (*TokenPair, error) {
	stored, err := u.tokenRepo.GetByToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrRefreshTokenUnknown
	}

	now := u.now()
	if !now.Before(stored.ExpiresAt) {
		if _, err := u.tokenRepo.DeleteIfExpired(refreshToken, now); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenExpired
	}

	user, err := u.userRepo.GetByID(stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrRefreshTokenUnknown
	}

	accessToken, expiresAt, err := u.codec.Mint(user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

// Logout deletes the refresh token. Always succeeds for the caller: deleting
// an absent token must not reveal whether it ever existed.
func (u *AuthUsecase) Logout(refreshToken string) error {
	return u.tokenRepo.DeleteByToken(refreshToken)
}

// LogoutAll revokes every live session of a user.
func (u *AuthUsecase) LogoutAll(userID uuid.UUID) error {
	return u.tokenRepo.DeleteByUserID(userID)
}

func (u *AuthUsecase) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return u.userRepo.GetByID(id)
}

func (u *AuthUsecase) ChangePassword(userID uuid.UUID, current, next string) error {
	user, err := u.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	return u.userRepo.Update(user)
}

func (u *AuthUsecase) UpdateProfile(userID uuid.UUID, email, avatarURL string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if email != "" {
		user.Email = email
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}

	if err := u.userRepo.Update(user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (u *AuthUsecase) issueTokens(user *domain.User) (*TokenPair, error) {
	accessToken, expiresAt, err := u.codec.Mint(user.Username)
	if err != nil {
		return nil, err
	}

	var refreshToken *domain.RefreshToken
	for attempt := 0; attempt < createRetries; attempt++ {
		refreshToken = &domain.RefreshToken{
			UserID:    user.ID,
			Token:     uuid.NewString(),
			ExpiresAt: u.now().Add(u.cfg.RefreshExpiry),
		}
		err = u.tokenRepo.Create(refreshToken)
		if !errors.Is(err, domain.ErrDuplicateToken) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}
