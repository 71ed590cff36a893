package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/config"
	"github.com/fdg312/health-navigator/internal/httpretry"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRequest = errors.New("invalid request")
	ErrGoogleRejected = errors.New("google rejected the token")
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Скоупы покрывают идентификацию плюс все метрики, которые читает
// синхронизация: шаги/калории, дистанция, сон, пульс.
var googleScopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/fitness.activity.read",
	"https://www.googleapis.com/auth/fitness.location.read",
	"https://www.googleapis.com/auth/fitness.sleep.read",
	"https://www.googleapis.com/auth/fitness.heart_rate.read",
}

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Service — авторизация: Google OAuth на входе, собственные JWT на
// выходе. Google Fit токен пользователя остаётся в TokenStore.
type Service struct {
	config      *config.Config
	oauth       *oauth2.Config
	tokens      *TokenStore
	httpClient  *http.Client
	userInfoURL string
}

func NewService(cfg *config.Config, tokens *TokenStore) *Service {
	return &Service{
		config: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       googleScopes,
			Endpoint:     googleEndpoint,
		},
		tokens:      tokens,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		userInfoURL: defaultUserInfoURL,
	}
}

// ConnectURL возвращает URL страницы согласия Google и state для
// защиты от CSRF.
func (s *Service) ConnectURL() (authURL, state string, err error) {
	state, err = randomState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), state, nil
}

// ExchangeCode обменивает authorization code на Google-токен,
// подтверждает личность через userinfo и выдаёт наш JWT.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*AuthResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidRequest
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return s.signInWithGoogleToken(ctx, token.AccessToken)
}

// SignInWithAccessToken принимает access token, который клиент получил
// сам по implicit flow (response_type=token в redirect hash).
func (s *Service) SignInWithAccessToken(ctx context.Context, req GoogleTokenRequest) (*AuthResponse, error) {
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, ErrInvalidRequest
	}
	return s.signInWithGoogleToken(ctx, req.AccessToken)
}

func (s *Service) signInWithGoogleToken(ctx context.Context, googleAccessToken string) (*AuthResponse, error) {
	info, err := s.fetchUserInfo(ctx, googleAccessToken)
	if err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, ErrGoogleRejected
	}

	userID := "google:" + info.ID
	s.tokens.SetFitnessToken(userID, googleAccessToken)
	s.tokens.SetProfile(userID, info)

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	sessionToken, err := s.generateJWT(userID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	log.Printf("INFO auth: signed in user %s", userID)
	return &AuthResponse{
		AccessToken: sessionToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
	}, nil
}

func (s *Service) fetchUserInfo(ctx context.Context, accessToken string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := httpretry.Do(ctx, s.httpClient, req)
	if err != nil {
		if httpretry.IsStatus(err, http.StatusUnauthorized) {
			return googleUserInfo{}, ErrGoogleRejected
		}
		return googleUserInfo{}, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return googleUserInfo{}, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return info, nil
}

// Me возвращает данные текущей сессии.
func (s *Service) Me(ctx context.Context) (*MeResponse, error) {
	userID, ok := GetUserID(ctx)
	if !ok || strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidToken
	}

	resp := &MeResponse{UserID: userID}
	if profile, ok := s.tokens.Profile(userID); ok {
		resp.Email = profile.Email
		resp.Name = profile.Name
	}
	_, resp.FitnessConnected = s.tokens.FitnessToken(userID)
	return resp, nil
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": s.config.JWTIssuer,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT проверяет подпись и срок действия, возвращает userID.
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
