package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gravitas-games/armory/internal/config"
	"github.com/gravitas-games/armory/pkg/models"
	"github.com/sirupsen/logrus"
)

var (
	errUserNotActivated = errors.New("user not activated")
	errUserBanned       = errors.New("user is banned")
	errBlacklisted      = errors.New("token is blacklisted")
)

// Blacklist reports whether a user's tokens have been revoked.
type Blacklist interface {
	Blacklisted(ctx context.Context, userID string) (bool, error)
}

// redisBlacklist looks users up under a key prefix in Redis.
type redisBlacklist struct {
	client *redis.Client
	prefix string
}

func newRedisBlacklist(client *redis.Client, prefix string) *redisBlacklist {
	return &redisBlacklist{client: client, prefix: prefix}
}

func (b *redisBlacklist) Blacklisted(ctx context.Context, userID string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// JWTValidator handles JWT token validation
type JWTValidator struct {
	config    config.JWTConfig
	publicKey *ecdsa.PublicKey
	keyMu     sync.RWMutex
	blacklist Blacklist
	log       logrus.FieldLogger
	now       func() time.Time
}

// Claims represents JWT token claims issued by the login server
type Claims struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AuthMethod  string `json:"auth_method"`
	Permissions int64  `json:"permissions"`
	Activated   int64  `json:"activated"`
	jwt.RegisteredClaims
}

// NewJWTValidator fetches the login server's public key and starts a
// background refresh that stops with ctx.
func NewJWTValidator(ctx context.Context, cfg config.JWTConfig, blacklist Blacklist, log logrus.FieldLogger) (*JWTValidator, error) {
	validator := newJWTValidator(cfg, blacklist, log)

	if err := validator.RefreshPublicKey(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}

	go validator.periodicKeyRefresh(ctx)

	log.Info("JWT validator initialized")
	return validator, nil
}

func newJWTValidator(cfg config.JWTConfig, blacklist Blacklist, log logrus.FieldLogger) *JWTValidator {
	return &JWTValidator{
		config:    cfg,
		blacklist: blacklist,
		log:       log,
		now:       time.Now,
	}
}

// RefreshPublicKey fetches the public key from the login server
func (v *JWTValidator) RefreshPublicKey(ctx context.Context) error {
	v.log.WithField("url", v.config.PublicKeyURL).Debug("Fetching public key")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.config.PublicKeyURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build public key request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("public key endpoint returned status %d", resp.StatusCode)
	}

	keyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	key, err := parsePublicKey(keyData)
	if err != nil {
		return err
	}
	v.setPublicKey(key)

	v.log.Info("Public key refreshed successfully")
	return nil
}

// parsePublicKey decodes a PEM-encoded ECDSA public key.
func parsePublicKey(data []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

func (v *JWTValidator) setPublicKey(key *ecdsa.PublicKey) {
	v.keyMu.Lock()
	v.publicKey = key
	v.keyMu.Unlock()
}

// periodicKeyRefresh refreshes the public key periodically
func (v *JWTValidator) periodicKeyRefresh(ctx context.Context) {
	refreshInterval := time.Duration(v.config.PublicKeyRefreshHrs) * time.Hour

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.RefreshPublicKey(ctx); err != nil {
				v.log.WithError(err).Warn("Failed to refresh public key")
			}
		}
	}
}

// ValidateToken validates a JWT token and returns player information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		v.keyMu.RLock()
		defer v.keyMu.RUnlock()
		return v.publicKey, nil
	}, jwt.WithIssuer(v.config.Issuer), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	switch {
	case claims.Activated == 0:
		return nil, errUserNotActivated
	case claims.Activated == -1:
		return nil, errUserBanned
	}

	userID := strconv.FormatInt(claims.UserID, 10)
	if v.blacklist != nil {
		blacklisted, err := v.blacklist.Blacklisted(ctx, userID)
		if err != nil {
			// Don't fail authentication if Redis is down.
			v.log.WithError(err).WithField("player", userID).Warn("Failed to check blacklist")
		} else if blacklisted {
			return nil, errBlacklisted
		}
	}

	return &models.Player{
		ID:          userID,
		Username:    claims.Username,
		Email:       claims.Email,
		Permissions: claims.Permissions,
		Activated:   claims.Activated,
		AuthMethod:  claims.AuthMethod,
	}, nil
}

// extractTokenFromHeader extracts JWT token from WebSocket connection header
func extractTokenFromHeader(r *http.Request) string {
	// Sec-WebSocket-Protocol: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := parseProtocols(protocols)
		if len(parts) == 2 && parts[0] == "access_token" {
			return parts[1]
		}
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}

	// Query parameter (less secure, but supported)
	return r.URL.Query().Get("token")
}

// parseProtocols splits the Sec-WebSocket-Protocol header, dropping blanks
func parseProtocols(protocols string) []string {
	var result []string
	for _, p := range strings.Split(protocols, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
