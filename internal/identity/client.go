package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/config"
	"scrimhub/internal/models"
)

type tokenClaims struct {
	Role              string `json:"role"`
	CertifiedStreamer bool   `json:"certifiedStreamer"`
	jwt.RegisteredClaims
}

// Client verifies provider-issued HS256 tokens against the shared secret
// and talks to the provider's admin endpoint for account state changes.
type Client struct {
	cfg    config.IdentityConfig
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(cfg config.IdentityConfig, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Verify(token string) (models.Caller, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(c.cfg.TokenSecret), nil
	})
	if err != nil {
		return models.Caller{}, apperr.Wrap(err, apperr.Unauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return models.Caller{}, apperr.New(apperr.Unauthenticated, "invalid token")
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		role = models.RolePlayer
	}

	return models.Caller{
		UID:               claims.Subject,
		Role:              role,
		CertifiedStreamer: claims.CertifiedStreamer,
	}, nil
}

func (c *Client) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	body, err := json.Marshal(map[string]any{
		"uid":      uid,
		"disabled": disabled,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/admin/users/%s/disabled", c.cfg.AdminURL, uid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AdminAPIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("uid", uid).
		Bool("disabled", disabled).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("identity provider update")

	if resp.StatusCode == http.StatusNotFound {
		return apperr.New(apperr.NotFound, "user %s not found at identity provider", uid)
	}
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
