// internal/gateway/auth.go
package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/javajoker/sales-ledger/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CheckSession asks the server whether the current token is still valid.
func (c *Client) CheckSession(ctx context.Context) (*models.AuthStatus, error) {
	var status models.AuthStatus
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, &status); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return &models.AuthStatus{}, nil
		}
		return nil, err
	}
	return &status, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	var result models.LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Username: username,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", struct{}{}, nil)
}
