// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"net/http"

	"github.com/danielhkuo/farmdesk/models"
)

// ObtainToken exchanges username/password for a short-lived access token
func (c *Client) ObtainToken(ctx context.Context, username, password string) (models.TokenPair, error) {
	var tokens models.TokenPair
	err := c.Do(ctx, "obtain token", http.MethodPost, "/token/", "", models.LoginRequest{
		Username: username,
		Password: password,
	}, &tokens)
	return tokens, err
}

// Me fetches the profile of the token's owner
func (c *Client) Me(ctx context.Context, token string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := c.Do(ctx, "fetch profile", http.MethodGet, "/users/me/", token, nil, &profile)
	return profile, err
}

// RequestOTP asks the backend to email a one-time passcode
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.Do(ctx, "request otp", http.MethodPost, "/otp/", "", body, nil)
}

// VerifyOTP exchanges email + passcode for access and refresh tokens
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (models.TokenPair, error) {
	var tokens models.TokenPair
	body := map[string]string{"email": email, "otp": otp}
	err := c.Do(ctx, "verify otp", http.MethodPost, "/verify-otp/", "", body, &tokens)
	return tokens, err
}

// SoilTypes lists the soil type reference data
func (c *Client) SoilTypes(ctx context.Context, token string) ([]models.SoilType, error) {
	var page models.Page[models.SoilType]
	if err := c.Do(ctx, "list soil types", http.MethodGet, "/soil-types/", token, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CreateFarm registers a farm. Validation failures come back as KindValidation
// with Fields set
func (c *Client) CreateFarm(ctx context.Context, token string, req models.FarmRequest) (models.Farm, error) {
	var farm models.Farm
	err := c.Do(ctx, "create farm", http.MethodPost, "/farms/", token, req, &farm)
	return farm, err
}

// ListFarms returns the farms owned by the token's user
func (c *Client) ListFarms(ctx context.Context, token string) ([]models.Farm, error) {
	var page models.Page[models.Farm]
	if err := c.Do(ctx, "list farms", http.MethodGet, "/farms/?my_farms=true", token, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}
