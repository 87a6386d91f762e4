// Package authclient talks to the backend's auth and user endpoints.
package authclient

import (
	"context"

	"github.com/expertchat/expertchat/internal/domain/session"
	"github.com/expertchat/expertchat/internal/domain/user"
	"github.com/expertchat/expertchat/internal/infrastructure/apiclient"
)

// Client implements session.AuthClient against the HTTP backend.
type Client struct {
	api *apiclient.Client
}

func New(api *apiclient.Client) *Client {
	return &Client{api: api}
}

var _ session.AuthClient = (*Client)(nil)

type tokenBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type userBody struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type signupBody struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type updateBody struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. The endpoint takes a form
// body with the email under the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Token, error) {
	var body tokenBody
	resp, err := c.api.R(ctx, "").
		SetFormData(map[string]string{
			"username": email,
			"password": password,
		}).
		SetResult(&body).
		Post(c.api.Endpoint("/auth/login"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "login request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "login failed")
	}
	return toToken(body), nil
}

func (c *Client) Signup(ctx context.Context, email, name, password string) (*session.Token, error) {
	var body tokenBody
	resp, err := c.api.R(ctx, "").
		SetBody(signupBody{Email: email, Name: name, Password: password}).
		SetResult(&body).
		Post(c.api.Endpoint("/auth/signup"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "signup request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "signup failed")
	}
	return toToken(body), nil
}

// Logout invalidates the session server-side. Local teardown happens in the
// session manager regardless of the outcome here.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.api.R(ctx, accessToken).Post(c.api.Endpoint("/auth/logout"))
	if err != nil {
		return c.api.WrapTransport(err, "logout request failed")
	}
	if resp.IsError() {
		return c.api.ErrorFrom(resp, "logout failed")
	}
	return nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*session.Token, error) {
	var body tokenBody
	resp, err := c.api.R(ctx, "").
		SetBody(refreshBody{RefreshToken: refreshToken}).
		SetResult(&body).
		Post(c.api.Endpoint("/auth/refresh"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "refresh request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "refresh failed")
	}
	return toToken(body), nil
}

func (c *Client) GetProfile(ctx context.Context, accessToken string) (*user.User, error) {
	var body userBody
	resp, err := c.api.R(ctx, accessToken).
		SetResult(&body).
		Get(c.api.Endpoint("/users/me"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "profile request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "profile fetch failed")
	}
	return toUser(body), nil
}

func (c *Client) UpdateProfile(ctx context.Context, accessToken string, update user.Update) (*user.User, error) {
	var body userBody
	resp, err := c.api.R(ctx, accessToken).
		SetBody(updateBody{Name: update.Name, Password: update.Password}).
		SetResult(&body).
		Put(c.api.Endpoint("/users/me"))
	if err != nil {
		return nil, c.api.WrapTransport(err, "profile update request failed")
	}
	if resp.IsError() {
		return nil, c.api.ErrorFrom(resp, "profile update failed")
	}
	return toUser(body), nil
}

func (c *Client) DeleteAccount(ctx context.Context, accessToken string) error {
	resp, err := c.api.R(ctx, accessToken).Delete(c.api.Endpoint("/users/me"))
	if err != nil {
		return c.api.WrapTransport(err, "account deletion request failed")
	}
	if resp.IsError() {
		return c.api.ErrorFrom(resp, "account deletion failed")
	}
	return nil
}

func toToken(body tokenBody) *session.Token {
	return &session.Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		TokenType:    body.TokenType,
		ExpiresIn:    body.ExpiresIn,
	}
}

func toUser(body userBody) *user.User {
	u := &user.User{
		ID:    body.ID,
		Email: body.Email,
		Name:  body.Name,
	}
	u.CreatedAt = apiclient.ParseTimestamp(body.CreatedAt)
	u.UpdatedAt = apiclient.ParseTimestamp(body.UpdatedAt)
	return u
}
