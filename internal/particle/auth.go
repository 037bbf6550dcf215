package particle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Login calls POST /oauth/token with the password grant.
// On success the access token is kept for later calls; on failure the previous token,
// if any, is left untouched.
func (h *HTTP) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	if h.tokenTTL > 0 {
		form.Set("expires_in", strconv.Itoa(int(h.tokenTTL.Seconds())))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(oauthClientID, oauthClientSecret)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError("login", resp)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return errors.New("no access_token in response")
	}

	h.setToken(out.AccessToken)
	return nil
}

// Logout calls DELETE /v1/access_tokens/current and forgets the token.
// The local token is dropped even when the remote call fails.
func (h *HTTP) Logout(ctx context.Context) error {
	token, err := h.accessToken()
	if err != nil {
		return nil
	}
	h.setToken("")

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, h.baseURL+"/v1/access_tokens/current", nil)
	if err != nil {
		return err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeError("logout", resp)
}
