// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

package particle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// deviceJSON accepts both the current "online" and the legacy "connected" field.
type deviceJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Online    *bool  `json:"online"`
	Connected *bool  `json:"connected"`
}

func (d deviceJSON) toDevice() Device {
	online := false
	switch {
	case d.Online != nil:
		online = *d.Online
	case d.Connected != nil:
		online = *d.Connected
	}
	return Device{ID: d.ID, Name: d.Name, Online: online}
}

// ListDevices calls GET /v1/devices and returns the devices in the order the cloud sent them.
func (h *HTTP) ListDevices(ctx context.Context) ([]Device, error) {
	token, err := h.accessToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/v1/devices", nil)
	if err != nil {
		return nil, err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError("list-devices", resp)
	}

	var raw []deviceJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(raw))
	for _, d := range raw {
		devices = append(devices, d.toDevice())
	}
	return devices, nil
}

// Invoke calls POST /v1/devices/{id}/{function} with the given argument and returns
// the firmware's return_value.
func (h *HTTP) Invoke(ctx context.Context, deviceID, function, arg string) (int, error) {
	token, err := h.accessToken()
	if err != nil {
		return 0, err
	}

	form := url.Values{}
	form.Set("arg", arg)

	endpoint := h.baseURL + "/v1/devices/" + url.PathEscape(deviceID) + "/" + url.PathEscape(function)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, err
	}
	h.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeError("call-function", resp)
	}

	var out struct {
		ReturnValue int `json:"return_value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.ReturnValue, nil
}
