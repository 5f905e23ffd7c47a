package rmcloud

import (
	"context"
	"net/http"
	"strings"
)

const (
	devicePath = "/token/json/2/device/new"
	userPath   = "/token/json/2/user/new"

	// deviceDescription identifies the kind of client being paired.
	deviceDescription = "desktop-linux"
)

// Messages the token service returns in place of a device token. They are
// matched as prefixes of the response body.
const (
	msgInvalidOneTimeCode = "Invalid One-time-code"
	msgUnknownDeviceType  = "Unknown device type (desc)"
	msgSignedOut          = "You have been signed out. Please update your app to log in again."
)

// DeviceCredential is the long-lived credential of a paired device.
type DeviceCredential struct {
	DeviceID string `json:"device_id" yaml:"device_id"`
	Token    string `json:"token" yaml:"token"`
}

type deviceRegistration struct {
	Code       string `json:"code"`
	DeviceDesc string `json:"deviceDesc"`
	DeviceID   string `json:"deviceID"`
}

// AuthenticateDevice pairs a new device using the one-time code shown to the
// user and returns the device credential.
func (c *Client) AuthenticateDevice(ctx context.Context, code string) (DeviceCredential, error) {
	deviceID := c.newID()

	resp, err := c.do(ctx, request{
		operation: OpAuthenticateDevice,
		method:    http.MethodPost,
		url:       c.authURL + devicePath,
		// The registration endpoint wants the bare scheme with no credential.
		header: http.Header{"Authentication": []string{"Bearer"}},
		body: deviceRegistration{
			Code:       code,
			DeviceDesc: deviceDescription,
			DeviceID:   deviceID,
		},
	})
	if err != nil {
		return DeviceCredential{}, err
	}

	token, err := readText(resp)
	if err != nil {
		return DeviceCredential{}, err
	}

	if err := classifyDeviceResponse(resp.StatusCode, token); err != nil {
		return DeviceCredential{}, err
	}

	return DeviceCredential{DeviceID: deviceID, Token: token}, nil
}

// classifyDeviceResponse maps a registration response to an error, or nil
// if body is a token.
func classifyDeviceResponse(status int, body string) error {
	switch {
	case strings.HasPrefix(body, msgInvalidOneTimeCode):
		return ErrInvalidOneTimeCode.WithStatus(status)
	case strings.HasPrefix(body, msgUnknownDeviceType):
		return ErrUnknownDeviceType.WithStatus(status)
	case strings.HasPrefix(body, msgSignedOut):
		return ErrWrongAPIVersion.WithStatus(status)
	case status < 200 || status > 299:
		return ErrDeviceAuthFailure.WithStatus(status).WithDetails(snippet(body))
	case body == "":
		return ErrDeviceAuthFailure.WithStatus(status).WithDetails("empty token")
	}
	return nil
}

// AuthenticateUser exchanges a device token for a short-lived user token.
func (c *Client) AuthenticateUser(ctx context.Context, deviceToken string) (string, error) {
	resp, err := c.do(ctx, request{
		operation: OpAuthenticateUser,
		method:    http.MethodPost,
		url:       c.authURL + userPath,
		token:     deviceToken,
	})
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", ErrUserAuthFailure.WithStatus(resp.StatusCode)
	}

	return readText(resp)
}

// snippet shortens upstream text for inclusion in an error.
func snippet(s string) string {
	const limit = 120
	s = strings.TrimSpace(s)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
