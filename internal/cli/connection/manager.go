package connection

import (
	"context"
	"fmt"

	"github.com/yndnr/rmcloud-go/internal/cli/config"
	"github.com/yndnr/rmcloud-go/internal/telemetry/logger"
	"github.com/yndnr/rmcloud-go/pkg/rmcloud"
)

// Service is the subset of *rmcloud.Client used to open a session.
type Service interface {
	AuthenticateUser(ctx context.Context, deviceToken string) (string, error)
	GetStorageHost(ctx context.Context) (string, error)
}

// Session is an authenticated view of the document-storage service.
type Session struct {
	Host      string
	UserToken string
}

// Manager opens sessions from the CLI configuration.
type Manager struct {
	svc     Service
	cfg     *config.CLIConfig
	current *Session
}

// NewManager creates a new connection manager.
func NewManager(svc Service, cfg *config.CLIConfig) *Manager {
	return &Manager{svc: svc, cfg: cfg}
}

// Connect exchanges the stored device token for a user token and resolves
// the storage host, using the cached host from the config when present.
// A second call reuses the open session.
func (m *Manager) Connect(ctx context.Context) (*Session, error) {
	if m.current != nil {
		return m.current, nil
	}

	if err := config.RequireCredential(m.cfg); err != nil {
		return nil, err
	}

	token, err := m.svc.AuthenticateUser(ctx, m.cfg.DeviceToken)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	host := m.cfg.StorageHost
	if host == "" {
		host, err = m.svc.GetStorageHost(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover storage host: %w", err)
		}
	} else {
		logger.L(ctx).Debug("using cached storage host", "host", host)
	}

	m.current = &Session{Host: host, UserToken: token}
	return m.current, nil
}

// Disconnect forgets the current session.
func (m *Manager) Disconnect() {
	m.current = nil
}

var _ Service = (*rmcloud.Client)(nil)
