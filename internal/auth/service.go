// Package auth adapts bearer tokens from the external identity provider into
// request identities and answers admin checks.
package auth

import (
	"context"
	"strings"

	pkgAuth "github.com/angelmondragon/bookverse-backend/pkg/auth"
	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string         `json:"userId"`
	Name   string         `json:"name,omitempty"`
	Email  string         `json:"email,omitempty"`
	Role   enums.UserRole `json:"role"`
}

// AdminStatus answers GET /admin/check-status.
type AdminStatus struct {
	UserID  string `json:"userId,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// Service verifies tokens and evaluates admin membership.
type Service interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
	IsAdmin(userID string, role enums.UserRole) bool
	Status(identity *Identity) AdminStatus
}

// ServiceParams bundles the dependencies required to build the identity service.
type ServiceParams struct {
	JWTConfig    config.JWTConfig
	AdminUserIDs []string
}

type service struct {
	jwtCfg config.JWTConfig
	admins map[string]struct{}
}

func NewService(params ServiceParams) (Service, error) {
	if strings.TrimSpace(params.JWTConfig.Secret) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jwt secret is required")
	}
	admins := make(map[string]struct{}, len(params.AdminUserIDs))
	for _, id := range params.AdminUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &service{jwtCfg: params.JWTConfig, admins: admins}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(s.jwtCfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return &Identity{
		UserID: claims.UserID(),
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}

// IsAdmin is true for the admin role or for users on the configured admin list.
func (s *service) IsAdmin(userID string, role enums.UserRole) bool {
	if role == enums.UserRoleAdmin {
		return true
	}
	_, ok := s.admins[strings.TrimSpace(userID)]
	return ok
}

func (s *service) Status(identity *Identity) AdminStatus {
	if identity == nil {
		return AdminStatus{}
	}
	return AdminStatus{UserID: identity.UserID, IsAdmin: s.IsAdmin(identity.UserID, identity.Role)}
}
