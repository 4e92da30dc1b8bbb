package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/bookverse-backend/pkg/auth"
	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bookverse-backend/pkg/errors"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "bookverse-identity", ExpirationMinutes: 15}

func mint(t *testing.T, userID string, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: userID, Name: "Reader", Role: role})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	svc, err := NewService(ServiceParams{JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	identity, err := svc.Authenticate(context.Background(), mint(t, "u1", enums.UserRoleCustomer))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.UserID != "u1" || identity.Name != "Reader" || identity.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := svc.Authenticate(context.Background(), ""); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "not-a-token"); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for garbage token, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	svc, _ := NewService(ServiceParams{JWTConfig: testJWT, AdminUserIDs: []string{" ops_1 ", ""}})

	cases := []struct {
		userID string
		role   enums.UserRole
		want   bool
	}{
		{"u1", enums.UserRoleAdmin, true},
		{"ops_1", enums.UserRoleCustomer, true},
		{"u2", enums.UserRoleCustomer, false},
		{"", enums.UserRoleCustomer, false},
	}
	for _, tc := range cases {
		if got := svc.IsAdmin(tc.userID, tc.role); got != tc.want {
			t.Fatalf("IsAdmin(%q, %s) = %v, want %v", tc.userID, tc.role, got, tc.want)
		}
	}
	if status := svc.Status(nil); status.IsAdmin {
		t.Fatal("anonymous callers are never admins")
	}
}
