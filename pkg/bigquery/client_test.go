package bigquery

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
)

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}
	if opts := clientOptions(gcp); len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{}); len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.BigQueryConfig{}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project error, got %v", err)
	}
	gcp := config.GCPConfig{ProjectID: "p"}
	if _, err := NewClient(ctx, gcp, config.BigQueryConfig{}, nil); !errors.Is(err, errDatasetRequired) {
		t.Fatalf("expected dataset error, got %v", err)
	}
	if _, err := NewClient(ctx, gcp, config.BigQueryConfig{Dataset: "d"}, nil); !errors.Is(err, errTableNameRequired) {
		t.Fatalf("expected table error, got %v", err)
	}
}

func TestNilClientInsert(t *testing.T) {
	var c *Client
	if err := c.InsertRows(context.Background(), "storefront_events", []any{1}); !errors.Is(err, errClientNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
}

func TestNilClientPing(t *testing.T) {
	var c *Client
	if err := c.Ping(context.Background()); !errors.Is(err, errClientNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
	if c.EventsTable() != "" {
		t.Fatal("nil client has no table")
	}
}

func TestMetadataErrorWrapsUnexpected(t *testing.T) {
	cause := errors.New("permission denied")
	if err := metadataError("table", "t", cause); !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped, got %v", err)
	}
	if err := metadataError("table", "t", &googleapi.Error{Code: http.StatusNotFound}); errors.Is(err, cause) {
		t.Fatalf("not found should not wrap unrelated cause: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&googleapi.Error{Code: http.StatusNotFound}) {
		t.Fatal("expected 404 to be not found")
	}
	if isNotFound(&googleapi.Error{Code: http.StatusForbidden}) {
		t.Fatal("403 is not a not-found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatal("plain errors are not not-found")
	}
}
