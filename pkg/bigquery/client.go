package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

const metadataTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery events table is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Client writes storefront analytics rows into a single events table.
type Client struct {
	bq      *bigquery.Client
	dataset *bigquery.Dataset
	table   string
}

// NewClient connects to BigQuery and fails fast when the dataset or events
// table is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	table := strings.TrimSpace(cfg.EventsTable)
	switch {
	case projectID == "":
		return nil, errProjectIDRequired
	case datasetID == "":
		return nil, errDatasetRequired
	case table == "":
		return nil, errTableNameRequired
	}

	bq, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	c := &Client{bq: bq, dataset: bq.Dataset(datasetID), table: table}
	if err := c.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dataset": datasetID, "table": table}), "bigquery.ready")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	if js := strings.TrimSpace(gcp.CredentialsJSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	if file := strings.TrimSpace(gcp.ApplicationCredentials); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}
	}
	return nil
}

// EventsTable is the table storefront analytics rows land in.
func (c *Client) EventsTable() string {
	if c == nil {
		return ""
	}
	return c.table
}

// Ping checks that the dataset and events table exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return metadataError("dataset", c.dataset.DatasetID, err)
	}
	if _, err := c.dataset.Table(c.table).Metadata(ctx); err != nil {
		return metadataError("table", c.table, err)
	}
	return nil
}

func metadataError(kind, name string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("bigquery %s %q does not exist", kind, name)
	}
	return fmt.Errorf("bigquery %s %q: %w", kind, name, err)
}

// InsertRows streams rows into table. Partial failures report how many rows
// were rejected.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}
	if len(rows) == 0 {
		return nil
	}

	err := c.dataset.Table(table).Inserter().Put(ctx, rows)
	var multi bigquery.PutMultiError
	if errors.As(err, &multi) {
		return fmt.Errorf("bigquery insert: %d of %d rows rejected: %w", len(multi), len(rows), err)
	}
	return err
}

func (c *Client) Close() error {
	if c == nil || c.bq == nil {
		return nil
	}
	return c.bq.Close()
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
