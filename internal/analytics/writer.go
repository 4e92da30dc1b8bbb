package analytics

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 250 * time.Millisecond
	defaultMaximumBackoff = 2 * time.Second
)

// RetryPolicy bounds BigQuery insert retries. Zero values pick defaults.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	if p.MaximumBackoff < p.InitialBackoff {
		p.MaximumBackoff = max(defaultMaximumBackoff, p.InitialBackoff)
	}
	return p
}

// delay is the wait before retry n (1-based): exponential growth capped at
// MaximumBackoff, with up to half of it jittered away.
func (p RetryPolicy) delay(n int) time.Duration {
	d := p.InitialBackoff << (n - 1)
	if d <= 0 || d > p.MaximumBackoff {
		d = p.MaximumBackoff
	}
	return d - rand.N(d/2+1)
}

type tableInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// Writer streams analytics rows into the events table.
type Writer struct {
	client tableInserter
	table  string
	retry  RetryPolicy
}

// NewWriter accepts a *pkg/bigquery.Client or any other row inserter.
func NewWriter(client tableInserter, table string, retry RetryPolicy) (*Writer, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("events table is required")
	}
	return &Writer{client: client, table: table, retry: retry.withDefaults()}, nil
}

func (w *Writer) Write(ctx context.Context, row EventRow) error {
	rows := []any{&row}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := w.client.InsertRows(ctx, w.table, rows)
		if err == nil {
			return nil
		}
		if attempt >= w.retry.MaxAttempts || !transient(err) {
			return fmt.Errorf("insert into %s after %d attempt(s): %w", w.table, attempt, err)
		}

		wait := time.NewTimer(w.retry.delay(attempt))
		select {
		case <-ctx.Done():
			wait.Stop()
			return ctx.Err()
		case <-wait.C:
		}
	}
}

// transient reports whether a BigQuery failure is worth retrying. A partial
// insert failure is transient only when every row error is.
func transient(err error) bool {
	var rowErrs cbigquery.PutMultiError
	if errors.As(err, &rowErrs) {
		for _, rowErr := range rowErrs {
			for _, inner := range rowErr.Errors {
				if !transient(inner) {
					return false
				}
			}
		}
		return len(rowErrs) > 0
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		switch st.Code() {
		case codes.Aborted, codes.DeadlineExceeded, codes.Internal,
			codes.ResourceExhausted, codes.Unavailable:
			return true
		}
	}
	return false
}
