package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/vault/internal/errors"
)

// assertBizMetricLine checks that the Prometheus output contains a business metric
// matching the given name, partial label pattern, and value. Uses regex to handle
// extra OTel scope labels injected by the Prometheus exporter.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	t.Run("Success_CreateBusinessMetrics", func(t *testing.T) {
		provider, err := NewProvider("test_app")
		require.NoError(t, err)

		businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

		require.NoError(t, err)
		assert.NotNil(t, businessMetrics)
	})
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "vault", "secret_put", "success")
	})

	t.Run("Success_RecordFailedOperation", func(t *testing.T) {
		// Should not panic
		bm.RecordOperation(context.Background(), "vault", "secret_put", "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordOperation(context.Background(), "vault", "secret_put", "success")
		bm.RecordOperation(context.Background(), "vault", "secret_get", "success")
		bm.RecordOperation(context.Background(), "policy", "reload", "error")
	})
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	t.Run("Success_RecordSuccessfulDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "vault", "secret_put", 123*time.Millisecond, "success")
	})

	t.Run("Success_RecordFailedDuration", func(t *testing.T) {
		// Should not panic
		bm.RecordDuration(context.Background(), "vault", "secret_put", 456*time.Millisecond, "error")
	})

	t.Run("Success_RecordMultipleDomains", func(t *testing.T) {
		bm.RecordDuration(context.Background(), "vault", "secret_put", 100*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "vault", "secret_get", 200*time.Millisecond, "success")
		bm.RecordDuration(context.Background(), "policy", "reload", 300*time.Millisecond, "error")
	})
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.NotNil(t, noOpMetrics)
	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	t.Run("NoOp_RecordOperationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordOperation(context.Background(), "vault", "secret_put", "success")
		noOpMetrics.RecordOperation(context.Background(), "vault", "secret_get", "error")
	})

	t.Run("NoOp_RecordDurationDoesNotPanic", func(t *testing.T) {
		// Should not panic or do anything
		noOpMetrics.RecordDuration(
			context.Background(),
			"vault",
			"secret_put",
			100*time.Millisecond,
			"success",
		)
		noOpMetrics.RecordDuration(context.Background(), "vault", "secret_get", 200*time.Millisecond, "error")
	})
}

func TestBusinessMetrics_Integration(t *testing.T) {
	provider, err := NewProvider("integration_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "integration_test")
	require.NoError(t, err)

	// Record various operations
	ctx := context.Background()

	// Record operation counts
	bm.RecordOperation(ctx, "vault", "secret_put", "success")
	bm.RecordOperation(ctx, "vault", "secret_put", "success")
	bm.RecordOperation(ctx, "vault", "secret_put", "error")
	bm.RecordOperation(ctx, "vault", "secret_get", "success")
	bm.RecordOperation(ctx, "vault", "secret_list", "success")
	bm.RecordOperation(ctx, "policy", "reload", "success")

	// Record operation durations
	bm.RecordDuration(ctx, "vault", "secret_put", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "vault", "secret_put", 60*time.Millisecond, "success")
	bm.RecordDuration(ctx, "vault", "secret_put", 100*time.Millisecond, "error")
	bm.RecordDuration(ctx, "vault", "secret_get", 10*time.Millisecond, "success")
	bm.RecordDuration(ctx, "vault", "secret_list", 20*time.Millisecond, "success")
	bm.RecordDuration(ctx, "policy", "reload", 150*time.Millisecond, "success")

	// Metrics should be recorded without errors
	// Verify metrics in Prometheus registry
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, req)

	output := w.Body.String()

	// Check operation counts
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="vault".*operation="secret_put".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="vault".*operation="secret_put".*status="error"`,
		`1`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operations_total`,
		`domain="vault".*operation="secret_get".*status="success"`,
		`1`,
	)

	// Check durations (existence)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_count`,
		`domain="vault".*operation="secret_put".*status="success"`,
		`2`,
	)
	assertBizMetricLine(
		t,
		output,
		`integration_test_operation_duration_seconds_sum`,
		`domain="vault".*operation="secret_put".*status="success"`,
		``,
	)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "Nil", err: nil, want: StatusSuccess},
		{name: "Forbidden", err: apperrors.Wrap(apperrors.ErrForbidden, "access denied"), want: StatusDenied},
		{name: "Unauthorized", err: apperrors.ErrUnauthorized, want: StatusDenied},
		{name: "NotFound", err: apperrors.Wrap(apperrors.ErrNotFound, "secret not found"), want: StatusNotFound},
		{name: "Conflict", err: apperrors.ErrConflict, want: StatusConflict},
		{name: "Sealed", err: apperrors.Wrap(apperrors.ErrSealed, "vault is sealed"), want: StatusSealed},
		{name: "Other", err: errors.New("disk full"), want: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestObserve(t *testing.T) {
	provider, err := NewProvider("observe_test")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "observe_test")
	require.NoError(t, err)

	ctx := context.Background()
	Observe(ctx, bm, "vault", "secret_get", time.Now(), apperrors.ErrNotFound)
	Observe(ctx, bm, "vault", "secret_get", time.Now(), nil)

	output := scrape(t, provider)
	assertBizMetricLine(t, output, `observe_test_operations_total`, `operation="secret_get".*status="not_found"`, `1`)
	assertBizMetricLine(t, output, `observe_test_operations_total`, `operation="secret_get".*status="success"`, `1`)
}
