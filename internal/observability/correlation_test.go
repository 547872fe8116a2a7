package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "  abc-123 ")
	require.Equal(t, "abc-123", CorrelationID(ctx))

	require.Equal(t, "", CorrelationID(context.Background()))
	require.Equal(t, context.Background(), WithCorrelationID(context.Background(), "  "))
}

func TestLoggerTagsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	Logger(WithCorrelationID(context.Background(), "abc-123"), base).Info().Msg("tagged")
	require.Contains(t, buf.String(), `"correlation_id":"abc-123"`)

	buf.Reset()
	Logger(context.Background(), base).Info().Msg("plain")
	require.NotContains(t, buf.String(), "correlation_id")
}
