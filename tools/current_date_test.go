package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentDate(t *testing.T) {
	restore := now
	t.Cleanup(func() { now = restore })
	now = func() time.Time { return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC) }

	out, err := CurrentDate(context.Background(), CurrentDateInput{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:30:00Z", out.CurrentTime)

	out, err = CurrentDate(context.Background(), CurrentDateInput{Format: "2006-01-02 15:04", Location: "Europe/Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01 14:30", out.CurrentTime)

	_, err = CurrentDate(context.Background(), CurrentDateInput{Location: "Mars/Olympus"})
	assert.Error(t, err)
}
