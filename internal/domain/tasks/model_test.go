package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2026-04-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDueDate("2026-04-01T10:30:00+02:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 4, 1, 8, 30, 0, 0, time.UTC), got.UTC())

	_, err = ParseDueDate("next tuesday")
	require.Error(t, err)
	_, err = ParseDueDate("")
	require.Error(t, err)
}

func TestValidPriority(t *testing.T) {
	require.True(t, ValidPriority(PriorityHigh))
	require.False(t, ValidPriority("urgent"))
}
