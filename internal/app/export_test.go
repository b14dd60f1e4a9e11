package app

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickflash/internal/domain"
)

func TestWriteEventsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "flow.csv")

	events := []domain.TickEvent{
		{
			ID:         "tick_2",
			Key:        "SPY",
			Timestamp:  1500,
			Price:      10.5,
			Quantity:   3,
			Notional:   31.5,
			Side:       domain.SideBuy,
			SideSource: domain.SideSourceUptick,
			Edge:       domain.EdgeAsk,
			Provider:   "tradier",
		},
		{
			ID:         "tick_1",
			Key:        "SPY",
			Timestamp:  1200,
			Price:      10.0,
			Quantity:   5,
			Notional:   50,
			Side:       domain.SideUnknown,
			SideSource: domain.SideSourceNone,
		},
	}

	require.NoError(t, writeEventsCSV(path, events))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, []string{"tick_2", "SPY", "1500", "10.5", "3", "31.50", "BUY", "UPTICK", "ASK", "", "", "tradier"}, records[1][:12])
	assert.Equal(t, "UNKNOWN", records[2][6])
}
