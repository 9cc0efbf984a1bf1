package payout

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_Write(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, zerolog.Nop())

	report := &CycleReport{
		CycleID: uuid.New(),
		RanAt:   time.Now(),
		Settlements: []Settlement{
			{MerchantID: uuid.New(), OrderIDs: []uuid.UUID{uuid.New()}, Gross: 100, Fee: 5, Net: 95},
		},
	}

	err := sink.Write(context.Background(), report)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, report.CycleID.String()+".json"))
	require.NoError(t, err)

	var decoded CycleReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.CycleID, decoded.CycleID)
	require.Len(t, decoded.Settlements, 1)
	assert.InDelta(t, 95, decoded.Settlements[0].Net, 0.001)
}

func TestFileSink_WriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	sink := NewFileSink(dir, zerolog.Nop())

	report := &CycleReport{CycleID: uuid.New(), RanAt: time.Now()}

	err := sink.Write(context.Background(), report)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, report.CycleID.String()+".json"))
	assert.NoError(t, err)
}
