package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGenerator_ProducesValidRecords(t *testing.T) {
	cfg := DefaultRecordConfig()
	cfg.Count = 200

	records := NewRecordGenerator(cfg).Generate()
	require.Len(t, records, 200)

	for i, r := range records {
		if err := r.Validate(); err != nil {
			t.Errorf("record %d invalid: %v", i, err)
		}
	}
	assert.True(t, records[0].Date.Equal(cfg.StartDate))
	assert.True(t, records[len(records)-1].Date.Before(cfg.StartDate.AddDate(0, 0, cfg.Days)))
}

func TestRecordGenerator_Deterministic(t *testing.T) {
	cfg := DefaultRecordConfig()
	cfg.Count = 50

	a := NewRecordGenerator(cfg).Generate()
	b := NewRecordGenerator(cfg).Generate()
	assert.Equal(t, a, b)
}

func TestFixture_Valid(t *testing.T) {
	for i, r := range Fixture() {
		assert.NoError(t, r.Validate(), "fixture row %d", i)
	}
}
