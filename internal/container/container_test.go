package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/adapters/excel"
	"moodlens/adapters/sqlstore"
	"moodlens/internal/config"
	"moodlens/internal/errors"
	"moodlens/internal/persona"
	"moodlens/internal/testkit"
)

const profilesCSV = "cluster,age,gender,platform,daily_screen_time_min,social_media_time_min,sleep_hours," +
	"physical_activity_min,interaction_negative_ratio,anxiety_level,stress_level,mood_level,mental_state\n" +
	"1,38.9,Female,Facebook,250.0,120.0,7.5,45.0,0.12,2.1,4.0,7.2,Healthy\n" +
	"0,22.4,Male,WhatsApp,412.5,250.1,6.26,20.0,0.31,4.4,7.6,4.1,Stressed\n"

const detailsYAML = `
personas:
  - cluster: 0
    name: Young WhatsApp Overloaded Male
    bulletpoints: ["Heavy screen time", "Short sleep"]
`

const manifestYAML = `
models:
  - name: Sleep Hours
    target: sleep_hours
    file: sleep.yaml
`

const sleepYAML = `
kind: linear
intercept: 8
numeric:
  stress_level: -0.2
`

func fileConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "records.csv")
	require.NoError(t, excel.NewRecordFile(data, nil).SaveRecords(context.Background(), testkit.Fixture()))
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	write("sleep.yaml", sleepYAML)

	return &config.Config{
		Data: config.DataConfig{
			Source:             "file",
			File:               data,
			ProfilesFile:       write("profiles.csv", profilesCSV),
			PersonaDetailsFile: write("personas.yaml", detailsYAML),
		},
		Models: config.ModelConfig{ManifestFile: write("models.yaml", manifestYAML), Timeout: time.Second},
	}
}

func TestContainer_LoadFromFiles(t *testing.T) {
	cfg := fileConfig(t)
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	require.NotNil(t, c.Service)
	assert.Equal(t, 8, c.Dataset.Len())
	assert.Equal(t, 2, c.Catalog.Len())
	assert.Len(t, c.Models.List(), 1)

	p, err := c.Catalog.Get(0)
	require.NoError(t, err)
	require.NotNil(t, p.Details)
	assert.Len(t, p.Details.Bulletpoints, 2)
}

func TestContainer_LoadFromSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "moodlens.db")
	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, sqlstore.NewMigrator(db, nil).Up(ctx))
	require.NoError(t, sqlstore.NewRecordStore(db, nil).SaveRecords(ctx, testkit.Fixture()))
	require.NoError(t, sqlstore.NewProfileStore(db, nil).SaveProfiles(ctx, []persona.Profile{{
		Cluster: 3, Age: 30, Gender: "Female", Platform: "YouTube", SleepHours: 6, MentalState: "Stressed",
	}}))
	require.NoError(t, db.Close())

	cfg := &config.Config{
		Data:     config.DataConfig{Source: "sql"},
		Database: config.DatabaseConfig{Driver: sqlstore.DriverSQLite, URL: dsn},
	}
	c, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 8, c.Dataset.Len())
	assert.Equal(t, "sql:sqlite", c.Dataset.Metadata().Source)
	assert.Len(t, c.Service.Personas(), 1)
}

func TestContainer_LoadFailureIsFatal(t *testing.T) {
	cfg := fileConfig(t)
	cfg.Data.File = filepath.Join(t.TempDir(), "missing.xlsx")
	c, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	err = c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeLoadFailed, errors.GetCode(err))
	assert.Nil(t, c.Service)
}
