package ports

import (
	"context"

	"moodlens/domain/record"
	"moodlens/internal/persona"
)

// RecordSource yields the finalized dataset rows, read once at startup
type RecordSource interface {
	LoadRecords(ctx context.Context) ([]record.Record, error)
}

// ProfileSource yields cluster centroids, read once at startup
type ProfileSource interface {
	LoadProfiles(ctx context.Context) ([]persona.Profile, error)
}

// RecordSink persists dataset rows; used by the seeding tool, never by the engine
type RecordSink interface {
	SaveRecords(ctx context.Context, records []record.Record) error
}

// ProfileSink persists cluster centroids
type ProfileSink interface {
	SaveProfiles(ctx context.Context, profiles []persona.Profile) error
}
