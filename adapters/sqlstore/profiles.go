package sqlstore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"moodlens/internal"
	"moodlens/internal/errors"
	"moodlens/internal/persona"
)

const profileColumns = `cluster, COALESCE(name, '') AS name, age, gender, platform, daily_screen_time_min,
	social_media_time_min, sleep_hours, physical_activity_min, interaction_negative_ratio,
	anxiety_level, stress_level, mood_level, mental_state`

// ProfileStore implements ports.ProfileSource and ports.ProfileSink
type ProfileStore struct {
	db  *sqlx.DB
	log *internal.Logger
}

// NewProfileStore creates a new profile store
func NewProfileStore(db *sqlx.DB, log *internal.Logger) *ProfileStore {
	if log == nil {
		log = internal.NewNopLogger()
	}
	return &ProfileStore{db: db, log: log}
}

// LoadProfiles returns centroids ordered by cluster index
func (s *ProfileStore) LoadProfiles(ctx context.Context) ([]persona.Profile, error) {
	var out []persona.Profile
	if err := s.db.SelectContext(ctx, &out, "SELECT "+profileColumns+" FROM cluster_profiles ORDER BY cluster"); err != nil {
		return nil, errors.DatabaseError("failed to query cluster profiles", err)
	}
	s.log.Info("[ProfileStore] Loaded %d cluster profiles", len(out))
	return out, nil
}

// SaveProfiles replaces every centroid
func (s *ProfileStore) SaveProfiles(ctx context.Context, profiles []persona.Profile) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cluster_profiles"); err != nil {
		return errors.DatabaseError("failed to clear cluster profiles", err)
	}
	query := `INSERT INTO cluster_profiles (
		cluster, name, age, gender, platform, daily_screen_time_min, social_media_time_min, sleep_hours,
		physical_activity_min, interaction_negative_ratio, anxiety_level, stress_level, mood_level, mental_state
	) VALUES (
		:cluster, :name, :age, :gender, :platform, :daily_screen_time_min, :social_media_time_min, :sleep_hours,
		:physical_activity_min, :interaction_negative_ratio, :anxiety_level, :stress_level, :mood_level, :mental_state
	)`
	for _, p := range profiles {
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return errors.DatabaseError("failed to insert cluster profile", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit cluster profiles", err)
	}
	return nil
}
