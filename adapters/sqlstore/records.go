package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal"
	"moodlens/internal/errors"
)

// insertBatch keeps a multi-row insert under sqlite's bound-parameter limit
const insertBatch = 500

// recordRow is the table shape of a record; the date is stored as YYYY-MM-DD
// text so the same schema works on both drivers
type recordRow struct {
	ID                        int     `db:"id"`
	Date                      string  `db:"date"`
	Age                       int     `db:"age"`
	Gender                    string  `db:"gender"`
	Platform                  string  `db:"platform"`
	DailyScreenTimeMin        int     `db:"daily_screen_time_min"`
	SocialMediaTimeMin        int     `db:"social_media_time_min"`
	SleepHours                float64 `db:"sleep_hours"`
	PhysicalActivityMin       int     `db:"physical_activity_min"`
	NegativeInteractionsCount int     `db:"negative_interactions_count"`
	PositiveInteractionsCount int     `db:"positive_interactions_count"`
	AnxietyLevel              int     `db:"anxiety_level"`
	StressLevel               int     `db:"stress_level"`
	MoodLevel                 int     `db:"mood_level"`
	MentalState               string  `db:"mental_state"`
}

func toRow(id int, r record.Record) recordRow {
	return recordRow{
		ID:                        id,
		Date:                      r.Date.Format(core.DateLayout),
		Age:                       r.Age,
		Gender:                    string(r.Gender),
		Platform:                  string(r.Platform),
		DailyScreenTimeMin:        r.DailyScreenTimeMin,
		SocialMediaTimeMin:        r.SocialMediaTimeMin,
		SleepHours:                r.SleepHours,
		PhysicalActivityMin:       r.PhysicalActivityMin,
		NegativeInteractionsCount: r.NegativeInteractionsCount,
		PositiveInteractionsCount: r.PositiveInteractionsCount,
		AnxietyLevel:              r.AnxietyLevel,
		StressLevel:               r.StressLevel,
		MoodLevel:                 r.MoodLevel,
		MentalState:               string(r.MentalState),
	}
}

func (row recordRow) toRecord() (record.Record, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return record.Record{}, core.NewInvalidRecordError(record.FieldDate, err.Error())
	}
	return record.Record{
		Date:                      date,
		Age:                       row.Age,
		Gender:                    record.Gender(row.Gender),
		Platform:                  record.Platform(row.Platform),
		DailyScreenTimeMin:        row.DailyScreenTimeMin,
		SocialMediaTimeMin:        row.SocialMediaTimeMin,
		SleepHours:                row.SleepHours,
		PhysicalActivityMin:       row.PhysicalActivityMin,
		NegativeInteractionsCount: row.NegativeInteractionsCount,
		PositiveInteractionsCount: row.PositiveInteractionsCount,
		AnxietyLevel:              row.AnxietyLevel,
		StressLevel:               row.StressLevel,
		MoodLevel:                 row.MoodLevel,
		MentalState:               record.MentalState(row.MentalState),
	}, nil
}

// RecordStore implements ports.RecordSource and ports.RecordSink
type RecordStore struct {
	db  *sqlx.DB
	log *internal.Logger
}

// NewRecordStore creates a new record store
func NewRecordStore(db *sqlx.DB, log *internal.Logger) *RecordStore {
	if log == nil {
		log = internal.NewNopLogger()
	}
	return &RecordStore{db: db, log: log}
}

// LoadRecords reads every row in insertion order
func (s *RecordStore) LoadRecords(ctx context.Context) ([]record.Record, error) {
	query := `SELECT id, date, age, gender, platform, daily_screen_time_min, social_media_time_min,
		sleep_hours, physical_activity_min, negative_interactions_count, positive_interactions_count,
		anxiety_level, stress_level, mood_level, mental_state
	FROM social_media_records ORDER BY id`

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.DatabaseError("failed to query records", err)
	}

	out := make([]record.Record, len(rows))
	for i, row := range rows {
		r, err := row.toRecord()
		if err != nil {
			return nil, errors.Wrapf(err, "record id %d", row.ID)
		}
		out[i] = r
	}
	s.log.Info("[RecordStore] Loaded %d records", len(out))
	return out, nil
}

// SaveRecords replaces the table contents in one transaction
func (s *RecordStore) SaveRecords(ctx context.Context, records []record.Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM social_media_records"); err != nil {
		return errors.DatabaseError("failed to clear records", err)
	}

	query := `INSERT INTO social_media_records (
		id, date, age, gender, platform, daily_screen_time_min, social_media_time_min,
		sleep_hours, physical_activity_min, negative_interactions_count, positive_interactions_count,
		anxiety_level, stress_level, mood_level, mental_state
	) VALUES (
		:id, :date, :age, :gender, :platform, :daily_screen_time_min, :social_media_time_min,
		:sleep_hours, :physical_activity_min, :negative_interactions_count, :positive_interactions_count,
		:anxiety_level, :stress_level, :mood_level, :mental_state
	)`

	for start := 0; start < len(records); start += insertBatch {
		end := start + insertBatch
		if end > len(records) {
			end = len(records)
		}
		batch := make([]recordRow, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, toRow(i+1, records[i]))
		}
		if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert records %d-%d", start+1, end), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit records", err)
	}
	s.log.Info("[RecordStore] Saved %d records", len(records))
	return nil
}
