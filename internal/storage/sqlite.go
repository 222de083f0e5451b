package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	logx "dietbot/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

// Open initializes the SQLite store, creating the schema if needed.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if log.IsZero() {
		log = logx.Nop()
	}
	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ---- meals ----

func (s *sqliteStore) AddMeals(ctx context.Context, rules []MealRule) error {
	if len(rules) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range rules {
		if !r.Day.Valid() {
			return fmt.Errorf("invalid day_of_week %d", r.Day)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO meals(owner, day_of_week, name, time, recipe, lead_minutes)
			 VALUES(?,?,?,?,?,?)`,
			r.Owner, int(r.Day), r.Name, r.Time, r.Recipe, r.LeadMinutes,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const mealCols = `id, owner, day_of_week, name, time, recipe, lead_minutes`

func scanMeal(row interface{ Scan(...any) error }) (MealRule, error) {
	var r MealRule
	var day int
	err := row.Scan(&r.ID, &r.Owner, &day, &r.Name, &r.Time, &r.Recipe, &r.LeadMinutes)
	r.Day = Weekday(day)
	return r, err
}

func (s *sqliteStore) queryMeals(ctx context.Context, where string, args ...any) ([]MealRule, error) {
	q := `SELECT ` + mealCols + ` FROM meals ` + where + ` ORDER BY day_of_week, time, id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MealRule
	for rows.Next() {
		r, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ListMeals(ctx context.Context, owner int64) ([]MealRule, error) {
	return s.queryMeals(ctx, `WHERE owner = ?`, owner)
}

func (s *sqliteStore) MealsForDay(ctx context.Context, day Weekday) ([]MealRule, error) {
	return s.queryMeals(ctx, `WHERE day_of_week = ?`, int(day))
}

func (s *sqliteStore) MealsForOwnerDay(ctx context.Context, owner int64, day Weekday) ([]MealRule, error) {
	return s.queryMeals(ctx, `WHERE owner = ? AND day_of_week = ?`, owner, int(day))
}

func (s *sqliteStore) GetMeal(ctx context.Context, owner, id int64) (MealRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mealCols+` FROM meals WHERE id = ? AND owner = ?`, id, owner)
	r, err := scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MealRule{}, ErrNotFound
	}
	return r, err
}

func (s *sqliteStore) UpdateMeal(ctx context.Context, owner, id int64, upd MealUpdate) error {
	var (
		col string
		val any
	)
	switch {
	case upd.Name != nil:
		col, val = "name", *upd.Name
	case upd.Time != nil:
		col, val = "time", *upd.Time
	case upd.Recipe != nil:
		col, val = "recipe", *upd.Recipe
	case upd.LeadMinutes != nil:
		col, val = "lead_minutes", *upd.LeadMinutes
	default:
		return errors.New("empty meal update")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE meals SET `+col+` = ? WHERE id = ? AND owner = ?`, val, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) DeleteMeal(ctx context.Context, owner, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM meals WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- progress ----

func (s *sqliteStore) AddProgress(ctx context.Context, e ProgressEntry) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO progress(owner, date, weight, waist, hips, chest)
		 VALUES(?,?,?,?,?,?)`,
		e.Owner, e.Date, nullFloat(e.Weight), nullFloat(e.Waist), nullFloat(e.Hips), nullFloat(e.Chest),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanProgress(row interface{ Scan(...any) error }) (ProgressEntry, error) {
	var e ProgressEntry
	var w, wa, h, c sql.NullFloat64
	err := row.Scan(&e.ID, &e.Owner, &e.Date, &w, &wa, &h, &c)
	e.Weight = floatPtr(w)
	e.Waist = floatPtr(wa)
	e.Hips = floatPtr(h)
	e.Chest = floatPtr(c)
	return e, err
}

func (s *sqliteStore) LatestProgress(ctx context.Context, owner int64) (ProgressEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner, date, weight, waist, hips, chest FROM progress
		 WHERE owner = ? ORDER BY date DESC, id DESC LIMIT 1`, owner)
	e, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ProgressEntry{}, ErrNotFound
	}
	return e, err
}

func (s *sqliteStore) RecentProgress(ctx context.Context, owner int64, limit int) ([]ProgressEntry, error) {
	if limit <= 0 {
		limit = 12
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, date, weight, waist, hips, chest FROM progress
		 WHERE owner = ? ORDER BY date DESC, id DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProgressEntry
	for rows.Next() {
		e, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- settings ----

func (s *sqliteStore) UpsertSettings(ctx context.Context, st UserSettings) error {
	if !st.CheckinDay.Valid() {
		return fmt.Errorf("invalid checkin_day %d", st.CheckinDay)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings(owner, checkin_day, grocery_time) VALUES(?,?,?)
		 ON CONFLICT(owner) DO UPDATE SET
		   checkin_day = excluded.checkin_day,
		   grocery_time = excluded.grocery_time`,
		st.Owner, int(st.CheckinDay), nullStr(st.GroceryTime),
	)
	return err
}

func scanSettings(row interface{ Scan(...any) error }) (UserSettings, error) {
	var st UserSettings
	var day int
	var g sql.NullString
	err := row.Scan(&st.Owner, &day, &g)
	st.CheckinDay = Weekday(day)
	if g.Valid {
		v := g.String
		st.GroceryTime = &v
	}
	return st, err
}

func (s *sqliteStore) GetSettings(ctx context.Context, owner int64) (UserSettings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT owner, checkin_day, grocery_time FROM user_settings WHERE owner = ?`, owner)
	st, err := scanSettings(row)
	if errors.Is(err, sql.ErrNoRows) {
		return UserSettings{}, ErrNotFound
	}
	return st, err
}

func (s *sqliteStore) querySettings(ctx context.Context, where string, args ...any) ([]UserSettings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT owner, checkin_day, grocery_time FROM user_settings `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserSettings
	for rows.Next() {
		st, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *sqliteStore) SettingsForCheckinDay(ctx context.Context, day Weekday) ([]UserSettings, error) {
	return s.querySettings(ctx, `WHERE checkin_day = ?`, int(day))
}

func (s *sqliteStore) SettingsWithGrocery(ctx context.Context) ([]UserSettings, error) {
	return s.querySettings(ctx, `WHERE grocery_time IS NOT NULL`)
}

// ---- scan helpers ----

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullStr(v *string) any {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
