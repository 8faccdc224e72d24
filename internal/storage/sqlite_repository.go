package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateHabit(ctx context.Context, in Habit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (id, title, frequency, category, xp_on_complete, streak, best_streak, last_completed_at, is_recurring, specific_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Frequency, in.Category, in.XPOnComplete, in.Streak, in.BestStreak,
		nullTime(in.LastCompletedAt), boolInt(in.IsRecurring), nullTime(in.SpecificDate), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetHabit(ctx context.Context, id string) (Habit, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, frequency, category, xp_on_complete, streak, best_streak, last_completed_at, is_recurring, specific_date, created_at
		FROM habits WHERE id = ?`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Habit{}, ErrNotFound
		}
		return Habit{}, err
	}
	return habit, nil
}

func (r *SQLiteRepository) UpdateHabit(ctx context.Context, in Habit) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE habits
		SET title = ?, frequency = ?, category = ?, xp_on_complete = ?, streak = ?, best_streak = ?, last_completed_at = ?, is_recurring = ?, specific_date = ?
		WHERE id = ?`,
		in.Title, in.Frequency, in.Category, in.XPOnComplete, in.Streak, in.BestStreak,
		nullTime(in.LastCompletedAt), boolInt(in.IsRecurring), nullTime(in.SpecificDate), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListHabits(ctx context.Context) ([]Habit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, frequency, category, xp_on_complete, streak, best_streak, last_completed_at, is_recurring, specific_date, created_at
		FROM habits ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Habit, 0)
	for rows.Next() {
		habit, scanErr := scanHabit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, habit)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertCompletion(ctx context.Context, in Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (habit_id, period_key, completed_at, legacy_done)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (habit_id, period_key) DO UPDATE SET completed_at = excluded.completed_at, legacy_done = excluded.legacy_done`,
		in.HabitID, in.PeriodKey, nullTime(in.CompletedAt), boolInt(in.LegacyDone),
	)
	return err
}

func (r *SQLiteRepository) DeleteCompletion(ctx context.Context, habitID, periodKey string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM completions WHERE habit_id = ? AND period_key = ?`, habitID, periodKey)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error) {
	query := `SELECT habit_id, period_key, completed_at, legacy_done FROM completions`
	args := make([]any, 0, 2)
	switch {
	case filter.HabitID != "" && filter.PeriodKey != "":
		query += ` WHERE habit_id = ? AND period_key = ?`
		args = append(args, filter.HabitID, filter.PeriodKey)
	case filter.HabitID != "":
		query += ` WHERE habit_id = ?`
		args = append(args, filter.HabitID)
	case filter.PeriodKey != "":
		query += ` WHERE period_key = ?`
		args = append(args, filter.PeriodKey)
	}
	query += ` ORDER BY period_key ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Completion, 0)
	for rows.Next() {
		item, scanErr := scanCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateReward(ctx context.Context, in Reward) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rewards (id, name, cost, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, in.Cost, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetReward(ctx context.Context, id string) (Reward, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, cost, created_at FROM rewards WHERE id = ?`, id)
	item, err := scanReward(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reward{}, ErrNotFound
		}
		return Reward{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) DeleteReward(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListRewards(ctx context.Context) ([]Reward, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, cost, created_at FROM rewards ORDER BY cost ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Reward, 0)
	for rows.Next() {
		item, scanErr := scanReward(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddInventoryItem(ctx context.Context, in InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory (id, reward_id, name, cost, redeemed_at)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.RewardID, in.Name, in.Cost, mustTime(in.RedeemedAt),
	)
	return err
}

func (r *SQLiteRepository) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, reward_id, name, cost, redeemed_at FROM inventory ORDER BY redeemed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]InventoryItem, 0)
	for rows.Next() {
		var item InventoryItem
		var redeemed string
		if err := rows.Scan(&item.ID, &item.RewardID, &item.Name, &item.Cost, &redeemed); err != nil {
			return nil, err
		}
		redeemedAt, err := parseRequiredTime(redeemed)
		if err != nil {
			return nil, err
		}
		item.RedeemedAt = redeemedAt
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertCategory(ctx context.Context, in Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (name, monthly_target_xp)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET monthly_target_xp = excluded.monthly_target_xp`,
		in.Name, in.MonthlyTargetXP,
	)
	return err
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, monthly_target_xp FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var item Category
		if err := rows.Scan(&item.Name, &item.MonthlyTargetXP); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetProfile(ctx context.Context) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT points, total_xp FROM profile WHERE id = 1`)
	var out Profile
	if err := row.Scan(&out.Points, &out.TotalXP); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, in Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile (id, points, total_xp)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET points = excluded.points, total_xp = excluded.total_xp`,
		in.Points, in.TotalXP,
	)
	return err
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (r *SQLiteRepository) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Habits, err = r.ListHabits(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Completions, err = r.ListCompletions(ctx, CompletionListFilter{}); err != nil {
		return Snapshot{}, err
	}
	if snap.Rewards, err = r.ListRewards(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Inventory, err = r.ListInventory(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Categories, err = r.ListCategories(ctx); err != nil {
		return Snapshot{}, err
	}
	snap.Profile, err = r.GetProfile(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Snapshot{}, err
	}
	snap.Settings = make(map[string]string)
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Snapshot{}, err
		}
		snap.Settings[k] = v
	}
	return snap, rows.Err()
}

// ReplaceAll wipes the store and loads the snapshot in a single transaction.
// Either the whole snapshot lands or nothing changes.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, snap Snapshot) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"completions", "habits", "inventory", "rewards", "categories", "profile", "settings"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for _, h := range snap.Habits {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO habits (id, title, frequency, category, xp_on_complete, streak, best_streak, last_completed_at, is_recurring, specific_date, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				h.ID, h.Title, h.Frequency, h.Category, h.XPOnComplete, h.Streak, h.BestStreak,
				nullTime(h.LastCompletedAt), boolInt(h.IsRecurring), nullTime(h.SpecificDate), mustTime(h.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert habit %s: %w", h.ID, err)
			}
		}
		for _, c := range snap.Completions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO completions (habit_id, period_key, completed_at, legacy_done)
				VALUES (?, ?, ?, ?)`,
				c.HabitID, c.PeriodKey, nullTime(c.CompletedAt), boolInt(c.LegacyDone),
			); err != nil {
				return fmt.Errorf("insert completion %s/%s: %w", c.HabitID, c.PeriodKey, err)
			}
		}
		for _, rw := range snap.Rewards {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO rewards (id, name, cost, created_at) VALUES (?, ?, ?, ?)`,
				rw.ID, rw.Name, rw.Cost, mustTime(rw.CreatedAt),
			); err != nil {
				return fmt.Errorf("insert reward %s: %w", rw.ID, err)
			}
		}
		for _, item := range snap.Inventory {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO inventory (id, reward_id, name, cost, redeemed_at) VALUES (?, ?, ?, ?, ?)`,
				item.ID, item.RewardID, item.Name, item.Cost, mustTime(item.RedeemedAt),
			); err != nil {
				return fmt.Errorf("insert inventory item %s: %w", item.ID, err)
			}
		}
		for _, cat := range snap.Categories {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (name, monthly_target_xp) VALUES (?, ?)`,
				cat.Name, cat.MonthlyTargetXP,
			); err != nil {
				return fmt.Errorf("insert category %s: %w", cat.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profile (id, points, total_xp) VALUES (1, ?, ?)`,
			snap.Profile.Points, snap.Profile.TotalXP,
		); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		for k, v := range snap.Settings {
			if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
				return fmt.Errorf("insert setting %s: %w", k, err)
			}
		}
		return nil
	})
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (Habit, error) {
	var out Habit
	var lastCompleted sql.NullString
	var recurring int
	var specific sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Frequency, &out.Category, &out.XPOnComplete,
		&out.Streak, &out.BestStreak, &lastCompleted, &recurring, &specific, &created); err != nil {
		return Habit{}, err
	}
	lastCompletedAt, err := parseNullableTime(lastCompleted)
	if err != nil {
		return Habit{}, err
	}
	specificDate, err := parseNullableTime(specific)
	if err != nil {
		return Habit{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Habit{}, err
	}
	out.LastCompletedAt = lastCompletedAt
	out.IsRecurring = recurring == 1
	out.SpecificDate = specificDate
	out.CreatedAt = createdAt
	return out, nil
}

func scanCompletion(s scanner) (Completion, error) {
	var out Completion
	var completed sql.NullString
	var legacy int
	if err := s.Scan(&out.HabitID, &out.PeriodKey, &completed, &legacy); err != nil {
		return Completion{}, err
	}
	completedAt, err := parseNullableTime(completed)
	if err != nil {
		return Completion{}, err
	}
	out.CompletedAt = completedAt
	out.LegacyDone = legacy == 1
	return out, nil
}

func scanReward(s scanner) (Reward, error) {
	var out Reward
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.Cost, &created); err != nil {
		return Reward{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Reward{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
