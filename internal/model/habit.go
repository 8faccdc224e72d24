package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidFrequency  = errors.New("model: invalid habit frequency")
	ErrInvalidCompletion = errors.New("model: invalid completion value")
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

func ParseFrequency(input string) (Frequency, error) {
	f := Frequency(strings.TrimSpace(strings.ToLower(input)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, input)
	}
	return f, nil
}

// Completion records that a habit was done for one period bucket. Entries
// written by current code carry the completion timestamp; entries imported
// from old backups may only carry a boolean, in which case the date is
// inferred from the period key itself.
type Completion struct {
	CompletedAt *time.Time
	LegacyDone  bool
}

func CompletionAt(at time.Time) Completion {
	return Completion{CompletedAt: &at}
}

// ResolveDate normalizes both completion representations to a concrete date.
func (c Completion) ResolveDate(key string) (time.Time, error) {
	if c.CompletedAt != nil {
		return *c.CompletedAt, nil
	}
	return InferDateFromKey(key)
}

func (c Completion) MarshalJSON() ([]byte, error) {
	if c.CompletedAt != nil {
		return json.Marshal(c.CompletedAt.Format(time.RFC3339Nano))
	}
	return json.Marshal(c.LegacyDone)
}

func (c *Completion) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*c = Completion{LegacyDone: asBool}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCompletion, string(data))
	}
	at, err := time.Parse(time.RFC3339Nano, asString)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCompletion, asString)
	}
	*c = Completion{CompletedAt: &at}
	return nil
}

const DefaultXPOnComplete = 10

type Habit struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Frequency       Frequency             `json:"frequency"`
	Category        string                `json:"category"`
	XPOnComplete    int                   `json:"xpOnComplete"`
	Streak          int                   `json:"streak"`
	BestStreak      int                   `json:"bestStreak"`
	LastCompletedAt *time.Time            `json:"lastCompletedAt,omitempty"`
	Completions     map[string]Completion `json:"completions"`
	IsRecurring     bool                  `json:"isRecurring"`
	SpecificDate    *time.Time            `json:"specificDate,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: habit id is required")
	}
	if strings.TrimSpace(h.Title) == "" {
		return errors.New("model: habit title is required")
	}
	if !h.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, h.Frequency)
	}
	if h.XPOnComplete < 0 {
		return errors.New("model: habit xpOnComplete must not be negative")
	}
	if h.Streak < 0 || h.BestStreak < 0 {
		return errors.New("model: habit streaks must not be negative")
	}
	if h.BestStreak < h.Streak {
		return errors.New("model: best streak below current streak")
	}
	return nil
}

// DoneFor reports whether the habit is complete for the period containing the
// given date. Presence of the key is the only signal.
func (h Habit) DoneFor(date time.Time) bool {
	_, ok := h.Completions[PeriodKey(h.Frequency, date)]
	return ok
}
