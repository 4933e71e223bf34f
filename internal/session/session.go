package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/abatilo/taskmaster/internal/ai"
	"github.com/abatilo/taskmaster/internal/task"
	"github.com/abatilo/taskmaster/internal/view"
)

const sessionFile = "session.json"

// Session is the view state the CLI keeps between invocations.
type Session struct {
	Category string    `json:"category"`
	Priority string    `json:"priority"`
	Search   string    `json:"search"`
	Year     int       `json:"year,omitempty"`
	Month    int       `json:"month,omitempty"`
	Quote    *ai.Quote `json:"quote,omitempty"`
	QuoteDay string    `json:"quote_day,omitempty"`
}

// Default returns a session with no filter and no calendar month chosen.
func Default() *Session {
	return &Session{Category: view.All, Priority: view.All}
}

// Criteria returns the persisted filter.
func (s *Session) Criteria() view.Criteria {
	return view.Criteria{
		Category: task.Category(s.Category),
		Priority: task.Priority(s.Priority),
		Search:   s.Search,
	}
}

// SetCriteria replaces the persisted filter.
func (s *Session) SetCriteria(c view.Criteria) {
	s.Category = string(c.Category)
	s.Priority = string(c.Priority)
	s.Search = c.Search
}

// CalendarMonth returns the displayed month, or now's month if none was chosen.
func (s *Session) CalendarMonth(now time.Time) (int, time.Month) {
	if s.Year == 0 || s.Month < 1 || s.Month > 12 {
		return now.Year(), now.Month()
	}
	return s.Year, time.Month(s.Month)
}

// SetCalendarMonth records the displayed month.
func (s *Session) SetCalendarMonth(year int, month time.Month) {
	s.Year = year
	s.Month = int(month)
}

// CachedQuote returns the stored quote if it was fetched on day.
func (s *Session) CachedQuote(day string) (ai.Quote, bool) {
	if s.Quote == nil || s.QuoteDay != day {
		return ai.Quote{}, false
	}
	return *s.Quote, true
}

// SetQuote stores q as the quote for day.
func (s *Session) SetQuote(q ai.Quote, day string) {
	s.Quote = &q
	s.QuoteDay = day
}

// sessionPath returns the full path to session.json for the given base path.
func sessionPath(basePath string) string {
	return filepath.Join(basePath, sessionFile)
}

// Load reads the session from disk.
func Load(basePath string) (*Session, error) {
	data, err := os.ReadFile(sessionPath(basePath))
	if err != nil {
		return nil, err
	}

	s := Default()
	if unmarshalErr := json.Unmarshal(data, s); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	return s, nil
}

// LoadOrDefault reads the session, falling back to Default when the file is
// missing or unreadable.
func LoadOrDefault(basePath string) *Session {
	s, err := Load(basePath)
	if err != nil {
		return Default()
	}
	return s
}

// Save writes the session to disk.
func Save(basePath string, s *Session) error {
	//nolint:gosec // G301: 0755 is appropriate for user-accessible data directory
	if mkdirErr := os.MkdirAll(basePath, 0o755); mkdirErr != nil {
		return mkdirErr
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	//nolint:gosec // G306: 0644 is appropriate for user-readable session files
	return os.WriteFile(sessionPath(basePath), data, 0o644)
}

// Delete removes the session file.
func Delete(basePath string) error {
	err := os.Remove(sessionPath(basePath))
	if os.IsNotExist(err) {
		return nil // Already deleted, not an error
	}
	return err
}
