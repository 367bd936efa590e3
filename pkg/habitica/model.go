package habitica

import (
	"fmt"
	"strings"
	"time"
)

const (
	TypeDaily = "daily"
	TypeTodo  = "todo"

	AttributeStrength     = "str"
	AttributeIntelligence = "int"
	AttributeConstitution = "con"
	AttributePerception   = "per"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. Habitica accepts
// "YYYY-MM-DD" for due dates and answers with a full UTC timestamp.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("failed to parse Habitica date '%s': %w", s, err)
	}
	*d = NewDate(t.UTC())
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

type ChecklistItem struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Daily is a recurring task as listed by GET /tasks/user?type=dailys.
type Daily struct {
	ID        string          `json:"id"`
	Type      string          `json:"type,omitempty"`
	Text      string          `json:"text"`
	Notes     string          `json:"notes"`
	Tags      []string        `json:"tags,omitempty"`
	IsDue     bool            `json:"isDue"`
	Completed bool            `json:"completed"`
	Checklist []ChecklistItem `json:"checklist,omitempty"`
	Attribute string          `json:"attribute,omitempty"`
}

// Todo is the one-off task payload for POST /tasks/user, and the entity
// the service answers with.
type Todo struct {
	ID        string          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Notes     string          `json:"notes"`
	Tags      []string        `json:"tags"`
	Priority  float64         `json:"priority"`
	Attribute string          `json:"attribute"`
	Date      Date            `json:"date"`
	Checklist []ChecklistItem `json:"checklist"`
}

type User struct {
	ID   string `json:"id"`
	Auth struct {
		Timestamps struct {
			Created  string `json:"created,omitempty"`
			LoggedIn string `json:"loggedin,omitempty"`
			Updated  string `json:"updated,omitempty"`
		} `json:"timestamps"`
	} `json:"auth"`
}

// UpdatedAt returns the last account update time. ok is false when the
// timestamp is missing or unreadable.
func (u *User) UpdatedAt() (time.Time, bool) {
	s := u.Auth.Timestamps.Updated
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
