package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/dailytodo/pkg/difficulty"
	"github.com/harrisonrobin/dailytodo/pkg/habitica"
	"github.com/harrisonrobin/dailytodo/pkg/index"
)

const todoIDProperty = "habitica_todo_id"

// Calendar color ids by To-Do difficulty.
var colorIDs = map[float64]string{
	difficulty.Trivial: "8",
	difficulty.Easy:    "2",
	difficulty.Medium:  "5",
	difficulty.Hard:    "11",
}

// CalendarMirror copies created To-Dos onto a Google Calendar as all-day
// events on their due date.
type CalendarMirror struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
}

func NewCalendarMirror(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarMirror {
	return &CalendarMirror{srv: srv, calendarID: calendarID, index: idx}
}

// MirrorTodo creates the event for todo, or updates it if one exists already.
func (m *CalendarMirror) MirrorTodo(ctx context.Context, todo *habitica.Todo) error {
	event, err := EventFromTodo(todo)
	if err != nil {
		return err
	}

	existing, err := m.findEvent(ctx, todo.ID)
	if err != nil {
		return errors.Wrap(err, "error searching for event")
	}
	if existing != nil {
		updated, err := m.srv.Events.Patch(m.calendarID, existing.Id, event).Context(ctx).Do()
		if err != nil {
			return errors.Wrapf(err, "patch event %s", existing.Id)
		}
		m.remember(todo.ID, updated.Id)
		return nil
	}

	created, err := m.srv.Events.Insert(m.calendarID, event).Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "insert event")
	}
	m.remember(todo.ID, created.Id)
	return nil
}

// findEvent tries the local index first and falls back to searching the
// calendar's private extended properties.
func (m *CalendarMirror) findEvent(ctx context.Context, todoID string) (*calendar.Event, error) {
	if m.index != nil {
		if eventID := m.index.Get(todoID); eventID != "" {
			event, err := m.srv.Events.Get(m.calendarID, eventID).Context(ctx).Do()
			if err == nil && event.Status != "cancelled" {
				return event, nil
			}
			// Stale mapping, the search below decides.
			m.index.Remove(todoID)
		}
	}

	events, err := m.srv.Events.List(m.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", todoIDProperty, todoID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func (m *CalendarMirror) remember(todoID, eventID string) {
	if m.index != nil {
		m.index.Set(todoID, eventID)
	}
}

// EventFromTodo converts a created To-Do into an all-day calendar event.
func EventFromTodo(todo *habitica.Todo) (*calendar.Event, error) {
	if todo == nil {
		return nil, errors.New("could not convert nil To-Do")
	}
	if todo.ID == "" {
		return nil, errors.Errorf("To-Do %q has no id", todo.Text)
	}
	if todo.Date.IsZero() {
		return nil, errors.Errorf("To-Do %s has no due date", todo.ID)
	}

	var desc strings.Builder
	if todo.Notes != "" {
		desc.WriteString(todo.Notes)
		desc.WriteString("\n\n")
	}
	fmt.Fprintf(&desc, "Difficulty: %s\n", difficulty.Name(todo.Priority))
	if len(todo.Checklist) > 0 {
		desc.WriteString("\nChecklist:\n")
		for _, item := range todo.Checklist {
			mark := "‣"
			if item.Completed {
				mark = "✓"
			}
			fmt.Fprintf(&desc, "%s %s\n", mark, item.Text)
		}
	}

	colorID, ok := colorIDs[todo.Priority]
	if !ok {
		colorID = colorIDs[difficulty.Easy]
	}

	return &calendar.Event{
		Summary:     todo.Text,
		Description: desc.String(),
		ColorId:     colorID,
		// All-day events end on the following day, exclusive.
		Start: &calendar.EventDateTime{Date: todo.Date.String()},
		End:   &calendar.EventDateTime{Date: habitica.NewDate(todo.Date.AddDate(0, 0, 1)).String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{todoIDProperty: todo.ID},
		},
	}, nil
}
