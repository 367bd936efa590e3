package google

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/dailytodo/pkg/auth"
	"github.com/harrisonrobin/dailytodo/pkg/index"
)

// NewMirror authenticates against Google Calendar and returns a mirror onto
// the calendar named calendarName.
func NewMirror(ctx context.Context, calendarName string, idx *index.EventIndex) (*CalendarMirror, error) {
	srv, err := auth.GetCalendarService(ctx)
	if err != nil {
		return nil, err
	}
	calendarID, err := FindCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarMirror(srv, calendarID, idx), nil
}

// FindCalendarID resolves a calendar name (its summary) to its id.
func FindCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", errors.Wrap(err, "unable to retrieve calendar list")
	}
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return item.Id, nil
		}
	}
	return "", errors.Errorf("calendar '%s' not found", calendarName)
}
