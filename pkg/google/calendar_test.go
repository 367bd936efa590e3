package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/dailytodo/pkg/habitica"
	"github.com/harrisonrobin/dailytodo/pkg/index"
)

func sampleTodo() *habitica.Todo {
	return &habitica.Todo{
		ID:        "todo-1",
		Type:      habitica.TypeTodo,
		Text:      "Groceries",
		Notes:     "buy milk",
		Priority:  1.5,
		Date:      habitica.NewDate(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)),
		Checklist: []habitica.ChecklistItem{{Text: "2%"}},
	}
}

func TestEventFromTodo(t *testing.T) {
	event, err := EventFromTodo(sampleTodo())
	require.NoError(t, err)

	assert.Equal(t, "Groceries", event.Summary)
	assert.Equal(t, "2026-10-17", event.Start.Date)
	assert.Equal(t, "2026-10-18", event.End.Date)
	assert.Empty(t, event.Start.DateTime)
	assert.Equal(t, "5", event.ColorId)
	assert.Equal(t, "todo-1", event.ExtendedProperties.Private[todoIDProperty])
	assert.True(t, strings.HasPrefix(event.Description, "buy milk\n\nDifficulty: Medium\n"))
	assert.Contains(t, event.Description, "‣ 2%")
}

func TestEventFromTodoRejectsIncomplete(t *testing.T) {
	_, err := EventFromTodo(nil)
	assert.Error(t, err)

	todo := sampleTodo()
	todo.ID = ""
	_, err = EventFromTodo(todo)
	assert.Error(t, err)

	todo = sampleTodo()
	todo.Date = habitica.Date{}
	_, err = EventFromTodo(todo)
	assert.Error(t, err)
}

// fakeCalendar serves the handful of Calendar v3 endpoints the mirror uses.
type fakeCalendar struct {
	mu       sync.Mutex
	events   map[string]*calendar.Event
	inserted int
	patched  int
}

func (f *fakeCalendar) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/events"):
		var ev calendar.Event
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &ev)
		f.inserted++
		ev.Id = "ev" + string(rune('0'+f.inserted))
		f.events[ev.Id] = &ev
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/events"):
		want := r.URL.Query().Get("privateExtendedProperty")
		var items []*calendar.Event
		for _, ev := range f.events {
			if ev.ExtendedProperties != nil && todoIDProperty+"="+ev.ExtendedProperties.Private[todoIDProperty] == want {
				items = append(items, ev)
			}
		}
		json.NewEncoder(w).Encode(calendar.Events{Items: items})
	case r.Method == http.MethodGet:
		id := path[strings.LastIndex(path, "/")+1:]
		ev, ok := f.events[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"code":404,"message":"Not Found"}}`)
			return
		}
		json.NewEncoder(w).Encode(ev)
	case r.Method == http.MethodPatch:
		id := path[strings.LastIndex(path, "/")+1:]
		f.patched++
		json.NewEncoder(w).Encode(f.events[id])
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestMirror(t *testing.T, fake *fakeCalendar, idx *index.EventIndex) *CalendarMirror {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := calendar.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewCalendarMirror(svc, "cal-1", idx)
}

func TestMirrorTodoInsertsOnce(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	idx, err := index.Open(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, err)
	m := newTestMirror(t, fake, idx)

	require.NoError(t, m.MirrorTodo(context.Background(), sampleTodo()))
	assert.Equal(t, 1, fake.inserted)
	assert.Equal(t, "ev1", idx.Get("todo-1"))

	require.NoError(t, m.MirrorTodo(context.Background(), sampleTodo()))
	assert.Equal(t, 1, fake.inserted)
	assert.Equal(t, 1, fake.patched)
}

func TestMirrorTodoRecoversFromStaleIndex(t *testing.T) {
	fake := &fakeCalendar{events: map[string]*calendar.Event{}}
	idx, err := index.Open(filepath.Join(t.TempDir(), "events.json"))
	require.NoError(t, err)
	idx.Set("todo-1", "gone")
	m := newTestMirror(t, fake, idx)

	require.NoError(t, m.MirrorTodo(context.Background(), sampleTodo()))
	assert.Equal(t, 1, fake.inserted)
	assert.Equal(t, "ev1", idx.Get("todo-1"))
}
