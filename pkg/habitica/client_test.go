package habitica

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "0b9c3e9a-6a1f-4a53-9f4e-6f0c2a1d8e11"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Credentials{UserID: testUserID, APIToken: "secret"}, WithBaseURL(srv.URL), WithTimeout(5*time.Second))
}

func TestClientSendsAccountHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserID, r.Header.Get("x-api-user"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, testUserID+"-ConvertDailiesToTodos", r.Header.Get("x-client"))
		assert.Equal(t, "/user", r.URL.Path)
		io.WriteString(w, `{"success":true,"data":{"id":"u1","auth":{"timestamps":{"updated":"2026-10-15T08:30:00.000Z"}}}}`)
	})

	user, err := c.GetUser(context.Background())
	require.NoError(t, err)
	updated, ok := user.UpdatedAt()
	require.True(t, ok)
	assert.True(t, updated.Equal(time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)))
}

func TestUserWithoutTimestamp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"data":{"id":"u1","auth":{}}}`)
	})

	user, err := c.GetUser(context.Background())
	require.NoError(t, err)
	_, ok := user.UpdatedAt()
	assert.False(t, ok)
}

func TestListDailies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks/user", r.URL.Path)
		assert.Equal(t, "dailys", r.URL.Query().Get("type"))
		io.WriteString(w, `{"success":true,"data":[
			{"id":"d1","type":"daily","text":"Milk","notes":"Recurrent Medium buy milk","isDue":true,"completed":false,
			 "tags":["t1"],"attribute":"per","checklist":[{"id":"c1","text":"2%","completed":true}]},
			{"id":"d2","type":"daily","text":"Run","notes":"","isDue":false,"completed":false}
		]}`)
	})

	dailies, err := c.ListDailies(context.Background())
	require.NoError(t, err)
	require.Len(t, dailies, 2)
	assert.Equal(t, "d1", dailies[0].ID)
	assert.True(t, dailies[0].IsDue)
	assert.Equal(t, AttributePerception, dailies[0].Attribute)
	require.Len(t, dailies[0].Checklist, 1)
	assert.True(t, dailies[0].Checklist[0].Completed)
	assert.False(t, dailies[1].IsDue)
}

func TestListDailiesFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"success":false,"error":"NotAuthorized","message":"There is no account that uses those credentials."}`)
	})

	_, err := c.ListDailies(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "NotAuthorized", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "no account")
}

func TestCreateTodo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/user", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "todo", body["type"])
		assert.Equal(t, 1.5, body["priority"])
		assert.Equal(t, "2026-10-17", body["date"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"success":true,"data":{"id":"t9","type":"todo","text":"Milk","priority":1.5,"date":"2026-10-17T00:00:00.000Z"}}`)
	})

	created, err := c.CreateTodo(context.Background(), Todo{
		Type:     TypeTodo,
		Text:     "Milk",
		Priority: 1.5,
		Date:     NewDate(time.Date(2026, 10, 17, 15, 0, 0, 0, time.Local)),
	})
	require.NoError(t, err)
	assert.Equal(t, "t9", created.ID)
	assert.Equal(t, "2026-10-17", created.Date.String())
}

func TestCreateTodoRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"error":"BadRequest","message":"todo validation failed"}`)
	})

	created, err := c.CreateTodo(context.Background(), Todo{Type: TypeTodo, Text: "x"})
	assert.Nil(t, created)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "create todo", apiErr.Op)
	assert.Contains(t, apiErr.Body, "todo validation failed")
}

func TestScoreUp(t *testing.T) {
	var hits int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/d1/score/up", r.URL.Path)
		io.WriteString(w, `{"success":true,"data":{"delta":1}}`)
	})

	require.NoError(t, c.ScoreUp(context.Background(), "d1"))
	assert.Equal(t, 1, hits)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-10-17"`), &d))
	assert.Equal(t, "2026-10-17", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2026-10-17T00:00:00.000Z"`), &d))
	assert.Equal(t, "2026-10-17", d.String())

	out, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &d))
}
