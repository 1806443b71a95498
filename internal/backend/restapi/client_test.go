package restapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caretaker/internal/config"
	"caretaker/internal/mockstore"
	"caretaker/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var created = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

func newStoreClient(t *testing.T, store *mockstore.Store) *Client {
	t.Helper()
	srv := httptest.NewServer(mockstore.NewRouter(store, mockstore.DefaultPrefix, zerolog.Nop()))
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(srv.Client(), srv.URL+mockstore.DefaultPrefix+"/", time.Second, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRoundTrip(t *testing.T) {
	store := mockstore.New(service.Task{ID: "1", Title: "Buy milk", CreatedAt: created})
	c := newStoreClient(t, store)
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" || !tasks[0].CreatedAt.Equal(created) {
		t.Fatalf("tasks = %+v", tasks)
	}

	note := "start here"
	added, err := c.CreateTask(ctx, service.Task{ID: "abc", Title: "Ship", CreatedAt: created, AIResponse: &note})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if added.ID != "abc" || added.AIResponse == nil || *added.AIResponse != note {
		t.Errorf("added = %+v", added)
	}

	updated, err := c.UpdateTask(ctx, added.WithStatus(service.StatusDone))
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !updated.Done() {
		t.Errorf("updated = %+v", updated)
	}

	if err := c.DeleteTask(ctx, "1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if got := store.List(); len(got) != 1 || got[0].ID != "abc" {
		t.Errorf("store = %+v", got)
	}
}

func TestNotFound(t *testing.T) {
	c := newStoreClient(t, mockstore.New())

	err := c.DeleteTask(context.Background(), "missing")
	var ne *service.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if ne.StatusCode != http.StatusNotFound || !errors.Is(err, service.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if ne.Op != "delete task" {
		t.Errorf("op = %q", ne.Op)
	}
}

func TestEmptyBodyIsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.Client(), srv.URL, time.Second, zerolog.Nop())
	tasks, err := c.ListTasks(context.Background())
	if err != nil || len(tasks) != 0 {
		t.Errorf("tasks = %v, err = %v", tasks, err)
	}
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": "1", "createdAt": "not a date"}]`)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.Client(), srv.URL, time.Second, zerolog.Nop())
	_, err := c.ListTasks(context.Background())
	if !service.IsNetwork(err) {
		t.Errorf("expected NetworkError, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.Client(), srv.URL, time.Second, zerolog.Nop())
	_, err := c.CreateTask(context.Background(), service.Task{Title: "x"})
	var ne *service.NetworkError
	if !errors.As(err, &ne) || ne.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	cfg := &config.Config{Log: zerolog.Nop()}
	cfg.Store.BaseURL = srv.URL
	cfg.Store.Token = "t0ken"

	c, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer t0ken" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestInvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "not a url", "ftp://x/y", "http://"} {
		if _, err := NewWithHTTPClient(http.DefaultClient, u, 0, zerolog.Nop()); err == nil || !strings.Contains(err.Error(), "invalid store base url") {
			t.Errorf("%q: err = %v", u, err)
		}
	}
}
