package mockstore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caretaker/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(t *testing.T, store *Store, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(store, DefaultPrefix, zerolog.Nop())
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetTasks(t *testing.T) {
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	store := New(service.Task{ID: "a", Title: "one", CreatedAt: created}, service.Task{Title: "two", CreatedAt: created})

	rec := serve(t, store, http.MethodGet, DefaultPrefix, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var tasks []service.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].ID != "a" || tasks[1].ID != "1" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestCreateTaskAssignsIDAndDate(t *testing.T) {
	store := New()
	rec := serve(t, store, http.MethodPost, DefaultPrefix, `{"title":"new","status":0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var task service.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatal(err)
	}
	if task.ID != "1" || task.CreatedAt.IsZero() {
		t.Errorf("task = %+v", task)
	}
}

func TestCreateTaskKeepsClientID(t *testing.T) {
	store := New()
	serve(t, store, http.MethodPost, DefaultPrefix, `{"id":"abc","title":"x","status":0,"createdAt":"2024-01-10T00:00:00Z"}`)
	rec := serve(t, store, http.MethodPost, DefaultPrefix, `{"id":"abc","title":"dup","status":0,"createdAt":"2024-01-10T00:00:00Z"}`)

	var task service.Task
	_ = json.Unmarshal(rec.Body.Bytes(), &task)
	if task.ID == "abc" {
		t.Error("duplicate id must be replaced")
	}
	if got := store.List(); len(got) != 2 || got[0].ID != "abc" {
		t.Errorf("store = %+v", got)
	}
}

func TestCreateTaskBadJSON(t *testing.T) {
	rec := serve(t, New(), http.MethodPost, DefaultPrefix, `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	store := New(service.Task{ID: "1", Title: "old"})

	rec := serve(t, store, http.MethodPut, DefaultPrefix+"/1", `{"id":"ignored","title":"new","status":1,"createdAt":"2024-01-10T00:00:00Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	if got := store.List()[0]; got.ID != "1" || got.Title != "new" || !got.Done() {
		t.Errorf("after update: %+v", got)
	}

	if rec := serve(t, store, http.MethodPut, DefaultPrefix+"/9", `{"title":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("update missing: status = %d", rec.Code)
	}

	if rec := serve(t, store, http.MethodDelete, DefaultPrefix+"/1", ""); rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	if len(store.List()) != 0 {
		t.Error("task not deleted")
	}
	if rec := serve(t, store, http.MethodDelete, DefaultPrefix+"/1", ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing: status = %d", rec.Code)
	}
}
