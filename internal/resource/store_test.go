package resource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonhq/lonboard/internal/api"
	"github.com/lonhq/lonboard/internal/resource"
	"github.com/lonhq/lonboard/internal/tokenstore"
)

// fakeBackend is an in-memory project/task backend counting list fetches.
type fakeBackend struct {
	projects       map[int]api.Project
	tasks          map[int]api.Task
	nextID         int
	listCalls      atomic.Int32
	directoryCalls atomic.Int32
	failPatch      bool
	failDelete     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects: map[int]api.Project{
			1: {ID: 1, Name: "Tower", Status: api.ProjectStatusNew},
			2: {ID: 2, Name: "Bridge", Status: api.ProjectStatusSigned},
		},
		tasks: map[int]api.Task{
			10: {ID: 10, Title: "survey", Status: api.TaskStatusTodo},
		},
		nextID: 100,
	}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case path == "/api/projects/" && r.Method == http.MethodGet:
			b.listCalls.Add(1)
			out := make([]api.Project, 0, len(b.projects))
			for _, p := range b.projects {
				out = append(out, p)
			}
			writeJSON(w, http.StatusOK, out)
		case path == "/api/projects/" && r.Method == http.MethodPost:
			var payload api.ProjectPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			b.nextID++
			project := api.Project{ID: b.nextID, Name: payload.Name, Status: api.ProjectStatusNew}
			b.projects[project.ID] = project
			writeJSON(w, http.StatusCreated, project)
		case strings.HasPrefix(path, "/api/projects/"):
			id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(path, "/api/projects/"), "/"))
			project, ok := b.projects[id]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
				return
			}
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, http.StatusOK, project)
			case http.MethodPatch:
				if b.failPatch {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
					return
				}
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				project.Status = body["status"]
				b.projects[id] = project
				writeJSON(w, http.StatusOK, project)
			case http.MethodDelete:
				if b.failDelete {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
					return
				}
				delete(b.projects, id)
				w.WriteHeader(http.StatusNoContent)
			}
		case path == "/api/users/" && r.Method == http.MethodGet:
			b.directoryCalls.Add(1)
			writeJSON(w, http.StatusOK, []api.User{{ID: 7, Username: "pm"}, {ID: 8, Username: "site"}})
		case path == "/api/clients/" && r.Method == http.MethodGet:
			b.directoryCalls.Add(1)
			writeJSON(w, http.StatusOK, []api.Customer{{ID: 30, Name: "Port Authority"}})
		case path == "/api/tasks/" && r.Method == http.MethodGet:
			out := make([]api.Task, 0, len(b.tasks))
			for _, task := range b.tasks {
				out = append(out, task)
			}
			writeJSON(w, http.StatusOK, out)
		case strings.HasSuffix(path, "/change_status/"):
			id, _ := strconv.Atoi(strings.Split(strings.TrimPrefix(path, "/api/tasks/"), "/")[0])
			task, ok := b.tasks[id]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
				return
			}
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			task.Status = body["status"]
			b.tasks[id] = task
			writeJSON(w, http.StatusOK, task)
		case strings.HasPrefix(path, "/api/tasks/") && r.Method == http.MethodDelete:
			id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(path, "/api/tasks/"), "/"))
			delete(b.tasks, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})
}

func newTestStore(t *testing.T) (*resource.Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)
	tokens := tokenstore.New(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, tokens.Save(tokenstore.Pair{Access: "A", Refresh: "R"}))
	return resource.NewStore(api.New(server.URL, tokens)), backend
}

func TestListCachesUntilInvalidated(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	first, err := store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, first, 2)

	_, err = store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.listCalls.Load(), "second read served from cache")

	store.Projects.Invalidate()
	_, err = store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.listCalls.Load(), "invalidation forces a refetch")
}

func TestCreateInvalidatesListCache(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	before, err := store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)

	_, err = store.Projects.Create(ctx, api.ProjectPayload{Name: "Depot"})
	require.NoError(t, err)

	after, err := store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1, "post-mutation read reflects the change")
}

func TestRemoveThenListNeverIncludesRemovedID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	tasks, err := store.Tasks.List(ctx, api.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NoError(t, store.Tasks.Remove(ctx, 10))

	tasks, err = store.Tasks.List(ctx, api.TaskFilter{})
	require.NoError(t, err)
	for _, task := range tasks {
		assert.NotEqual(t, 10, task.ID)
	}
}

func TestChangeStatusInvalidatesEntityAndLists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project, err := store.Projects.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, api.ProjectStatusNew, project.Status)

	_, err = store.Projects.ChangeStatus(ctx, 1, api.ProjectStatusPaid)
	require.NoError(t, err)

	project, err = store.Projects.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, api.ProjectStatusPaid, project.Status, "get key was invalidated")
}

func TestGetWithAbsentIDNeverFetches(t *testing.T) {
	store, backend := newTestStore(t)
	_, err := store.Projects.Get(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Zero(t, backend.listCalls.Load())
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	_, err := store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)

	backend.failPatch = true
	_, err = store.Projects.ChangeStatus(ctx, 1, api.ProjectStatusPaid)
	require.Error(t, err)

	_, err = store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.listCalls.Load(), "failed mutation did not invalidate; stale data stays shown")
}

func TestResetDropsEverything(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	_, err := store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	store.Reset()
	_, err = store.Projects.List(ctx, api.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.listCalls.Load())
}

func TestDirectoryListsCacheUntilInvalidated(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	users, err := store.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	clients, err := store.Clients.List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Port Authority", clients[0].Name)

	_, err = store.Users.List(ctx)
	require.NoError(t, err)
	_, err = store.Clients.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.directoryCalls.Load(), "repeat reads served from cache")

	store.Users.Invalidate()
	store.Clients.Invalidate()
	_, err = store.Users.List(ctx)
	require.NoError(t, err)
	_, err = store.Clients.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(4), backend.directoryCalls.Load(), "invalidation forces refetches")
}

func TestResetDropsDirectoryCaches(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	_, err := store.Users.List(ctx)
	require.NoError(t, err)
	store.Reset()
	_, err = store.Users.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.directoryCalls.Load())
}

func TestTaskChangeStatusThroughStore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	task, err := store.Tasks.ChangeStatus(ctx, 10, api.TaskStatusReview)
	require.NoError(t, err)
	assert.Equal(t, api.TaskStatusReview, task.Status)

	tasks, err := store.Tasks.List(ctx, api.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, api.TaskStatusReview, tasks[0].Status)
}
