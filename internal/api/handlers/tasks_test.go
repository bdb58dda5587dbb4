package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raminkz/gotodo/internal/api/dto"
	"github.com/raminkz/gotodo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listTasks(t *testing.T, router http.Handler, path string) ([]dto.TaskResponse, dto.PaginatedResponse) {
	t.Helper()

	req := testutil.UnauthenticatedRequest(t, "GET", path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var page dto.PaginatedResponse
	testutil.ParseJSONResponse(t, rr, &page)

	raw, err := json.Marshal(page.Data)
	require.NoError(t, err)
	var tasks []dto.TaskResponse
	require.NoError(t, json.Unmarshal(raw, &tasks))

	return tasks, page
}

func TestTaskList(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupTestRouter(tc)

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	bob := testutil.CreateTestUser(t, tc.DB, "bob@test.com")
	testutil.CreateTestTask(t, tc.DB, alice, "buy milk")
	testutil.CreateTestTask(t, tc.DB, alice, "walk the dog")
	testutil.CreateTestTask(t, tc.DB, bob, "file taxes")

	t.Run("anonymous callers can list", func(t *testing.T) {
		tasks, page := listTasks(t, router, "/api/v1/tasks/")
		assert.Len(t, tasks, 3)
		assert.EqualValues(t, 3, page.Total)
	})

	t.Run("filters by owner profile", func(t *testing.T) {
		tasks, _ := listTasks(t, router, "/api/v1/tasks/?owner="+alice.Profile.ID.String())
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.Equal(t, alice.Profile.ID.String(), task.Owner)
		}
	})

	t.Run("filters by exact title", func(t *testing.T) {
		tasks, _ := listTasks(t, router, "/api/v1/tasks/?title=buy+milk")
		require.Len(t, tasks, 1)
		assert.Equal(t, "buy milk", tasks[0].Title)
	})

	t.Run("searches title and owner email", func(t *testing.T) {
		tasks, _ := listTasks(t, router, "/api/v1/tasks/?search=bob")
		require.Len(t, tasks, 1)
		assert.Equal(t, "file taxes", tasks[0].Title)
	})

	t.Run("paginates", func(t *testing.T) {
		tasks, page := listTasks(t, router, "/api/v1/tasks/?page=2&per_page=2")
		assert.Len(t, tasks, 1)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("invalid owner id", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/tasks/?owner=not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskGet(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupTestRouter(tc)

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	task := testutil.CreateTestTask(t, tc.DB, alice, "buy milk")

	t.Run("anonymous callers can read", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/tasks/"+task.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TaskResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "buy milk", resp.Title)
		assert.Equal(t, alice.Profile.ID.String(), resp.Owner)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/tasks/9f3b1c1e-0000-0000-0000-000000000000", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/tasks/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTaskCreate(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupTestRouter(tc)

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	token := testutil.AccessToken(t, tc.JWTService, alice)

	t.Run("owner comes from the caller", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks/", map[string]string{
			"title": "write report",
			// A client-supplied owner must be ignored.
			"owner": "9f3b1c1e-0000-0000-0000-000000000000",
		}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.TaskResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "write report", resp.Title)
		assert.Equal(t, alice.Profile.ID.String(), resp.Owner)
		assert.False(t, resp.Complete)
	})

	t.Run("anonymous callers cannot create", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/tasks/", map[string]string{
			"title": "write report",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("title is required", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/tasks/", map[string]string{}, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Contains(t, resp.Errors, "title")
	})
}

func TestTaskUpdate(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupTestRouter(tc)

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	bob := testutil.CreateTestUser(t, tc.DB, "bob@test.com")
	aliceToken := testutil.AccessToken(t, tc.JWTService, alice)
	bobToken := testutil.AccessToken(t, tc.JWTService, bob)

	task := testutil.CreateTestTask(t, tc.DB, alice, "buy milk")
	path := "/api/v1/tasks/" + task.ID.String()

	t.Run("owner can replace via put", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", path, map[string]interface{}{
			"title":    "buy oat milk",
			"complete": true,
		}, aliceToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TaskResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "buy oat milk", resp.Title)
		assert.True(t, resp.Complete)
	})

	t.Run("put without complete resets it", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", path, map[string]interface{}{
			"title": "buy oat milk",
		}, aliceToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TaskResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.False(t, resp.Complete)
	})

	t.Run("put requires a title", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PUT", path, map[string]interface{}{
			"complete": true,
		}, aliceToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("patch touches only sent fields", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PATCH", path, map[string]interface{}{
			"complete": true,
		}, aliceToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.TaskResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "buy oat milk", resp.Title)
		assert.True(t, resp.Complete)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PATCH", path, map[string]interface{}{
			"complete": false,
		}, bobToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)

		var resp dto.ErrorResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "You do not have permission to perform this action.", resp.Detail)
	})

	t.Run("anonymous callers cannot update", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "PUT", path, map[string]interface{}{
			"title": "hijacked",
		})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestTaskDelete(t *testing.T) {
	tc := testutil.NewTestContext(t)
	defer tc.Cleanup()
	router := setupTestRouter(tc)

	alice := testutil.CreateTestUser(t, tc.DB, "alice@test.com")
	bob := testutil.CreateTestUser(t, tc.DB, "bob@test.com")
	aliceToken := testutil.AccessToken(t, tc.JWTService, alice)
	bobToken := testutil.AccessToken(t, tc.JWTService, bob)

	task := testutil.CreateTestTask(t, tc.DB, alice, "buy milk")
	path := "/api/v1/tasks/" + task.ID.String()

	t.Run("anonymous callers cannot delete", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "DELETE", path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", path, nil, bobToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", path, nil, aliceToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusNoContent, rr.Code)

		req = testutil.UnauthenticatedRequest(t, "GET", path, nil)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
