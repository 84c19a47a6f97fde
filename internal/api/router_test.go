package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/activity-dashboard-go/internal/category"
	"github.com/jengzang/activity-dashboard-go/internal/config"
	"github.com/jengzang/activity-dashboard-go/internal/database"
	"github.com/jengzang/activity-dashboard-go/internal/repository"
	"github.com/jengzang/activity-dashboard-go/internal/service"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Field   string          `json:"field"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newRouterWith(t, &config.Config{RateLimit: 1000})
}

func newRouterWith(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "api.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat := category.MustDefault()
	return SetupRouter(cfg, Services{
		Dashboard: service.NewDashboardService(repository.NewActivityRepository(db), cat),
		Share:     service.NewShareService("test-secret", time.Hour, cat),
	})
}

func do(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil && method != http.MethodOptions {
		t.Fatalf("%s %s: body %q is not json: %v", method, target, w.Body.String(), err)
	}
	return w, env
}

const importBody = `[
	{"id": 1, "name": "Lake loop", "sport_type": "Run", "start_date_local": "2024-01-01T08:00:00Z", "distance": 5000},
	{"id": 2, "name": "Commute", "sport_type": "Ride", "start_date_local": "2024-01-02T08:00:00Z", "distance": 12000, "commute": true},
	{"id": 3, "name": "Ridge", "sport_type": "Hike", "start_date_local": "2024-02-10T08:00:00Z", "distance": 9000},
	{"id": 0, "name": "broken", "sport_type": "Run", "start_date_local": "2024-02-10T08:00:00Z"}
]`

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w, _ := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("health = %d, headers %v", w.Code, w.Header())
	}
}

func TestImportThenQuery(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/activities/import", importBody)
	if w.Code != http.StatusOK {
		t.Fatalf("import = %d %s", w.Code, w.Body.String())
	}
	var imported service.ImportResult
	json.Unmarshal(env.Data, &imported)
	if imported.Written != 3 || imported.Skipped != 1 {
		t.Fatalf("import = %+v", imported)
	}

	w, _ = do(t, r, http.MethodGet, "/health", "")
	var health struct{ Activities int64 }
	json.Unmarshal(w.Body.Bytes(), &health)
	if health.Activities != 3 {
		t.Fatalf("health = %s", w.Body.String())
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/activities/3", "")
	var one struct {
		Name      string `json:"name"`
		SportType string `json:"sport_type"`
	}
	json.Unmarshal(env.Data, &one)
	if w.Code != http.StatusOK || one.Name != "Ridge" {
		t.Fatalf("get = %d %s", w.Code, env.Data)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/categories", "")
	var cats struct {
		SportTypes map[string]string `json:"sport_types"`
	}
	json.Unmarshal(env.Data, &cats)
	if w.Code != http.StatusOK || len(cats.SportTypes) != 3 || cats.SportTypes["Hike"] != category.GroupTrailHike {
		t.Fatalf("categories = %d %s", w.Code, env.Data)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/activities?groups=run,ride&sortBy=distance&order=asc", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d %s", w.Code, w.Body.String())
	}
	var page struct {
		Data  []struct{ ID int64 } `json:"data"`
		Total int64                `json:"total"`
	}
	json.Unmarshal(env.Data, &page)
	if page.Total != 2 || page.Data[0].ID != 1 || page.Data[1].ID != 2 {
		t.Fatalf("list = %+v", page)
	}

	w, env = do(t, r, http.MethodPost, "/api/v1/filter/evaluate", `{"state": {"search": "LAKE"}, "dimensions": {"search": true}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("evaluate = %d %s", w.Code, w.Body.String())
	}
	var ids struct{ IDs []int64 }
	json.Unmarshal(env.Data, &ids)
	if len(ids.IDs) != 1 || ids.IDs[0] != 1 {
		t.Fatalf("evaluate = %s", env.Data)
	}

	w, env = do(t, r, http.MethodPost, "/api/v1/filter/expression", `{"state": {}, "dimensions": {"commute": true}}`)
	if w.Code != http.StatusOK || string(env.Data) != `["all",["all"]]` {
		t.Fatalf("expression = %d %s", w.Code, env.Data)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/stats/timeline?period=month&value=count", "")
	if w.Code != http.StatusOK {
		t.Fatalf("timeline = %d %s", w.Code, w.Body.String())
	}
	var tl service.Timeline
	json.Unmarshal(env.Data, &tl)
	if len(tl.Points) != 2 || tl.Points[0].Value != 2 || tl.Points[1].Value != 1 {
		t.Fatalf("timeline = %s", env.Data)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/stats/progress?period=month", "")
	if w.Code != http.StatusOK {
		t.Fatalf("progress = %d %s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/stats/calendar?value=distance&days=2024-03-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("calendar = %d %s", w.Code, w.Body.String())
	}
	var cal service.Calendar
	json.Unmarshal(env.Data, &cal)
	if len(cal.Days) != 4 || cal.DomainMax != 12000 {
		t.Fatalf("calendar = %s", env.Data)
	}
}

func TestErrorsMapToStatus(t *testing.T) {
	r := newRouter(t)

	cases := []struct {
		method, target, body string
		status               int
		field                string
	}{
		{http.MethodGet, "/api/v1/stats/timeline?period=fortnight", "", http.StatusUnprocessableEntity, "period"},
		{http.MethodGet, "/api/v1/stats/timeline?value=joy", "", http.StatusUnprocessableEntity, "value"},
		{http.MethodGet, "/api/v1/activities?distance=abc,", "", http.StatusUnprocessableEntity, "distance"},
		{http.MethodGet, "/api/v1/activities?distance=NaN,100", "", http.StatusUnprocessableEntity, "distance"},
		{http.MethodGet, "/api/v1/activities?order=sideways", "", http.StatusBadRequest, ""},
		{http.MethodGet, "/api/v1/stats/calendar?days=monday", "", http.StatusUnprocessableEntity, "days"},
		{http.MethodPost, "/api/v1/filter/evaluate", `{"dimensions": {"mood": true}}`, http.StatusUnprocessableEntity, "dimensions"},
		{http.MethodPost, "/api/v1/filter/evaluate", `not json`, http.StatusBadRequest, ""},
		{http.MethodPost, "/api/v1/activities/import", `{"id": 1}`, http.StatusUnprocessableEntity, ""},
		{http.MethodGet, "/api/v1/activities/99", "", http.StatusNotFound, ""},
		{http.MethodGet, "/api/v1/activities/abc", "", http.StatusBadRequest, ""},
		{http.MethodGet, "/api/v1/share/garbage", "", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		w, env := do(t, r, tc.method, tc.target, tc.body)
		if w.Code != tc.status || env.Field != tc.field {
			t.Errorf("%s %s = %d field %q, want %d field %q (%s)", tc.method, tc.target, w.Code, env.Field, tc.status, tc.field, w.Body.String())
		}
	}
}

func TestImportBodyLimit(t *testing.T) {
	r := newRouterWith(t, &config.Config{RateLimit: 1000, MaxImport: 64})

	w, _ := do(t, r, http.MethodPost, "/api/v1/activities/import", importBody)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized import = %d %s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/health", "")
	var health struct{ Activities int64 }
	json.Unmarshal(w.Body.Bytes(), &health)
	if health.Activities != 0 {
		t.Fatalf("oversized import wrote %d activities", health.Activities)
	}

	w, _ = do(t, r, http.MethodPost, "/api/v1/activities/import", `[]`)
	if w.Code != http.StatusOK {
		t.Fatalf("small import = %d %s", w.Code, w.Body.String())
	}
}

func TestShareRoundTrip(t *testing.T) {
	r := newRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/share", `{"sport_groups": {"run": true}, "search": "lake"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("share = %d %s", w.Code, w.Body.String())
	}
	var link service.ShareLink
	json.Unmarshal(env.Data, &link)

	w, env = do(t, r, http.MethodGet, "/api/v1/share/"+link.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("resolve = %d %s", w.Code, w.Body.String())
	}
	var resolved struct {
		Query string `json:"query"`
	}
	json.Unmarshal(env.Data, &resolved)
	if resolved.Query != "groups=run&q=lake" {
		t.Fatalf("query = %q", resolved.Query)
	}
}
