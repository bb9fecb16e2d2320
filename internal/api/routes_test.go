package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vision-fit-guide/backend/internal/auth"
	"vision-fit-guide/backend/internal/cache"
	"vision-fit-guide/backend/internal/notify"
	"vision-fit-guide/backend/internal/store"
)

const submission = `{
	"answers": {
		"church_name": "Grace Fellowship",
		"contact_name": "Maria Lopez",
		"email": "Maria@Grace.example",
		"attendance": "125-300",
		"global_presence_status": "yes",
		"region_preference": "different_region",
		"existing_regions": "Kenya",
		"cost_importance": "medium",
		"time_away_importance": "low",
		"english_importance": "high",
		"mobilization": ["spanish_speakers", "families_with_children"],
		"impact_dna": ["community_transformation"]
	}
}`

type recordingSender struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (r *recordingSender) Enabled() bool { return true }

func (r *recordingSender) Send(_ context.Context, msg notify.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return "msg-" + msg.Subject, nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// memGuard is an in-process SubmissionGuard.
type memGuard struct {
	mu       sync.Mutex
	keys     map[string]string
	released int
}

func newMemGuard() *memGuard { return &memGuard{keys: make(map[string]string)} }

func (g *memGuard) Enabled() bool { return true }

func (g *memGuard) Claim(_ context.Context, key, publicID string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.keys[key]; ok {
		return existing, false, nil
	}
	g.keys[key] = publicID
	return publicID, true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	g.released++
	return nil
}

type failingRepo struct {
	store.Repository
}

func (failingRepo) SaveFitGuide(context.Context, *store.FitGuide) error {
	return errors.New("disk full")
}

type testEnv struct {
	router *gin.Engine
	repo   store.Repository
	sender *recordingSender
	guard  *memGuard
	server *Server
}

func newTestEnv(t *testing.T, wrap func(store.Repository) store.Repository) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "fit.db"), true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var repo store.Repository = db
	if wrap != nil {
		repo = wrap(db)
	}
	sender := &recordingSender{}
	guard := newMemGuard()
	server, err := NewServer(Config{
		Repository:  repo,
		StoreDriver: store.DriverSQLite,
		Notifier:    notify.NewNotifier(sender, notify.NotifierConfig{InternalTo: []string{"team@hopechest.example"}}),
		Guard:       guard,
		Auth: auth.NewService(auth.Config{
			Username: "admin", Password: "pw", Secret: "test-secret", TokenTTL: time.Hour,
		}),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return testEnv{router: router, repo: db, sender: sender, guard: guard, server: server}
}

func (e testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("decode token: %v %s", err, rec.Body.String())
	}
	return out.Token
}

func decodeSubmission(t *testing.T, rec *httptest.ResponseRecorder) SubmissionResponse {
	t.Helper()
	var resp SubmissionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode submission: %v %s", err, rec.Body.String())
	}
	return resp
}

func TestHealthAndConfig(t *testing.T) {
	env := newTestEnv(t, nil)
	if rec := env.do(t, http.MethodGet, "/api/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/api/config", "", "")
	var cfg map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg["store_driver"] != "sqlite" || cfg["email_enabled"] != true || cfg["dedupe_enabled"] != true {
		t.Fatalf("unexpected config %v", cfg)
	}
	if cfg["countries"] != float64(3) {
		t.Fatalf("expected 3 countries, got %v", cfg["countries"])
	}
	if cfg["lead_stream_clients"] != float64(0) {
		t.Fatalf("expected no connected dashboards, got %v", cfg["lead_stream_clients"])
	}

	rec = env.do(t, http.MethodGet, "/api/countries", "", "")
	var countries struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &countries); err != nil || len(countries.Items) != 3 {
		t.Fatalf("unexpected countries %v %s", err, rec.Body.String())
	}
}

func TestScoreEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{"valid", submission, http.StatusOK, ""},
		{"missing attendance", `{"answers":{"cost_importance":"low","time_away_importance":"low","english_importance":"low"}}`, http.StatusBadRequest, "attendance"},
		{"bad slider", `{"answers":{"attendance":"0-50","cost_importance":"extreme","time_away_importance":"low","english_importance":"low"}}`, http.StatusBadRequest, "cost_importance"},
		{"malformed json", `{"answers":`, http.StatusBadRequest, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/score", tc.body, "")
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tc.wantCode == http.StatusOK {
				if top, ok := body["top3"].([]any); !ok || len(top) != 3 {
					t.Fatalf("expected three recommendations, got %v", body["top3"])
				}
				return
			}
			if tc.wantField != "" && body["field"] != tc.wantField {
				t.Fatalf("expected field %q got %v", tc.wantField, body["field"])
			}
		})
	}
	if env.sender.count() != 0 {
		t.Fatalf("scoring must not send email")
	}
}

func TestCreateFitGuide(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/fit-guides", submission, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSubmission(t, rec)
	if resp.ID == "" || !resp.Status.Saved || resp.Status.Duplicate {
		t.Fatalf("unexpected status %+v", resp)
	}
	if resp.Status.InternalEmail != "sent" || resp.Status.PastorEmail != "sent" {
		t.Fatalf("unexpected email status %+v", resp.Status)
	}
	if len(resp.Result.Top3) != 3 || !strings.Contains(resp.Greeting, "Maria") {
		t.Fatalf("unexpected result %+v", resp)
	}
	if len(resp.Sections) == 0 {
		t.Fatalf("expected personalized sections")
	}
	if env.sender.count() != 2 {
		t.Fatalf("expected internal and pastor email, got %d", env.sender.count())
	}

	saved, err := env.repo.GetFitGuide(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("get saved guide: %v", err)
	}
	if saved.Email != "maria@grace.example" || saved.InternalEmailStatus != "sent" || saved.PastorEmailStatus != "sent" {
		t.Fatalf("unexpected saved guide %+v", saved)
	}
	if saved.TopCountry != string(resp.Result.Top().Country) {
		t.Fatalf("top country mismatch %s vs %s", saved.TopCountry, resp.Result.Top().Country)
	}
	if last := env.server.Leads().LastLead(); last == nil || last.Lead == nil || last.Lead.ID != resp.ID {
		t.Fatalf("expected broadcast of the new lead, got %+v", last)
	}
}

func TestCreateFitGuideRequiresContact(t *testing.T) {
	env := newTestEnv(t, nil)
	body := strings.Replace(submission, `"email": "Maria@Grace.example",`, ``, 1)
	rec := env.do(t, http.MethodPost, "/api/fit-guides", body, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"email"`) {
		t.Fatalf("expected email validation error, got %d %s", rec.Code, rec.Body.String())
	}
	if env.sender.count() != 0 {
		t.Fatalf("no email for rejected submissions")
	}
}

func TestCreateFitGuideDuplicate(t *testing.T) {
	env := newTestEnv(t, nil)
	first := decodeSubmission(t, env.do(t, http.MethodPost, "/api/fit-guides", submission, ""))

	again := strings.Replace(submission, "Maria@Grace.example", "maria@grace.example", 1)
	rec := env.do(t, http.MethodPost, "/api/fit-guides", again, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate got %d", rec.Code)
	}
	dup := decodeSubmission(t, rec)
	if !dup.Status.Duplicate || dup.ID != first.ID || !dup.Status.Saved {
		t.Fatalf("unexpected duplicate response %+v", dup)
	}
	if dup.Result.Top().Country != first.Result.Top().Country {
		t.Fatalf("duplicate should return the stored result")
	}
	if env.sender.count() != 2 {
		t.Fatalf("duplicate must not resend email, sent %d", env.sender.count())
	}
	_, total, err := env.repo.ListFitGuides(context.Background(), store.FitGuideQuery{})
	if err != nil || total != 1 {
		t.Fatalf("expected one stored guide, got %d %v", total, err)
	}
}

func TestCreateFitGuideSaveFailure(t *testing.T) {
	env := newTestEnv(t, func(r store.Repository) store.Repository { return failingRepo{r} })
	rec := env.do(t, http.MethodPost, "/api/fit-guides", submission, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("result must still be returned, got %d", rec.Code)
	}
	resp := decodeSubmission(t, rec)
	if resp.Status.Saved || !strings.Contains(resp.Status.Error, "disk full") {
		t.Fatalf("unexpected status %+v", resp.Status)
	}
	if len(resp.Result.Top3) != 3 {
		t.Fatalf("expected result despite save failure")
	}
	if env.guard.released != 1 {
		t.Fatalf("failed save should release the dedupe key")
	}
	if env.server.Leads().LastLead() != nil {
		t.Fatalf("unsaved guides are not broadcast")
	}
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	created := decodeSubmission(t, env.do(t, http.MethodPost, "/api/fit-guides", submission, ""))

	if rec := env.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"nope"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/fit-guides", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", rec.Code)
	}
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/fit-guides?q=grace&pageSize=10", "", token)
	var list FitGuideList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 || list.Items[0].ID != created.ID || list.PageSize != 10 {
		t.Fatalf("unexpected list %+v", list)
	}
	if len(list.Items[0].Mobilization) != 2 || list.Items[0].Sliders.English != "high" {
		t.Fatalf("unexpected dto %+v", list.Items[0])
	}

	rec = env.do(t, http.MethodGet, "/api/fit-guides?q=nobody", "", token)
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || list.Total != 0 || len(list.Items) != 0 {
		t.Fatalf("expected empty list, got %+v %v", list, err)
	}

	if rec := env.do(t, http.MethodGet, "/api/fit-guides/"+created.ID, "", token); rec.Code != http.StatusOK {
		t.Fatalf("get guide: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/fit-guides/missing", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/export.csv", "", token)
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || strings.Join(records[0], ",") != strings.Join(CSVHeader, ",") {
		t.Fatalf("unexpected csv %v", records)
	}
	if len(records[1]) != len(CSVHeader) || records[1][0] != created.ID || records[1][6] != "maria@grace.example" {
		t.Fatalf("unexpected csv row %v", records[1])
	}

	rec = env.do(t, http.MethodGet, "/api/export.json?country=nowhere", "", token)
	var exported []FitGuideDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &exported); err != nil || len(exported) != 0 {
		t.Fatalf("expected filtered empty export, got %v %s", err, rec.Body.String())
	}
}

func TestAdminDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := store.Open(filepath.Join(t.TempDir(), "fit.db"), true)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	server, err := NewServer(Config{Repository: db, Guard: cache.NopGuard{}})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	router, _ := server.Router()
	env := testEnv{router: router}

	if rec := env.do(t, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"pw"}`, ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/fit-guides", "", "whatever"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/fit-guides", submission, "")
	resp := decodeSubmission(t, rec)
	if rec.Code != http.StatusCreated || resp.Status.InternalEmail != "skipped" || resp.Status.PastorEmail != "skipped" {
		t.Fatalf("expected skipped emails without a notifier, got %d %+v", rec.Code, resp.Status)
	}
}

func TestNewServerRequiresRepository(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestEmailStatus(t *testing.T) {
	cases := []struct {
		in   notify.Status
		want string
	}{
		{notify.StatusSent, store.EmailSent},
		{notify.StatusLogged, store.EmailLogged},
		{notify.StatusFailed, store.EmailFailed},
		{notify.StatusSkipped, store.EmailSkipped},
		{"", store.EmailPending},
		{"bounced", store.EmailPending},
	}
	for _, tc := range cases {
		t.Run(string(tc.in), func(t *testing.T) {
			if got := emailStatus(tc.in); got != tc.want {
				t.Fatalf("emailStatus(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
