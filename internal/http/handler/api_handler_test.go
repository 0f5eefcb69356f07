package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Nishanthpaka11/TinyLink/internal/app/model"
	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
	"github.com/Nishanthpaka11/TinyLink/internal/app/resolver"
	"github.com/Nishanthpaka11/TinyLink/internal/app/service"
)

// memRepo is an in-memory LinkRepository with store-grade semantics:
// unique codes on insert, indivisible increments.
type memRepo struct {
	mu    sync.Mutex
	links map[string]*model.Link
	order []string
}

func newMemRepo() *memRepo {
	return &memRepo{links: make(map[string]*model.Link)}
}

func (m *memRepo) Create(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.Code]; ok {
		return repository.ErrCodeTaken
	}
	link.CreatedAt = time.Now()
	stored := *link
	m.links[link.Code] = &stored
	m.order = append(m.order, link.Code)
	return nil
}

func (m *memRepo) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memRepo) List(ctx context.Context) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Link, 0, len(m.links))
	// newest first
	for i := len(m.order) - 1; i >= 0; i-- {
		if link, ok := m.links[m.order[i]]; ok {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[code]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(m.links, code)
	return nil
}

func (m *memRepo) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.links[code]
	return ok, nil
}

func (m *memRepo) IncrementClick(ctx context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[code]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	link.TotalClicks++
	now := time.Now()
	link.LastClicked = &now
	copied := *link
	return &copied, nil
}

type alwaysResolves struct{}

func (alwaysResolves) Resolves(ctx context.Context, hostname string) bool { return true }

var _ resolver.HostResolver = alwaysResolves{}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	repo := newMemRepo()
	svc := service.NewLinkService(repo, service.NewCodeAllocator(repo, 0), alwaysResolves{}, nil)

	app := fiber.New()
	NewAPIHandler(APIDeps{LinkService: svc}).Register(app)
	NewRedirectHandler(RedirectDeps{LinkService: svc}).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeLink(t *testing.T, resp *http.Response) model.Link {
	t.Helper()
	var link model.Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		t.Fatalf("decode link: %v", err)
	}
	return link
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		OK      bool   `json:"ok"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.Version != "1.0" {
		t.Fatalf("body = %+v, want ok=true version=1.0", body)
	}
}

func TestPing(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/ping", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "pong" {
		t.Fatalf("body = %q, want pong", body)
	}
}

func TestCreateAndRedirectFlow(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/links", map[string]string{
		"url": "https://example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	link := decodeLink(t, resp)
	if len(link.Code) != 6 {
		t.Fatalf("code = %q, want 6 chars", link.Code)
	}
	if link.TotalClicks != 0 || link.LastClicked != nil {
		t.Fatalf("fresh link should have 0 clicks and null last_clicked: %+v", link)
	}

	resp = doJSON(t, app, http.MethodGet, "/"+link.Code, nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("redirect status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "https://example.com" {
		t.Fatalf("Location = %q", loc)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/links/"+link.Code, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d, want 200", resp.StatusCode)
	}
	stats := decodeLink(t, resp)
	if stats.TotalClicks != 1 {
		t.Fatalf("total_clicks = %d, want 1", stats.TotalClicks)
	}
	if stats.LastClicked == nil {
		t.Fatal("last_clicked still null after redirect")
	}
}

func TestCreateInvalidURL(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/links", map[string]string{
		"url": "not-a-url",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateMissingURL(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/links", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateInvalidCustomCode(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/links", map[string]string{
		"url":  "https://example.com",
		"code": "ab",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateDuplicateCustomCode(t *testing.T) {
	app := newTestApp(t)
	body := map[string]string{"url": "https://example.com", "code": "abc123"}

	resp := doJSON(t, app, http.MethodPost, "/api/links", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create status = %d, want 201", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPost, "/api/links", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second create status = %d, want 409", resp.StatusCode)
	}
}

func TestListNewestFirst(t *testing.T) {
	app := newTestApp(t)

	for _, code := range []string{"first1", "second2"} {
		resp := doJSON(t, app, http.MethodPost, "/api/links", map[string]string{
			"url":  "https://example.com",
			"code": code,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create %s status = %d", code, resp.StatusCode)
		}
	}

	resp := doJSON(t, app, http.MethodGet, "/api/links", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want 200", resp.StatusCode)
	}
	var links []model.Link
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2", len(links))
	}
	if links[0].Code != "second2" || links[1].Code != "first1" {
		t.Fatalf("list order = [%s %s], want newest first", links[0].Code, links[1].Code)
	}
}

func TestDeleteLinkEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodDelete, "/api/links/zzzzzz", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete unknown status = %d, want 404", resp.StatusCode)
	}

	doJSON(t, app, http.MethodPost, "/api/links", map[string]string{
		"url":  "https://example.com",
		"code": "abc123",
	})

	resp = doJSON(t, app, http.MethodDelete, "/api/links/abc123", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/links/abc123", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stats after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestRedirectUnknownCode(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/zzzzzz", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRedirectReservedCodes(t *testing.T) {
	app := newTestApp(t)

	// The routing namespace can never be served as a link.
	for _, code := range []string{"api", "healthz"} {
		resp := doJSON(t, app, http.MethodGet, "/"+code, nil)
		if resp.StatusCode == http.StatusFound {
			t.Errorf("GET /%s must never redirect", code)
		}
	}
}
