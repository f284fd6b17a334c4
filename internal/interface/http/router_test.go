package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dermalens/skin-advisor/internal/domain/analysis"
	"github.com/dermalens/skin-advisor/internal/domain/auth"
	"github.com/dermalens/skin-advisor/internal/domain/catalog"
	"github.com/dermalens/skin-advisor/internal/domain/stats"
	"github.com/dermalens/skin-advisor/internal/infra/config"
	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

const (
	testUserPassword  = "user-password"
	testAdminPassword = "admin-password"
)

func validOutcome() analysis.Outcome {
	return analysis.Outcome{
		Result: analysis.Result{
			SkinType:   analysis.SkinTypeOily,
			Confidence: 0.9,
			Analysis: analysis.Observations{
				ObservedCharacteristics: []string{"visible shine"},
				SkinTypeExplanation:     "sebum across the full face",
			},
			ProductRecommendation: analysis.Recommendation{
				FormulationType:      "gel",
				FormulationReasoning: "matte finish",
				SpecificProducts: []analysis.Product{
					{BrandName: "EltaMD", ProductName: "UV Clear", SPF: "SPF 46", KeyBenefit: "oil-free"},
				},
			},
		},
		ImageHash: "abcd1234",
		Width:     800,
		Height:    600,
		Duration:  120 * time.Millisecond,
	}
}

func TestRouter_Healthz(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LoginSetsCookie(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	rec := env.do(jsonRequest(http.MethodPost, "/api/v1/login", `{"password":"user-password"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "user", body["role"])
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	rec := env.do(jsonRequest(http.MethodPost, "/api/v1/login", `{"password":"nope"}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "unauthenticated", errBody["error"]["code"])
}

func TestRouter_LoginRateLimited(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	for i := 0; i < 5; i++ {
		rec := env.do(jsonRequest(http.MethodPost, "/api/v1/login", `{"password":"nope"}`))
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i+1)
	}

	rec := env.do(jsonRequest(http.MethodPost, "/api/v1/login", `{"password":"user-password"}`))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "rate_limited", errBody["error"]["code"])
}

func TestRouter_LogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec)
	require.Empty(t, cookie.Value)
	require.Negative(t, cookie.MaxAge)
}

func TestRouter_AnalyzeRequiresSession(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	req := multipartRequest(t, "/api/v1/analyze", []byte{0xFF, 0xD8, 0xFF})
	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "unauthenticated", errBody["error"]["code"])
}

func TestRouter_AnalyzeSuccess(t *testing.T) {
	svc := &stubAnalysis{
		fn: func(ctx context.Context, upload analysis.Upload) (analysis.Outcome, error) {
			require.Equal(t, "image/jpeg", upload.DeclaredMIME)
			require.NotEmpty(t, upload.Data)
			return validOutcome(), nil
		},
	}
	env := newTestEnv(t, svc)
	cookie := env.login(t, testUserPassword)

	req := multipartRequest(t, "/api/v1/analyze", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01})
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got analysis.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, analysis.SkinTypeOily, got.SkinType)

	require.Len(t, env.stats.entries, 2)
	recorded := env.stats.entries[1]
	require.Equal(t, stats.ActionAnalyze, recorded.Action)
	require.Equal(t, stats.StatusSuccess, recorded.Status)
	require.Equal(t, "abcd1234", recorded.ImageHash)
}

func TestRouter_AnalyzeDomainErrorMapping(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{"invalid_image", http.StatusBadRequest},
		{"unsupported_media_type", http.StatusUnsupportedMediaType},
		{"file_too_large", http.StatusRequestEntityTooLarge},
		{"timeout", http.StatusGatewayTimeout},
		{"upstream_error", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := &stubAnalysis{
				fn: func(ctx context.Context, upload analysis.Upload) (analysis.Outcome, error) {
					return analysis.Outcome{}, apperrors.Wrap(tc.code, "analysis failed", nil)
				},
			}
			env := newTestEnv(t, svc)
			cookie := env.login(t, testUserPassword)

			req := multipartRequest(t, "/api/v1/analyze", []byte{0xFF, 0xD8, 0xFF})
			req.AddCookie(cookie)
			rec := env.do(req)
			require.Equal(t, tc.status, rec.Code)
			errBody := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.code, errBody["error"]["code"])
		})
	}
}

func TestRouter_AnalyzeRejectsWrongFieldName(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testUserPassword)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "face.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", errBody["error"]["code"])
}

func TestRouter_AnalyzeHidesUpstreamDetail(t *testing.T) {
	svc := &stubAnalysis{
		fn: func(ctx context.Context, upload analysis.Upload) (analysis.Outcome, error) {
			cause := errors.New(`openai request failed: status=401 body={"error":{"message":"Incorrect API key provided: sk-test-abc"}}`)
			return analysis.Outcome{}, apperrors.Wrap("upstream_error", "model call failed", cause)
		},
	}
	env := newTestEnv(t, svc)
	cookie := env.login(t, testUserPassword)

	req := multipartRequest(t, "/api/v1/analyze", []byte{0xFF, 0xD8, 0xFF})
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "upstream_error", errBody["error"]["code"])
	require.Equal(t, "model call failed", errBody["error"]["message"])
	require.NotContains(t, rec.Body.String(), "sk-test-abc")
}

func TestRouter_AnalyzeMissingFile(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testUserPassword)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_input", errBody["error"]["code"])
}

func TestRouter_AnalyzeOversizedUpload(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testUserPassword)

	req := multipartRequest(t, "/api/v1/analyze", bytes.Repeat([]byte{0xFF}, 2048))
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "file_too_large", errBody["error"]["code"])
}

func TestRouter_ProductsFiltersBySkinType(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testUserPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?skinType=oily", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "oily", env.catalogRepo.lastSkinType)

	var body map[string][]catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["products"], 1)
}

func TestRouter_AdminRedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/overview", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRouter_AdminRedirectsNonAdmin(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testUserPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/overview", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?reason=admin_required", rec.Header().Get("Location"))
}

func TestRouter_AdminEndpoints(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testAdminPassword)

	for _, path := range []string{"/api/v1/admin/overview", "/api/v1/admin/logs", "/api/v1/admin/users"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_AdminLogsInvalidLimit(t *testing.T) {
	env := newTestEnv(t, &stubAnalysis{})
	cookie := env.login(t, testAdminPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/logs?limit=banana", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type testEnv struct {
	server      *http.Server
	stats       *stubStats
	catalogRepo *stubCatalogRepo
}

func newTestEnv(t *testing.T, analysisSvc analysis.Service) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authCfg := auth.Config{
		Secret:           "0123456789abcdef0123456789abcdef",
		TokenTTL:         time.Hour,
		Password:         testUserPassword,
		AdminPassword:    testAdminPassword,
		LoginWindow:      5 * time.Minute,
		LoginMaxAttempts: 5,
	}
	authSvc := auth.NewService(authCfg, &memoryCounter{counts: map[string]int64{}}, logger)

	statsSvc := &stubStats{}
	repo := &stubCatalogRepo{}
	catalogSvc := catalog.NewService(repo, logger)

	handler := NewHandler(analysisSvc, authSvc, catalogSvc, statsSvc, authCfg, false, 1024, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return &testEnv{
		server:      NewRouter(cfg, handler, authSvc),
		stats:       statsSvc,
		catalogRepo: repo,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, password string) *http.Cookie {
	t.Helper()
	rec := e.do(jsonRequest(http.MethodPost, "/api/v1/login", `{"password":"`+password+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	return sessionCookie(t, rec)
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="face.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == authCookieName {
			return cookie
		}
	}
	t.Fatal("auth cookie not set")
	return nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubAnalysis struct {
	fn func(ctx context.Context, upload analysis.Upload) (analysis.Outcome, error)
}

func (s *stubAnalysis) Analyze(ctx context.Context, upload analysis.Upload) (analysis.Outcome, error) {
	if s.fn != nil {
		return s.fn(ctx, upload)
	}
	return validOutcome(), nil
}

type stubStats struct {
	entries []stats.Entry
}

func (s *stubStats) Record(_ context.Context, entry stats.Entry) {
	s.entries = append(s.entries, entry)
}

func (s *stubStats) Recent(_ context.Context, _ int) ([]stats.Entry, error) {
	return s.entries, nil
}

func (s *stubStats) UserStats(_ context.Context) ([]stats.UserStat, error) {
	return []stats.UserStat{{User: "user", TotalAnalyses: int64(len(s.entries))}}, nil
}

func (s *stubStats) Overview(_ context.Context) (stats.Overview, error) {
	return stats.Overview{TotalAnalyses: int64(len(s.entries))}, nil
}

type stubCatalogRepo struct {
	lastSkinType string
}

func (s *stubCatalogRepo) List(_ context.Context, skinType string) ([]catalog.Product, error) {
	s.lastSkinType = skinType
	return []catalog.Product{{ID: 1, Name: "UV Clear", Brand: "EltaMD", Category: "spf", SkinTypes: []string{"oily"}}}, nil
}

type memoryCounter struct {
	counts map[string]int64
}

func (m *memoryCounter) IncrementAttempt(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}
