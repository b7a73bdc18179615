package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"email-classifier/internal/classifier"
	"email-classifier/internal/common/config"
	"email-classifier/internal/common/logger"
)

// scriptedModel answers every prompt with the same text or error.
type scriptedModel struct {
	text  string
	err   error
	calls int
}

func (m *scriptedModel) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.text, m.err
}

func (m *scriptedModel) Name() string { return "scripted" }

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "email-classifier-test", Environment: "test"},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: 1000},
	}
}

func newTestServer(t *testing.T, model *scriptedModel) *Server {
	t.Helper()
	log := logger.NewTestLogger(t)

	c, err := classifier.New(classifier.Options{Model: model, Logger: log})
	require.NoError(t, err)

	srv, err := New(Options{Config: testConfig(), Logger: log, Classifier: c})
	require.NoError(t, err)
	return srv
}

func do(srv *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestProcess_Classifications(t *testing.T) {
	tests := []struct {
		name         string
		modelText    string
		modelErr     error
		expectedCat  string
		expectedText string
	}{
		{
			name:         "productive email",
			modelText:    `{"categoria":"Produtivo","resposta_sugerida":"I will send the report by Friday."}`,
			expectedCat:  "Produtivo",
			expectedText: "I will send the report by Friday.",
		},
		{
			name:         "unproductive email",
			modelText:    `{"categoria":"Improdutivo","resposta_sugerida":"Thank you, happy holidays!"}`,
			expectedCat:  "Improdutivo",
			expectedText: "Thank you, happy holidays!",
		},
		{
			name:         "upstream failure",
			modelErr:     errors.New("gemini api error: 503"),
			expectedCat:  "Erro",
			expectedText: "Could not process the email. Please try again.",
		},
		{
			name:         "model answers with prose",
			modelText:    "This email looks productive to me.",
			expectedCat:  "Erro",
			expectedText: "Could not process the email. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{text: tt.modelText, err: tt.modelErr}
			srv := newTestServer(t, model)

			w := do(srv, http.MethodPost, ProcessPath, `{"email_text":"Please send the report by Friday."}`, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			body := decodeBody(t, w)
			assert.Len(t, body, 2)
			assert.Equal(t, tt.expectedCat, body["categoria"])
			assert.Equal(t, tt.expectedText, body["resposta_sugerida"])
			assert.Equal(t, 1, model.calls)
		})
	}
}

func TestProcess_RejectsMissingText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "empty string", body: `{"email_text":""}`},
		{name: "null text", body: `{"email_text":null}`},
		{name: "wrong field", body: `{"text":"hello"}`},
		{name: "non-string text", body: `{"email_text":42}`},
		{name: "malformed json", body: `{"email_text":`},
		{name: "no body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &scriptedModel{text: `{"categoria":"Produtivo","resposta_sugerida":"x"}`}
			srv := newTestServer(t, model)

			w := do(srv, http.MethodPost, ProcessPath, tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"No email text was provided."}`, w.Body.String())
			assert.Zero(t, model.calls, "model must not be called for rejected input")
		})
	}
}

func TestProcess_WhitespaceTextIsForwarded(t *testing.T) {
	model := &scriptedModel{text: `{"categoria":"Improdutivo","resposta_sugerida":"Nothing to do."}`}
	srv := newTestServer(t, model)

	w := do(srv, http.MethodPost, ProcessPath, `{"email_text":"   "}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, model.calls)
}

func TestProcess_LegacyPath(t *testing.T) {
	model := &scriptedModel{text: `{"categoria":"Produtivo","resposta_sugerida":"On it."}`}
	srv := newTestServer(t, model)

	w := do(srv, http.MethodPost, "/processar", `{"email_text":"Can you check ticket 12?"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Produtivo", decodeBody(t, w)["categoria"])
}

func TestProcess_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{})

	for _, path := range []string{ProcessPath, "/processar"} {
		w := do(srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
	}

	w := do(srv, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{text: `{"categoria":"Produtivo","resposta_sugerida":"ok"}`})

	t.Run("propagates caller id", func(t *testing.T) {
		w := do(srv, http.MethodPost, ProcessPath, `{"email_text":"hi"}`, map[string]string{HeaderRequestID: "req-123"})
		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		w := do(srv, http.MethodPost, ProcessPath, `{"email_text":"hi"}`, nil)
		assert.Len(t, w.Header().Get(HeaderRequestID), 36)
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		long := strings.Repeat("a", 200)
		w := do(srv, http.MethodGet, "/health", "", map[string]string{HeaderRequestID: long})
		assert.NotEqual(t, long, w.Header().Get(HeaderRequestID))
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})
}

func TestHome(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{})

	w := do(srv, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<title>email-classifier-test</title>")
	assert.Contains(t, w.Body.String(), `id="email_text"`)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{})

	for path, status := range map[string]string{"/health": "healthy", "/ready": "ready"} {
		w := do(srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, status, decodeBody(t, w)["status"], path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{text: `{"categoria":"Produtivo","resposta_sugerida":"ok"}`})
	do(srv, http.MethodPost, ProcessPath, `{"email_text":"hi"}`, nil)

	w := do(srv, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNew_Validation(t *testing.T) {
	c, err := classifier.New(classifier.Options{Model: &scriptedModel{}})
	require.NoError(t, err)

	_, err = New(Options{Classifier: c})
	assert.Error(t, err)

	_, err = New(Options{Config: testConfig()})
	assert.Error(t, err)

	srv, err := New(Options{Config: testConfig(), Classifier: c})
	require.NoError(t, err)
	assert.NotNil(t, srv.Handler())
}
