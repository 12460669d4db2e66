package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"statute-agent/internal/usecase"
)

type stubDispatcher struct {
	out       usecase.DispatchResult
	sessionID string
	utterance string
	callCount int
}

func (s *stubDispatcher) Handle(_ context.Context, sessionID, utterance string) usecase.DispatchResult {
	s.callCount++
	s.sessionID = sessionID
	s.utterance = utterance
	return s.out
}

func newTestRouter(t *testing.T, d dispatcher, webDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := NewHandler(d, webDir, time.Second, nil)
	require.NoError(t, err)
	r := gin.New()
	h.Register(r)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseChatResponse(t *testing.T, w *httptest.ResponseRecorder) chatResponse {
	t.Helper()
	var out chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNewHandler_Validates(t *testing.T) {
	_, err := NewHandler(nil, "./web", time.Second, nil)
	require.Error(t, err)

	_, err = NewHandler(&stubDispatcher{}, " ", time.Second, nil)
	require.Error(t, err)
}

func TestChat_HappyPath(t *testing.T) {
	d := &stubDispatcher{out: usecase.DispatchResult{
		Text:           "Section 302 prescribes the punishment for murder.",
		Suggestions:    []string{"Which section?"},
		TypingDuration: 2000,
	}}
	r := newTestRouter(t, d, t.TempDir())

	w := postChat(r, `{"user_input":"What is Section 302?","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	out := parseChatResponse(t, w)
	require.Equal(t, "Section 302 prescribes the punishment for murder.", out.Response)
	require.Equal(t, []string{"Which section?"}, out.Suggestions)
	require.Equal(t, 2000, out.TypingDuration)
	require.Equal(t, "s1", out.SessionID)
	require.Equal(t, "s1", d.sessionID)
	require.Equal(t, "What is Section 302?", d.utterance)
}

func TestChat_AssignsSessionIDWhenMissing(t *testing.T) {
	d := &stubDispatcher{out: usecase.DispatchResult{Text: "hello", TypingDuration: 500}}
	r := newTestRouter(t, d, t.TempDir())

	w := postChat(r, `{"user_input":"hello there"}`)
	out := parseChatResponse(t, w)
	require.NotEmpty(t, out.SessionID)
	require.Equal(t, out.SessionID, d.sessionID)
}

func TestChat_EmptyInputSkipsDispatch(t *testing.T) {
	d := &stubDispatcher{}
	r := newTestRouter(t, d, t.TempDir())

	for _, body := range []string{`{"user_input":""}`, `{"user_input":"   "}`, `{}`} {
		w := postChat(r, body)
		require.Equal(t, http.StatusOK, w.Code)

		out := parseChatResponse(t, w)
		require.Equal(t, msgCouldNotUnderstand, out.Response)
		require.Equal(t, fixedTypingMillis, out.TypingDuration)
	}
	require.Zero(t, d.callCount)
}

func TestChat_MalformedBodyResolvesTo200(t *testing.T) {
	d := &stubDispatcher{}
	r := newTestRouter(t, d, t.TempDir())

	w := postChat(r, `not-json`)
	require.Equal(t, http.StatusOK, w.Code)

	out := parseChatResponse(t, w)
	require.Equal(t, msgTrouble, out.Response)
	require.Zero(t, d.callCount)
}

func TestChat_NilSuggestionsSerializeAsEmptyList(t *testing.T) {
	d := &stubDispatcher{out: usecase.DispatchResult{Text: "ok then", TypingDuration: 500}}
	r := newTestRouter(t, d, t.TempDir())

	w := postChat(r, `{"user_input":"hello there friend"}`)
	require.Contains(t, w.Body.String(), `"suggestions":[]`)
}

func TestStaticAssets(t *testing.T) {
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html>chat</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "chat.js"), []byte("export class ChatUI {}"), 0o644))

	r := newTestRouter(t, &stubDispatcher{}, webDir)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<html>chat</html>", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat.js", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "javascript")
}

func TestStaticAssets_MissingFileReturns500FixedBody(t *testing.T) {
	r := newTestRouter(t, &stubDispatcher{}, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, msgAssetError, w.Body.String())
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestRouter(t, &stubDispatcher{}, t.TempDir())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/chat", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
