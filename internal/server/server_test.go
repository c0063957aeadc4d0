package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"blizz/internal/config"
	"blizz/internal/storage"
	"blizz/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv is a full server over in-memory SQLite and a temp media dir.
type testEnv struct {
	s        *Server
	app      *fiber.App
	db       *gorm.DB
	mediaDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir, "/media")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:       testSecret,
		TokenTTLHours:   1,
		AllowedOrigins:  "http://localhost:5173",
		FeedPageSize:    10,
		WebFeedPageSize: 20,
		MaxUploadSizeMB: 1,
	}
	s := NewServer(cfg, Deps{DB: db, Media: store, MediaDir: dir})
	return &testEnv{s: s, app: s.NewApp(), db: db, mediaDir: dir}
}

func (e *testEnv) token(t *testing.T, userID uint) string {
	t.Helper()
	tok, err := e.s.auth.IssueToken(userID, e.s.config.TokenTTL())
	require.NoError(t, err)
	return tok
}

// do sends a JSON request; body may be nil and token may be empty.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// upload posts a multipart highlight.
func (e *testEnv) upload(t *testing.T, token, caption, contentType string, video []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("caption", caption))
	if video != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="video"; filename="clip.mp4"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(video)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/highlights", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
