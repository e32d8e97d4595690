package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"inkwell/config"
	"inkwell/database"
	"inkwell/models"
	"inkwell/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(services.NewMockBackend(), nil)
}

func setupLiveRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		PublicURL:     "http://localhost:4001",
		StorageBucket: "blog-images",
	}
	return NewRouter(services.NewLiveBackend(db, cfg), nil), db
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// pngImage starts with the PNG signature so it sniffs as image/png.
var pngImage = []byte("\x89PNG\r\n\x1a\nfake image bytes")

func doMultipart(router *gin.Engine, method, path, token string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	return doUpload(router, method, path, token, fields, "imageFile", "image/png", image)
}

func doUpload(router *gin.Engine, method, path, token string, fields map[string]string, field, contentType string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if data != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="upload.png"`)
		header.Set("Content-Type", contentType)
		part, _ := writer.CreatePart(header)
		part.Write(data)
	}
	writer.Close()

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestServiceInfo(t *testing.T) {
	router := setupMockRouter()

	w := doJSON(router, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "mock", body["status"])
	assert.Equal(t, Version, body["version"])

	w = doJSON(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMockMode_AuthFlow(t *testing.T) {
	router := setupMockRouter()

	w := doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: services.MockPassword})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, services.MockAdminToken, body["access_token"])
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])

	w = doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "admin@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/auth/get-user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Token missing", decode(t, w)["error"])

	w = doJSON(router, http.MethodGet, "/auth/get-user", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/auth/get-user", services.MockUserToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user@example.com", decode(t, w)["email"])

	w = doJSON(router, http.MethodPut, "/auth/reset-password", services.MockUserToken, models.ResetPasswordRequest{OldPassword: "wrong", NewPassword: "next"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid old password", decode(t, w)["error"])

	w = doJSON(router, http.MethodPut, "/auth/reset-password", services.MockUserToken, models.ResetPasswordRequest{OldPassword: services.MockPassword})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/auth/reset-password", services.MockUserToken, models.ResetPasswordRequest{OldPassword: services.MockPassword, NewPassword: "next"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password updated successfully", decode(t, w)["message"])

	w = doJSON(router, http.MethodPost, "/auth/register", "", models.RegisterRequest{Email: "new@example.com", Password: "pw", Username: "new", Name: "New"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "new@example.com", decode(t, w)["user"].(map[string]interface{})["email"])

	w = doJSON(router, http.MethodPost, "/auth/register", "", models.RegisterRequest{Email: "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/logout", services.MockUserToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMockMode_ContentIsUnavailable(t *testing.T) {
	router := setupMockRouter()

	for _, path := range []string{"/posts", "/posts/1", "/categories", "/categories/1"} {
		w := doJSON(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.Equal(t, "Store not configured", decode(t, w)["error"], path)
	}

	w := doJSON(router, http.MethodGet, "/posts/admin", services.MockAdminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(router, http.MethodPut, "/profile", services.MockUserToken, models.UpdateProfileRequest{Name: "Someone"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(router, http.MethodGet, "/storage/blog-images/posts/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "mock blobs are not served")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	router := setupMockRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/posts/admin"},
		{http.MethodGet, "/posts/admin/1"},
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/1"},
		{http.MethodDelete, "/posts/1"},
		{http.MethodPost, "/categories"},
		{http.MethodPut, "/categories/1"},
		{http.MethodDelete, "/categories/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doJSON(router, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = doJSON(router, tt.method, tt.path, "forged", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = doJSON(router, tt.method, tt.path, services.MockUserToken, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := setupMockRouter()

	req, _ := http.NewRequest(http.MethodOptions, "/posts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func loginAsAdmin(t *testing.T, router *gin.Engine, db *gorm.DB) string {
	t.Helper()

	w := doJSON(router, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Email: "editor@example.com", Password: "s3cret-pass", Username: "editor", Name: "Editor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "editor@example.com").Update("role", models.RoleAdmin).Error)

	w = doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "editor@example.com", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode(t, w)["access_token"].(string)
}

func TestLiveMode_PostLifecycle(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	w := doJSON(router, http.MethodPost, "/categories", token, models.CategoryRequest{Name: "Travel"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decode(t, w)["data"].(map[string]interface{})["id"].(float64)

	fields := map[string]string{
		"title":       "Lisbon",
		"category_id": jsonNumber(categoryID),
		"description": "Three days",
		"content":     "Trams and tiles",
		"status_id":   "2",
	}

	w = doMultipart(router, http.MethodPost, "/posts", token, fields, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "image is required")

	image := pngImage
	w = doMultipart(router, http.MethodPost, "/posts", token, fields, image)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Created post successfully", body["message"])
	post := body["data"].(map[string]interface{})
	postID := jsonNumber(post["id"].(float64))
	imageURL := post["image"].(string)
	require.Contains(t, imageURL, "http://localhost:4001/storage/blog-images/posts/")

	w = doJSON(router, http.MethodGet, "/posts?category=trav&keyword=tiles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["totalPosts"])
	assert.Equal(t, "Travel", page["posts"].([]interface{})[0].(map[string]interface{})["category"])

	imagePath := imageURL[len("http://localhost:4001"):]
	w = doJSON(router, http.MethodGet, imagePath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, image, w.Body.Bytes())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	etag := w.Header().Get("ETag")
	assert.NotEmpty(t, etag)

	req, _ := http.NewRequest(http.MethodGet, imagePath, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	router.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	fields["title"] = "Lisbon, again"
	fields["status_id"] = "1"
	w = doMultipart(router, http.MethodPut, "/posts/"+postID, token, fields, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, imageURL, decode(t, w)["data"].(map[string]interface{})["image"])

	w = doJSON(router, http.MethodGet, "/posts/"+postID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "drafts are hidden from readers")

	w = doJSON(router, http.MethodGet, "/posts/admin/"+postID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lisbon, again", decode(t, w)["title"])

	w = doJSON(router, http.MethodGet, "/posts/admin", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["posts"], 1)

	w = doJSON(router, http.MethodDelete, "/categories/"+jsonNumber(categoryID), token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "category still in use")

	w = doJSON(router, http.MethodDelete, "/posts/"+postID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted post successfully", decode(t, w)["message"])

	w = doJSON(router, http.MethodDelete, "/posts/"+postID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodDelete, "/categories/"+jsonNumber(categoryID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLiveMode_InvalidIDs(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	w := doJSON(router, http.MethodGet, "/posts/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/categories/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doMultipart(router, http.MethodPut, "/posts/abc", token, map[string]string{"title": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doMultipart(router, http.MethodPost, "/posts", token, map[string]string{"title": "x", "category_id": "travel", "status_id": "2"}, []byte("img"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiveMode_LogoutRevokesToken(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	w := doJSON(router, http.MethodGet, "/auth/get-user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["role"])

	w = doJSON(router, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/posts/admin", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "editor@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "live mode reports bad credentials as 400")
}

func TestLiveMode_Profile(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	w := doJSON(router, http.MethodPut, "/profile", token, models.UpdateProfileRequest{Name: "Chief Editor"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Chief Editor", decode(t, w)["user"].(map[string]interface{})["name"])

	w = doJSON(router, http.MethodPut, "/profile", token, models.UpdateProfileRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/profile", "", models.UpdateProfileRequest{Name: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLiveMode_UploadsMustBeImages(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	page := []byte("<html><body><script>alert(document.cookie)</script></body></html>")
	w := doUpload(router, http.MethodPost, "/profile/avatar", token, nil, "avatarFile", "image/png", page)
	assert.Equal(t, http.StatusBadRequest, w.Code, "html posing as an image")

	w = doUpload(router, http.MethodPost, "/profile/avatar", token, nil, "avatarFile", "text/html", pngImage)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	avatarURL := decode(t, w)["user"].(map[string]interface{})["profilePic"].(string)
	require.Contains(t, avatarURL, "http://localhost:4001/storage/blog-images/avatars/")

	w = doJSON(router, http.MethodGet, avatarURL[len("http://localhost:4001"):], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"), "declared part type is ignored")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	fields := map[string]string{"title": "x", "category_id": "1", "status_id": "2"}
	w = doUpload(router, http.MethodPost, "/posts", token, fields, "imageFile", "image/svg+xml", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func readEvent(t *testing.T, conn *websocket.Conn) models.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var message models.WSMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestLiveMode_PostEventsFeed(t *testing.T) {
	router, db := setupLiveRouter(t)
	token := loginAsAdmin(t, router, db)

	server := httptest.NewServer(router)
	defer server.Close()
	feedURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/posts/admin/ws?token="

	w := doJSON(router, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Email: "reader@example.com", Password: "s3cret-pass", Username: "reader", Name: "Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(router, http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "reader@example.com", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	readerToken := decode(t, w)["access_token"].(string)

	_, resp, err := websocket.DefaultDialer.Dial(feedURL+readerToken, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	_, resp, err = websocket.DefaultDialer.Dial(feedURL+"forged", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	conn, _, err := websocket.DefaultDialer.Dial(feedURL+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(models.WSMessage{Type: "client_connect"}))
	connected := readEvent(t, conn)
	assert.Equal(t, "client_connected", connected.Type)
	assert.NotEmpty(t, connected.Data.(map[string]interface{})["client_id"])

	w = doJSON(router, http.MethodPost, "/categories", token, models.CategoryRequest{Name: "Food"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	categoryID := decode(t, w)["data"].(map[string]interface{})["id"].(float64)

	w = doMultipart(router, http.MethodPost, "/posts", token, map[string]string{
		"title":       "Pastel de nata",
		"category_id": jsonNumber(categoryID),
		"description": "Custard",
		"content":     "Flaky",
		"status_id":   "2",
	}, pngImage)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := readEvent(t, conn)
	assert.Equal(t, services.EventPostCreated, created.Type)
	assert.Equal(t, "Pastel de nata", created.Data.(map[string]interface{})["title"])
}

func jsonNumber(v float64) string {
	return strconv.FormatInt(int64(v), 10)
}
