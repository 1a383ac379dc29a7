package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/utils"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	pages  *cache.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Config loads once per process; every test pins the same values so the
	// order tests run in does not matter.
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	t.Setenv("ADMIN_USERNAMES", "admin")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("MEDIA_DIR", t.TempDir())

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	))

	pages := cache.NewService(cache.NewMemoryStore(), 20*time.Second)
	return &testEnv{router: SetupRouter(db, pages), db: db, pages: pages}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: hash}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(user.ID, user.Username, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) createPost(t *testing.T, author *models.User, text string, groupID *uint) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text, GroupID: groupID}
	require.NoError(t, e.db.Create(post).Error)
	return post
}

func (e *testEnv) request(method, target, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Items      []map[string]any  `json:"items"`
		Errors     map[string]string `json:"errors"`
		Pagination struct {
			Page       int `json:"page"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAnonymousCreateRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodGet, "/create/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))
}

func TestCreatePostRedirectsToProfile(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")

	w := env.request(http.MethodPost, "/create/", env.token(t, leo), url.Values{
		"text": {"my first post"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))

	var count int64
	env.db.Model(&models.Post{}).Where("author_id = ?", leo.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreatePostWithoutTextReturnsFormErrors(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")

	w := env.request(http.MethodPost, "/create/", env.token(t, leo), url.Values{
		"text": {"   "},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "this field is required", resp.Data.Errors["text"])

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreatePostRejectsUnknownGroup(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")

	w := env.request(http.MethodPost, "/create/", env.token(t, leo), url.Values{
		"text":  {"hello"},
		"group": {"999"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "select a valid group", resp.Data.Errors["group"])
}

func TestNonAuthorEditRedirectsToDetail(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	post := env.createPost(t, leo, "original text", nil)

	target := fmt.Sprintf("/posts/%d/edit/", post.ID)
	w := env.request(http.MethodPost, target, env.token(t, anna), url.Values{
		"text": {"hijacked"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	require.NoError(t, env.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "original text", reloaded.Text)
}

func TestAuthorEditUpdatesPost(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	post := env.createPost(t, leo, "original text", nil)

	target := fmt.Sprintf("/posts/%d/edit/", post.ID)
	w := env.request(http.MethodPost, target, env.token(t, leo), url.Values{
		"text": {"edited text"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var reloaded models.Post
	require.NoError(t, env.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "edited text", reloaded.Text)
	assert.Equal(t, leo.ID, reloaded.AuthorID)
}

func TestCommentFlow(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	post := env.createPost(t, leo, "discuss", nil)
	token := env.token(t, anna)

	// unknown post
	w := env.request(http.MethodPost, "/posts/999/comment/", token, url.Values{
		"text": {"hello"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// empty text keeps status 200 and reports the field
	target := fmt.Sprintf("/posts/%d/comment/", post.ID)
	w = env.request(http.MethodPost, target, token, url.Values{"text": {""}})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "this field is required", resp.Data.Errors["text"])

	// a valid comment lands on the detail page
	w = env.request(http.MethodPost, target, token, url.Values{"text": {"nice one"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	w = env.request(http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice one")
}

func TestFollowLifecycle(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	token := env.token(t, leo)

	w := env.request(http.MethodGet, "/profile/anna/follow/", token, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/anna/", w.Header().Get("Location"))

	// repeating the follow keeps a single edge
	env.request(http.MethodGet, "/profile/anna/follow/", token, nil)
	var count int64
	env.db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// self-follow is a silent no-op
	w = env.request(http.MethodGet, "/profile/leo/follow/", token, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	env.db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// the followed author's posts show up in the follow feed
	env.createPost(t, anna, "from anna", nil)
	w = env.request(http.MethodGet, "/follow/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Data.Items, 1)

	w = env.request(http.MethodGet, "/profile/anna/unfollow/", token, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	env.db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestFollowFeedEmptyWhenFollowingNobody(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	env.createPost(t, anna, "unseen", nil)

	w := env.request(http.MethodGet, "/follow/", env.token(t, leo), nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Empty(t, resp.Data.Items)
}

func TestIndexCacheReplaysUntilFlushed(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	env.createPost(t, leo, "old post", nil)

	first := env.request(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, first.Code)

	// a write does not invalidate the cached page
	env.createPost(t, leo, "fresh post", nil)
	second := env.request(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.NotContains(t, second.Body.String(), "fresh post")

	env.pages.Flush()
	third := env.request(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, third.Code)
	assert.Contains(t, third.Body.String(), "fresh post")
}

func TestGroupFeed(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	group := &models.Group{Title: "Cats", Slug: "cats"}
	require.NoError(t, env.db.Create(group).Error)
	env.createPost(t, leo, "about cats", &group.ID)
	env.createPost(t, leo, "off topic", nil)

	w := env.request(http.MethodGet, "/group/cats/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "about cats", resp.Data.Items[0]["text"])

	w = env.request(http.MethodGet, "/group/missing/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupAdministration(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin")
	leo := env.createUser(t, "leo")
	adminToken := env.token(t, admin)

	// non-admin cannot create groups
	w := env.request(http.MethodPost, "/groups/", env.token(t, leo), url.Values{
		"title": {"Cats"}, "slug": {"cats"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(http.MethodPost, "/groups/", adminToken, url.Values{
		"title": {"Cats"}, "slug": {"cats"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate slug reported as a field error
	w = env.request(http.MethodPost, "/groups/", adminToken, url.Values{
		"title": {"More Cats"}, "slug": {"cats"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "group with this slug already exists", resp.Data.Errors["slug"])

	var group models.Group
	require.NoError(t, env.db.Where("slug = ?", "cats").First(&group).Error)
	post := env.createPost(t, leo, "about cats", &group.ID)

	// deletion clears the reference and keeps the post
	w = env.request(http.MethodDelete, "/group/cats/", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Post
	require.NoError(t, env.db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.GroupID)
}

func TestProfilePagination(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	for i := 1; i <= 13; i++ {
		env.createPost(t, leo, fmt.Sprintf("post %d", i), nil)
	}

	w := env.request(http.MethodGet, "/profile/leo/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp.Data.Items, 10)
	assert.Equal(t, 2, resp.Data.Pagination.TotalPages)

	w = env.request(http.MethodGet, "/profile/leo/?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Len(t, resp.Data.Items, 3)

	// a page past the end clamps to the last page
	w = env.request(http.MethodGet, "/profile/leo/?page=99", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, 2, resp.Data.Pagination.Page)
	assert.Len(t, resp.Data.Items, 3)
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/auth/signup/", "", url.Values{
		"username":  {"newcomer"},
		"password1": {"longenoughpass"},
		"password2": {"longenoughpass"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "yatube_token=")

	// short password rejected with the form echoed back
	w = env.request(http.MethodPost, "/auth/signup/", "", url.Values{
		"username":  {"другой"},
		"password1": {"short"},
		"password2": {"short"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "password must contain at least 8 characters", resp.Data.Errors["password1"])

	// wrong password stays on the form
	w = env.request(http.MethodPost, "/auth/login/", "", url.Values{
		"username": {"newcomer"},
		"password": {"wrong-password"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.NotEmpty(t, resp.Data.Errors["__all__"])

	// a correct login honors the next parameter
	w = env.request(http.MethodPost, "/auth/login/?next=/create/", "", url.Values{
		"username": {"newcomer"},
		"password": {"longenoughpass"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
}

func TestLoginNextNeverLeavesSite(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "leo")

	w := env.request(http.MethodPost, "/auth/login/?next=//evil.example", "", url.Values{
		"username": {"leo"},
		"password": {"correct-horse-battery"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestPostDetailNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodGet, "/posts/999/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(http.MethodGet, "/posts/garbage/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostOwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	post := env.createPost(t, leo, "keep me", nil)

	target := fmt.Sprintf("/posts/%d/delete/", post.ID)
	w := env.request(http.MethodPost, target, env.token(t, anna), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))

	var count int64
	env.db.Model(&models.Post{}).Count(&count)
	require.Equal(t, int64(1), count)

	w = env.request(http.MethodPost, target, env.token(t, leo), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/leo/", w.Header().Get("Location"))
	env.db.Model(&models.Post{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteCommentOwnershipGate(t *testing.T) {
	env := newTestEnv(t)
	leo := env.createUser(t, "leo")
	anna := env.createUser(t, "anna")
	post := env.createPost(t, leo, "discuss", nil)
	comment := &models.Comment{PostID: post.ID, AuthorID: anna.ID, Text: "mine"}
	require.NoError(t, env.db.Create(comment).Error)

	target := fmt.Sprintf("/comments/%d/delete/", comment.ID)

	// the post author does not own the comment
	w := env.request(http.MethodPost, target, env.token(t, leo), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	var count int64
	env.db.Model(&models.Comment{}).Count(&count)
	require.Equal(t, int64(1), count)

	w = env.request(http.MethodPost, target, env.token(t, anna), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), w.Header().Get("Location"))
	env.db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
