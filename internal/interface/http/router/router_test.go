package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/application/lending"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/infrastructure/storage"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/validator"
)

// envelope 响应体,data保留原始JSON按需解析
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalRows  int64 `json:"totalRows"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	require.NoError(t, validator.Setup())

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode},
		Upload:  config.UploadConfig{Dir: filepath.Join(t.TempDir(), "covers"), URLPrefix: "/uploads/covers", MaxSize: 1 << 20},
		Lending: config.LendingConfig{LoanPeriod: 14 * 24 * time.Hour},
	}

	s := memory.NewStore()
	books := memory.NewBookRepository(s)
	borrows := memory.NewBorrowRepository(s)
	users := memory.NewUserRepository(s)
	logs := memory.NewInventoryLogRepository(s)
	blacklist := memory.NewTokenBlacklist()
	cache := redis.NoopBookCache{}
	events := messaging.NoopPublisher{}
	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	covers, err := storage.NewLocalCoverStore(cfg.Upload)
	require.NoError(t, err)

	bookSvc := book.NewService(books)
	userSvc := user.NewServiceWithCost(users, bcrypt.MinCost)
	ledger := inventory.NewLedger(s, books, logs)

	h := Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userSvc),
			appuser.NewLoginUseCase(userSvc, jwtManager),
			appuser.NewRefreshUseCase(userSvc, jwtManager),
			appuser.NewLogoutUseCase(blacklist, jwtManager),
			appuser.NewProfileUseCase(userSvc),
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(bookSvc),
			appbook.NewGetBookUseCase(bookSvc, cache),
			appbook.NewListBooksUseCase(bookSvc),
			appbook.NewUpdateBookUseCase(s, bookSvc, books, ledger, cache),
			appbook.NewDeleteBookUseCase(s, books, borrows, cache, events),
			appbook.NewUploadCoverUseCase(s, bookSvc, covers, cache),
			appbook.NewListInventoryLogsUseCase(books, logs),
		),
		Lending: handler.NewLendingHandler(
			lending.NewBorrowBookUseCase(s, books, borrows, ledger, cache, events, lending.Options{LoanPeriod: cfg.Lending.LoanPeriod}),
			lending.NewReturnBookUseCase(s, books, borrows, ledger, cache, events),
			lending.NewListBorrowsUseCase(borrows),
		),
		Health: handler.NewHealthHandler(nil),
	}
	return &server{t: t, engine: New(cfg, middleware.NewAuthMiddleware(jwtManager, blacklist), h)}
}

func (s *server) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.send(req, token)
}

func (s *server) send(req *http.Request, token string) (int, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

// login 注册并登录,返回access token
func (s *server) login(username string) string {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
		"fullName": "Reader " + username,
	})
	require.Equal(s.t, http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(s.t, http.StatusOK, code)
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func (s *server) createBook(token, isbn string, qty int) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/books", token, gin.H{
		"title":           "Clean Code",
		"author":          "Robert C. Martin",
		"isbn":            isbn,
		"publicationYear": 2008,
		"quantity":        qty,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.ID
}

type recordJSON struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnedAt *time.Time `json:"returnedAt"`
	Book       struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		ISBN  string `json:"isbn"`
	} `json:"book"`
	User struct {
		Username string `json:"username"`
		FullName string `json:"fullName"`
	} `json:"user"`
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	code, env := s.do(http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)

	token := s.login("alice")

	code, env = s.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	var profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "user", profile.Role)
	assert.Empty(t, profile.Password)

	code, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "email": "x@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperrors.ErrCodeUsernameDuplicate, env.Code)

	code, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "bob", "email": "not-an-email", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "email")
	assert.Contains(t, env.Message, "password")

	code, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, apperrors.ErrCodeTokenRevoked, env.Code)
}

func TestBookCatalog(t *testing.T) {
	s := newServer(t)
	token := s.login("librarian")

	id := s.createBook(token, "9780132350884", 3)
	s.createBook(token, "9780201633610", 1)

	code, env := s.do(http.MethodPost, "/api/books", token, gin.H{
		"title": "Clean Code", "author": "Robert C. Martin", "isbn": "9780132350884", "publicationYear": 2008,
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Book with ISBN 9780132350884 already exists", env.Message)

	code, env = s.do(http.MethodPost, "/api/books", token, gin.H{
		"title": "Bad", "author": "X", "isbn": "12-34", "publicationYear": 2008,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "isbn")

	code, env = s.do(http.MethodGet, "/api/books?limit=1", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Books retrieved successfully", env.Message)
	assert.EqualValues(t, 2, env.Pagination.TotalRows)
	assert.Equal(t, 2, env.Pagination.TotalPages)
	assert.Equal(t, 1, env.Pagination.Limit)

	code, env = s.do(http.MethodPatch, "/api/books/"+id, token, gin.H{"title": "Clean Code (Revised)", "quantity": 5})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated struct {
		Title             string `json:"title"`
		Quantity          int    `json:"quantity"`
		AvailableQuantity int    `json:"availableQuantity"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Clean Code (Revised)", updated.Title)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, 5, updated.AvailableQuantity)

	code, env = s.do(http.MethodGet, "/api/books/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed (uuid is expected)", env.Message)

	code, env = s.do(http.MethodGet, "/api/books/00000000-0000-0000-0000-000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Book with ID 00000000-0000-0000-0000-000000000000 not found", env.Message)

	code, env = s.do(http.MethodGet, "/api/books/"+id+"/inventory-logs", token, nil)
	require.Equal(t, http.StatusOK, code)
	var logs []struct {
		ChangeType string `json:"changeType"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "ADJUST", logs[0].ChangeType)

	code, _ = s.do(http.MethodDelete, "/api/books/"+id, token, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/books/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLendingFlow(t *testing.T) {
	s := newServer(t)
	alice := s.login("alice")
	bob := s.login("bob")
	id := s.createBook(alice, "9780132350884", 1)

	code, env := s.do(http.MethodPost, "/api/books/"+id+"/borrow", alice, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var rec recordJSON
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "borrowed", rec.Status)
	assert.Nil(t, rec.ReturnedAt)
	assert.Equal(t, id, rec.Book.ID)
	assert.Equal(t, "9780132350884", rec.Book.ISBN)
	assert.Equal(t, "alice", rec.User.Username)
	assert.WithinDuration(t, rec.BorrowedAt.Add(14*24*time.Hour), rec.DueDate, time.Second)

	code, env = s.do(http.MethodPost, "/api/books/"+id+"/borrow", bob, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No available copies of this book", env.Message)

	code, env = s.do(http.MethodPost, "/api/books/"+id+"/return", bob, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You have not borrowed this book", env.Message)

	code, env = s.do(http.MethodDelete, "/api/books/"+id, alice, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Book is currently borrowed and cannot be deleted", env.Message)

	code, env = s.do(http.MethodGet, "/api/books/user/borrowed", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var active []recordJSON
	require.NoError(t, json.Unmarshal(env.Data, &active))
	require.Len(t, active, 1)

	code, env = s.do(http.MethodPost, "/api/books/"+id+"/return", alice, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "returned", rec.Status)
	assert.NotNil(t, rec.ReturnedAt)

	// 下架后历史中仍能看到图书信息
	code, _ = s.do(http.MethodDelete, "/api/books/"+id, alice, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/books/user/history", alice, nil)
	require.Equal(t, http.StatusOK, code)
	var history []recordJSON
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, "Clean Code", history[0].Book.Title)

	code, env = s.do(http.MethodGet, "/api/books/user/borrowed", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestUploadCover(t *testing.T) {
	s := newServer(t)
	token := s.login("alice")
	id := s.createBook(token, "9780132350884", 1)

	png := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
	}
	upload := func(filename string, content []byte) (int, envelope) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("cover", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/books/"+id+"/cover", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return s.send(req, token)
	}

	code, env := upload("cover.png", png)
	require.Equal(t, http.StatusOK, code, env.Message)
	var b struct {
		CoverImage string `json:"coverImage"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Regexp(t, `^/uploads/covers/[0-9a-f-]{36}\.png$`, b.CoverImage)

	// 静态路由可以访问
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, b.CoverImage, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	code, env = upload("notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperrors.ErrCodeInvalidFile, env.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
