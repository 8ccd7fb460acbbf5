// Package integration 黑盒集成测试,通过HTTP访问已启动的服务
//
// 运行方式:
//
//	go run ./cmd/api serve &
//	LIBRARY_E2E_BASE_URL=http://localhost:8080/api go test ./test/integration/...
//
// 未设置LIBRARY_E2E_BASE_URL时整个包跳过
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// BaseURL API基础URL
var BaseURL = os.Getenv("LIBRARY_E2E_BASE_URL")

// Response 统一响应结构
type Response struct {
	HTTPStatus int             `json:"-"`
	StatusCode int             `json:"statusCode"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// BookData 图书响应数据
type BookData struct {
	ID                string `json:"id"`
	ISBN              string `json:"isbn"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	PublicationYear   int    `json:"publicationYear"`
	Quantity          int    `json:"quantity"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// BorrowData 借阅记录
type BorrowData struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnedAt *time.Time `json:"returnedAt"`
	Book       struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"book"`
}

var client = &http.Client{Timeout: Timeout}

// Do 发送请求并解析统一响应,data为nil时不带请求体
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	result.HTTPStatus = resp.StatusCode
	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	t.Helper()
	return Do(t, http.MethodPost, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	return Do(t, http.MethodGet, url, nil, token)
}

// Decode 解析data字段
func Decode[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v), "解析data失败: %s", string(resp.Data))
	return v
}

var seq atomic.Int64

// unique 进程内递增,配合时间戳保证重复运行不冲突
func unique() int64 {
	return time.Now().UnixNano()/1000 + seq.Add(1)
}

// GenerateTestUsername 生成唯一用户名
func GenerateTestUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, unique()%1_000_000_000)
}

// GenerateTestISBN 生成唯一的13位ISBN
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", unique()%10_000_000_000)
}

// RegisterTestUser 注册并登录,返回用户名与Access Token
func RegisterTestUser(t *testing.T, prefix string) (username string, token string) {
	t.Helper()

	username = GenerateTestUsername(prefix)
	registerReq := map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": "Test1234",
		"fullName": "Integration " + prefix,
	}
	registerResp := PostJSON(t, BaseURL+"/auth/register", registerReq, "")
	require.Equal(t, http.StatusCreated, registerResp.HTTPStatus, "注册失败: %s", registerResp.Message)

	return username, Login(t, username, "Test1234").AccessToken
}

// Login 登录
func Login(t *testing.T, username, password string) LoginData {
	t.Helper()
	loginResp := PostJSON(t, BaseURL+"/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, loginResp.HTTPStatus, "登录失败: %s", loginResp.Message)
	return Decode[LoginData](t, loginResp)
}

// CreateTestBook 新增测试图书
func CreateTestBook(t *testing.T, token string, title string, quantity int) BookData {
	t.Helper()
	bookReq := map[string]interface{}{
		"title":           title,
		"author":          "测试作者",
		"isbn":            GenerateTestISBN(),
		"publicationYear": 2020,
		"quantity":        quantity,
		"description":     "集成测试用图书",
	}

	bookResp := PostJSON(t, BaseURL+"/books", bookReq, token)
	require.Equal(t, http.StatusCreated, bookResp.HTTPStatus, "新增图书失败: %s", bookResp.Message)
	return Decode[BookData](t, bookResp)
}

// GetBook 查询图书详情
func GetBook(t *testing.T, token, id string) BookData {
	t.Helper()
	resp := GetJSON(t, BaseURL+"/books/"+id, token)
	require.Equal(t, http.StatusOK, resp.HTTPStatus, "查询图书失败: %s", resp.Message)
	return Decode[BookData](t, resp)
}
