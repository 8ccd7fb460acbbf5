package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBookCatalog 图书目录:新增、查询、修改、下架
func TestBookCatalog(t *testing.T) {
	_, token := RegisterTestUser(t, "catalog")

	t.Run("新增图书", func(t *testing.T) {
		b := CreateTestBook(t, token, "《Go语言高级编程》", 3)
		assert.Equal(t, 3, b.Quantity)
		assert.Equal(t, 3, b.AvailableQuantity)
	})

	t.Run("ISBN重复", func(t *testing.T) {
		b := CreateTestBook(t, token, "Duplicate ISBN", 1)
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"title":           "Another",
			"author":          "Someone",
			"isbn":            b.ISBN,
			"publicationYear": 2021,
		}, token)
		assert.Equal(t, http.StatusConflict, resp.HTTPStatus)
		assert.Equal(t, fmt.Sprintf("Book with ISBN %s already exists", b.ISBN), resp.Message)
	})

	t.Run("参数校验", func(t *testing.T) {
		cases := []struct {
			name string
			req  map[string]interface{}
		}{
			{"ISBN格式错误", map[string]interface{}{"title": "T", "author": "A", "isbn": "12-34", "publicationYear": 2020}},
			{"出版年份过早", map[string]interface{}{"title": "T", "author": "A", "isbn": GenerateTestISBN(), "publicationYear": 999}},
			{"缺少标题", map[string]interface{}{"author": "A", "isbn": GenerateTestISBN(), "publicationYear": 2020}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				resp := PostJSON(t, BaseURL+"/books", tc.req, token)
				assert.Equal(t, http.StatusBadRequest, resp.HTTPStatus, resp.Message)
			})
		}
	})

	t.Run("搜索与分页", func(t *testing.T) {
		b := CreateTestBook(t, token, "Searchable "+GenerateTestUsername("title"), 1)
		resp := GetJSON(t, BaseURL+"/books?search="+b.ISBN+"&page=1&limit=5", token)
		require.Equal(t, http.StatusOK, resp.HTTPStatus)
		books := Decode[[]BookData](t, resp)
		require.Len(t, books, 1)
		assert.Equal(t, b.ID, books[0].ID)
	})

	t.Run("不存在的图书", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books/3f1c2a4e-8b7d-4c1e-9f0a-2b3c4d5e6f70", token)
		assert.Equal(t, http.StatusNotFound, resp.HTTPStatus)

		resp = GetJSON(t, BaseURL+"/books/not-a-uuid", token)
		assert.Equal(t, http.StatusBadRequest, resp.HTTPStatus)
	})

	t.Run("下架后不可见", func(t *testing.T) {
		b := CreateTestBook(t, token, "To Be Deleted", 1)
		resp := Do(t, http.MethodDelete, BaseURL+"/books/"+b.ID, nil, token)
		require.Equal(t, http.StatusOK, resp.HTTPStatus, resp.Message)
		assert.Equal(t, "Book deleted successfully", resp.Message)

		resp = GetJSON(t, BaseURL+"/books/"+b.ID, token)
		assert.Equal(t, http.StatusNotFound, resp.HTTPStatus)
	})
}
