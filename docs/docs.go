// Package docs swagger文档
// 由 swag init -g cmd/api/main.go 生成,修改接口注释后重新生成
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {"post": {"tags": ["认证"], "summary": "用户注册", "responses": {"201": {"description": "Created"}}}},
        "/api/auth/login": {"post": {"tags": ["认证"], "summary": "用户登录", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/refresh": {"post": {"tags": ["认证"], "summary": "刷新Token", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["认证"], "summary": "登出", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["认证"], "summary": "当前用户信息", "responses": {"200": {"description": "OK"}}}},
        "/api/books": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "图书列表", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "新增图书", "responses": {"201": {"description": "Created"}}}
        },
        "/api/books/user/borrowed": {"get": {"security": [{"BearerAuth": []}], "tags": ["借阅"], "summary": "当前借阅", "responses": {"200": {"description": "OK"}}}},
        "/api/books/user/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["借阅"], "summary": "借阅历史", "responses": {"200": {"description": "OK"}}}},
        "/api/books/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "图书详情", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "修改图书", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "下架图书", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/books/{id}/cover": {"post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["图书"], "summary": "上传封面", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "cover", "in": "formData", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/books/{id}/inventory-logs": {"get": {"security": [{"BearerAuth": []}], "tags": ["图书"], "summary": "库存变更记录", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/books/{id}/borrow": {"post": {"security": [{"BearerAuth": []}], "tags": ["借阅"], "summary": "借书", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/books/{id}/return": {"post": {"security": [{"BearerAuth": []}], "tags": ["借阅"], "summary": "还书", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/health/live": {"get": {"tags": ["健康检查"], "summary": "存活检查", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["健康检查"], "summary": "就绪检查", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer {token}",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library API",
	Description:      "图书借阅服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
