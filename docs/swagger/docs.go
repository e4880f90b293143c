// Package swagger registers the OpenAPI document served under /api/swagger.
// Regenerate with: swag init -g cmd/server/server.go -o docs/swagger
package swagger

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
        "/v1/me": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Authentication API"], "summary": "Get the current user", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}}},
        "/v1/prompts": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "List prompts", "parameters": [{"type": "integer", "default": 20, "name": "limit", "in": "query"}, {"type": "string", "name": "after", "in": "query"}, {"type": "string", "default": "desc", "name": "order", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "Create a prompt", "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/promptreq.CreatePromptRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/promptres.PromptResponse"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}}
        },
        "/v1/prompts/{prompt_id}": {
            "get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "Get a prompt", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/promptres.PromptResponse"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}},
            "patch": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "Update a prompt", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/promptres.PromptResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "Delete a prompt", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/v1/prompts/{prompt_id}/schema": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Prompts API"], "summary": "Get the JSON Schema of a prompt's output", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/prompts/{prompt_id}/chats": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Chats API"], "summary": "List a prompt's chats", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/prompts/{prompt_id}/files": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Chats API"], "summary": "List a prompt's files", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/prompts/{prompt_id}/generate": {"post": {"security": [{"BearerAuth": []}], "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"], "tags": ["Generation API"], "summary": "Generate with the prompt's history", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}, {"type": "string", "name": "content", "in": "formData"}, {"type": "file", "name": "files[]", "in": "formData"}, {"type": "boolean", "name": "debug", "in": "formData"}], "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}, "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}}},
        "/v1/prompts/{prompt_id}/jobs": {"post": {"security": [{"BearerAuth": []}], "consumes": ["application/json"], "produces": ["application/json"], "tags": ["Generation API"], "summary": "Queue a generation", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"202": {"description": "Accepted"}}}},
        "/v1/generate-with-ai/{prompt_id}": {"post": {"security": [{"BearerAuth": []}], "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"], "tags": ["Generation API"], "summary": "Generate without history", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}, {"type": "string", "name": "content", "in": "formData", "required": true}, {"type": "boolean", "name": "debug", "in": "formData"}], "responses": {"200": {"description": "OK"}, "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}}},
        "/v1/jobs/{job_id}": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Generation API"], "summary": "Get a generation job", "parameters": [{"type": "string", "name": "job_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}}}},
        "/v1/chats": {"post": {"security": [{"BearerAuth": []}], "consumes": ["application/json", "multipart/form-data"], "produces": ["application/json"], "tags": ["Chats API"], "summary": "Append a chat turn", "responses": {"201": {"description": "Created"}}}},
        "/v1/chats/{prompt_id}": {"delete": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Chats API"], "summary": "Delete a prompt's chats", "parameters": [{"type": "string", "name": "prompt_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/usage": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Usage API"], "summary": "Get current user's token usage", "responses": {"200": {"description": "OK"}}}},
        "/v1/usage/daily": {"get": {"security": [{"BearerAuth": []}], "produces": ["application/json"], "tags": ["Usage API"], "summary": "Get current user's daily token usage", "responses": {"200": {"description": "OK"}}}},
        "/v1/version": {"get": {"produces": ["application/json"], "tags": ["Server API"], "summary": "Get API build version", "responses": {"200": {"description": "OK"}}}},
        "/v1/healthz": {"get": {"produces": ["application/json"], "tags": ["Server API"], "summary": "Health check endpoint", "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "responses.ErrorResponse": {"type": "object", "properties": {"code": {"type": "string"}, "error": {"type": "string"}, "error_instance_id": {"type": "string"}, "request_id": {"type": "string"}}},
        "promptreq.CreatePromptRequest": {"type": "object", "required": ["name", "description"], "properties": {"name": {"type": "string", "maxLength": 255}, "description": {"type": "string", "maxLength": 1000}, "json_schema": {"type": "object"}}},
        "promptres.PromptResponse": {"type": "object", "properties": {"id": {"type": "string"}, "object": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"}, "json_schema": {"type": "object"}, "count_usage": {"type": "integer"}, "created_at": {"type": "integer"}, "updated_at": {"type": "integer"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Promptforge API",
	Description:      "Prompt management and Gemini backed structured generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
