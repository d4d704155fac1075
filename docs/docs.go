// Package docs holds the swagger template for the API. It mirrors the swag
// annotations on the handlers and is regenerated with `swag init -g cmd/api/main.go`.
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
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.LogoutResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories in display order",
                "parameters": [
                    {"type": "string", "description": "expense or income", "name": "polarity", "in": "query", "required": true},
                    {"type": "integer", "description": "Team book", "name": "teamId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create a custom category",
                "parameters": [
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateCategoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.CategoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/categories/order": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Move a category behind another one",
                "parameters": [
                    {"description": "Move", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ReorderCategoriesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReorderCategoriesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/categories/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get a category",
                "parameters": [
                    {"type": "integer", "description": "Category ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategoryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Rename or re-icon a custom category",
                "parameters": [
                    {"type": "integer", "description": "Category ID", "name": "id", "in": "path", "required": true},
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateCategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["categories"],
                "summary": "Delete a custom category and its charges",
                "parameters": [
                    {"type": "integer", "description": "Category ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "207": {"description": "Multi-Status", "schema": {"$ref": "#/definitions/handler.PartialFailureDetails"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/categories/{id}/icon": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Upload a category icon",
                "parameters": [
                    {"type": "integer", "description": "Category ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "PNG or JPEG image", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CategoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/charges": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["charges"],
                "summary": "List charges with per-category totals",
                "parameters": [
                    {"type": "string", "description": "Exact day (YYYY-MM-DD)", "name": "date", "in": "query"},
                    {"type": "string", "description": "Range start, requires end", "name": "start", "in": "query"},
                    {"type": "string", "description": "Range end, requires start", "name": "end", "in": "query"},
                    {"type": "string", "description": "Category key", "name": "categoryKey", "in": "query"},
                    {"type": "string", "description": "expense or income", "name": "polarity", "in": "query"},
                    {"type": "boolean", "description": "Only charges created by the caller", "name": "mine", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SummaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["charges"],
                "summary": "Record a charge",
                "parameters": [
                    {"description": "Charge", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateChargeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ChargeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/charges/recent": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["charges"],
                "summary": "Charges in a date range",
                "parameters": [
                    {"type": "string", "description": "Range start (YYYY-MM-DD)", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "Range end (YYYY-MM-DD)", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ChargeResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/charges/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["charges"],
                "summary": "Get a charge",
                "parameters": [
                    {"type": "integer", "description": "Charge ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ChargeResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["charges"],
                "summary": "Change the amount and note of a charge",
                "parameters": [
                    {"type": "integer", "description": "Charge ID", "name": "id", "in": "path", "required": true},
                    {"description": "Charge", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateChargeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ChargeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["charges"],
                "summary": "Delete a charge",
                "parameters": [
                    {"type": "integer", "description": "Charge ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Spend and income per bucket for a week, month or year",
                "parameters": [
                    {"type": "string", "description": "week, month or year", "name": "timeType", "in": "query", "required": true},
                    {"type": "integer", "description": "Calendar year, defaults to the current one", "name": "year", "in": "query"},
                    {"type": "integer", "description": "1-based week or month number, ignored for year", "name": "index", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "handler.LogoutResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.UpdateCategoryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "icon": {"type": "string"}
            }
        },
        "handler.UpdateChargeRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "handler.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/handler.ValidationError"}}
            }
        },
        "handler.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.PartialFailureDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "failedRecordIds": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "handler.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "handler.CategoryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "key": {"type": "string"},
                "icon": {"type": "string"},
                "iconUrl": {"type": "string"},
                "polarity": {"type": "string"},
                "isDefault": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.CreateCategoryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "icon": {"type": "string"},
                "polarity": {"type": "string"}
            }
        },
        "handler.ReorderCategoriesRequest": {
            "type": "object",
            "properties": {
                "polarity": {"type": "string"},
                "originId": {"type": "integer"},
                "afterId": {"type": "integer"}
            }
        },
        "handler.ReorderCategoriesResponse": {
            "type": "object",
            "properties": {
                "polarity": {"type": "string"},
                "ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "handler.CreateChargeRequest": {
            "type": "object",
            "properties": {
                "categoryKey": {"type": "string"},
                "amount": {"type": "string"},
                "date": {"type": "string"},
                "note": {"type": "string"}
            }
        },
        "handler.ChargeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "categoryKey": {"type": "string"},
                "polarity": {"type": "string"},
                "amount": {"type": "string"},
                "date": {"type": "string"},
                "note": {"type": "string"},
                "createdBy": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.CategoryTotalResponse": {
            "type": "object",
            "properties": {
                "categoryKey": {"type": "string"},
                "polarity": {"type": "string"},
                "money": {"type": "string"}
            }
        },
        "handler.SummaryResponse": {
            "type": "object",
            "properties": {
                "result": {"type": "array", "items": {"$ref": "#/definitions/handler.ChargeResponse"}},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.CategoryTotalResponse"}},
                "total": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.SeriesResponse": {
            "type": "object",
            "properties": {
                "buckets": {"type": "array", "items": {"type": "string"}},
                "spend": {"type": "array", "items": {"type": "string"}},
                "income": {"type": "array", "items": {"type": "string"}}
            }
        },
        "handler.StatsResponse": {
            "type": "object",
            "properties": {
                "timeType": {"type": "string"},
                "year": {"type": "integer"},
                "index": {"type": "integer"},
                "total": {"$ref": "#/definitions/handler.SeriesResponse"},
                "items": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handler.SeriesResponse"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Auth0 access token, prefixed with \"Bearer \"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tally API",
	Description:      "Personal and team bookkeeping: charges, categories and statistics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
