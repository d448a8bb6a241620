// Package docs holds the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/report": {
            "get": {
                "description": "Market snapshot plus summarized recent content for a ticker",
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Ticker report",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol, e.g. TSLA", "name": "ticker", "in": "query", "required": true},
                    {"type": "string", "default": "social", "description": "social, news or stream", "name": "channel", "in": "query"},
                    {"type": "integer", "default": 4, "description": "Content items, 1-20", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/report.DTO"}},
                    "400": {"description": "Invalid ticker, channel or limit", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}, "headers": {"Retry-After": {"type": "integer"}}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "503": {"description": "Classification is not configured", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        },
        "/api/reports/history": {
            "get": {
                "description": "Archived reports for a ticker, newest first. Requires DATABASE_URL.",
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Report history",
                "parameters": [
                    {"type": "string", "description": "Ticker symbol", "name": "ticker", "in": "query", "required": true},
                    {"type": "integer", "default": 20, "description": "Maximum entries, 1-100", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/report.HistoryDTO"}},
                    "400": {"description": "Invalid ticker or limit", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "404": {"description": "History is not enabled", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/respond.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "report.DTO": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string", "example": "TSLA"},
                "channel": {"type": "string", "example": "social"},
                "name": {"type": "string", "example": "Tesla, Inc."},
                "sector": {"type": "string", "example": "Consumer Cyclical"},
                "price": {"type": "string", "example": "248.50"},
                "change": {"type": "string", "example": "-1.23%"},
                "highlight": {"type": "string", "example": "Post threatens new auto tariffs."},
                "items": {"type": "array", "items": {"$ref": "#/definitions/report.ItemDTO"}},
                "generated_at": {"type": "string", "example": "2025-03-02T12:00:00Z"}
            }
        },
        "report.ItemDTO": {
            "type": "object",
            "properties": {
                "time_ago": {"type": "string", "example": "3h ago"},
                "source": {"type": "string", "example": "Truth Social"},
                "sentiment": {"type": "string", "example": "Bearish"},
                "summary": {"type": "string", "example": "Tariff threat weighs on carmakers."}
            }
        },
        "report.HistoryEntryDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 42},
                "report": {"$ref": "#/definitions/report.DTO"}
            }
        },
        "report.HistoryDTO": {
            "type": "object",
            "properties": {
                "ticker": {"type": "string", "example": "TSLA"},
                "reports": {"type": "array", "items": {"$ref": "#/definitions/report.HistoryEntryDTO"}}
            }
        },
        "respond.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "TickerMate API",
	Description:      "Market snapshot and summarized social and news sentiment per ticker.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
