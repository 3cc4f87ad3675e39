// Package docs holds the OpenAPI document served under /swagger. Keep it in
// step with the handler annotations; `go generate ./cmd/server` rebuilds it
// with swag.
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
        "/": {
            "get": {
                "description": "Whether the caller is logged in, and their first name if so",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Session state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HomeResponse"}}
                }
            }
        },
        "/balance": {
            "get": {
                "security": [{"SessionCookie": []}],
                "description": "Return the current balance of the logged-in user's account",
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Get balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.BalanceResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/deposit": {
            "post": {
                "security": [{"SessionCookie": []}],
                "description": "Atomically add a positive amount to the balance",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Deposit",
                "parameters": [
                    {"description": "Deposit request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LedgerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/login": {
            "post": {
                "description": "Check credentials and start a session; the token is set as a cookie and returned",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "get": {
                "description": "Revoke the current session, clear the cookie and redirect to /",
                "tags": ["auth"],
                "summary": "Logout user",
                "responses": {
                    "302": {"description": "Found"}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Create a user and a zero-balance account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.RegisterResponse"}},
                    "400": {"description": "Invalid request or duplicate external id", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/withdraw": {
            "post": {
                "security": [{"SessionCookie": []}],
                "description": "Atomically subtract a positive amount; the balance never goes negative",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ledger"],
                "summary": "Withdraw",
                "parameters": [
                    {"description": "Withdraw request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AmountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LedgerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.AmountRequest": {
            "description": "Amount to move, positive with at most two decimals",
            "type": "object",
            "required": ["amount"],
            "properties": {"amount": {"type": "number", "example": 100.5}}
        },
        "handlers.BalanceResponse": {
            "type": "object",
            "properties": {"balance": {"type": "number", "example": 100.5}}
        },
        "handlers.HomeResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "first_name": {"type": "string"}
            }
        },
        "handlers.LedgerResponse": {
            "type": "object",
            "properties": {
                "balance": {"type": "number", "example": 100.5},
                "message": {"type": "string", "example": "Deposit successful"}
            }
        },
        "handlers.LoginRequest": {
            "description": "Login request structure",
            "type": "object",
            "required": ["external_id", "password"],
            "properties": {
                "external_id": {"type": "string", "example": "123456789"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "handlers.LoginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Logged in"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/handlers.SessionUser"}
            }
        },
        "handlers.RegisterRequest": {
            "description": "Registration request structure",
            "type": "object",
            "required": ["external_id", "first_name", "last_name", "password"],
            "properties": {
                "external_id": {"type": "string", "maxLength": 9, "pattern": "^[0-9]+$", "example": "123456789"},
                "first_name": {"type": "string", "maxLength": 50, "example": "Ada"},
                "last_name": {"type": "string", "maxLength": 50, "example": "Lovelace"},
                "password": {"type": "string", "minLength": 6, "example": "password123"}
            }
        },
        "handlers.RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Registered successfully"},
                "user_id": {"type": "integer", "example": 1}
            }
        },
        "handlers.SessionUser": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string", "example": "Ada"},
                "id": {"type": "integer", "example": 1}
            }
        },
        "services.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "object", "additionalProperties": {"type": "string"}},
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "SessionCookie": {
            "type": "apiKey",
            "name": "bank_session",
            "in": "cookie"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:5000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Minibank API",
	Description:      "Minimal banking service: register, log in, check balance, deposit and withdraw",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
