// Package docs registers the OpenAPI document served at /swagger/*.
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
            "get": {"tags": ["health"], "summary": "API banner", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}}}}
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.registerRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Login", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "401": {"description": "Unauthorized"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/auth/google": {
            "post": {"tags": ["auth"], "summary": "Google sign-in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.googleLoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "422": {"description": "Unprocessable Entity"}}}
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "Current user", "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userResponse"}},
                    "401": {"description": "Unauthorized"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Logout", "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "401": {"description": "Unauthorized"}}}
        },
        "/auth/forgot-password": {
            "post": {"tags": ["auth"], "summary": "Request a password reset", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.forgotPasswordRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.forgotPasswordResponse"}},
                    "422": {"description": "Unprocessable Entity"}}}
        },
        "/auth/reset-password": {
            "post": {"tags": ["auth"], "summary": "Reset password", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.resetPasswordRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/license/validate": {
            "post": {"tags": ["license"], "summary": "Validate a license key", "consumes": ["application/json"], "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.validateLicenseRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.validateLicenseResponse"}},
                    "422": {"description": "Unprocessable Entity"}}}
        },
        "/pro/features": {
            "get": {"tags": ["license"], "summary": "Pro features", "produces": ["application/json"], "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.proFeaturesResponse"}},
                    "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}}
        },
        "/admin/licenses": {
            "post": {"tags": ["admin"], "summary": "Issue a license", "consumes": ["application/json"], "produces": ["application/json"], "security": [{"AdminKey": []}],
                "parameters": [{"in": "body", "name": "body", "schema": {"$ref": "#/definitions/handler.issueLicenseRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.licenseResponse"}},
                    "401": {"description": "Unauthorized"}}}
        },
        "/admin/licenses/{key}": {
            "delete": {"tags": ["admin"], "summary": "Deactivate a license", "security": [{"AdminKey": []}],
                "parameters": [{"in": "path", "name": "key", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}
        },
        "/status": {
            "get": {"tags": ["status"], "summary": "List status checks", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.statusResponse"}}}}},
            "post": {"tags": ["status"], "summary": "Record a status check", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createStatusRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.statusResponse"}},
                    "422": {"description": "Unprocessable Entity"}}}
        }
    },
    "definitions": {
        "handler.registerRequest": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "maxLength": 72}, "name": {"type": "string"}}},
        "handler.loginRequest": {"type": "object", "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string", "maxLength": 72}}},
        "handler.googleLoginRequest": {"type": "object", "required": ["email", "google_id"],
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "picture": {"type": "string"}, "google_id": {"type": "string"}}},
        "handler.forgotPasswordRequest": {"type": "object", "required": ["email"],
            "properties": {"email": {"type": "string"}}},
        "handler.resetPasswordRequest": {"type": "object", "required": ["token", "new_password"],
            "properties": {"token": {"type": "string"}, "new_password": {"type": "string", "maxLength": 72}}},
        "handler.userResponse": {"type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "picture": {"type": "string"}, "is_pro": {"type": "boolean"}, "created_at": {"type": "string"}}},
        "handler.authResponse": {"type": "object",
            "properties": {"token": {"type": "string"}, "user": {"$ref": "#/definitions/handler.userResponse"}}},
        "handler.forgotPasswordResponse": {"type": "object",
            "properties": {"message": {"type": "string"}, "debug_token": {"type": "string"}, "reset_url": {"type": "string"}}},
        "handler.messageResponse": {"type": "object",
            "properties": {"message": {"type": "string"}}},
        "handler.validateLicenseRequest": {"type": "object", "required": ["license_key"],
            "properties": {"license_key": {"type": "string"}}},
        "handler.validateLicenseResponse": {"type": "object",
            "properties": {"valid": {"type": "boolean"}, "message": {"type": "string"}}},
        "handler.issueLicenseRequest": {"type": "object",
            "properties": {"note": {"type": "string"}}},
        "handler.licenseResponse": {"type": "object",
            "properties": {"key": {"type": "string"}, "active": {"type": "boolean"}, "note": {"type": "string"}, "created_at": {"type": "string"}}},
        "handler.proFeaturesResponse": {"type": "object",
            "properties": {"features": {"type": "array", "items": {"type": "string"}}}},
        "handler.createStatusRequest": {"type": "object", "required": ["client_name"],
            "properties": {"client_name": {"type": "string"}}},
        "handler.statusResponse": {"type": "object",
            "properties": {"id": {"type": "string"}, "client_name": {"type": "string"}, "timestamp": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "AdminKey": {"type": "apiKey", "name": "X-Admin-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "ScreenGrabber Account API",
	Description:      "Accounts, sessions, password recovery and Pro licensing for ScreenGrabber.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
