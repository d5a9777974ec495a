// Package docs registers the OpenAPI description of the HTTP API with swag so /swagger/ can serve
// it. Keep it in step with the godoc annotations on the controllers.
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
        "/api/schedule/add-event": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Extracts an event from a natural-language sentence and stores it unless it conflicts with the caller's schedule. A conflict is reported with status \"conflict\", the proposed event and one warning per clashing event; nothing is stored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Add an event from free text",
                "parameters": [
                    {"description": "Free-text event description", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.AddEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "status conflict", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "201": {"description": "status success", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "422": {"description": "error.code: extraction_failed", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: upstream_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/api/schedule/confirm-event": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the conflict check on a structured draft, typically the proposed_event of an earlier conflict report. With force set the draft is stored even when it conflicts; the conflicts are still reported.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Store a reviewed draft",
                "parameters": [
                    {"description": "Draft and force flag", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ConfirmEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "status conflict", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "201": {"description": "status success", "schema": {"$ref": "#/definitions/controllers.CreateEventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/api/schedule/get-events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Resolves a period phrase such as \"today\", \"this week\" or \"next month\" and returns the caller's events starting inside it, ordered by start. An empty body or period means today.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "List events for a period phrase",
                "parameters": [
                    {"description": "Period phrase", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/controllers.GetEventsRequest"}}
                ],
                "responses": {
                    "200": {"description": "data.period and data.events", "schema": {"$ref": "#/definitions/controllers.GetEventsSuccessResponse"}},
                    "422": {"description": "error.code: extraction_failed", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "503": {"description": "error.code: upstream_unavailable", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/api/schedule/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the caller's events whose start lies in [start, end], ordered by start. Does not call the language service.",
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "List events in an explicit range",
                "parameters": [
                    {"type": "string", "description": "Range start, YYYY-MM-DD HH:MM", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "Range end, YYYY-MM-DD HH:MM", "name": "end", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListEventsSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/api/schedule/events.ics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Resolves the period phrase (default today) and returns the caller's events in it as a text/calendar document.",
                "produces": ["text/calendar"],
                "tags": ["schedule"],
                "summary": "Export a period as iCalendar",
                "parameters": [
                    {"type": "string", "description": "Period phrase", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "iCalendar document", "schema": {"type": "string"}}
                }
            }
        },
        "/api/schedule/events/{eventID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Deletes one of the caller's events. Events owned by someone else are reported as not found.",
                "produces": ["application/json"],
                "tags": ["schedule"],
                "summary": "Delete an event",
                "parameters": [
                    {"type": "string", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "data.id is the deleted event", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates an account and returns an access token. The user id is the owner of every event the user creates.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration data", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains user, token and token_type", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticate with email and password. Returns a JWT whose subject is the user id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Login credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "data contains user, token and token_type", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "data contains the user", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.AddEventRequest": {
            "type": "object",
            "properties": {"input": {"type": "string"}}
        },
        "controllers.EventDraftDTO": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start": {"type": "string", "example": "2025-05-30 10:00"},
                "end": {"type": "string", "example": "2025-05-30 11:00"},
                "type": {"type": "string", "example": "activity"},
                "priority": {"type": "integer", "example": 3},
                "is_all_day": {"type": "boolean"},
                "category": {"type": "array", "items": {"type": "string"}}
            }
        },
        "controllers.ConfirmEventRequest": {
            "type": "object",
            "properties": {
                "draft": {"$ref": "#/definitions/controllers.EventDraftDTO"},
                "force": {"type": "boolean"}
            }
        },
        "controllers.GetEventsRequest": {
            "type": "object",
            "properties": {"period": {"type": "string"}}
        },
        "controllers.EventResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "start": {"type": "string", "example": "2025-05-30 10:00"},
                "end": {"type": "string", "example": "2025-05-30 11:00"},
                "type": {"type": "string", "example": "activity"},
                "priority": {"type": "integer", "example": 3},
                "is_all_day": {"type": "boolean"},
                "category": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"}
            }
        },
        "controllers.ConflictResponse": {
            "type": "object",
            "properties": {
                "event": {"$ref": "#/definitions/controllers.EventResponse"},
                "warning_message": {"type": "string"},
                "explanation_error": {"type": "string"}
            }
        },
        "controllers.CreateEventResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "event": {"$ref": "#/definitions/controllers.EventResponse"},
                "proposed_event": {"$ref": "#/definitions/controllers.EventDraftDTO"},
                "conflicts": {"type": "array", "items": {"$ref": "#/definitions/controllers.ConflictResponse"}},
                "degraded": {"type": "boolean"}
            }
        },
        "controllers.CreateEventSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.CreateEventResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.PeriodResponse": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "controllers.GetEventsResponse": {
            "type": "object",
            "properties": {
                "period": {"$ref": "#/definitions/controllers.PeriodResponse"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/controllers.EventResponse"}}
            }
        },
        "controllers.GetEventsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.GetEventsResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.ListEventsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/controllers.EventResponse"}},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.RegisterRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "nlschedule API",
	Description:      "Natural-language schedule service: add events from free text, detect conflicts, query by period.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
