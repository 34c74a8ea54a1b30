package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Ledger API",
        "description": "Daily attendance and monthly payment ledger for a school roster",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Roster", "description": "Children and the course catalogue"},
        {"name": "Attendance", "description": "Per-day presence, check-in and sheets"},
        {"name": "Payments", "description": "Append-only monthly payments"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check against the configured store",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A backing store is unreachable"}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Roster"],
                "summary": "List courses in enrollment order",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/children": {
            "get": {
                "tags": ["Roster"],
                "summary": "List children sorted by course",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Roster"],
                "summary": "Register a child",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterChildRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Roster attendance view for a day",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "date", "type": "string", "format": "date", "description": "Defaults to today"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Some presence lookups failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance/{childId}/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Presence of a child on a day",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "childId", "type": "string", "required": true},
                    {"in": "path", "name": "date", "type": "string", "format": "date", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Mark a child present or absent on a day",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "childId", "type": "string", "required": true},
                    {"in": "path", "name": "date", "type": "string", "format": "date", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SetPresenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Write failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance/check-in": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark a child present by check-in code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CheckInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Empty code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance/sheet": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the attendance sheet for a day",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "date", "type": "string", "format": "date"},
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Sheet file", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Register a payment",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterPaymentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterChildRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "course"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "course": {"type": "string", "example": "1° Básico"},
                "check_in_code": {"type": "string"}
            }
        },
        "SetPresenceRequest": {
            "type": "object",
            "required": ["present"],
            "properties": {"present": {"type": "boolean"}}
        },
        "CheckInRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string"},
                "date": {"type": "string", "format": "date"}
            }
        },
        "RegisterPaymentRequest": {
            "type": "object",
            "required": ["child_id", "period", "amount"],
            "properties": {
                "child_id": {"type": "string"},
                "period": {"type": "string", "example": "2024-03"},
                "amount": {"type": "string", "example": "15000"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
