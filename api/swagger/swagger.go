package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "Timetable generation, storage, and substitute replacement for the school portal.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduler", "description": "Constraint-based timetable generation"},
        {"name": "Timetable", "description": "Base and effective timetable views, manual edits, overrides"},
        {"name": "Replacement", "description": "Teacher absence coverage workflows and offers"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unavailable"}
                }
            }
        },
        "/timetable/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate base timetables for a term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generation results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Infeasible schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{classId}/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Get a class timetable (base, or effective for a date)",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": false, "type": "string", "format": "date"},
                    {"name": "day", "in": "query", "required": false, "type": "integer", "minimum": 1, "maximum": 5}
                ],
                "responses": {
                    "200": {"description": "Slots", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{classId}/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export a class timetable as CSV or PDF",
                "parameters": [
                    {"name": "classId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "required": false, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File payload"}
                }
            }
        },
        "/timetable/slots": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Manually create or replace one base slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertSlotRequest"}}
                ],
                "responses": {
                    "200": {"description": "Stored slot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Teacher double-booking conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/overrides": {
            "post": {
                "tags": ["Timetable"],
                "summary": "Apply a dated substitution to a slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "Override slot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflicting override", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/overrides/{slotId}": {
            "delete": {
                "tags": ["Timetable"],
                "summary": "Remove a dated substitution",
                "parameters": [
                    {"name": "slotId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/absences": {
            "post": {
                "tags": ["Replacement"],
                "summary": "Report an approved teacher absence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AbsenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Workflows spawned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/{id}/revoke": {
            "post": {
                "tags": ["Replacement"],
                "summary": "Revoke an absence and unwind its coverage",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/replacements": {
            "get": {
                "tags": ["Replacement"],
                "summary": "List coverage workflows",
                "parameters": [
                    {"name": "absenceId", "in": "query", "required": false, "type": "string"},
                    {"name": "status", "in": "query", "required": false, "type": "string"},
                    {"name": "page", "in": "query", "required": false, "type": "integer"},
                    {"name": "pageSize", "in": "query", "required": false, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Workflows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offers/{id}/accept": {
            "post": {
                "tags": ["Replacement"],
                "summary": "Accept a replacement offer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Accepted offer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Offer already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/offers/{id}/decline": {
            "post": {
                "tags": ["Replacement"],
                "summary": "Decline a replacement offer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/DeclineOfferRequest"}}
                ],
                "responses": {
                    "200": {"description": "Declined offer", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Offer already resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateRequest": {
            "type": "object",
            "required": ["termId"],
            "properties": {
                "termId": {"type": "string"},
                "classId": {"type": "string"}
            }
        },
        "UpsertSlotRequest": {
            "type": "object",
            "required": ["classId", "termId", "dayOfWeek", "period"],
            "properties": {
                "classId": {"type": "string"},
                "termId": {"type": "string"},
                "dayOfWeek": {"type": "integer", "minimum": 1, "maximum": 5},
                "period": {"type": "integer", "minimum": 1, "maximum": 8},
                "kind": {"type": "string", "enum": ["PERIOD", "ASSEMBLY", "BREAK", "ANTHEM"]},
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"},
                "doublePeriod": {"type": "boolean"}
            }
        },
        "OverrideRequest": {
            "type": "object",
            "required": ["slotId", "date", "teacherId"],
            "properties": {
                "slotId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "teacherId": {"type": "string"}
            }
        },
        "AbsenceRequest": {
            "type": "object",
            "required": ["teacherId", "startDate", "endDate"],
            "properties": {
                "teacherId": {"type": "string"},
                "leaveType": {"type": "string", "enum": ["SICK", "CASUAL", "OFFICIAL", "OTHER"]},
                "startDate": {"type": "string", "format": "date"},
                "endDate": {"type": "string", "format": "date"}
            }
        },
        "DeclineOfferRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
