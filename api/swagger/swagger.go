package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registrar API",
        "description": "Grading period lifecycle, revision requests and gated grade writes",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Periods", "description": "Grading period lifecycle"},
        {"name": "Revisions", "description": "Revision request workflow"},
        {"name": "Grades", "description": "Gated grade writes and grade sheets"},
        {"name": "Enrollments", "description": "Student enrollment roster"},
        {"name": "Users", "description": "Account management"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated identity",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/current": {
            "get": {
                "tags": ["Periods"],
                "summary": "Get the current grading period",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/current/window": {
            "get": {
                "tags": ["Periods"],
                "summary": "Get the grading-window status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/rollover": {
            "post": {
                "tags": ["Periods"],
                "summary": "Start a new academic year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RolloverAcademicYearRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Stale version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/advance-term": {
            "post": {
                "tags": ["Periods"],
                "summary": "Advance to the next term",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdvanceTermRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Term not completed or stale version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/switch-semester": {
            "post": {
                "tags": ["Periods"],
                "summary": "Switch to the other semester",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SwitchSemesterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/periods/complete-term": {
            "post": {
                "tags": ["Periods"],
                "summary": "Mark the current term completed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CompleteTermRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/revision-requests": {
            "get": {
                "tags": ["Revisions"],
                "summary": "List revision requests",
                "parameters": [
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"},
                    {"name": "activeOnly", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Revisions"],
                "summary": "Open a revision request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OpenRevisionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Active request already covers this scope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/revision-requests/mine": {
            "get": {
                "tags": ["Revisions"],
                "summary": "List the caller's revision requests",
                "parameters": [
                    {"name": "activeOnly", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/revision-requests/{id}/close": {
            "post": {
                "tags": ["Revisions"],
                "summary": "Close a revision request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List the grade sheet of a subject offering",
                "parameters": [
                    {"name": "subjectId", "in": "query", "required": true, "type": "string"},
                    {"name": "academicYear", "in": "query", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/bulk": {
            "put": {
                "tags": ["Grades"],
                "summary": "Write grades for many students of one subject section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkUpdateGradesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Partial write, some students unresolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Grading window closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/remarks": {
            "post": {
                "tags": ["Grades"],
                "summary": "Record a withdrawal or incomplete remark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetRemarkRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Window closed or later remark exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "academicYear", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a subject offering",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove an enrollment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a user account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}/active": {
            "patch": {
                "tags": ["Users"],
                "summary": "Activate or deactivate a user account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetActiveRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "GradingPeriod": {
            "type": "object",
            "properties": {
                "institution_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string", "enum": ["FIRST", "SECOND"]},
                "term": {"type": "string", "enum": ["PRELIM", "MIDTERM", "FINAL"]},
                "prelim_done": {"type": "boolean"},
                "midterm_done": {"type": "boolean"},
                "final_done": {"type": "boolean"},
                "window_pending": {"type": "boolean"},
                "window_active": {"type": "boolean"},
                "start_at": {"type": "string"},
                "end_at": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "RevisionRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "request_code": {"type": "string"},
                "instructor_id": {"type": "string"},
                "instructor_name": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"},
                "closed_at": {"type": "string"}
            }
        },
        "BulkGradeResult": {
            "type": "object",
            "properties": {
                "matched_count": {"type": "integer"},
                "modified_count": {"type": "integer"},
                "missing": {"type": "array", "items": {"type": "string"}},
                "locked": {"type": "array", "items": {"type": "string"}}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RolloverAcademicYearRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "start_at": {"type": "string"},
                "end_at": {"type": "string"},
                "version": {"type": "integer"}
            },
            "required": ["academic_year", "start_at", "end_at"]
        },
        "AdvanceTermRequest": {
            "type": "object",
            "properties": {
                "term": {"type": "string"},
                "start_at": {"type": "string"},
                "end_at": {"type": "string"},
                "version": {"type": "integer"}
            },
            "required": ["term", "start_at", "end_at"]
        },
        "SwitchSemesterRequest": {
            "type": "object",
            "properties": {
                "semester": {"type": "string"},
                "start_at": {"type": "string"},
                "end_at": {"type": "string"},
                "version": {"type": "integer"}
            },
            "required": ["semester", "start_at", "end_at"]
        },
        "CompleteTermRequest": {
            "type": "object",
            "properties": {
                "version": {"type": "integer"}
            }
        },
        "OpenRevisionRequest": {
            "type": "object",
            "properties": {
                "instructor_id": {"type": "string"},
                "instructor_name": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"}
            },
            "required": ["instructor_id", "instructor_name", "subject_id", "academic_year", "semester", "department", "section", "term"]
        },
        "BulkUpdateGradesRequest": {
            "type": "object",
            "properties": {
                "subject_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BulkGradeEntry"}
                }
            },
            "required": ["subject_id", "academic_year", "semester", "department", "section", "term", "entries"]
        },
        "BulkGradeEntry": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "value": {"type": "number"}
            },
            "required": ["student_id", "value"]
        },
        "SetRemarkRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "section": {"type": "string"},
                "term": {"type": "string"},
                "remark": {"type": "string", "enum": ["W", "INC"]}
            },
            "required": ["student_id", "subject_id", "academic_year", "semester", "department", "section", "term", "remark"]
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "subject_id": {"type": "string"},
                "academic_year": {"type": "string"},
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "section": {"type": "string"}
            },
            "required": ["student_id", "student_name", "subject_id", "academic_year", "semester", "department", "section"]
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string"},
                "department": {"type": "string"}
            },
            "required": ["email", "password", "full_name", "role"]
        },
        "SetActiveRequest": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"}
            },
            "required": ["active"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
