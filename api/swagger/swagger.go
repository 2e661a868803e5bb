package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "IEP Hero API",
        "description": "Generates, reviews and approves IEP accommodation plans.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Accommodations", "description": "AI generated accommodation plans"},
        {"name": "Sessions", "description": "Collaboration, comments and approval"},
        {"name": "Hero", "description": "Premium plan features"},
        {"name": "Students", "description": "Saved child profiles"},
        {"name": "Exports", "description": "CSV and PDF downloads"},
        {"name": "Authentication", "description": "Identity lookups"}
    ],
    "paths": {
        "/auth/me": {
            "get": {
                "tags": ["Authentication"], "summary": "Current identity", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/users/{id}": {
            "get": {
                "tags": ["Authentication"], "summary": "Public profile of a user", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/accommodations/generate": {
            "post": {
                "tags": ["Accommodations"], "summary": "Generate IEP accommodations", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateAccommodationsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Parent or student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Upstream failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"], "summary": "Sessions visible to a user", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/{id}": {
            "get": {
                "tags": ["Sessions"], "summary": "Session with comments", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/{id}/comments": {
            "post": {
                "tags": ["Sessions"], "summary": "Comment on a session", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddCommentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/{id}/approval": {
            "put": {
                "tags": ["Sessions"], "summary": "Approve or un-approve accommodations", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ApprovalRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Advocates only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/{id}/legal-analysis": {
            "get": {
                "tags": ["Hero"], "summary": "Legal risk analysis of a stored session", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Plan upgrade required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/{id}/export": {
            "post": {
                "tags": ["Exports"], "summary": "Export a session", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportSessionRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"], "summary": "Download an export", "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "404": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hero/advanced-review": {
            "post": {
                "tags": ["Hero"], "summary": "AI review of a stored session", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdvancedReviewRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Plan upgrade required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/hero/advocate-recommendations/{id}": {
            "get": {
                "tags": ["Hero"], "summary": "Ranked advocates for a parent", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/autism-profiles": {
            "get": {
                "tags": ["AutismProfiles"], "summary": "Autism profiles visible to the caller", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/autism-profiles/generate": {
            "post": {
                "tags": ["AutismProfiles"], "summary": "Generate an autism profile for a student", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateAutismProfileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Hero fields require an upgrade", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "500": {"description": "Generation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/autism-profiles/{id}": {
            "get": {
                "tags": ["AutismProfiles"], "summary": "Get autism profile", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/autism-profiles/{id}/share": {
            "post": {
                "tags": ["Hero"], "summary": "Share a profile with the assigned advocate", "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ShareAutismProfileRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Plan upgrade required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"], "summary": "List students", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "parentId", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"], "summary": "Create student", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"], "summary": "Get student", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "GenerateAccommodationsRequest": {
            "type": "object",
            "properties": {
                "childName": {"type": "string"},
                "gradeLevel": {"type": "string", "enum": ["pre-k", "kindergarten", "1st", "2nd", "3rd", "4th", "5th", "middle", "high"]},
                "diagnosisAreas": {"type": "array", "items": {"type": "string"}},
                "sensoryPreferences": {"type": "array", "items": {"type": "string"}},
                "behavioralChallenges": {"type": "array", "items": {"type": "string"}},
                "communicationMethod": {"type": "string", "enum": ["verbal", "limited-verbal", "aac-device", "sign-language", "picture-cards", "gestures", "non-verbal"]},
                "additionalInfo": {"type": "string"},
                "studentId": {"type": "string"},
                "selectedParentId": {"type": "string"}
            }
        },
        "AddCommentRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"},
                "accommodationIndex": {"type": "integer", "minimum": 0}
            }
        },
        "ApprovalRequest": {
            "type": "object",
            "required": ["approved"],
            "properties": {
                "approved": {"type": "boolean"},
                "section": {"type": "string", "enum": ["accommodations"]},
                "field": {"type": "string", "enum": ["accommodations"], "description": "deprecated alias of section"}
            }
        },
        "ExportSessionRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {"format": {"type": "string", "enum": ["csv", "pdf"]}}
        },
        "AdvancedReviewRequest": {
            "type": "object",
            "required": ["sessionId"],
            "properties": {"sessionId": {"type": "string"}}
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": ["name", "gradeLevel", "communicationMethod"],
            "properties": {
                "name": {"type": "string"},
                "gradeLevel": {"type": "string"},
                "diagnosisAreas": {"type": "array", "items": {"type": "string"}},
                "sensoryPreferences": {"type": "array", "items": {"type": "string"}},
                "behavioralChallenges": {"type": "array", "items": {"type": "string"}},
                "communicationMethod": {"type": "string"},
                "additionalNotes": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date"},
                "schoolName": {"type": "string"},
                "currentIepDate": {"type": "string", "format": "date"},
                "parentId": {"type": "string"}
            }
        },
        "GenerateAutismProfileRequest": {
            "type": "object",
            "required": ["studentId"],
            "properties": {
                "studentId": {"type": "string"},
                "sensoryPreferences": {"type": "object", "properties": {
                    "selected": {"type": "array", "items": {"type": "string", "enum": ["auditory", "visual", "tactile", "smell", "taste", "proprioceptive", "vestibular"]}},
                    "calming_strategies": {"type": "string"}
                }},
                "communicationStyle": {"type": "object", "properties": {
                    "primary_method": {"type": "string"},
                    "effective_strategies": {"type": "string"}
                }},
                "behavioralTriggers": {"type": "object", "properties": {
                    "triggers": {"type": "array", "items": {"type": "string"}},
                    "other_triggers": {"type": "string"}
                }},
                "homeSupports": {"type": "string"},
                "goals": {"type": "string"},
                "individualStrengths": {"type": "string", "description": "Hero plan"},
                "learningStyle": {"type": "string", "description": "Hero plan"},
                "environmentalPreferences": {"type": "string", "description": "Hero plan"},
                "supplementalDocuments": {"type": "array", "maxItems": 5, "description": "Hero plan", "items": {"type": "object", "required": ["name", "content"], "properties": {
                    "name": {"type": "string"}, "type": {"type": "string"}, "content": {"type": "string"}
                }}}
            }
        },
        "ShareAutismProfileRequest": {
            "type": "object",
            "properties": {"message": {"type": "string", "maxLength": 1000}}
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
