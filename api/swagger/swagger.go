package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Recognition API",
        "description": "Accreditation workflow for university recognition applications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Institutions", "description": "Institution registry"},
        {"name": "Applications", "description": "Submission workflow"},
        {"name": "Supervisors", "description": "Supervisor management and workload balancing"},
        {"name": "Decisions", "description": "Append-only decision log"},
        {"name": "Meetings", "description": "Committee meeting batching"},
        {"name": "Statuses", "description": "Interpreted recognition statuses and letters"},
        {"name": "Letters", "description": "Rendered letter downloads"}
    ],
    "paths": {
        "/institutions": {
            "get": {
                "tags": ["Institutions"],
                "summary": "List institutions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Institutions"],
                "summary": "Register an institution",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstitutionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}": {
            "get": {
                "tags": ["Institutions"],
                "summary": "Get institution",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}/submit": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit an application for review",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}/supervisor": {
            "put": {
                "tags": ["Supervisors"],
                "summary": "Reassign an institution to another supervisor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeSupervisorRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}/decisions": {
            "get": {
                "tags": ["Decisions"],
                "summary": "Full decision log for an institution",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}/history": {
            "get": {
                "tags": ["Statuses"],
                "summary": "Finalized decision history with meeting dates",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/institutions/{id}/letter": {
            "get": {
                "tags": ["Statuses"],
                "summary": "Recommendation letter payload for the latest finalized decision",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "lang", "in": "query", "type": "string", "enum": ["en", "ar"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/supervisors": {
            "get": {
                "tags": ["Supervisors"],
                "summary": "List supervisors with workloads",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Supervisors"],
                "summary": "Register a supervisor",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSupervisorRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/supervisors/{id}": {
            "get": {
                "tags": ["Supervisors"],
                "summary": "Get supervisor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Supervisors"],
                "summary": "Delete a supervisor, redistributing their institutions",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/supervisors/{id}/institutions": {
            "get": {
                "tags": ["Supervisors"],
                "summary": "List institutions assigned to a supervisor",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decisions": {
            "post": {
                "tags": ["Decisions"],
                "summary": "Record a committee decision",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AppendDecisionRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/decisions/finalize": {
            "post": {
                "tags": ["Decisions"],
                "summary": "Finalize an institution's latest decision in a meeting",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FinalizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already finalized as recognized"}
                }
            }
        },
        "/applications/pending": {
            "get": {
                "tags": ["Meetings"],
                "summary": "List applications awaiting the next meeting",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/applications/return": {
            "post": {
                "tags": ["Meetings"],
                "summary": "Return an application to a supervisor for another review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReturnRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/meetings": {
            "get": {
                "tags": ["Meetings"],
                "summary": "List meetings",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Meetings"],
                "summary": "Batch pending applications into a new meeting",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Nothing pending"}
                }
            }
        },
        "/meetings/entries": {
            "get": {
                "tags": ["Meetings"],
                "summary": "List meeting entries",
                "parameters": [{"name": "number", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/statuses": {
            "get": {
                "tags": ["Statuses"],
                "summary": "Aggregate recognition status for every institution",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/letters/download": {
            "get": {
                "tags": ["Letters"],
                "summary": "Download a rendered letter PDF via a signed link",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "PDF document"}}
            }
        }
    },
    "definitions": {
        "CreateInstitutionRequest": {
            "type": "object",
            "required": ["name", "country", "speciality"],
            "properties": {
                "name": {"type": "string"},
                "country": {"type": "string"},
                "speciality": {"type": "string"}
            }
        },
        "CreateSupervisorRequest": {
            "type": "object",
            "required": ["name", "email", "speciality", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "speciality": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AppendDecisionRequest": {
            "type": "object",
            "required": ["ins_id", "reasons"],
            "properties": {
                "ins_id": {"type": "integer"},
                "accepted": {"type": "boolean"},
                "reasons": {"type": "array", "items": {"type": "string"}},
                "decided_on": {"type": "string", "format": "date-time"}
            }
        },
        "FinalizeRequest": {
            "type": "object",
            "required": ["ins_id", "meeting_number", "outcome"],
            "properties": {
                "ins_id": {"type": "integer"},
                "meeting_number": {"type": "string"},
                "outcome": {"type": "string", "enum": ["Recognized", "Rejected"]}
            }
        },
        "ReturnRequest": {
            "type": "object",
            "required": ["ins_id"],
            "properties": {
                "ins_id": {"type": "integer"}
            }
        },
        "ChangeSupervisorRequest": {
            "type": "object",
            "required": ["supervisor_id"],
            "properties": {
                "supervisor_id": {"type": "integer"}
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
