package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Vitals Ledger API",
        "description": "Cross-record civil registry ledger: marriages, births, deaths, licenses, voter rolls",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Registrars", "description": "Registrar set management"},
        {"name": "Marriages", "description": "Marriage certificate lifecycle"},
        {"name": "Births", "description": "Birth certificate lifecycle"},
        {"name": "Deaths", "description": "Death certificate lifecycle and cascades"},
        {"name": "Licenses", "description": "Driver license lifecycle"},
        {"name": "Districts", "description": "Voting districts and rosters"},
        {"name": "Voters", "description": "Voter registration lifecycle"},
        {"name": "Disclosure", "description": "Selective age disclosure proofs"},
        {"name": "Simulations", "description": "What-if simulation sessions"},
        {"name": "Events", "description": "Ledger event journal"},
        {"name": "Extracts", "description": "Certified PDF/CSV extracts"},
        {"name": "Auth", "description": "Development token mint"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Liveness check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}}}
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/dev-token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Mint a development bearer token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MintTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "501": {"description": "Mint disabled"}
                }
            }
        },
        "/api/v1/registrars/bootstrap": {
            "post": {
                "tags": ["Registrars"],
                "summary": "Bootstrap the first registrar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrarRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already initialized"}
                }
            }
        },
        "/api/v1/registrars": {
            "post": {
                "tags": ["Registrars"],
                "summary": "Add a registrar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrarRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Registrars"],
                "summary": "List registrars",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "source", "in": "query", "type": "string", "enum": ["production", "simulation"]}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/registrars/{account}": {
            "delete": {
                "tags": ["Registrars"],
                "summary": "Deactivate a registrar",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "account", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/marriages": {
            "post": {
                "tags": ["Marriages"],
                "summary": "Request a marriage certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarriageRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate or conflicting record"}}
            },
            "get": {
                "tags": ["Marriages"],
                "summary": "List marriage certificates",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/marriages/{id}/issue": {
            "post": {
                "tags": ["Marriages"],
                "summary": "Issue a requested marriage certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Invalid state transition"}}
            }
        },
        "/api/v1/marriages/{id}/revoke": {
            "post": {
                "tags": ["Marriages"],
                "summary": "Revoke an issued marriage certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/births": {
            "post": {
                "tags": ["Births"],
                "summary": "Request a birth certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BirthRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Births"],
                "summary": "List birth certificates",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/births/{id}/issue": {
            "post": {
                "tags": ["Births"],
                "summary": "Issue a requested birth certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/births/{id}": {
            "patch": {
                "tags": ["Births"],
                "summary": "Amend an issued birth certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BirthAmendment"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "tags": ["Births"],
                "summary": "Get a birth certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/deaths": {
            "post": {
                "tags": ["Deaths"],
                "summary": "Register a death",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeathRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate death record"}}
            },
            "get": {
                "tags": ["Deaths"],
                "summary": "List death certificates",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/deaths/{id}/issue": {
            "post": {
                "tags": ["Deaths"],
                "summary": "Issue a registered death certificate",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/deaths/{id}/effects": {
            "post": {
                "tags": ["Deaths"],
                "summary": "Apply cross-record death effects",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/licenses": {
            "post": {
                "tags": ["Licenses"],
                "summary": "Issue a driver license",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LicenseRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Holder under minimum age"}}
            },
            "get": {
                "tags": ["Licenses"],
                "summary": "List driver licenses",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "holder", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/licenses/{id}/suspend": {
            "post": {
                "tags": ["Licenses"],
                "summary": "Suspend an active license",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/licenses/{id}/reinstate": {
            "post": {
                "tags": ["Licenses"],
                "summary": "Reinstate a suspended license",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/licenses/{id}/revoke": {
            "post": {
                "tags": ["Licenses"],
                "summary": "Revoke a license",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/districts": {
            "post": {
                "tags": ["Districts"],
                "summary": "Add a voting district",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DistrictRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["Districts"],
                "summary": "List districts",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/districts/{id}/roster": {
            "get": {
                "tags": ["Districts"],
                "summary": "Get a district voter roster",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/districts/redistrict": {
            "post": {
                "tags": ["Districts"],
                "summary": "Move voters between districts atomically",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RedistrictRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/voters": {
            "post": {
                "tags": ["Voters"],
                "summary": "Register to vote",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoterRegistrationRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Already registered"}}
            },
            "get": {
                "tags": ["Voters"],
                "summary": "List voter registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "district", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/voters/{account}/approve": {
            "post": {
                "tags": ["Voters"],
                "summary": "Approve a pending registration",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "account", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/voters/{account}/challenge": {
            "post": {
                "tags": ["Voters"],
                "summary": "Challenge an approved registration",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "account", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/voters/{account}/adjudicate": {
            "post": {
                "tags": ["Voters"],
                "summary": "Adjudicate a challenged registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "account", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjudicationRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/disclosure/age-proofs": {
            "post": {
                "tags": ["Disclosure"],
                "summary": "Prove a subject meets an age threshold",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AgeProofRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/disclosure/age-proofs/verify": {
            "post": {
                "tags": ["Disclosure"],
                "summary": "Verify a previously issued age proof",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/simulations": {
            "post": {
                "tags": ["Simulations"],
                "summary": "Start a what-if simulation session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SimulationStartRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Simulation already running"}}
            }
        },
        "/api/v1/simulations/election-day": {
            "post": {
                "tags": ["Simulations"],
                "summary": "Run an election day turnout projection",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/simulations/current": {
            "get": {
                "tags": ["Simulations"],
                "summary": "Get the running simulation session",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No simulation running"}}
            }
        },
        "/api/v1/simulations/end": {
            "post": {
                "tags": ["Simulations"],
                "summary": "End the running simulation session",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}, "501": {"description": "Commit promotion disabled"}}
            }
        },
        "/api/v1/events": {
            "get": {
                "tags": ["Events"],
                "summary": "Read the ledger event journal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "after", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/extracts/certificates/{id}": {
            "post": {
                "tags": ["Extracts"],
                "summary": "Generate a certified PDF extract of a record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/extracts/rosters/{id}": {
            "post": {
                "tags": ["Extracts"],
                "summary": "Generate a CSV roster extract for a district",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/api/v1/extracts/download": {
            "get": {
                "tags": ["Extracts"],
                "summary": "Download a generated extract by signed token",
                "parameters": [{"name": "token", "in": "query", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid or expired token"}}
            }
        }
    },
    "definitions": {
        "MintTokenRequest": {
            "type": "object",
            "properties": {
                "account": {"type": "string"},
                "role": {"type": "string", "enum": ["ROOT", "REGISTRAR", "CITIZEN"]}
            },
            "required": ["account", "role"]
        },
        "RegistrarRequest": {
            "type": "object",
            "properties": {
                "account": {"type": "string"}
            },
            "required": ["account"]
        },
        "Partner": {
            "type": "object",
            "properties": {
                "account": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "MarriageRequest": {
            "type": "object",
            "properties": {
                "partner1": {"$ref": "#/definitions/Partner"},
                "partner2": {"$ref": "#/definitions/Partner"},
                "jurisdiction": {"type": "string"}
            },
            "required": ["partner1", "partner2", "jurisdiction"]
        },
        "BirthRequest": {
            "type": "object",
            "properties": {
                "subjectName": {"type": "string"},
                "birthTime": {"type": "string", "format": "date-time"},
                "birthLocation": {"type": "string"},
                "parents": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["subjectName", "birthTime", "birthLocation"]
        },
        "BirthAmendment": {
            "type": "object",
            "properties": {
                "subjectName": {"type": "string"},
                "birthTime": {"type": "string", "format": "date-time"},
                "birthLocation": {"type": "string"},
                "parents": {"type": "array", "items": {"type": "string"}}
            }
        },
        "DeathRequest": {
            "type": "object",
            "properties": {
                "subjectAccount": {"type": "string"},
                "subjectName": {"type": "string"},
                "birthCertificateId": {"type": "string"},
                "cause": {"type": "string"},
                "location": {"type": "string"},
                "examiner": {"type": "string"},
                "deathTime": {"type": "string", "format": "date-time"}
            },
            "required": ["subjectName", "cause", "deathTime"]
        },
        "LicenseRequest": {
            "type": "object",
            "properties": {
                "holderAccount": {"type": "string"},
                "holderName": {"type": "string"},
                "birthCertificateId": {"type": "string"},
                "class": {"type": "string"},
                "endorsements": {"type": "array", "items": {"type": "string"}},
                "restrictions": {"type": "array", "items": {"type": "string"}},
                "validityDays": {"type": "integer"},
                "issuingAuthority": {"type": "string"}
            },
            "required": ["holderAccount", "holderName", "birthCertificateId", "class", "validityDays", "issuingAuthority"]
        },
        "DistrictRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "region": {"type": "string"},
                "type": {"type": "string", "enum": ["CONGRESSIONAL", "STATE", "COUNTY", "MUNICIPAL", "SCHOOL"]}
            },
            "required": ["id", "name", "region", "type"]
        },
        "RedistrictRequest": {
            "type": "object",
            "properties": {
                "fromDistrictId": {"type": "string"},
                "toDistrictId": {"type": "string"},
                "accounts": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["fromDistrictId", "toDistrictId"]
        },
        "VoterRegistrationRequest": {
            "type": "object",
            "properties": {
                "birthCertificateId": {"type": "string"},
                "address": {"type": "string"},
                "districtId": {"type": "string"}
            },
            "required": ["birthCertificateId", "address", "districtId"]
        },
        "AdjudicationRequest": {
            "type": "object",
            "properties": {
                "approve": {"type": "boolean"},
                "note": {"type": "string"}
            }
        },
        "AgeProofRequest": {
            "type": "object",
            "properties": {
                "birthCertificateId": {"type": "string"},
                "thresholdYears": {"type": "integer"},
                "asOf": {"type": "string", "format": "date-time"}
            },
            "required": ["birthCertificateId", "thresholdYears", "asOf"]
        },
        "SimulationStartRequest": {
            "type": "object",
            "properties": {
                "scenario": {"type": "string", "enum": ["DISASTER", "ELECTION_DAY", "REDISTRICTING"]},
                "tag": {"type": "string"},
                "affectedDistricts": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["scenario", "tag", "affectedDistricts"]
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
