// Package docs provides the Swagger specification served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@courtdata.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/search": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Search a court case",
                "description": "Search the eCourts portal for a case by court, type, number and filing year",
                "parameters": [
                    {
                        "description": "Case search request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.SearchAPIRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SearchResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.SearchResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/models.SearchResponse"}}
                }
            }
        },
        "/cases/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cases"],
                "summary": "Get stored case",
                "parameters": [
                    {"type": "integer", "description": "Case ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.StoredCase"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/queries": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cases"],
                "summary": "Search history",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.QueryListResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cases"],
                "summary": "Search statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.DashboardStats"}}
                }
            }
        },
        "/courts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cases"],
                "summary": "List courts",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Court"}}}
                }
            }
        },
        "/case-types": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Cases"],
                "summary": "List case types",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CaseType"}}}
                }
            }
        },
        "/orders/{id}/download": {
            "get": {
                "produces": ["application/pdf"],
                "tags": ["Cases"],
                "summary": "Download order PDF",
                "parameters": [
                    {"type": "integer", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.SearchAPIRequest": {
            "type": "object",
            "required": ["court", "case_type", "case_number", "filing_year"],
            "properties": {
                "court": {"type": "string", "example": "delhi_district"},
                "case_type": {"type": "string", "example": "civil"},
                "case_number": {"type": "string", "example": "123"},
                "filing_year": {"type": "integer", "example": 2022}
            }
        },
        "models.SearchResponse": {
            "type": "object",
            "properties": {
                "query_id": {"type": "integer"},
                "outcome": {"$ref": "#/definitions/models.SearchOutcome"},
                "duration_ms": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "models.SearchOutcome": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["success", "not_found", "error"]},
                "cause": {"type": "string"},
                "message": {"type": "string"},
                "case": {"$ref": "#/definitions/models.CaseRecord"}
            }
        },
        "models.CaseRecord": {
            "type": "object",
            "properties": {
                "cnr_number": {"type": "string"},
                "case_title": {"type": "string"},
                "petitioner": {"type": "string"},
                "respondent": {"type": "string"},
                "filing_date": {"type": "string"},
                "next_hearing_date": {"type": "string"},
                "status": {"type": "string"},
                "judge_name": {"type": "string"},
                "orders": {"type": "array", "items": {"$ref": "#/definitions/models.OrderRecord"}}
            }
        },
        "models.OrderRecord": {
            "type": "object",
            "properties": {
                "order_type": {"type": "string"},
                "pdf_url": {"type": "string"},
                "order_date": {"type": "string"}
            }
        },
        "models.StoredCase": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "query_id": {"type": "integer"},
                "court_name": {"type": "string"},
                "created_at": {"type": "string"},
                "record": {"$ref": "#/definitions/models.CaseRecord"}
            }
        },
        "models.Query": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "timestamp": {"type": "string"},
                "court_name": {"type": "string"},
                "case_type": {"type": "string"},
                "case_number": {"type": "string"},
                "filing_year": {"type": "integer"},
                "search_status": {"type": "string"},
                "error_message": {"type": "string"}
            }
        },
        "models.QueryListResponse": {
            "type": "object",
            "properties": {
                "queries": {"type": "array", "items": {"$ref": "#/definitions/models.Query"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"}
            }
        },
        "models.DashboardStats": {
            "type": "object",
            "properties": {
                "total_queries": {"type": "integer"},
                "successful_queries": {"type": "integer"},
                "failed_queries": {"type": "integer"},
                "success_rate": {"type": "number"},
                "unique_courts": {"type": "integer"},
                "recent_queries": {"type": "array", "items": {"$ref": "#/definitions/models.Query"}}
            }
        },
        "models.Court": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "models.CaseType": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "timestamp": {"type": "string"},
                "path": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "eCourts Case Search API",
	Description:      "Court case search engine driving the Indian eCourts portal",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
