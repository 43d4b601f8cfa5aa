// Package docs holds the OpenAPI description served at /swagger.
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
        "/videos": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists the caller's videos, newest first",
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "List Videos",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.VideoDTO"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a draft video record owned by the caller",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Create Video",
                "parameters": [
                    {"description": "Video metadata", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateVideoRequestDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.VideoDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/videos/{videoID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Get Video",
                "parameters": [
                    {"type": "string", "description": "Video ID", "name": "videoID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Videos"],
                "summary": "Delete Video",
                "parameters": [
                    {"type": "string", "description": "Video ID", "name": "videoID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/videos/{videoID}/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Uploads an mp4 for an existing video record, rewrites it for fast start and publishes it to object storage",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Upload Video",
                "parameters": [
                    {"type": "string", "description": "Video ID", "name": "videoID", "in": "path", "required": true},
                    {"type": "file", "description": "MP4 file", "name": "video", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/thumbnails/{videoID}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Stores a jpeg or png thumbnail for a video, bounded to 1280x720",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Thumbnails"],
                "summary": "Upload Thumbnail",
                "parameters": [
                    {"type": "string", "description": "Video ID", "name": "videoID", "in": "path", "required": true},
                    {"type": "file", "description": "Image file", "name": "thumbnail", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.VideoDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/maintenance/staging/sweep": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Removes staged files older than the configured maximum age",
                "produces": ["application/json"],
                "tags": ["Maintenance"],
                "summary": "Sweep Staging",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SweepResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CreateVideoRequestDTO": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "description": {"type": "string", "maxLength": 5000},
                "title": {"type": "string", "maxLength": 255}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.SweepResponse": {
            "type": "object",
            "properties": {
                "removed": {"type": "integer"}
            }
        },
        "dto.VideoDTO": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "id": {"type": "string"},
                "thumbnail_url": {"type": "string"},
                "title": {"type": "string"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"},
                "video_url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8091",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Video Uploader API",
	Description:      "Uploads videos, rewrites them for progressive playback and publishes them to S3.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
