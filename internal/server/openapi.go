package server

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/n0roo/widget-kit/internal/widget"
)

type obj = map[string]interface{}

func ref(name string) obj {
	return obj{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema obj) obj {
	return obj{"application/json": obj{"schema": schema}}
}

func errorResponses(codes ...int) obj {
	out := obj{}
	for _, code := range codes {
		schema := ref("ErrorResponse")
		desc := http.StatusText(code)
		if code == http.StatusBadRequest {
			schema = obj{"oneOf": []interface{}{ref("ErrorResponse"), ref("ValidationErrorResponse")}}
		}
		out[fmt.Sprint(code)] = obj{"description": desc, "content": jsonContent(schema)}
	}
	return out
}

func merge(a, b obj) obj {
	for k, v := range b {
		a[k] = v
	}
	return a
}

var widgetIDParam = obj{
	"name":     "widgetId",
	"in":       "path",
	"required": true,
	"schema":   obj{"type": "string", "pattern": "^[0-9A-Z]{26}$"},
}

func categoryEnum() []interface{} {
	var out []interface{}
	for _, c := range widget.Categories() {
		out = append(out, string(c))
	}
	return out
}

func sortEnum() []interface{} {
	var out []interface{}
	for _, f := range widget.SortFields {
		out = append(out, f)
	}
	return out
}

// OpenAPIDocument builds the OpenAPI 3 description of the API
func OpenAPIDocument(version string) map[string]interface{} {
	secured := []interface{}{obj{"bearerAuth": []interface{}{}}}

	widgetSchema := obj{
		"type":     "object",
		"required": []interface{}{"id", "userId", "description", "category", "level", "createdAt", "updatedAt", "version"},
		"properties": obj{
			"id":          obj{"type": "string", "pattern": "^[0-9A-Z]{26}$"},
			"userId":      obj{"type": "string", "format": "uuid"},
			"description": obj{"type": "string"},
			"category":    obj{"type": "string", "enum": categoryEnum()},
			"level":       obj{"type": "integer"},
			"createdAt":   obj{"type": "string", "format": "date-time"},
			"updatedAt":   obj{"type": "string", "format": "date-time"},
			"version":     obj{"type": "integer", "format": "int64"},
		},
	}

	description := obj{"type": "string", "minLength": widget.MinDescriptionLen, "maxLength": widget.MaxDescriptionLen}
	level := obj{"type": "integer", "minimum": widget.MinLevel, "maximum": widget.MaxLevel}
	category := obj{"type": "string", "enum": categoryEnum()}

	return obj{
		"openapi": "3.0.3",
		"info": obj{
			"title":       "Widget API",
			"version":     version,
			"description": "Per-user widget management with optimistic locking",
		},
		"tags": []interface{}{obj{"name": "Widgets", "description": "Widget management operations"}},
		"paths": obj{
			"/api/widgets": obj{
				"post": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "Create a new widget",
					"operationId": "createWidget",
					"security":    secured,
					"requestBody": obj{"required": true, "content": jsonContent(ref("CreateWidgetRequest"))},
					"responses": merge(obj{
						"201": obj{"description": "Widget created", "content": jsonContent(ref("WidgetResponse"))},
					}, errorResponses(400, 401)),
				},
				"get": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "List the caller's widgets",
					"operationId": "listWidgets",
					"security":    secured,
					"parameters": []interface{}{
						obj{"name": "category", "in": "query", "schema": category},
						obj{"name": "search", "in": "query", "schema": obj{"type": "string"}},
						obj{"name": "page", "in": "query", "schema": obj{"type": "integer", "minimum": 0, "default": 0}},
						obj{"name": "size", "in": "query", "schema": obj{"type": "integer", "minimum": 1, "maximum": widget.MaxPageSize, "default": widget.DefaultPageSize}},
						obj{"name": "sort", "in": "query", "schema": obj{"type": "string", "enum": sortEnum(), "default": widget.SortCreatedAt}},
						obj{"name": "direction", "in": "query", "schema": obj{"type": "string", "enum": []interface{}{"ASC", "DESC"}, "default": "DESC"}},
					},
					"responses": merge(obj{
						"200": obj{"description": "One page of widgets", "content": jsonContent(ref("PagedWidgetResponse"))},
					}, errorResponses(400, 401)),
				},
			},
			"/api/widgets/{widgetId}": obj{
				"parameters": []interface{}{widgetIDParam},
				"get": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "Get a widget",
					"operationId": "getWidget",
					"security":    secured,
					"responses": merge(obj{
						"200": obj{"description": "The widget", "content": jsonContent(ref("WidgetResponse"))},
					}, errorResponses(400, 401, 404)),
				},
				"put": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "Update a widget",
					"operationId": "updateWidget",
					"security":    secured,
					"requestBody": obj{"required": true, "content": jsonContent(ref("UpdateWidgetRequest"))},
					"responses": merge(obj{
						"200": obj{"description": "Widget updated", "content": jsonContent(ref("WidgetResponse"))},
					}, errorResponses(400, 401, 404, 409)),
				},
				"delete": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "Delete a widget",
					"operationId": "deleteWidget",
					"security":    secured,
					"responses": merge(obj{
						"204": obj{"description": "Widget deleted"},
					}, errorResponses(400, 401, 404)),
				},
			},
			"/api/widgets/events": obj{
				"get": obj{
					"tags":        []interface{}{"Widgets"},
					"summary":     "Stream the caller's widget changes (Server-Sent Events)",
					"operationId": "widgetEvents",
					"security":    secured,
					"parameters": []interface{}{
						obj{"name": "filter", "in": "query", "schema": obj{"type": "string"}},
						obj{"name": "access_token", "in": "query", "schema": obj{"type": "string"}},
					},
					"responses": merge(obj{
						"200": obj{"description": "Event stream", "content": obj{"text/event-stream": obj{"schema": obj{"type": "string"}}}},
					}, errorResponses(401)),
				},
			},
		},
		"components": obj{
			"securitySchemes": obj{
				"bearerAuth": obj{
					"type":         "http",
					"scheme":       "bearer",
					"bearerFormat": "JWT",
				},
			},
			"schemas": obj{
				"CreateWidgetRequest": obj{
					"type":     "object",
					"required": []interface{}{"description", "category", "level"},
					"properties": obj{
						"description": description,
						"category":    category,
						"level":       level,
					},
				},
				"UpdateWidgetRequest": obj{
					"type":     "object",
					"required": []interface{}{"version"},
					"properties": obj{
						"description": description,
						"category":    category,
						"level":       level,
						"version":     obj{"type": "integer", "format": "int64"},
					},
				},
				"WidgetResponse": widgetSchema,
				"PagedWidgetResponse": obj{
					"type": "object",
					"properties": obj{
						"content":       obj{"type": "array", "items": ref("WidgetResponse")},
						"totalElements": obj{"type": "integer", "format": "int64"},
						"totalPages":    obj{"type": "integer"},
						"pageNumber":    obj{"type": "integer"},
						"pageSize":      obj{"type": "integer"},
						"hasNext":       obj{"type": "boolean"},
						"hasPrevious":   obj{"type": "boolean"},
					},
				},
				"ErrorResponse": obj{
					"type": "object",
					"properties": obj{
						"error":   obj{"type": "string"},
						"message": obj{"type": "string"},
						"status":  obj{"type": "integer"},
					},
				},
				"Violation": obj{
					"type": "object",
					"properties": obj{
						"field":        obj{"type": "string"},
						"message":      obj{"type": "string"},
						"invalidValue": obj{"type": "string", "nullable": true},
					},
				},
				"ValidationErrorResponse": obj{
					"type": "object",
					"properties": obj{
						"error":      obj{"type": "string"},
						"status":     obj{"type": "integer"},
						"violations": obj{"type": "array", "items": ref("Violation")},
					},
				},
			},
		},
	}
}

// RenderOpenAPI marshals the document as "json" or "yaml"
func RenderOpenAPI(version, format string) ([]byte, error) {
	doc := OpenAPIDocument(version)
	switch format {
	case "", "json":
		return json.MarshalIndent(doc, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("지원하지 않는 형식: %s", format)
	}
}

func (s *Server) handleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, OpenAPIDocument(s.version))
}

func (s *Server) handleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	data, err := RenderOpenAPI(s.version, "yaml")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

// handleDocs serves the Swagger UI page
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFiles, "static/docs.html")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
