// Package docs registers the OpenAPI description of the order service.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"}
    },
    "paths": {
        "/orders": {
            "post": {
                "tags": ["orders"],
                "summary": "Checkout",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "Idempotency-Key", "in": "header", "description": "retries with the same key return the first order"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "replayed request", "schema": {"$ref": "#/definitions/order.Order"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "422": {"description": "key reused with another cart", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["orders"],
                "summary": "Track order",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "phone", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/httpx.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["admin"],
                "summary": "List orders",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.ListResponse"}}
                }
            }
        },
        "/admin/orders/{id}": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["admin"],
                "summary": "Get order",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/orders/{id}/status": {
            "put": {
                "security": [{"BasicAuth": []}],
                "tags": ["admin"],
                "summary": "Change order status",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/httpx.HTTPError"}}
                }
            }
        },
        "/admin/analytics/sales": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["analytics"],
                "summary": "Sales per period",
                "parameters": [{"type": "string", "name": "period", "in": "query", "enum": ["week", "month", "year"]}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/analytics.SalesPoint"}}}
                }
            }
        },
        "/admin/analytics/status-distribution": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["analytics"],
                "summary": "Orders per status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}}
                }
            }
        },
        "/admin/analytics/customer-growth": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["analytics"],
                "summary": "New customers per month",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/analytics.GrowthPoint"}}}
                }
            }
        },
        "/admin/analytics/top-products": {
            "get": {
                "security": [{"BasicAuth": []}],
                "tags": ["analytics"],
                "summary": "Best selling products",
                "parameters": [{"type": "integer", "name": "limit", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/analytics.ProductUnits"}}}
                }
            }
        }
    },
    "definitions": {
        "order.CreateOrderItem": {
            "type": "object",
            "properties": {
                "product_id": {"type": "integer", "example": 12},
                "variant_id": {"type": "integer", "example": 31},
                "quantity": {"type": "integer", "example": 2}
            }
        },
        "order.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customer_name": {"type": "string", "example": "Ana Torres"},
                "phone": {"type": "string", "example": "+57 300 555 0101"},
                "shipping_address": {"type": "string"},
                "delivery_instructions": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.CreateOrderItem"}}
            }
        },
        "order.UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "shipped",
                    "enum": ["pending", "confirmed", "processing", "shipped", "delivered", "cancelled", "refund"]}
            }
        },
        "order.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "order_id": {"type": "integer"},
                "product_id": {"type": "integer"},
                "variant_id": {"type": "integer"},
                "product_name": {"type": "string"},
                "sku": {"type": "string"},
                "color": {"type": "string"},
                "size": {"type": "string"},
                "quantity": {"type": "integer"},
                "unit_price": {"type": "string"},
                "line_total": {"type": "string"}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "order_number": {"type": "string", "example": "ORD-101"},
                "customer_name": {"type": "string"},
                "phone": {"type": "string"},
                "shipping_address": {"type": "string"},
                "delivery_instructions": {"type": "string"},
                "subtotal": {"type": "string"},
                "tax": {"type": "string"},
                "shipping_cost": {"type": "string"},
                "total": {"type": "string"},
                "item_count": {"type": "integer"},
                "status": {"type": "string"},
                "version": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}}
            }
        },
        "order.ListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}
            }
        },
        "analytics.SalesPoint": {
            "type": "object",
            "properties": {"label": {"type": "string", "example": "2026-03"}, "amount": {"type": "string"}}
        },
        "analytics.GrowthPoint": {
            "type": "object",
            "properties": {"period": {"type": "string"}, "count": {"type": "integer"}}
        },
        "analytics.ProductUnits": {
            "type": "object",
            "properties": {"product_id": {"type": "integer"}, "name": {"type": "string"}, "units_sold": {"type": "integer"}}
        },
        "httpx.HTTPError": {
            "type": "object",
            "properties": {"error": {"type": "string"}, "code": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront order service",
	Description:      "Checkout, order lifecycle and sales analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
