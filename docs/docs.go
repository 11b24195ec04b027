// Package docs holds the generated Swagger spec for the small operator/
// health HTTP surface cmd/server exposes. Kept hand-authored here in the
// shape `swag init` would produce, since this core's HTTP surface is
// deliberately minimal (§11).
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
        "/health": {
            "get": {
                "description": "Reports process liveness plus Postgres/Redis reachability and whether the Kafka producer is initialized.",
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/operator/cache/warm": {
            "post": {
                "description": "Precomputes and populates availability for a hotel's near-term window.",
                "produces": ["application/json"],
                "tags": ["operator"],
                "summary": "Warm the availability cache",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/operator/cache/flush": {
            "post": {
                "description": "Invalidates every cache key matching a tag/pattern.",
                "produces": ["application/json"],
                "tags": ["operator"],
                "summary": "Flush cache by tag",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/operator/pricing/recompute": {
            "post": {
                "description": "Forces the Pricing Engine to recompute every room's price for a hotel.",
                "produces": ["application/json"],
                "tags": ["operator"],
                "summary": "Force pricing recompute",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/operator/loyalty/expiry-scan": {
            "post": {
                "description": "Runs the loyalty points expiry scanner immediately.",
                "produces": ["application/json"],
                "tags": ["operator"],
                "summary": "Run loyalty expiry scan now",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it before
// initial publishing.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "hotelcore operator API",
	Description:      "Pricing, availability, and loyalty core — health and operator hooks only.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
