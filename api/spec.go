// Package api embeds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPISpec is the OpenAPI document in YAML.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
