// Package openapi embeds the OpenAPI description of the HTTP API for runtime
// distribution.
package openapi

import _ "embed"

// APISpec contains the OpenAPI document served at /api/v1/openapi.yaml.
//
//go:embed loanlocator.yaml
var APISpec []byte

// Spec returns a copy of the embedded OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), APISpec...)
}
