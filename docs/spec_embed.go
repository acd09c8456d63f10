package docs

import _ "embed"

// OpenAPISpec is the OpenAPI document for the search API, embedded so the
// server can serve it at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
