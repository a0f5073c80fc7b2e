package swagger

import _ "embed"

// OpenAPI1 is the document for the greeting API.
//
//go:embed openapi1.yaml
var OpenAPI1 []byte

// OpenAPI2 is the document for the profile API.
//
//go:embed openapi2.yaml
var OpenAPI2 []byte
