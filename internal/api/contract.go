package api

import _ "embed"

// ContractYAML is the OpenAPI description of the backend endpoints this client
// calls. The fake backend in apitest validates every request against it.
//
//go:embed openapi.yaml
var ContractYAML []byte
