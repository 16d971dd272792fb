package api

import (
	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed api.yaml
var specYAML []byte

// SpecYAML returns the raw OpenAPI document served at /openapi.yaml.
func SpecYAML() []byte {
	return specYAML
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, err
	}

	err = doc.Validate(loader.Context)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
