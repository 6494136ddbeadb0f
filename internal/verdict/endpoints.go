package verdict

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// #region endpoint-config

// EndpointConfig describes one verdict peer endpoint.
type EndpointConfig struct {
	CoreName   string `json:"core_name"`
	URL        string `json:"url"`
	Method     string `json:"method,omitempty"`
	PayloadKey string `json:"payload_key,omitempty"`
}

const (
	defaultMethod     = "POST"
	defaultPayloadKey = "query"

	endpointsEnv     = "CORE4_VERDICT_ENDPOINTS"
	endpointsFileEnv = "CORE4_VERDICT_ENDPOINTS_FILE"
	endpointsName    = "softmax_core4_endpoints.json"

	defaultCoreName    = "UMC_Core_ECM"
	defaultEndpointEnv = "ECM_ENDPOINT"
	defaultEndpointURL = "http://localhost:8002/api/adjudicate"
)

// #endregion endpoint-config

// #region descriptor-schema

// Descriptor documents are validated before use; a document that fails the
// schema is skipped and the next discovery source is tried.
const descriptorSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["core_name", "url"],
		"properties": {
			"core_name":   {"type": "string", "minLength": 1},
			"url":         {"type": "string", "minLength": 1},
			"method":      {"type": "string", "enum": ["GET", "POST"]},
			"payload_key": {"type": "string", "minLength": 1}
		}
	},
	"minItems": 1
}`

func compileDescriptorSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("endpoints.schema.json", strings.NewReader(descriptorSchema)); err != nil {
		panic(fmt.Sprintf("descriptor schema resource: %v", err))
	}
	return compiler.MustCompile("endpoints.schema.json")
}

var compiledDescriptorSchema = compileDescriptorSchema()

// parseDescriptor validates and decodes one descriptor document.
func parseDescriptor(raw []byte) ([]EndpointConfig, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	if err := compiledDescriptorSchema.Validate(payload); err != nil {
		return nil, fmt.Errorf("descriptor schema: %w", err)
	}
	var endpoints []EndpointConfig
	if err := json.Unmarshal(raw, &endpoints); err != nil {
		return nil, fmt.Errorf("decode endpoints: %w", err)
	}
	for i := range endpoints {
		if endpoints[i].Method == "" {
			endpoints[i].Method = defaultMethod
		}
		if endpoints[i].PayloadKey == "" {
			endpoints[i].PayloadKey = defaultPayloadKey
		}
	}
	return endpoints, nil
}

// #endregion descriptor-schema

// #region discovery

// DiscoverEndpoints resolves the verdict endpoint set. Sources are tried in
// priority order, falling through on absence or malformed content:
//  1. CORE4_VERDICT_ENDPOINTS (inline JSON)
//  2. CORE4_VERDICT_ENDPOINTS_FILE (path to a descriptor file)
//  3. softmax_core4_endpoints.json under baseDir, then baseDir/CALI
//  4. the built-in single-peer default
func DiscoverEndpoints(baseDir string) []EndpointConfig {
	if raw := os.Getenv(endpointsEnv); raw != "" {
		endpoints, err := parseDescriptor([]byte(raw))
		if err == nil {
			return endpoints
		}
		log.Printf("[ACQ] inline endpoint descriptor rejected: %v", err)
	}

	if path := os.Getenv(endpointsFileEnv); path != "" {
		if endpoints, ok := loadDescriptorFile(path); ok {
			return endpoints
		}
	}

	for _, path := range []string{
		filepath.Join(baseDir, endpointsName),
		filepath.Join(baseDir, "CALI", endpointsName),
	} {
		if endpoints, ok := loadDescriptorFile(path); ok {
			return endpoints
		}
	}

	url := os.Getenv(defaultEndpointEnv)
	if url == "" {
		url = defaultEndpointURL
	}
	return []EndpointConfig{{
		CoreName:   defaultCoreName,
		URL:        url,
		Method:     defaultMethod,
		PayloadKey: defaultPayloadKey,
	}}
}

func loadDescriptorFile(path string) ([]EndpointConfig, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ACQ] endpoint descriptor %s unreadable: %v", path, err)
		}
		return nil, false
	}
	endpoints, err := parseDescriptor(raw)
	if err != nil {
		log.Printf("[ACQ] endpoint descriptor %s rejected: %v", path, err)
		return nil, false
	}
	return endpoints, true
}

// #endregion discovery
