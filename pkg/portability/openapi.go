package portability

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockxhr/pkg/config"
)

// OpenAPIImporter converts OpenAPI 3.x documents into route files: one
// route per path and operation, answering with the documented example.
type OpenAPIImporter struct{}

// Name returns "openapi".
func (i *OpenAPIImporter) Name() string { return "openapi" }

// Detect looks for a top-level openapi version key, in YAML or JSON.
func (i *OpenAPIImporter) Detect(data []byte) bool {
	var probe struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return strings.HasPrefix(probe.OpenAPI, "3.")
}

// Import parses the document and returns one route per operation, paths
// sorted for deterministic output. Path parameters become single-segment
// globs, so /users/{id} matches /users/42.
func (i *OpenAPIImporter) Import(data []byte) (*config.File, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &ImportError{Format: i.Name(), Message: "failed to parse document", Cause: err}
	}
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, &ImportError{Format: i.Name(), Message: "not an OpenAPI 3.x document"}
	}

	f := &config.File{}
	if doc.Paths == nil {
		return f, nil
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", item.Get},
			{"POST", item.Post},
			{"PUT", item.Put},
			{"DELETE", item.Delete},
			{"PATCH", item.Patch},
			{"HEAD", item.Head},
			{"OPTIONS", item.Options},
		}
		for _, entry := range operations {
			if entry.op == nil {
				continue
			}
			f.Routes = append(f.Routes, operationRoute(path, entry.method, entry.op))
		}
	}
	return f, nil
}

// operationRoute builds the route for one path+method pair.
func operationRoute(path, method string, op *openapi3.Operation) config.RouteConfig {
	rc := config.RouteConfig{Method: method, ID: op.OperationID}
	if pattern := globPath(path); pattern != path {
		rc.URLPattern = pattern
	} else {
		rc.URL = path
	}

	status, example := exampleResponse(op)
	res := &config.ResponseConfig{Status: status}
	if example != nil {
		if text, err := json.MarshalIndent(example, "", "  "); err == nil {
			res.Body = string(text)
			res.Headers = map[string]string{"Content-Type": "application/json"}
		}
	}
	rc.Response = res
	return rc
}

// globPath replaces {param} path segments with "*".
func globPath(path string) string {
	if !strings.Contains(path, "{") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segments[i] = "*"
		}
	}
	return strings.Join(segments, "/")
}

// exampleResponse picks the lowest 2xx response and its application/json
// example, falling back to 200 with an empty body when the operation
// documents no success response.
func exampleResponse(op *openapi3.Operation) (int, any) {
	if op.Responses == nil {
		return 200, nil
	}

	status := 0
	var chosen *openapi3.ResponseRef
	for key, ref := range op.Responses.Map() {
		code, err := strconv.Atoi(key)
		if err != nil || code < 200 || code > 299 {
			continue
		}
		if status == 0 || code < status {
			status = code
			chosen = ref
		}
	}
	if status == 0 {
		return 200, nil
	}
	if chosen == nil || chosen.Value == nil {
		return status, nil
	}
	media := jsonMediaType(chosen.Value.Content)
	if media == nil {
		return status, nil
	}
	return status, exampleValue(media)
}

// jsonMediaType returns the application/json media type, tolerating
// parameters like charset in the key.
func jsonMediaType(content openapi3.Content) *openapi3.MediaType {
	if media, ok := content["application/json"]; ok {
		return media
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, "application/json;") {
			return content[key]
		}
	}
	return nil
}

// exampleValue extracts an example from a media type: the inline example
// first, then the first named example, then the schema example.
func exampleValue(media *openapi3.MediaType) any {
	if media.Example != nil {
		return media.Example
	}
	if len(media.Examples) > 0 {
		names := make([]string, 0, len(media.Examples))
		for name := range media.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if ref := media.Examples[name]; ref != nil && ref.Value != nil && ref.Value.Value != nil {
				return ref.Value.Value
			}
		}
	}
	if media.Schema != nil && media.Schema.Value != nil && media.Schema.Value.Example != nil {
		return media.Schema.Value.Example
	}
	return nil
}

func init() {
	Register(&OpenAPIImporter{})
}
