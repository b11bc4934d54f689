package portability

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/getmockd/mockxhr/pkg/config"
	"github.com/getmockd/mockxhr/pkg/xhr"
)

// HAR 1.2 wire types, trimmed to the fields the importer reads.

type harFile struct {
	Log harLog `json:"log"`
}

type harLog struct {
	Version string     `json:"version"`
	Creator harCreator `json:"creator"`
	Entries []harEntry `json:"entries"`
}

type harCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type harEntry struct {
	StartedDateTime string      `json:"startedDateTime"`
	Request         harRequest  `json:"request"`
	Response        harResponse `json:"response"`
}

type harRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers []harHeader `json:"headers"`
}

type harResponse struct {
	Status     int         `json:"status"`
	StatusText string      `json:"statusText"`
	Headers    []harHeader `json:"headers"`
	Content    harContent  `json:"content"`
}

type harHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type harContent struct {
	Size     int    `json:"size"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// HARImporter converts HTTP Archive (HAR 1.2) recordings into route files:
// one exact-URL route per distinct method and URL, replaying the first
// recorded response. URLs are kept verbatim, so requests must use the same
// absolute URL the recording captured.
type HARImporter struct {
	// IncludeStatic keeps entries whose response mime type identifies a
	// static asset (scripts, styles, images, fonts). They are skipped by
	// default so browser session recordings import only API traffic.
	IncludeStatic bool
}

// Name returns "har".
func (i *HARImporter) Name() string { return "har" }

// Detect looks for a top-level log key in a JSON object.
func (i *HARImporter) Detect(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["log"]
	return ok
}

// Import parses the archive and returns one route per distinct method+URL,
// in recording order. Entries without a usable method, URL, or status are
// skipped.
func (i *HARImporter) Import(data []byte) (*config.File, error) {
	var archive harFile
	if err := json.Unmarshal(data, &archive); err != nil {
		return nil, &ImportError{Format: i.Name(), Message: "failed to parse archive", Cause: err}
	}
	if archive.Log.Version == "" {
		return nil, &ImportError{Format: i.Name(), Message: "not a valid archive (missing log.version)"}
	}

	f := &config.File{}
	seen := make(map[string]bool)
	for _, entry := range archive.Log.Entries {
		method, err := xhr.NormalizeMethod(entry.Request.Method)
		if err != nil || entry.Request.URL == "" || entry.Response.Status == 0 {
			continue
		}
		if !i.IncludeStatic && isStaticAsset(entry.Response.Content.MimeType) {
			continue
		}
		key := method + " " + entry.Request.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		f.Routes = append(f.Routes, entryRoute(entry, method))
	}
	return f, nil
}

// skipHeaders are response headers that describe the recorded transfer
// rather than the payload.
var skipHeaders = map[string]bool{
	"content-length":            true,
	"content-encoding":          true,
	"transfer-encoding":         true,
	"connection":                true,
	"date":                      true,
	"server":                    true,
	"x-powered-by":              true,
	"set-cookie":                true,
	"strict-transport-security": true,
}

// entryRoute builds the replay route for one archive entry.
func entryRoute(entry harEntry, method string) config.RouteConfig {
	res := &config.ResponseConfig{
		Status:     entry.Response.Status,
		StatusText: entry.Response.StatusText,
		Body:       responseBody(entry.Response.Content),
	}

	headers := make(map[string]string)
	for _, h := range entry.Response.Headers {
		if skipHeaders[strings.ToLower(h.Name)] {
			continue
		}
		headers[h.Name] = h.Value
	}
	if entry.Response.Content.MimeType != "" {
		headers["Content-Type"] = entry.Response.Content.MimeType
	}
	if len(headers) > 0 {
		res.Headers = headers
	}

	return config.RouteConfig{Method: method, URL: entry.Request.URL, Response: res}
}

// responseBody returns the recorded text, decoding base64-encoded content.
func responseBody(content harContent) any {
	if content.Text == "" {
		return nil
	}
	if content.Encoding == "base64" {
		if decoded, err := base64.StdEncoding.DecodeString(content.Text); err == nil {
			return string(decoded)
		}
	}
	return content.Text
}

// isStaticAsset reports whether a response mime type identifies a static
// asset rather than an API payload.
func isStaticAsset(mimeType string) bool {
	mimeType = strings.ToLower(mimeType)
	staticPrefixes := []string{
		"text/javascript",
		"application/javascript",
		"text/css",
		"image/",
		"font/",
		"application/font",
	}
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}

func init() {
	Register(&HARImporter{})
}
