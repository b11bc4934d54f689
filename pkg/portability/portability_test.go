package portability

import (
	"strings"
	"testing"

	"github.com/getmockd/mockxhr/pkg/config"
	"github.com/getmockd/mockxhr/pkg/server"
)

// ============================================================================
// Detection Tests
// ============================================================================

func TestDetect(t *testing.T) {
	openapi := &OpenAPIImporter{}
	har := &HARImporter{}

	tests := []struct {
		name        string
		data        string
		wantOpenAPI bool
		wantHAR     bool
	}{
		{
			name:        "OpenAPI 3.x JSON",
			data:        `{"openapi": "3.0.3", "info": {"title": "Test", "version": "1.0"}}`,
			wantOpenAPI: true,
		},
		{
			name:        "OpenAPI 3.1 YAML",
			data:        "openapi: '3.1.0'\ninfo:\n  title: Test",
			wantOpenAPI: true,
		},
		{
			name: "Swagger 2.0 is not OpenAPI 3.x",
			data: `{"swagger": "2.0", "info": {"title": "Test"}}`,
		},
		{
			name:    "HAR by log key",
			data:    `{"log": {"version": "1.2"}}`,
			wantHAR: true,
		},
		{
			name: "plain JSON matches neither",
			data: `{"random": "data"}`,
		},
		{
			name: "garbage matches neither",
			data: `not a document at all`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := openapi.Detect([]byte(tt.data)); got != tt.wantOpenAPI {
				t.Errorf("OpenAPI Detect() = %v, expected %v", got, tt.wantOpenAPI)
			}
			if got := har.Detect([]byte(tt.data)); got != tt.wantHAR {
				t.Errorf("HAR Detect() = %v, expected %v", got, tt.wantHAR)
			}
		})
	}
}

// ============================================================================
// OpenAPI Importer Tests
// ============================================================================

func TestOpenAPIImporter_Import(t *testing.T) {
	importer := &OpenAPIImporter{}

	t.Run("imports one route per operation", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test API", "version": "1.0.0"},
			"paths": {
				"/users": {
					"get": {
						"operationId": "listUsers",
						"responses": {
							"200": {
								"description": "Success",
								"content": {
									"application/json": {
										"example": [{"id": 1, "name": "Ada"}]
									}
								}
							}
						}
					},
					"post": {
						"responses": {
							"201": {"description": "Created"}
						}
					}
				},
				"/users/{id}": {
					"get": {
						"responses": {
							"200": {"description": "Success"}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(f.Routes) != 3 {
			t.Fatalf("Expected 3 routes, got %d", len(f.Routes))
		}

		// Paths sort alphabetically, operations in fixed method order.
		if f.Routes[0].Method != "GET" || f.Routes[0].URL != "/users" {
			t.Errorf("Expected GET /users first, got %s %s", f.Routes[0].Method, f.Routes[0].URL)
		}
		if f.Routes[0].ID != "listUsers" {
			t.Errorf("Expected operationId as route id, got %q", f.Routes[0].ID)
		}
		if f.Routes[1].Method != "POST" || f.Routes[1].Response.Status != 201 {
			t.Errorf("Expected POST with 201, got %s %d", f.Routes[1].Method, f.Routes[1].Response.Status)
		}

		// Path parameters become single-segment globs.
		if f.Routes[2].URLPattern != "/users/*" {
			t.Errorf("Expected pattern /users/*, got %q", f.Routes[2].URLPattern)
		}
		if f.Routes[2].URL != "" {
			t.Errorf("Expected no exact url on the parameterized route, got %q", f.Routes[2].URL)
		}
	})

	t.Run("uses the documented example as the body", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/user": {
					"get": {
						"responses": {
							"200": {
								"description": "Success",
								"content": {
									"application/json": {
										"example": {"name": "Ada"}
									}
								}
							}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		res := f.Routes[0].Response
		body, ok := res.Body.(string)
		if !ok {
			t.Fatalf("Expected string body, got %T", res.Body)
		}
		if !strings.Contains(body, `"name": "Ada"`) {
			t.Errorf("Expected example in body, got %q", body)
		}
		if res.Headers["Content-Type"] != "application/json" {
			t.Errorf("Expected application/json content type, got %q", res.Headers["Content-Type"])
		}
	})

	t.Run("picks the lowest 2xx status", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/thing": {
					"post": {
						"responses": {
							"500": {"description": "Error"},
							"226": {"description": "IM Used"},
							"201": {"description": "Created"},
							"404": {"description": "Missing"}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if f.Routes[0].Response.Status != 201 {
			t.Errorf("Expected status 201, got %d", f.Routes[0].Response.Status)
		}
	})

	t.Run("falls back to the schema example", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/config": {
					"get": {
						"responses": {
							"200": {
								"description": "Success",
								"content": {
									"application/json": {
										"schema": {
											"type": "object",
											"example": {"theme": "dark"}
										}
									}
								}
							}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		body, _ := f.Routes[0].Response.Body.(string)
		if !strings.Contains(body, `"theme": "dark"`) {
			t.Errorf("Expected schema example in body, got %q", body)
		}
	})

	t.Run("falls back to the first named example", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/greeting": {
					"get": {
						"responses": {
							"200": {
								"description": "Success",
								"content": {
									"application/json": {
										"examples": {
											"english": {"value": {"text": "hello"}}
										}
									}
								}
							}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		body, _ := f.Routes[0].Response.Body.(string)
		if !strings.Contains(body, `"text": "hello"`) {
			t.Errorf("Expected named example in body, got %q", body)
		}
	})

	t.Run("operation without success response defaults to 200", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/broken": {
					"get": {
						"responses": {
							"500": {"description": "Error"}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		res := f.Routes[0].Response
		if res.Status != 200 || res.Body != nil {
			t.Errorf("Expected empty 200, got %d with body %v", res.Status, res.Body)
		}
	})

	t.Run("imported file applies to a server", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/users/{id}": {
					"get": {
						"responses": {
							"200": {
								"description": "Success",
								"content": {
									"application/json": {"example": {"id": 42}}
								}
							}
						}
					}
				}
			}
		}`

		f, err := importer.Import([]byte(spec))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if err := f.Validate(); err != nil {
			t.Fatalf("Imported file failed validation: %v", err)
		}

		srv := server.New()
		if err := f.Apply(srv); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		x := srv.NewRequest()
		if err := x.Open("GET", "/users/42"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := x.Send(nil); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		srv.Flush()

		if x.Status() != 200 {
			t.Errorf("Expected 200 from the glob route, got %d", x.Status())
		}
		if body, _ := x.Response().(string); !strings.Contains(body, `"id": 42`) {
			t.Errorf("Expected example body, got %v", x.Response())
		}
	})

	t.Run("returns error for unparseable data", func(t *testing.T) {
		if _, err := importer.Import([]byte(`{invalid`)); err == nil {
			t.Error("Expected error for unparseable data")
		}
	})

	t.Run("returns error for non-3.x documents", func(t *testing.T) {
		_, err := importer.Import([]byte(`{"swagger": "2.0", "info": {"title": "Old"}}`))
		if err == nil {
			t.Error("Expected error for a Swagger 2.0 document")
		}
		if err != nil && !strings.Contains(err.Error(), "openapi") {
			t.Errorf("Expected the format in the error, got %q", err.Error())
		}
	})
}

// ============================================================================
// HAR Importer Tests
// ============================================================================

func TestHARImporter_Import(t *testing.T) {
	importer := &HARImporter{}

	t.Run("imports entries as exact-url routes", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"creator": {"name": "test", "version": "1.0"},
				"entries": [
					{
						"request": {
							"method": "get",
							"url": "https://api.example.com/users?page=1",
							"headers": []
						},
						"response": {
							"status": 200,
							"statusText": "OK",
							"headers": [
								{"name": "X-Request-Id", "value": "abc"},
								{"name": "Date", "value": "Tue, 25 Aug 2026 12:00:00 GMT"},
								{"name": "Set-Cookie", "value": "session=1"}
							],
							"content": {
								"mimeType": "application/json",
								"text": "{\"users\": []}"
							}
						}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(f.Routes) != 1 {
			t.Fatalf("Expected 1 route, got %d", len(f.Routes))
		}

		rt := f.Routes[0]
		if rt.Method != "GET" {
			t.Errorf("Expected normalized method GET, got %q", rt.Method)
		}
		if rt.URL != "https://api.example.com/users?page=1" {
			t.Errorf("Expected the recorded URL verbatim, got %q", rt.URL)
		}
		if rt.Response.Status != 200 || rt.Response.StatusText != "OK" {
			t.Errorf("Expected 200 OK, got %d %q", rt.Response.Status, rt.Response.StatusText)
		}
		if rt.Response.Body != `{"users": []}` {
			t.Errorf("Expected recorded body, got %v", rt.Response.Body)
		}
		if rt.Response.Headers["Content-Type"] != "application/json" {
			t.Errorf("Expected content type from mime type, got %q", rt.Response.Headers["Content-Type"])
		}
		if rt.Response.Headers["X-Request-Id"] != "abc" {
			t.Errorf("Expected payload header kept, got %v", rt.Response.Headers)
		}
		if _, ok := rt.Response.Headers["Date"]; ok {
			t.Error("Expected transfer header Date to be dropped")
		}
		if _, ok := rt.Response.Headers["Set-Cookie"]; ok {
			t.Error("Expected Set-Cookie to be dropped")
		}
	})

	t.Run("first recording wins for duplicate endpoints", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "GET", "url": "/api/data", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/json", "text": "first"}}
					},
					{
						"request": {"method": "GET", "url": "/api/data", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/json", "text": "second"}}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(f.Routes) != 1 {
			t.Fatalf("Expected 1 route after dedup, got %d", len(f.Routes))
		}
		if f.Routes[0].Response.Body != "first" {
			t.Errorf("Expected the first recording, got %v", f.Routes[0].Response.Body)
		}
	})

	t.Run("filters static assets by default", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "GET", "url": "/api/data", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/json"}}
					},
					{
						"request": {"method": "GET", "url": "/script.js", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/javascript"}}
					},
					{
						"request": {"method": "GET", "url": "/style.css", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "text/css"}}
					},
					{
						"request": {"method": "GET", "url": "/logo.png", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "image/png"}}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(f.Routes) != 1 {
			t.Errorf("Expected 1 route with assets filtered, got %d", len(f.Routes))
		}

		all, err := (&HARImporter{IncludeStatic: true}).Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(all.Routes) != 4 {
			t.Errorf("Expected 4 routes with IncludeStatic, got %d", len(all.Routes))
		}
	})

	t.Run("decodes base64 content", func(t *testing.T) {
		// "aGVsbG8=" is "hello".
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "GET", "url": "/blob", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/octet-stream", "text": "aGVsbG8=", "encoding": "base64"}}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if f.Routes[0].Response.Body != "hello" {
			t.Errorf("Expected decoded body, got %v", f.Routes[0].Response.Body)
		}
	})

	t.Run("skips unusable entries", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "CONNECT", "url": "/tunnel", "headers": []},
						"response": {"status": 200, "headers": [], "content": {}}
					},
					{
						"request": {"method": "GET", "url": "", "headers": []},
						"response": {"status": 200, "headers": [], "content": {}}
					},
					{
						"request": {"method": "GET", "url": "/aborted", "headers": []},
						"response": {"status": 0, "headers": [], "content": {}}
					},
					{
						"request": {"method": "GET", "url": "/ok", "headers": []},
						"response": {"status": 204, "headers": [], "content": {}}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if len(f.Routes) != 1 {
			t.Fatalf("Expected only the usable entry, got %d routes", len(f.Routes))
		}
		if f.Routes[0].URL != "/ok" {
			t.Errorf("Expected /ok, got %q", f.Routes[0].URL)
		}
	})

	t.Run("imported file applies to a server", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "GET", "url": "https://api.example.com/users", "headers": []},
						"response": {"status": 200, "statusText": "OK", "headers": [], "content": {"mimeType": "application/json", "text": "[]"}}
					}
				]
			}
		}`

		f, err := importer.Import([]byte(har))
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		srv := server.New()
		if err := f.Apply(srv); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}

		x := srv.NewRequest()
		if err := x.Open("GET", "https://api.example.com/users"); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if err := x.Send(nil); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		srv.Flush()

		if x.Status() != 200 {
			t.Errorf("Expected the replayed response, got %d", x.Status())
		}
		if x.Response() != "[]" {
			t.Errorf("Expected the recorded body, got %v", x.Response())
		}
	})

	t.Run("returns error for invalid archives", func(t *testing.T) {
		if _, err := importer.Import([]byte(`{"log": {}}`)); err == nil {
			t.Error("Expected error for a log without a version")
		}
		if _, err := importer.Import([]byte(`{not json`)); err == nil {
			t.Error("Expected error for unparseable data")
		}
	})
}

// ============================================================================
// Registry Tests
// ============================================================================

func TestImportAuto(t *testing.T) {
	t.Run("routes OpenAPI data to the OpenAPI importer", func(t *testing.T) {
		spec := `{
			"openapi": "3.0.3",
			"info": {"title": "Test", "version": "1.0"},
			"paths": {
				"/ping": {"get": {"responses": {"200": {"description": "pong"}}}}
			}
		}`

		f, err := ImportAuto([]byte(spec))
		if err != nil {
			t.Fatalf("ImportAuto failed: %v", err)
		}
		if len(f.Routes) != 1 || f.Routes[0].URL != "/ping" {
			t.Errorf("Expected the OpenAPI route, got %+v", f.Routes)
		}
	})

	t.Run("routes HAR data to the HAR importer", func(t *testing.T) {
		har := `{
			"log": {
				"version": "1.2",
				"entries": [
					{
						"request": {"method": "GET", "url": "/a", "headers": []},
						"response": {"status": 200, "headers": [], "content": {"mimeType": "application/json"}}
					}
				]
			}
		}`

		f, err := ImportAuto([]byte(har))
		if err != nil {
			t.Fatalf("ImportAuto failed: %v", err)
		}
		if len(f.Routes) != 1 || f.Routes[0].URL != "/a" {
			t.Errorf("Expected the HAR route, got %+v", f.Routes)
		}
	})

	t.Run("fails on unrecognized data", func(t *testing.T) {
		_, err := ImportAuto([]byte(`{"random": "data"}`))
		if err == nil {
			t.Fatal("Expected error for unrecognized data")
		}
		if !strings.Contains(err.Error(), "unrecognized") {
			t.Errorf("Expected an unrecognized-format error, got %q", err.Error())
		}
	})
}

func TestLookup(t *testing.T) {
	if imp := Lookup("openapi"); imp == nil {
		t.Error("Expected the openapi importer to be registered")
	}
	if imp := Lookup("har"); imp == nil {
		t.Error("Expected the har importer to be registered")
	}
	if imp := Lookup("missing"); imp != nil {
		t.Errorf("Expected nil for an unknown name, got %T", imp)
	}

	names := make([]string, 0)
	for _, imp := range Importers() {
		names = append(names, imp.Name())
	}
	if len(names) < 2 {
		t.Errorf("Expected at least the two default importers, got %v", names)
	}
}

// stubImporter is a minimal importer for registry replacement tests.
type stubImporter struct{ name string }

func (s *stubImporter) Name() string                        { return s.name }
func (s *stubImporter) Detect([]byte) bool                  { return false }
func (s *stubImporter) Import([]byte) (*config.File, error) { return &config.File{}, nil }

func TestRegister_ReplacesByName(t *testing.T) {
	first := &stubImporter{name: "stub"}
	second := &stubImporter{name: "stub"}

	Register(first)
	Register(second)

	if got := Lookup("stub"); got != second {
		t.Error("Expected the later registration to replace the earlier one")
	}

	count := 0
	for _, imp := range Importers() {
		if imp.Name() == "stub" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected one stub registration, found %d", count)
	}
}
