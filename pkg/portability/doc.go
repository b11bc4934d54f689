// Package portability imports external API descriptions as route files.
//
// Each Importer converts one source format into a *config.File that can be
// validated, saved, or applied to a server. Two importers register
// themselves by default:
//
//   - OpenAPI 3.x documents (YAML or JSON): one route per path and
//     operation, with {param} path segments converted to single-segment
//     globs and bodies taken from documented application/json examples.
//   - HAR 1.2 archives: one exact-URL route per distinct method and URL,
//     replaying the first recorded response. Static assets are filtered
//     out unless HARImporter.IncludeStatic is set.
//
// # Usage
//
//	data, _ := os.ReadFile("openapi.yaml")
//	file, err := portability.ImportAuto(data)
//	if err != nil {
//		// ...
//	}
//	srv := server.New()
//	if err := file.Apply(srv); err != nil {
//		// ...
//	}
//
// A specific importer can also be used directly:
//
//	imp := &portability.HARImporter{IncludeStatic: true}
//	file, err := imp.Import(data)
package portability
