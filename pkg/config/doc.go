// Package config loads declarative route files for the mock server.
//
// A route file describes a server's route table in YAML or JSON:
//
//	progressRate: 0
//	routes:
//	  - method: GET
//	    url: /api/users
//	    response:
//	      status: 200
//	      headers: {content-type: application/json}
//	      body: '[{"id":1}]'
//	  - method: POST
//	    urlPattern: "/api/**"
//	    responses:
//	      - {status: 201}
//	      - {status: 409, delay: 150ms}
//	    validate:
//	      headers:
//	        - {name: x-token, required: true}
//	  - method: GET
//	    urlRegexp: "^/v[0-9]+/health$"
//	    error: true
//	default404: true
//
// Each route sets exactly one url selector (url, urlPattern, urlRegexp,
// urlExpr) and exactly one outcome (response, responses, error, timeout).
// Load validates eagerly, so a file that parses also applies:
//
//	file, err := config.Load("routes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New()
//	if err := file.Apply(srv); err != nil {
//	    log.Fatal(err)
//	}
package config
