// Package swagger serves the embedded OpenAPI documents and a Swagger UI.
package swagger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	swaggerFiles "github.com/swaggo/files"
	"golang.org/x/net/webdav"
	"gopkg.in/yaml.v3"
)

// Error constants.
var (
	ErrServe   = errors.New("swagger serve failed")
	ErrConvert = errors.New("openapi conversion failed")
)

// Route prefixes.
const (
	UIPrefix  = "/swagger-ui"
	DocPrefix = "/api-doc"
)

// Doc is one OpenAPI document listed in the UI.
type Doc struct {
	Name string
	Slug string
	YAML []byte
}

// Docs returns the embedded documents. The first entry is the UI default.
func Docs() []Doc {
	return []Doc{
		{Name: "api2", Slug: "openapi2", YAML: OpenAPI2},
		{Name: "api1", Slug: "openapi1", YAML: OpenAPI1},
	}
}

// Register attaches the OpenAPI documents and Swagger UI to mux.
// Routes:
//
//	GET /api-doc/openapi{1,2}.json -> document as JSON
//	GET /api-doc/openapi{1,2}.yaml -> document as embedded YAML
//	GET /swagger-ui/               -> Swagger UI index
//	GET /swagger-ui/{asset}        -> Swagger UI static assets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	docs := Docs()
	for _, d := range docs {
		js, err := ToJSON(d.YAML)
		if err != nil {
			panic(fmt.Errorf("%s: %w", d.Slug, err))
		}
		raw := d.YAML
		mux.HandleFunc("GET "+DocPrefix+"/"+d.Slug+".json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write(js)
		})
		mux.HandleFunc("GET "+DocPrefix+"/"+d.Slug+".yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
			_, _ = w.Write(raw)
		})
	}

	index, err := renderIndex(docs)
	if err != nil {
		panic(err)
	}

	mux.HandleFunc("GET "+UIPrefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, UIPrefix+"/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET "+UIPrefix+"/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(index)
	})
	mux.Handle("GET "+UIPrefix+"/", &webdav.Handler{
		Prefix:     UIPrefix,
		FileSystem: swaggerFiles.Handler.FileSystem,
		LockSystem: webdav.NewMemLS(),
	})
}

// ToJSON renders an OpenAPI YAML document as JSON.
func ToJSON(doc []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	out, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConvert, err)
	}
	return out, nil
}

// normalize turns map[any]any nodes into string-keyed maps for encoding/json.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}

type uiURL struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func renderIndex(docs []Doc) ([]byte, error) {
	urls := make([]uiURL, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, uiURL{Name: d.Name, URL: DocPrefix + "/" + d.Slug + ".json"})
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct{ URLs []uiURL }{urls}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServe, err)
	}
	return buf.Bytes(), nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>apidemo - Swagger UI</title>
    <link rel="stylesheet" href="./swagger-ui.css">
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="./swagger-ui-bundle.js"></script>
    <script src="./swagger-ui-standalone-preset.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        urls: {{.URLs}},
        "urls.primaryName": "api2",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
        layout: "StandaloneLayout"
      });
    </script>
  </body>
</html>`))
