// Package endpoints holds the beer service base URL and path templates.
package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "https://api.springframework.guru"
	BeerPath        = "/api/v1/beer"
	BeerPathWithID  = "/api/v1/beer/{id}"
	BeerPathWithUPC = "/api/v1/beerUpc/{upc}"

	VarID  = "id"
	VarUPC = "upc"
)

// Registry is the set of paths a client resolves requests against.
type Registry struct {
	BaseURL         string `json:"base_url" yaml:"base_url"`
	BeerPath        string `json:"beer_path" yaml:"beer_path"`
	BeerPathWithID  string `json:"beer_path_with_id" yaml:"beer_path_with_id"`
	BeerPathWithUPC string `json:"beer_path_with_upc" yaml:"beer_path_with_upc"`
}

// Default returns the registry of the public beer service.
func Default() Registry {
	return Registry{
		BaseURL:         DefaultBaseURL,
		BeerPath:        BeerPath,
		BeerPathWithID:  BeerPathWithID,
		BeerPathWithUPC: BeerPathWithUPC,
	}
}

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Expand substitutes every {name} placeholder in template with the
// path-escaped value from vars. An unbound or empty variable is an error.
func Expand(template string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		val, ok := vars[name]
		if !ok || val == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(val)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("path template %q: unbound variables %s", template, strings.Join(missing, ", "))
	}
	return out, nil
}

// Placeholders lists the variable names referenced by template.
func Placeholders(template string) []string {
	matches := placeholder.FindAllStringSubmatch(template, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// LoadRegistry reads a registry override from a YAML or JSON file. Fields
// left blank in the file keep their default values.
func LoadRegistry(path string) (Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Registry{}, errors.New("endpoints file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return Registry{}, fmt.Errorf("open endpoints file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return Registry{}, fmt.Errorf("read endpoints file: %w", err)
	}

	reg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return Registry{}, err
	}

	reg = reg.withDefaults()
	if err := reg.Validate(); err != nil {
		return Registry{}, err
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseRegistry(data []byte, ext string) (Registry, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg Registry
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return Registry{}, errors.New("endpoints file format not recognized (expected YAML or JSON)")
}

func (r Registry) withDefaults() Registry {
	def := Default()
	r.BaseURL = strings.TrimRight(strings.TrimSpace(r.BaseURL), "/")
	r.BeerPath = strings.TrimSpace(r.BeerPath)
	r.BeerPathWithID = strings.TrimSpace(r.BeerPathWithID)
	r.BeerPathWithUPC = strings.TrimSpace(r.BeerPathWithUPC)

	if r.BaseURL == "" {
		r.BaseURL = def.BaseURL
	}
	if r.BeerPath == "" {
		r.BeerPath = def.BeerPath
	}
	if r.BeerPathWithID == "" {
		r.BeerPathWithID = def.BeerPathWithID
	}
	if r.BeerPathWithUPC == "" {
		r.BeerPathWithUPC = def.BeerPathWithUPC
	}
	return r
}

// Validate checks the base URL and that each template references exactly
// the variables the client binds for it.
func (r Registry) Validate() error {
	u, err := url.Parse(r.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", r.BaseURL)
	}

	checks := []struct {
		key      string
		template string
		vars     []string
	}{
		{key: "beer_path", template: r.BeerPath},
		{key: "beer_path_with_id", template: r.BeerPathWithID, vars: []string{VarID}},
		{key: "beer_path_with_upc", template: r.BeerPathWithUPC, vars: []string{VarUPC}},
	}
	for _, c := range checks {
		if !strings.HasPrefix(c.template, "/") {
			return fmt.Errorf("%s %q must start with /", c.key, c.template)
		}
		got := Placeholders(c.template)
		if strings.Join(got, ",") != strings.Join(c.vars, ",") {
			return fmt.Errorf("%s %q must reference exactly %v, found %v", c.key, c.template, c.vars, got)
		}
	}
	return nil
}

// URL joins the base URL with an already expanded path.
func (r Registry) URL(path string) string {
	return strings.TrimRight(r.BaseURL, "/") + path
}
