package verify

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/xeipuuv/gojsonschema"

	"github.com/storefront-qa/api-contract-tests/client"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaRoot = "schemas"

// Schemas holds the compiled response schemas, addressed by their path under schemas/ without
// the .json extension, for example "authentication/authentication_failed".
type Schemas struct {
	schemas map[string]*gojsonschema.Schema
	strict  bool
}

// LoadSchemas compiles all embedded schemas as draft-4. In strict mode a mismatch stops the
// test; otherwise it is reported and the test continues.
func LoadSchemas(strict bool) (*Schemas, error) {
	return loadSchemas(schemaFiles, schemaRoot, strict)
}

func loadSchemas(fsys fs.FS, root string, strict bool) (*Schemas, error) {
	s := &Schemas{schemas: make(map[string]*gojsonschema.Schema), strict: strict}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".json" {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		loader := gojsonschema.NewSchemaLoader()
		loader.Draft = gojsonschema.Draft4
		loader.AutoDetect = false
		schema, err := loader.Compile(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return fmt.Errorf("compiling schema %s: %w", p, err)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, root+"/"), ".json")
		s.schemas[name] = schema
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Names returns the names of all known schemas in sorted order.
func (s *Schemas) Names() []string {
	ret := make([]string, 0, len(s.schemas))
	for name := range s.schemas {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Strict reports whether mismatches stop the test.
func (s *Schemas) Strict() bool {
	return s.strict
}

// Match validates the response body against the named schema.
func (s *Schemas) Match(t TestingT, resp *client.Response, name string) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	schema, ok := s.schemas[name]
	if !ok {
		return s.fail(t, fmt.Sprintf("unknown schema %q", name))
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(resp.Body))
	if err != nil {
		return s.fail(t, fmt.Sprintf("could not validate body against schema %q: %s", name, err),
			"body: %s", resp.Body)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return s.fail(t, fmt.Sprintf("body does not match schema %q: %s", name, strings.Join(problems, "; ")),
			"body: %s", resp.Body)
	}
	return true
}

func (s *Schemas) fail(t TestingT, message string, msgAndArgs ...interface{}) bool {
	assert.Fail(t, message, msgAndArgs...)
	if s.strict {
		t.FailNow()
	}
	return false
}
