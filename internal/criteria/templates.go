package criteria

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is a named, pre-built set of search criteria.
type Template struct {
	Description string               `yaml:"description"`
	Criteria    model.SearchCriteria `yaml:"criteria"`
}

type templateFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// LoadTemplates decodes the embedded template catalog.
func LoadTemplates() (map[string]Template, error) {
	var f templateFile
	if err := yaml.Unmarshal(templatesYAML, &f); err != nil {
		return nil, eris.Wrap(err, "criteria: decode templates")
	}
	return f.Templates, nil
}

// TemplateNames returns the sorted names of all built-in templates.
func TemplateNames() ([]string, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// FromTemplate returns a copy of the named template's criteria, or nil if
// no template with that name exists.
func FromTemplate(name string) (*model.SearchCriteria, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	t, ok := templates[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, nil
	}
	c := t.Criteria
	applyDefaults(&c)
	return &c, nil
}
