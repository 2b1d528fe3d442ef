package mapping

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/harrybrwn/pojogen/java"
)

type record struct {
	Target                     string   `yaml:"target"`
	ClassName                  string   `yaml:"className"`
	GeneratedClassName         string   `yaml:"generatedClassName"`
	Extends                    string   `yaml:"extends"`
	Implements                 []string `yaml:"implements"`
	IgnoreAdditionalProperties bool     `yaml:"ignoreAdditionalProperties"`
	Modifiers                  []string `yaml:"modifiers"`
}

type file struct {
	Mappings []record `yaml:"mappings"`
}

// LoadFile reads a mapping file. See Parse.
func LoadFile(path string) ([]Mapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	ms, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return ms, nil
}

// Parse decodes a yaml (or json) mapping document. The document is either a
// sequence of mapping records or an object with a "mappings" sequence.
func Parse(b []byte) ([]Mapping, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid mapping file")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	var records []record
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, errors.Wrap(err, "invalid mapping file")
		}
	case yaml.MappingNode:
		var f file
		if err := root.Decode(&f); err != nil {
			return nil, errors.Wrap(err, "invalid mapping file")
		}
		records = f.Mappings
	default:
		return nil, errors.New("invalid mapping file: expected a list of mappings")
	}

	mappings := make([]Mapping, 0, len(records))
	for i, rec := range records {
		m, err := rec.mapping()
		if err != nil {
			return nil, errors.Wrapf(err, "mapping %d", i)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (rec *record) mapping() (Mapping, error) {
	if len(rec.Target) == 0 {
		return Mapping{}, errors.New("missing target")
	}
	if len(rec.ClassName) == 0 {
		return Mapping{}, errors.New("missing className")
	}
	var (
		m   = Mapping{Target: rec.Target, IgnoreAdditionalProperties: rec.IgnoreAdditionalProperties}
		err error
	)
	if m.ClassName, err = java.ParseClassName(rec.ClassName); err != nil {
		return m, errors.Wrap(err, "className")
	}
	if len(rec.GeneratedClassName) > 0 {
		g, err := java.ParseClassName(rec.GeneratedClassName)
		if err != nil {
			return m, errors.Wrap(err, "generatedClassName")
		}
		m.GeneratedClassName = &g
	}
	if len(rec.Extends) > 0 {
		e, err := java.ParseClassName(rec.Extends)
		if err != nil {
			return m, errors.Wrap(err, "extends")
		}
		m.Extends = &e
	}
	for _, s := range rec.Implements {
		c, err := java.ParseClassName(s)
		if err != nil {
			return m, errors.Wrap(err, "implements")
		}
		m.Implements = append(m.Implements, c)
	}
	for _, s := range rec.Modifiers {
		mod, err := java.ParseModifier(s)
		if err != nil {
			return m, err
		}
		m.Modifiers = append(m.Modifiers, mod)
	}
	return m, nil
}
