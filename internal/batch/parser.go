package batch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"
)

// Entry is a single expression of a batch.
type Entry struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
}

type batchDef struct {
	Expressions []any `json:"expressions"`
}

func ParseBatchYAML(r io.Reader) ([]Entry, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseBatchJSON(bytes.NewReader(jsonBytes))
}

func ParseBatchJSON(r io.Reader) ([]Entry, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var def batchDef
	if err := decoder.Decode(&def); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	return def.compile()
}

func (d *batchDef) compile() ([]Entry, error) {
	if len(d.Expressions) == 0 {
		return nil, fmt.Errorf("empty expressions")
	}

	entries := make([]Entry, len(d.Expressions))
	for i, v := range d.Expressions {
		switch vv := v.(type) {
		case string:
			entries[i] = Entry{Expression: vv}

		case map[string]any:
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				WeaklyTypedInput: true,
				ErrorUnused:      true,
				Result:           &entries[i],
			})
			if err != nil {
				return nil, fmt.Errorf("expressions[%d]: %w", i, err)
			}
			if err = decoder.Decode(vv); err != nil {
				return nil, fmt.Errorf("expressions[%d]: %w", i, err)
			}
			if entries[i].Expression == "" {
				return nil, fmt.Errorf("expressions[%d]: expression is required", i)
			}

		case json.Number:
			entries[i] = Entry{Expression: vv.String()}

		default:
			return nil, fmt.Errorf("expressions[%d]: invalid type %T", i, v)
		}

		if entries[i].Name == "" {
			entries[i].Name = fmt.Sprintf("#%d", i)
		}
	}

	return entries, nil
}
