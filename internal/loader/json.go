package loader

import (
	"encoding/json"
	"os"

	"github.com/mitchellh/mapstructure"
)

// FromJSON reads a document {classes, courses, teachers, rooms, periods?}. Unknown keys are rejected.
func FromJSON(path string) (*Input, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}

	var input Input
	if err := decode(inputJson, &input); err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return &input, nil
}

func decode(raw any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      result,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
