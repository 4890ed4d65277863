package llmjson

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode parses text and decodes the recovered object into out using json
// tags. Weak typing is enabled since models mix numbers and strings freely.
func Decode(text, marker string, out any) error {
	obj, err := Parse(text, marker)
	if err != nil {
		return err
	}
	return DecodeObject(obj, out)
}

// DecodeObject decodes an already parsed object into out.
func DecodeObject(obj Object, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}

	if err := decoder.Decode(obj); err != nil {
		return fmt.Errorf("decoding model object: %w", err)
	}
	return nil
}
