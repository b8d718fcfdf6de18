package routecfg

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/isomorph/internal/errs"
)

// ParseYAML decodes a YAML table. Unknown fields are rejected.
func ParseYAML(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return &t, nil
		}
		return nil, errs.Configuration("", "parse YAML route table: %v", err)
	}
	return &t, nil
}
