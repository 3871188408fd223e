// Package compliance checks produced files against an independent PDF
// validator. The engine's own round-trip tests prove self-consistency;
// this proves the output holds up in front of a conforming reader that
// shares none of our code.
package compliance

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// ValidateFile runs the external validator over a file on disk.
func ValidateFile(path string) error {
	if err := api.ValidateFile(path, configuration()); err != nil {
		return fmt.Errorf("validate %s: %w", path, err)
	}
	return nil
}

// Validate runs the external validator over in-memory bytes.
func Validate(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), configuration()); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}
