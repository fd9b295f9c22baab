package config

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sonoprop/pkg/core"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Project.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.StatePath == "" {
		errs = append(errs, fmt.Errorf("%w: state_path is required", core.ErrInvalidConfig))
	}
	if c.Workbook && c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("%w: output_dir is required when workbook export is on", core.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
