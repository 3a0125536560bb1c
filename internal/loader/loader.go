package loader

import (
	"fmt"

	"github.com/limaJavier/timetabler/pkg/model"
)

// Input is the raw content of an input source, before validation
type Input struct {
	Classes  []model.Class   `mapstructure:"classes"`
	Courses  []model.Course  `mapstructure:"courses"`
	Teachers []model.Teacher `mapstructure:"teachers"`
	Rooms    []model.Room    `mapstructure:"rooms"`
	Periods  []model.Period  `mapstructure:"periods"` // Optional, the configured grid is used when empty
}

// Domain validates the input. The input's own periods take precedence over the given defaults.
func (input *Input) Domain(defaultPeriods []model.Period) (*model.Domain, error) {
	periods := input.Periods
	if len(periods) == 0 {
		periods = defaultPeriods
	}
	return model.NewDomain(input.Classes, input.Courses, input.Teachers, input.Rooms, periods)
}

// LoadError reports an input source that cannot be read or decoded
type LoadError struct {
	Source string
	Err    error
}

func (err *LoadError) Error() string {
	return fmt.Sprintf("cannot load %v: %v", err.Source, err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}
