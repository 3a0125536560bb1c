package constraint

import (
	"fmt"
	"strings"

	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/samber/lo"
)

// ModelError reports curriculum pairs that cannot be scheduled at all, before any search: no room and
// period combination survives the teacher availability and room compatibility filters.
type ModelError struct {
	Mode  Mode
	Pairs []model.Pair
}

func (err *ModelError) Error() string {
	pairs := lo.Map(err.Pairs, func(pair model.Pair, _ int) string {
		return fmt.Sprintf("%v/%v", pair.Class, pair.Course)
	})
	return fmt.Sprintf("%v model has no feasible variable for %d pair(s): %v", err.Mode, len(err.Pairs), strings.Join(pairs, ", "))
}
