package survey

import (
	"time"

	"github.com/pkg/errors"
)

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	return t, errors.Wrapf(err, "parsing date %q", s)
}
