package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxUpdateAttempts bounds optimistic read-modify-write retries.
const maxUpdateAttempts = 5

// newID returns an opaque "<prefix>_<unixMillis>_<random hex>" id.
func newID(prefix string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), random)
}
