package job

import (
	"fmt"
	"sync/atomic"
	"time"
)

var seq int64

// NewID mints a coordinator-lifetime-unique job id, following the
// original's job_<unixmilli>_<seq> shape (original_source/cluster/
// coordinator.py) so ids stay sortable by submission order at a glance.
func NewID(now time.Time) string {
	n := atomic.AddInt64(&seq, 1)
	return fmt.Sprintf("job_%d_%d", now.UnixMilli(), n)
}
