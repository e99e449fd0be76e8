package ids

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns "{prefix}-{unix millis}-{9 random chars}". Unique within a
// session, not meant to be unguessable.
func New(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}
