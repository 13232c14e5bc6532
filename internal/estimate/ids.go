package estimate

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/estimator/internal/domain"
)

const placeholderPrefix = "temp-"

var placeholderSeq atomic.Uint64

// PlaceholderID returns a locally unique id for a node that has not been
// stored yet, e.g. "temp-item-1718445600000-7".
func PlaceholderID(kind domain.NodeKind) string {
	return fmt.Sprintf("%s%s-%d-%d", placeholderPrefix, kind, time.Now().UnixMilli(), placeholderSeq.Add(1))
}

// IsPlaceholderID reports whether id was issued by PlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}
