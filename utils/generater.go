package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// OrderTxRef builds the provider transaction reference for an order. The
// uuid suffix keeps retried link generations distinguishable on the
// provider side while the prefix still maps back to the order row.
func OrderTxRef(orderID uint) string {
	return fmt.Sprintf("order-%d-%s", orderID, shortID())
}

// SplitTxRef builds the provider transaction reference for a bill split.
func SplitTxRef(splitID uint) string {
	return fmt.Sprintf("split-%d-%s", splitID, shortID())
}

// ParseTxRef recovers the record kind ("order" or "split") and id from a
// provider callback reference.
func ParseTxRef(ref string) (kind string, id uint, err error) {
	parts := strings.Split(ref, "-")
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("malformed tx ref %q", ref)
	}
	parsed, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed tx ref %q", ref)
	}
	return parts[0], uint(parsed), nil
}

func shortID() string {
	return strings.Split(uuid.NewString(), "-")[0]
}
