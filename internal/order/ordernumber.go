package order

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// newOrderNumber builds an order number like ORD-20250901-3FA2C1. The random
// suffix keeps generation free of a table scan; uniqueness is guaranteed by
// the unique index on orders.order_number, with the caller retrying on
// conflict.
func newOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate order number suffix: %w", err)
	}
	suffix := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}
