package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func randomSuffix(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}

// newOrderNumber returns ORD-<yyyyMMddHHmmss>-<userId>-<8 hex>.
func newOrderNumber(now time.Time, userID uint) string {
	return fmt.Sprintf("ORD-%s-%d-%s", now.Format("20060102150405"), userID, randomSuffix(8))
}

// newBookingCode returns BK-<yyyyMMdd-HHmmss>-<4 hex>.
func newBookingCode(now time.Time) string {
	return fmt.Sprintf("BK-%s-%s", now.Format("20060102-150405"), randomSuffix(4))
}
