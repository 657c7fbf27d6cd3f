package cache

import (
	"fmt"

	"github.com/google/uuid"
)

const snapshotKeyPrefix = "credit:snapshot"

// snapshotKey is credit:snapshot:{tenant}:{customer}:{category}
func snapshotKey(tenantID, customerID, categoryID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s:%s", snapshotKeyPrefix, tenantID, customerID, categoryID)
}

// customerIndexKey holds the snapshot keys of one customer
func customerIndexKey(tenantID, customerID uuid.UUID) string {
	return fmt.Sprintf("%s:idx:%s:%s", snapshotKeyPrefix, tenantID, customerID)
}
