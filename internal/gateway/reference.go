package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referencePrefix = "AKA_LAW"

// GenerateReference produces the payment reference that identifies one
// purchase attempt end-to-end. It is embedded in the gateway callback URL
// and later used as the lookup key for verification and download.
//
// Uniqueness is by construction (millisecond timestamp plus a random
// suffix), not by a stored-uniqueness check. A collision would make a later
// lookup resolve the wrong record; the probability is negligible and the
// risk is accepted.
func GenerateReference() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strings.ToUpper(fmt.Sprintf("%s_%d_%s", referencePrefix, time.Now().UnixMilli(), suffix))
}
