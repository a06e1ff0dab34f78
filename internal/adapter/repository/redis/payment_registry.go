package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultClaimTTL bounds how long an unfinished claim blocks its reference.
const DefaultClaimTTL = 10 * time.Minute

const claimPending = "pending"

// releaseScript deletes a claim only while it is still pending, so a
// completed payment can never be released.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PaymentClient is the subset of the Redis client the registry uses.
type PaymentClient interface {
	redis.Cmdable
	redis.Scripter
}

// PaymentRegistry implements usecase.PaymentRegistry with SETNX claims.
// Completed references are kept without expiry.
type PaymentRegistry struct {
	client   PaymentClient
	prefix   string
	claimTTL time.Duration
}

// NewPaymentRegistry creates a new PaymentRegistry.
func NewPaymentRegistry(client PaymentClient, claimTTL time.Duration) *PaymentRegistry {
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}
	return &PaymentRegistry{
		client:   client,
		prefix:   "creditledger:payment:",
		claimTTL: claimTTL,
	}
}

// Claim reserves ref. It returns false when ref was claimed before.
func (r *PaymentRegistry) Claim(ctx context.Context, ref string) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+ref, claimPending, r.claimTTL).Result()
}

// Complete records the entry that credited ref.
func (r *PaymentRegistry) Complete(ctx context.Context, ref string, entryID int64) error {
	return r.client.Set(ctx, r.prefix+ref, strconv.FormatInt(entryID, 10), 0).Err()
}

// Release drops a pending claim on ref.
func (r *PaymentRegistry) Release(ctx context.Context, ref string) error {
	return releaseScript.Run(ctx, r.client, []string{r.prefix + ref}, claimPending).Err()
}
