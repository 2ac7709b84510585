package gate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// DenialLogKey is the redis list holding denial entries.
const DenialLogKey = "gate:denials"

type DenialEntry struct {
	Target string    `json:"target"`
	Route  string    `json:"route"`
	Status int       `json:"status"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

// AuditLog records gate denials in redis so they can be reviewed later.
// A nil AuditLog discards entries.
type AuditLog struct {
	rdb *redis.Client
}

func NewAuditLog(rdb *redis.Client) *AuditLog {
	return &AuditLog{rdb: rdb}
}

func (a *AuditLog) Record(ctx context.Context, entry DenialEntry) {
	if a == nil || a.rdb == nil {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	data, _ := json.Marshal(entry)
	_ = a.rdb.RPush(ctx, DenialLogKey, data).Err()
}
