package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan walks every shop and flags products at or below
	// their reorder level.
	TaskLowStockScan = "stock:lowstock_scan"
	// TaskDailyDigest recomputes yesterday's per-shop daily summary.
	TaskDailyDigest = "reports:daily_digest"
)

// LowStockScanPayload scopes a scan to one shop, or all shops when zero.
type LowStockScanPayload struct {
	ShopID int64 `json:"shop_id"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// DailyDigestPayload targets a calendar date, "" meaning yesterday.
type DailyDigestPayload struct {
	Date string `json:"date"`
}

// NewDailyDigestTask constructs the digest task.
func NewDailyDigestTask(payload DailyDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyDigest, data), nil
}
