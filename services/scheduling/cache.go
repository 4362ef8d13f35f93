package scheduling

import (
	"context"

	"fitstudio/utils"
)

// RedisReportInvalidator signals the redis cache layer after seat and
// ledger mutations.
type RedisReportInvalidator struct{}

func (RedisReportInvalidator) CoachReport(ctx context.Context, coachID string, date int) {
	utils.InvalidateCoachReport(ctx, coachID, date)
}

func (RedisReportInvalidator) CustomerProfile(ctx context.Context, customerID string) {
	utils.InvalidateCustomerProfile(ctx, customerID)
}
