package telegram

import (
	"fmt"
	"time"

	"go-trading-coach/internal/coach/dto"
)

// FormatErrorAlertMessage formats an operational error for the alert channel.
func FormatErrorAlertMessage(t time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, t.Format("2006-01-02 15:04:05"), errType, errMsg, data)
}

// FormatUsageDigestMessage formats the periodic usage summary.
func FormatUsageDigestMessage(t time.Time, snapshot dto.UsageSnapshot) string {
	avgLatency := int64(0)
	if snapshot.Requests > 0 {
		avgLatency = snapshot.TotalLatencyMs / snapshot.Requests
	}

	return fmt.Sprintf(`📈 *Coach Usage Digest* — %s

• Requests: %d
• Fallbacks: %d
• Failures: %d
• Tokens used: %d
• Estimated cost: $%.4f
• Avg latency: %dms
`, t.Format("2006-01-02"), snapshot.Requests, snapshot.Fallbacks, snapshot.Failures,
		snapshot.TokensUsed, snapshot.EstimatedCost, avgLatency)
}
