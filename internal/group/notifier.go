// waypoint | 2026
// notifier.go

package group

import (
	"context"
	"log/slog"
)

// Notifier announces a membership grant to the invited address.
// Delivery is fire-and-forget: implementations handle their own
// failures and must not block the request path.
type Notifier interface {
	GroupInvite(ctx context.Context, email, groupID string)
}

// LogNotifier records invites in the application log. It stands in
// wherever no mail transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) GroupInvite(ctx context.Context, email, groupID string) {
	n.logger.InfoContext(ctx, "group invite",
		slog.String("email", email),
		slog.String("group_id", groupID),
	)
}
