package notification

import "go.uber.org/zap"

// Channel attempts delivery of a notice over one medium. Implementations
// must not panic; any error is recorded in the notification log and goes no
// further.
type Channel interface {
	Name() string
	Send(n Notice) error
}

// LogChannel writes the notice to the structured log. It always succeeds and
// doubles as the delivery trace when no broker is configured.
type LogChannel struct {
	logger *zap.Logger
}

func NewLogChannel(logger *zap.Logger) *LogChannel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogChannel{logger: logger}
}

func (ch *LogChannel) Name() string { return "log" }

func (ch *LogChannel) Send(n Notice) error {
	ch.logger.Info("notification",
		zap.String("trigger", n.Trigger),
		zap.Int("orderId", n.OrderID),
		zap.String("orderCode", n.OrderCode),
		zap.String("recipient", n.Recipient.Email),
		zap.String("subject", n.Subject),
	)
	return nil
}
