package usecase

import (
	"context"

	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/shopspring/decimal"
)

// PaymentBridge moves TON between the lottery wallet and clients.
type PaymentBridge interface {
	Send(ctx context.Context, amount decimal.Decimal, toClientID string) bool
	Receive(ctx context.Context, amount decimal.Decimal, fromClientID string) bool
}

// LoggingPaymentBridge records transfers without settling them.
type LoggingPaymentBridge struct {
	logger *logging.Logger
}

func NewLoggingPaymentBridge(logger *logging.Logger) *LoggingPaymentBridge {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoggingPaymentBridge{logger: logger}
}

func (b *LoggingPaymentBridge) Send(ctx context.Context, amount decimal.Decimal, toClientID string) bool {
	b.logger.InfoContext(ctx, "payment sent", "amount", amount.String(), "client_id", toClientID)
	return true
}

func (b *LoggingPaymentBridge) Receive(ctx context.Context, amount decimal.Decimal, fromClientID string) bool {
	b.logger.InfoContext(ctx, "payment received", "amount", amount.String(), "client_id", fromClientID)
	return true
}
