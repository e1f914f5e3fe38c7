package repository

import (
	"context"

	"TradePulse/internal/domain/models"
	pkgkafka "TradePulse/pkg/kafka"
)

// KafkaTradeEvents publishes position lifecycle events to a Kafka topic,
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaTradeEvents struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTradeEvents(producer *pkgkafka.Producer, topic string) *KafkaTradeEvents {
	return &KafkaTradeEvents{producer: producer, topic: topic}
}

func (p *KafkaTradeEvents) PublishOpened(ctx context.Context, pos *models.Position) error {
	return p.producer.Publish(ctx, p.topic, []byte(pos.Symbol), map[string]interface{}{
		"event":       "position_opened",
		"id":          pos.ID,
		"symbol":      pos.Symbol,
		"side":        pos.Side,
		"entry_price": pos.EntryPrice,
		"stop_loss":   pos.StopLoss,
		"take_profit": pos.TakeProfit,
		"size":        pos.Size,
		"entry_time":  pos.EntryTime.Unix(),
	})
}

func (p *KafkaTradeEvents) PublishClosed(ctx context.Context, t *models.ClosedTrade) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.Symbol), map[string]interface{}{
		"event":       "position_closed",
		"id":          t.ID,
		"symbol":      t.Symbol,
		"side":        t.Side,
		"entry_price": t.EntryPrice,
		"exit_price":  t.ExitPrice,
		"pnl":         t.PnL,
		"pnl_percent": t.PnLPercent,
		"exit_time":   t.ExitTime.Unix(),
	})
}

func (p *KafkaTradeEvents) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
