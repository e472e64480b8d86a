package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPusher appends every event to a topic keyed by user id, for
// consumers such as mobile push or email relays.
type KafkaPusher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPusher(brokers []string, topic string, log *zap.Logger) *KafkaPusher {
	l := log.With(zap.String("pusher", "kafka"), zap.String("topic", topic))
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // per-user ordering
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			l.Warn(fmt.Sprintf(msg, args...))
		}),
	}
	return &KafkaPusher{writer: writer, log: l}
}

func (p *KafkaPusher) Push(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: body,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Name)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", ev.Name, err)
	}
	return nil
}

func (p *KafkaPusher) Close() error {
	return p.writer.Close()
}
