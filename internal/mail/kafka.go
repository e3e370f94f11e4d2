package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter はkafka.Writerのうち送信に使うメソッド。
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport はメールをKafkaトピックに発行し、配信を外部のメール送信サービスに委ねる。
// 宛先アドレスをキーにするため、同じ宛先のメールは同じパーティションに入る。
type KafkaTransport struct {
	writer messageWriter
}

// NewKafkaTransport はブローカーとトピックを指定してKafkaTransportを生成する。
func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	return &KafkaTransport{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: false,
		},
	}
}

// Send はメールをJSONとして1件発行する。
func (t *KafkaTransport) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode mail message: %w", err)
	}

	err = t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish mail message: %w", err)
	}
	return nil
}

// Close は送信待ちのメッセージを書き出してから接続を閉じる。
func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
