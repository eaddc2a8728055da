package kafkaappender

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"

	"github.com/IBM/sarama"
)

var errWriter = os.Stderr

// SaramaAppender publishes Records with an IBM/sarama sync producer,
// grounded on pkg/messaging/kafka/publisher.go's publisher.Publish.
type SaramaAppender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewSaramaAppender builds a synchronous producer against brokers.
func NewSaramaAppender(brokers []string, topic string) (*SaramaAppender, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionZSTD

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafkaappender: failed to create sarama producer: %w", err)
	}
	return &SaramaAppender{producer: producer, topic: topic}, nil
}

// Append implements actionlog.Appender; see KafkaGoAppender.Append for the
// swallow-and-log rationale.
func (a *SaramaAppender) Append(_ context.Context, record actionlog.Record) {
	body, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(errWriter, "kafkaappender: failed to marshal record %s: %v\n", record.ID, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: a.topic,
		Key:   sarama.StringEncoder(record.ID),
		Value: sarama.ByteEncoder(body),
	}
	if record.RefID != nil {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte("ref_id"), Value: []byte(*record.RefID)})
	}

	if _, _, err := a.producer.SendMessage(msg); err != nil {
		fmt.Fprintf(errWriter, "kafkaappender: failed to publish record %s: %v\n", record.ID, err)
	}
}

// Close releases the underlying producer.
func (a *SaramaAppender) Close() error {
	return a.producer.Close()
}
