// Package kafkaappender provides the production Action Log Appender (§4.4):
// it serializes each completed Record to JSON and publishes it to a
// configured Kafka topic. Two backends are offered, both grounded on the
// teacher's own pkg/messaging/kafka client code: KafkaGoAppender
// (segmentio/kafka-go, the teacher's primary consumer/producer stack) and
// SaramaAppender (IBM/sarama, the teacher's alternate publisher). Keeping
// both exercises the teacher's own two producer implementations instead of
// dropping one.
package kafkaappender

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JailtonJunior94/devkit-go/pkg/actionlog"

	"github.com/segmentio/kafka-go"
)

// KafkaGoAppender publishes Records with a segmentio/kafka-go writer,
// grounded on pkg/messaging/kafka/producer.go's kafkaClient.Produce.
type KafkaGoAppender struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaGoAppender dials no connection eagerly; kafka.Writer connects
// lazily on first WriteMessages, matching the teacher's NewKafkaClient.
func NewKafkaGoAppender(broker, topic string) *KafkaGoAppender {
	return &KafkaGoAppender{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(broker),
			Balancer: &kafka.LeastBytes{},
		},
		topic: topic,
	}
}

// Append implements actionlog.Appender. A publish failure is swallowed
// after logging to stderr: Append has no error return (§4.4 contract is
// "called once per completed action"), and a lost Action Log Record must
// never take down the process that produced it.
func (a *KafkaGoAppender) Append(ctx context.Context, record actionlog.Record) {
	body, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(errWriter, "kafkaappender: failed to marshal record %s: %v\n", record.ID, err)
		return
	}

	msg := kafka.Message{
		Topic: a.topic,
		Key:   []byte(record.ID),
		Value: body,
	}
	if record.RefID != nil {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "ref_id", Value: []byte(*record.RefID)})
	}

	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		fmt.Fprintf(errWriter, "kafkaappender: failed to publish record %s: %v\n", record.ID, err)
	}
}

// Close releases the underlying writer's connections.
func (a *KafkaGoAppender) Close() error {
	return a.writer.Close()
}
