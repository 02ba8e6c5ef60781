package internal

import (
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	envvar "github.com/sanLimbu/tasks-api/internal/envar"
)

// KafkaProducer bundles the producer and the topic it publishes to.
type KafkaProducer struct {
	Producer *kafka.Producer
	Topic    string
}

// NewKafkaProducer instantiates the Kafka producer using configuration defined in
// environment variables.
func NewKafkaProducer(conf *envvar.Configuration) (*KafkaProducer, error) {
	host, err := conf.Get("KAFKA_HOST")
	if err != nil {
		return nil, fmt.Errorf("conf.Get KAFKA_HOST: %w", err)
	}

	topic, err := conf.Get("KAFKA_TOPIC")
	if err != nil {
		return nil, fmt.Errorf("conf.Get KAFKA_TOPIC: %w", err)
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": host,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka.NewProducer: %w", err)
	}

	return &KafkaProducer{
		Producer: producer,
		Topic:    topic,
	}, nil
}

// Close ...
func (k *KafkaProducer) Close() {
	k.Producer.Close()
}

// KafkaConsumer bundles the consumer and the topic it subscribes to.
type KafkaConsumer struct {
	Consumer *kafka.Consumer
	Topic    string
}

// NewKafkaConsumer instantiates the Kafka consumer using configuration defined in
// environment variables.
func NewKafkaConsumer(conf *envvar.Configuration, groupID string) (*KafkaConsumer, error) {
	host, err := conf.Get("KAFKA_HOST")
	if err != nil {
		return nil, fmt.Errorf("conf.Get KAFKA_HOST: %w", err)
	}

	topic, err := conf.Get("KAFKA_TOPIC")
	if err != nil {
		return nil, fmt.Errorf("conf.Get KAFKA_TOPIC: %w", err)
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  host,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka.NewConsumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		return nil, fmt.Errorf("consumer.Subscribe: %w", err)
	}

	return &KafkaConsumer{
		Consumer: consumer,
		Topic:    topic,
	}, nil
}
