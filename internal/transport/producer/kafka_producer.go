package producer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"caseflow/internal/application/common"
	"caseflow/internal/application/entity"
	"caseflow/pkg/broker"
	"caseflow/pkg/metrics"
)

type Producer interface {
	// ProduceMessage publishes one outbox payload to the topic of its kind,
	// keyed by case id so per-case ordering survives partitioning downstream.
	ProduceMessage(ctx context.Context, kind entity.EventKind, key string, message []byte) error
	HealthCheck(ctx context.Context) error
}

type KafkaProducer struct {
	broker      *broker.KafkaBroker
	logger      *zap.SugaredLogger
	maxAttempts int
	m           *metrics.Metrics
}

func NewProducer(broker *broker.KafkaBroker, logger *zap.SugaredLogger, maxAttempts int, m *metrics.Metrics) *KafkaProducer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &KafkaProducer{
		broker:      broker,
		logger:      logger,
		maxAttempts: maxAttempts,
		m:           m,
	}
}

func (p *KafkaProducer) HealthCheck(ctx context.Context) error {
	if p.broker == nil {
		return errors.New("kafka broker is not initialized")
	}
	return p.broker.HealthCheck(ctx)
}

func (p *KafkaProducer) ProduceMessage(ctx context.Context, kind entity.EventKind, key string, message []byte) error {
	topic, err := p.broker.TopicFor(kind)
	if err != nil {
		return err
	}
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic:     topic,
			Key:       sarama.StringEncoder(key),
			Value:     sarama.ByteEncoder(message),
			Timestamp: time.Now(),
		}

		t0 := time.Now()
		part, off, err := p.broker.SyncProducer.SendMessage(msg)
		rt := time.Since(t0)

		if p.m != nil {
			res := "ok"
			if err != nil {
				res = "error"
			}
			p.m.Kafka.ProducerAttemptLatencySeconds.WithLabelValues(topic, res).Observe(rt.Seconds())
		}

		if err == nil {
			if p.m != nil {
				p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "success").Inc()
				p.m.Kafka.ProducerSuccessAttempts.WithLabelValues(topic).Observe(float64(attempt))
			}
			p.logger.Infof("[key %s] sent topic=%s partition=%d offset=%d attempt=%d rt=%s",
				key, topic, part, off, attempt, rt)
			return nil
		}

		lastErr = err

		if kerr, ok := err.(sarama.KError); ok {
			if isPermanent(kerr) {
				if p.m != nil {
					p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "permanent").Inc()
				}
				p.logger.Errorf("[key %s] permanent kafka error attempt=%d rt=%s kafka_error=%s code=%d",
					key, attempt, rt, kerr.Error(), int16(kerr))
				return fmt.Errorf("permanent kafka error: %w", kerr)
			}

			p.logger.Warnf("[key %s] retryable kafka error attempt=%d rt=%s kafka_error=%s code=%d",
				key, attempt, rt, kerr.Error(), int16(kerr))
		} else {
			p.logger.Warnf("[key %s] retryable non-kafka error attempt=%d rt=%s err=%v",
				key, attempt, rt, err)
		}

		if attempt == p.maxAttempts {
			break
		}

		if err := common.SleepCtx(ctx, common.NextBackoffWithJitter(attempt-1)); err != nil {
			if p.m != nil {
				p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "canceled").Inc()
			}
			return err
		}
	}

	if p.m != nil {
		p.m.Kafka.ProducerOperationsTotal.WithLabelValues(topic, "failed").Inc()
	}
	p.logger.Errorf("[key %s] produce_failed after %d attempts: %v", key, p.maxAttempts, lastErr)
	return fmt.Errorf("produce failed after %d attempts: %w", p.maxAttempts, lastErr)
}

func isPermanent(k sarama.KError) bool {
	switch k {
	case sarama.ErrTopicAuthorizationFailed,
		sarama.ErrClusterAuthorizationFailed,
		sarama.ErrInvalidRequest,
		sarama.ErrInvalidMessage,
		sarama.ErrMessageSizeTooLarge,
		sarama.ErrSASLAuthenticationFailed:
		return true
	default:
		return false
	}
}

func ClassifyRetry(err error) string {
	if k, ok := err.(sarama.KError); ok {
		switch k {
		case sarama.ErrLeaderNotAvailable:
			return "leader_not_available"
		case sarama.ErrRequestTimedOut:
			return "broker_timeout"
		case sarama.ErrNotEnoughReplicas, sarama.ErrNotEnoughReplicasAfterAppend:
			return "not_enough_replicas"
		default:
			return k.Error()
		}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return "net_timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "client_deadline"
	}
	return "other"
}
