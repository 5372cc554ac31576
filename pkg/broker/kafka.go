package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"caseflow/internal/application/entity"
	"caseflow/pkg/config"
)

// KafkaBroker owns the sync producer used by the outbox dispatcher. This
// service never consumes; the downstream systems do.
type KafkaBroker struct {
	SyncProducer sarama.SyncProducer
	Brokers      []string
	conf         config.Kafka
	logger       *zap.SugaredLogger
}

func NewKafkaBroker(conf config.Kafka, logger *zap.SugaredLogger) (*KafkaBroker, error) {
	logger.Debugf("creating sync producer for brokers: %s", conf.Brokers)
	syncProducer, err := newSyncProducer(conf)
	if err != nil {
		logger.Errorf("creating sync producer failed: %v", err)
		return nil, fmt.Errorf("%w", err)
	}
	logger.Info("sync producer created")

	broker := &KafkaBroker{
		SyncProducer: syncProducer,
		Brokers:      strings.Split(conf.Brokers, ","),
		conf:         conf,
		logger:       logger,
	}
	return broker, nil
}

// TopicFor maps an event kind to its producer topic.
func (kb *KafkaBroker) TopicFor(kind entity.EventKind) (string, error) {
	switch kind {
	case entity.KindCaseOutcome:
		return kb.conf.CaseOutcomeTopic, nil
	case entity.KindStatistics:
		return kb.conf.StatisticsTopic, nil
	case entity.KindNotification:
		return kb.conf.NotificationTopic, nil
	default:
		return "", fmt.Errorf("no topic configured for event kind %q", kind)
	}
}

// HealthCheck verifies broker reachability with a short-lived minimal client.
// It deliberately avoids Partitions()/Describe calls, which may be blocked by
// ACLs on restricted environments.
func (kb *KafkaBroker) HealthCheck(ctx context.Context) error {
	if kb.SyncProducer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	cfg := sarama.NewConfig()
	cfg.Net.DialTimeout = 2 * time.Second
	cfg.Net.ReadTimeout = 2 * time.Second
	cfg.Net.WriteTimeout = 2 * time.Second
	cfg.Metadata.Timeout = 2 * time.Second
	cfg.Metadata.Retry.Max = 1
	applySASLConfig(cfg, kb.conf)

	client, err := sarama.NewClient(kb.Brokers, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to kafka brokers: %w", err)
	}
	defer client.Close()

	if len(client.Brokers()) == 0 {
		return fmt.Errorf("no kafka brokers available")
	}

	return nil
}

func (kb *KafkaBroker) Close() error {
	if kb.SyncProducer != nil {
		return kb.SyncProducer.Close()
	}
	return nil
}

func applySASLConfig(cfg *sarama.Config, conf config.Kafka) {
	if conf.Usr != "" && conf.UsrPwd != "" {
		cfg.Net.SASL.User = conf.Usr
		cfg.Net.SASL.Password = conf.UsrPwd
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	}
}

func EnableSaramaZapLogs(base *zap.SugaredLogger) {
	logger := base.Named("sarama")
	sarama.Logger = &zapSarama{logger}
	logger.Info("sarama logger initialized")
}

type zapSarama struct{ l *zap.SugaredLogger }

func (z *zapSarama) Print(v ...interface{})                 { z.l.Debug(v...) }
func (z *zapSarama) Printf(format string, v ...interface{}) { z.l.Debugf(format, v...) }
func (z *zapSarama) Println(v ...interface{})               { z.l.Debug(v...) }

func newSyncProducer(conf config.Kafka) (sarama.SyncProducer, error) {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.Return.Successes = true
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Idempotent = true
	kafkaConfig.Net.MaxOpenRequests = 1
	applySASLConfig(kafkaConfig, conf)

	brokers := strings.Split(conf.Brokers, ",")

	producer, err := sarama.NewSyncProducer(brokers, kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating kafka sync producer: %w", err)
	}

	return producer, nil
}
