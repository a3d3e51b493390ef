package mq

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"json-share-api/config"
	"json-share-api/internal/domain/share"
	"json-share-api/internal/infrastructure/metrics"
)

// "Rely on metrics, not guesses."
const bufferSize = 128

// RoutingKeys are the keys share events are published under.
var RoutingKeys = []string{
	string(share.EventCreated),
	string(share.EventDeleted),
	string(share.EventSwept),
}

type (
	InputCh  = chan share.Event
	RabbitMQ struct {
		cfg      config.MQ
		log      *zap.Logger
		mCounter *prometheus.CounterVec
		conn     *amqp091.Connection
		pubCh    *amqp091.Channel
		in       InputCh
	}
)

func New(cfg config.MQ, logger *zap.Logger, mCounter *prometheus.CounterVec) *RabbitMQ {
	return &RabbitMQ{
		cfg:      cfg,
		log:      logger,
		mCounter: mCounter,
		in:       make(chan share.Event, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "jsonshare",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		r.conn = nil
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return nil
}

func (r *RabbitMQ) Init() error {
	if err := r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}

	return nil
}

// Publish enqueues e without blocking the caller. When the buffer is full
// the event is dropped and counted.
func (r *RabbitMQ) Publish(e share.Event) {
	select {
	case r.in <- e:
	default:
		r.log.Error("mq buffer full, event dropped",
			zap.String("action", string(e.Action)),
			zap.String("share_id", e.ShareID),
		)
		if r.mCounter != nil {
			r.mCounter.WithLabelValues(metrics.EventsDropped).Inc()
		}
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting publisher worker")

	defer func() {
		r.log.Info("publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				// alert
				r.log.Error("mq publish error", zap.Error(err), zap.String("share_id", e.ShareID))
			}
		case <-ctx.Done():
			if r.pubCh != nil {
				_ = r.pubCh.Close()
			}
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e share.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	pub := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.ID.String(),
		Timestamp:    e.TS,
		Type:         string(e.Action),
		Body:         b,
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		string(e.Action),
		false,
		false,
		pub,
	)
}

func (r *RabbitMQ) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Discard is the publisher used when no broker is configured.
type Discard struct{}

func (Discard) Publish(share.Event) {}
