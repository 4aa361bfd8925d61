package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/purchases-api/internal/application/purchase"
	"github.com/jhoicas/purchases-api/pkg/logger"
)

var _ purchase.EventPublisher = (*Producer)(nil)

// ErrProducerClosed se devuelve al publicar después de Close.
var ErrProducerClosed = errors.New("kafka: producer cerrado")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publica eventos de compra de forma asíncrona: Publish encola y una goroutine escribe.
// La clave del mensaje es el purchase_id, así los eventos de una compra caen en la misma partición.
type Producer struct {
	w        messageWriter
	name     string
	log      *logger.Logger
	inbox    chan kafka.Message
	stop     chan struct{}
	closeCh  chan struct{}
	stopOnce sync.Once
}

// NewProducer construye el productor sobre un kafka.Writer. buf es el tamaño de la cola.
func NewProducer(brokers []string, topic, producerName string, buf int, log *logger.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(w, producerName, buf, log)
}

func newProducer(w messageWriter, producerName string, buf int, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Nop()
	}
	return &Producer{
		w:       w,
		name:    producerName,
		log:     log.Named("kafka_producer"),
		inbox:   make(chan kafka.Message, buf),
		stop:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start lanza la goroutine de escritura. Termina al llamar Close, después de vaciar la cola.
func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case m := <-p.inbox:
				p.write(m)
			case <-p.stop:
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						if err := p.w.Close(); err != nil {
							p.log.Warn().Err(err).Msg("cerrar writer")
						}
						return
					}
				}
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error().Err(err).Str("key", string(m.Key)).Msg("no se pudo escribir el evento")
	}
}

// Publish encola el evento. Bloquea si la cola está llena hasta que ctx expire.
func (p *Producer) Publish(ctx context.Context, ev purchase.Event) error {
	select {
	case <-p.stop:
		return ErrProducerClosed
	default:
	}

	payload, err := json.Marshal(payloadFromEvent(ev))
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     ev.Type,
		EventVersion:  1,
		OccurredAt:    ev.OccurredAt,
		Producer:      p.name,
		CorrelationID: strconv.FormatInt(ev.Purchase.ID, 10),
		Payload:       payload,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		env.TraceID = sc.TraceID().String()
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{msg: &msg})
	select {
	case p.inbox <- msg:
		return nil
	case <-p.stop:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detiene la goroutine de escritura; los mensajes ya encolados se escriben antes de salir.
func (p *Producer) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// WaitClosed espera a que la goroutine termine.
func (p *Producer) WaitClosed() { <-p.closeCh }
