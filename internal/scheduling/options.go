package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Leganyst/clinic-booking/internal/model"
	"github.com/Leganyst/clinic-booking/internal/repository"
)

// Transactor выполняет fn атомарно: commit при nil, rollback при ошибке или панике.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores: хранилища, с которыми работает ядро.
type Stores struct {
	Slots    repository.SlotRepository
	Bookings repository.BookingRepository
	Doctors  repository.DoctorRepository
	Users    repository.UserRepository
	Events   repository.EventRepository
}

type Option func(*options)

type options struct {
	now                func() time.Time
	logger             zerolog.Logger
	metrics            *Metrics
	tracer             trace.Tracer
	defaultSlotMinutes int
	defaultTimeZone    string
	maxRangeDays       int
}

func defaultOptions() options {
	return options{
		now:                time.Now,
		logger:             zerolog.Nop(),
		tracer:             otel.Tracer("clinic.internal.scheduling"),
		defaultSlotMinutes: 30,
		defaultTimeZone:    "UTC",
		maxRangeDays:       366,
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithSlotDefaults задаёт длительность и метку зоны, если их не передали в запросе.
func WithSlotDefaults(minutes int, timeZone string) Option {
	return func(o *options) {
		if minutes > 0 {
			o.defaultSlotMinutes = minutes
		}
		if timeZone != "" {
			o.defaultTimeZone = timeZone
		}
	}
}

// WithMaxRangeDays ограничивает длину диапазона генерации.
func WithMaxRangeDays(days int) Option {
	return func(o *options) {
		if days > 0 {
			o.maxRangeDays = days
		}
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// begin открывает span и возвращает функцию завершения, которая
// пишет метрику, лог и статус span.
func (o *options) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	started := time.Now()
	ctx, span := o.tracer.Start(ctx, "scheduling."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		err := *errp
		o.metrics.ObserveOperation(op, started, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(KindOf(err)))
			if KindOf(err) == KindInternal {
				o.logger.Error().Err(err).Str("operation", op).Msg("scheduling operation failed")
			} else {
				o.logger.Debug().Err(err).Str("operation", op).Msg("scheduling operation rejected")
			}
		}
		span.End()
	}
}

// audit пишет событие в журнал. Вызывается внутри транзакции операции.
func audit(ctx context.Context, events repository.EventRepository, typ model.EventType, actor uuid.UUID, bookingID, slotID *uuid.UUID, details string) error {
	if events == nil {
		return nil
	}
	e := &model.Event{EventType: typ, BookingID: bookingID, SlotID: slotID, Details: details}
	if actor != uuid.Nil {
		e.ActorID = &actor
	}
	return events.Create(ctx, e)
}
