package xtrace

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// instrumentationName is the scope name recorded on every span.
const instrumentationName = "github.com/trickstertwo/xtrace"

// TracerBuilder constructs Tracer instances. The telemetry provider is
// injected here rather than looked up ambiently, with the global otel
// provider only as a fallback.
type TracerBuilder struct {
	provider   trace.TracerProvider
	propagator propagation.TextMapPropagator
	clock      xclock.Clock
	logger     *xlog.Logger
	cfg        Config
	cfgSet     bool
}

// NewTracerBuilder returns a builder with sensible defaults.
func NewTracerBuilder() *TracerBuilder {
	return &TracerBuilder{}
}

// WithTracerProvider injects the tracing provider spans are created from.
func (tb *TracerBuilder) WithTracerProvider(tp trace.TracerProvider) *TracerBuilder {
	tb.provider = tp
	return tb
}

// WithPropagator injects the text-map propagator used by the carrier bridge.
func (tb *TracerBuilder) WithPropagator(p propagation.TextMapPropagator) *TracerBuilder {
	tb.propagator = p
	return tb
}

// WithClock injects a custom xclock clock.
func (tb *TracerBuilder) WithClock(c xclock.Clock) *TracerBuilder {
	tb.clock = c
	return tb
}

// WithLogger injects a custom xlog logger.
func (tb *TracerBuilder) WithLogger(l *xlog.Logger) *TracerBuilder {
	tb.logger = l
	return tb
}

// WithConfig sets the tracing surface configuration.
func (tb *TracerBuilder) WithConfig(cfg Config) *TracerBuilder {
	tb.cfg = cfg
	tb.cfgSet = true
	return tb
}

// Build validates the configuration and assembles the Tracer.
func (tb *TracerBuilder) Build() (*Tracer, error) {
	cfg := tb.cfg
	if !tb.cfgSet {
		cfg = Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := tb.provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(instrumentationName)

	clk := tb.clock
	if clk == nil {
		clk = xclock.Default()
	}
	lg := tb.logger
	if lg == nil {
		lg = xlog.Default()
	}

	return &Tracer{
		send:     newInstrumenter(tracer, OpSend, cfg),
		receive:  newInstrumenter(tracer, OpReceive, cfg),
		process:  newInstrumenter(tracer, OpProcess, cfg),
		bridge:   NewBridge(tb.propagator),
		registry: NewEndpointRegistry(),
		store:    newContextStore(),
		clock:    clk,
		logger:   lg,
	}, nil
}
