package tracing

import (
	"context"
	"fmt"
	"sync"

	"github.com/erpc/conformance/common"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/erpc/conformance"

var (
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer = otel.Tracer(instrumentationName)
	initOnce       sync.Once
	isEnabled      bool
)

// Initialize installs the global tracer provider. Without a config, spans are
// created against the no-op provider.
func Initialize(ctx context.Context, logger *zerolog.Logger, cfg *common.TracingConfig) error {
	var err error

	initOnce.Do(func() {
		if cfg == nil || !cfg.Enabled {
			logger.Info().Msg("OpenTelemetry tracing is disabled")
			return
		}

		logger.Info().Str("endpoint", cfg.Endpoint).Str("protocol", string(cfg.Protocol)).Msg("initializing OpenTelemetry tracing")

		var exporter sdktrace.SpanExporter
		switch cfg.Protocol {
		case common.TracingProtocolGrpc:
			exporter, err = createGRPCExporter(ctx, cfg)
		case common.TracingProtocolHttp:
			exporter, err = createHTTPExporter(ctx, cfg)
		default:
			err = fmt.Errorf("unsupported tracing protocol: %s", cfg.Protocol)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to create span exporter")
			return
		}

		var res *resource.Resource
		res, err = resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(common.Version),
			attribute.String("commit.sha", common.CommitSha),
		))
		if err != nil {
			logger.Error().Err(err).Msg("failed to create resource")
			return
		}

		tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithSampler(createSampler(cfg.SampleRate)),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		if logger.GetLevel() <= zerolog.DebugLevel {
			otel.SetLogger(zerologr.New(logger))
		}
		otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
			logger.Trace().Err(err).Msg("open telemetry export error")
		}))

		tracer = tracerProvider.Tracer(instrumentationName)
		isEnabled = true
		logger.Info().Msg("OpenTelemetry tracing initialized successfully")
	})

	return err
}

func IsEnabled() bool {
	return isEnabled
}

func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// StartCaseSpan opens the span that wraps every attempt of one case.
func StartCaseSpan(ctx context.Context, name, provider, network string, operation common.Operation) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Conformance.Case", trace.WithAttributes(
		attribute.String("case.name", name),
		attribute.String("provider.id", provider),
		attribute.String("network.name", network),
		attribute.String("operation", string(operation)),
	))
}

// EndCaseSpan records the verdict on span and ends it.
func EndCaseSpan(span trace.Span, outcome string, attempts int, err error) {
	span.SetAttributes(
		attribute.String("case.outcome", outcome),
		attribute.Int("case.attempts", attempts),
	)
	SetSpanError(span, err)
	span.End()
}

func SetSpanError(span trace.Span, err error) {
	if span == nil || err == nil || !span.IsRecording() {
		return
	}
	if se, ok := err.(common.StandardError); ok {
		span.SetAttributes(attribute.String("error.code", se.CodeChain()))
		span.RecordError(err)
		span.SetStatus(codes.Error, string(se.GetCode()))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, common.ErrorSummary(err))
}

func createGRPCExporter(ctx context.Context, cfg *common.TracingConfig) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

func createHTTPExporter(ctx context.Context, cfg *common.TracingConfig) (*otlptrace.Exporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func createSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}
