package apm

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/p2p-arbitrage/internal/apperror"
)

type Span interface {
	SetAttributes(values ...attribute.KeyValue)
	AddEvent(name string, options ...trace.EventOption)
	End(options ...trace.SpanEndOption)
	// NoticeError records err, marks the span failed and tags it with the
	// application error code and upstream details when present.
	NoticeError(err error)
	SpanContext() trace.SpanContext
	IsRecording() bool
}

type traceSpan struct {
	span trace.Span
}

func NewSpan(span trace.Span) Span {
	return &traceSpan{span}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) AddEvent(name string, options ...trace.EventOption) {
	t.span.AddEvent(name, options...)
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}

func (t *traceSpan) NoticeError(err error) {
	if err == nil {
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		t.span.SetAttributes(attribute.String("error.code", string(appErr.Code)))
		if appErr.HasUpstream() {
			t.span.SetAttributes(
				attribute.String("error.upstream_code", appErr.UpstreamCode),
				attribute.String("error.upstream_message", appErr.UpstreamMessage),
			)
		}
	}

	t.span.RecordError(err)
	t.span.SetStatus(codes.Error, err.Error())
}

func (t *traceSpan) SpanContext() trace.SpanContext {
	return t.span.SpanContext()
}

func (t *traceSpan) IsRecording() bool {
	return t.span.IsRecording()
}
