package restyutil

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumentCtx struct {
	output    InstrumentOutput
	tracer    trace.Tracer
	duration  metric.Float64Histogram
	idcounter *uint64
}

type requestInfoKeyType int

var requestInfoKey requestInfoKeyType

type requestInfo struct {
	id    string
	start time.Time
}

// InstrumentClient traces and logs every request made by client.
// `tracer` can be nil, it will default to a library name of "resty".
// `output` can also be nil, if it is, exchanges are not dumped.
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}

	// the global meter provider is a no-op unless telemetry is configured
	duration, err := otel.Meter("searchprobe/restyutil").Float64Histogram(
		"http.client.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of outgoing HTTP requests."),
	)
	if err != nil {
		slog.Warn("failed to create request duration histogram", "err", err)
	}

	var idcounter uint64
	i := instrumentCtx{output: output, tracer: tracer, duration: duration, idcounter: &idcounter}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

func (i instrumentCtx) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), req.Method)

	info := requestInfo{
		id:    strconv.FormatUint(atomic.AddUint64(i.idcounter, 1), 10),
		start: time.Now(),
	}
	slog.DebugContext(
		ctx, "start request",
		"method", req.Method,
		"url", RedactURL(req.URL),
		"message_id", info.id,
	)
	ctx = context.WithValue(ctx, requestInfoKey, info)

	req.SetContext(ctx)
	return nil
}

func (i instrumentCtx) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// setting request attributes here since res.Request.RawRequest is nil in onBeforeRequest
	span.SetName(fmt.Sprintf("http %s", res.Request.Method))
	if res.RawResponse != nil {
		span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	}
	if res.Request.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
		// overrides the unredacted url httpconv records
		span.SetAttributes(attribute.String("http.url", RedactURL(res.Request.RawRequest.URL.String())))
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	info, _ := ctx.Value(requestInfoKey).(requestInfo)
	if i.duration != nil {
		i.duration.Record(ctx, time.Since(info.start).Seconds(), metric.WithAttributes(
			attribute.String("http.method", res.Request.Method),
			attribute.Int("http.status_code", res.StatusCode()),
		))
	}
	if i.output != nil {
		i.output.Write(info.id, formatHttpMessage(res))
	}
	slog.DebugContext(
		ctx, "request finished",
		"method", res.Request.Method,
		"url", RedactURL(res.Request.URL),
		"status", res.StatusCode(),
		"duration", time.Since(info.start).String(),
		"message_id", info.id,
	)

	return nil
}

func (i instrumentCtx) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")
	span.SetName(fmt.Sprintf("http %s", req.Method))

	info, _ := ctx.Value(requestInfoKey).(requestInfo)
	slog.ErrorContext(
		ctx, "request failed",
		"method", req.Method,
		"url", RedactURL(req.URL),
		"err", err,
		"message_id", info.id,
	)

	if req.RawRequest == nil {
		return
	}
	span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
}
