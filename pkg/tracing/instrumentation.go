package tracing

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Redis span attributes
const (
	RedisCommandKey = attribute.Key("redis.command")
	RedisKeyKey     = attribute.Key("redis.key")
)

// Pricing span attributes
const (
	TechnicianKey  = attribute.Key("visit.technician")
	VisitDateKey   = attribute.Key("visit.date")
	JobCountKey    = attribute.Key("visit.job_count")
	JobIDKey       = attribute.Key("visit.job_id")
	OriginKey      = attribute.Key("route.origin")
	DestinationKey = attribute.Key("route.destination")
	DistanceKey    = attribute.Key("route.distance_meters")
)

// TraceRedisCommand wraps a Redis command with tracing. redis.Nil is a miss, not an error.
func TraceRedisCommand(ctx context.Context, tracerName, command, key string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("redis.%s", command),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "redis"),
		RedisCommandKey.String(command),
		RedisKeyKey.String(key),
	)

	err := fn(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// TraceExternalAPI wraps external API calls with tracing
func TraceExternalAPI(ctx context.Context, tracerName, serviceName, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, tracerName, fmt.Sprintf("%s.%s", serviceName, operation),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	span.SetAttributes(
		attribute.String("external.service", serviceName),
		attribute.String("external.operation", operation),
	)

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// DayPlanAttributes describes a technician's day for a span
func DayPlanAttributes(technician, date string, jobs int) []attribute.KeyValue {
	return []attribute.KeyValue{
		TechnicianKey.String(technician),
		VisitDateKey.String(date),
		JobCountKey.Int(jobs),
	}
}

// RouteAttributes describes a single distance query
func RouteAttributes(origin, destination string) []attribute.KeyValue {
	return []attribute.KeyValue{
		OriginKey.String(origin),
		DestinationKey.String(destination),
	}
}
