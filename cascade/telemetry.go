package cascade

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/anatolykoptev/go-cascade/cascade")
var meter = otel.Meter("github.com/anatolykoptev/go-cascade/cascade")

var (
	// retweetFetches counts RetweetSource calls made while building cascades.
	retweetFetches metric.Int64Counter
	// followQueries counts FollowOracle calls made during inference.
	followQueries metric.Int64Counter
	// inferenceDuration measures a whole Infer call, rate-limit waits included.
	inferenceDuration metric.Float64Histogram
)

func init() {
	var err error
	retweetFetches, err = meter.Int64Counter(
		"cascade.retweet_fetches",
		metric.WithDescription("The number of retweet listings fetched while expanding cascades."),
	)
	if err != nil {
		panic("cascade: failed to init 'cascade.retweet_fetches' instrument")
	}

	followQueries, err = meter.Int64Counter(
		"cascade.follow_queries",
		metric.WithDescription("The number of follow-relationship checks issued during edge inference."),
	)
	if err != nil {
		panic("cascade: failed to init 'cascade.follow_queries' instrument")
	}

	inferenceDuration, err = meter.Float64Histogram(
		"cascade.inference.duration",
		metric.WithDescription("The duration of a single edge inference, including rate-limit waits."),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic("cascade: failed to init 'cascade.inference.duration' instrument")
	}
}

// measureInference records the inference duration labeled with its outcome.
func measureInference(ctx context.Context, succeeded bool, d time.Duration) {
	attrs := attribute.NewSet(attribute.Bool("succeeded", succeeded))
	inferenceDuration.Record(ctx, d.Seconds(), metric.WithAttributeSet(attrs))
}

// failSpan marks span as failed with err and returns err.
func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
