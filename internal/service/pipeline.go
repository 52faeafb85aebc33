package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/forgo/huddle/api/internal/model"
)

var tracer = otel.Tracer("github.com/forgo/huddle/api/internal/service")

// Send runs req through validation and then exactly one use case. A request
// that fails validation never reaches fn and yields a *model.ValidationError.
func Send[Req model.Validatable, T any](ctx context.Context, name string, req Req, fn func(context.Context, Req) (model.Result[T], error)) (model.Result[T], error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	if errs := req.Validate(); len(errs) > 0 {
		span.SetStatus(codes.Error, "validation failed")
		slog.DebugContext(ctx, "request rejected", "use_case", name, "errors", len(errs))
		return model.Result[T]{}, &model.ValidationError{Errors: errs}
	}

	start := time.Now()
	res, err := fn(ctx, req)
	elapsed := time.Since(start)

	outcome := outcomeOf(res, err)
	span.SetAttributes(attribute.String("huddle.outcome", outcome))

	var validation *model.ValidationError
	switch {
	case err != nil && !errors.As(err, &validation):
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "use case failed",
			"use_case", name,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
	case elapsed > 500*time.Millisecond:
		slog.WarnContext(ctx, "slow use case",
			"use_case", name,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
		)
	default:
		slog.DebugContext(ctx, "use case handled",
			"use_case", name,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	return res, err
}

func outcomeOf[T any](res model.Result[T], err error) string {
	switch {
	case err != nil:
		return "error"
	case !res.IsSuccess():
		return "failure"
	case !res.Found():
		return "not_found"
	default:
		return "success"
	}
}
