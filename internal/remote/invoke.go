package remote

import (
	"context"
	"fmt"

	"zheliyou/internal/utils"
)

// Operation is one remote call: an auth request, a table read or write, or
// a realtime subscribe.
type Operation[T any] func(ctx context.Context) (T, error)

// Invoke runs op once and folds its outcome into a Result. Failures are
// logged under module/action; nothing is returned as an error or re-panicked.
func Invoke[T any](ctx context.Context, module, action string, op Operation[T]) (res Result[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if rec := recover(); rec != nil {
			msg := panicMessage(rec)
			logFailure(ctx, module, action, KindTransport, msg)
			res = Failure[T](msg)
		}
	}()

	if op == nil {
		logFailure(ctx, module, action, KindTransport, "no operation")
		return Failure[T]("no operation")
	}

	value, err := op(ctx)
	if err != nil {
		kind, msg := Classify(err)
		logFailure(ctx, module, action, kind, msg)
		return Failure[T](msg)
	}
	return Success(value)
}

// Exec is Invoke for operations that produce no payload.
func Exec(ctx context.Context, module, action string, op func(ctx context.Context) error) Result[struct{}] {
	return Invoke(ctx, module, action, func(ctx context.Context) (struct{}, error) {
		if op == nil {
			return struct{}{}, fmt.Errorf("no operation")
		}
		return struct{}{}, op(ctx)
	})
}

func logFailure(ctx context.Context, module, action string, kind Kind, msg string) {
	utils.LogEventCtx(ctx, module, action, fmt.Sprintf("failed kind=%s error=%q", kind, msg))
}

func panicMessage(rec any) string {
	switch v := rec.(type) {
	case error:
		return messageOr(v.Error())
	case string:
		return messageOr(v)
	default:
		return messageOr(fmt.Sprint(v))
	}
}
