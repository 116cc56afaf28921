package aftercare

import "context"

type ctxKey string

const (
	actorKey     ctxKey = "actor"
	requestIDKey ctxKey = "request_id"
)

// SystemActor — кем подписываются записи, если пользователь в контексте не найден.
const SystemActor = "system"

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom возвращает пользователя, от имени которого идёт запрос.
func ActorFrom(ctx context.Context) string {
	if ctx == nil {
		return SystemActor
	}
	if a, ok := ctx.Value(actorKey).(string); ok && a != "" {
		return a
	}
	return SystemActor
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
