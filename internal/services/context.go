package services

import "context"

type contextKey int

const (
	entryIDKey contextKey = iota
	sessionIDKey
	artTypeKey
	requestIDKey
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}

// WithEntryID tags ctx with the queue entry under review.
func WithEntryID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, entryIDKey, id)
}

func EntryIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(entryIDKey).(int64)
	return id, ok
}

// WithSessionID tags ctx with the review session. Empty IDs are ignored.
func WithSessionID(ctx context.Context, id string) context.Context {
	return withString(ctx, sessionIDKey, id)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, sessionIDKey)
}

// WithArtType tags ctx with the art slot under review.
func WithArtType(ctx context.Context, artType string) context.Context {
	return withString(ctx, artTypeKey, artType)
}

func ArtTypeFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, artTypeKey)
}

// WithRequestID tags ctx with a correlation ID for one candidate fetch.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}
