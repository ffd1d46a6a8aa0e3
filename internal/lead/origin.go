package lead

import "context"

// Origin describes the browser that submitted a lead.
type Origin struct {
	ClientIP  string
	UserAgent string
}

type originKey struct{}

// WithOrigin attaches the submitter's origin to ctx for channels that relay
// it downstream.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey{}, o)
}

// OriginFrom returns the origin stored by WithOrigin.
func OriginFrom(ctx context.Context) (Origin, bool) {
	o, ok := ctx.Value(originKey{}).(Origin)
	return o, ok
}
