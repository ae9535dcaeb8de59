package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the authenticated caller attached by the auth middleware.
type RequestData struct {
	TokenString string
	UserID      uint
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// ActorID returns the authenticated user id, or 0 when the request is anonymous.
func ActorID(ctx context.Context) uint {
	if ctx == nil {
		return 0
	}
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return 0
}
