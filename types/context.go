package types

import "context"

type ctxKey int

const ipKey ctxKey = iota

// CtxWithIP records the address of the caller of an rpc request.
func CtxWithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey, ip)
}

func CtxGetIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ipKey).(string)
	return ip, ok
}
