package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/filecoin-project/go-jsonrpc/auth"
	"go.opencensus.io/trace"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// AuthHandler grants every permission to local callers and to callers
// presenting Token, anyone else is refused.
type AuthHandler struct {
	Token string
	Next  http.Handler
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "AuthHandler.ServeHTTP",
		func(so *trace.StartOptions) { so.Sampler = trace.AlwaysSample() })
	defer span.End()

	ip := h.getClientIP(r)
	ctx = types.CtxWithIP(ctx, ip)
	span.AddAttributes(trace.StringAttribute("X-Real-IP", ip), trace.StringAttribute("preHost", r.Host))

	token := r.Header.Get("Authorization")
	if token == "" {
		token = r.FormValue("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	if len(token) == 0 {
		// local call doesn't need a token
		if !isLoopback(r.RemoteAddr) {
			message := "token verification failed, empty token"
			span.SetStatus(trace.Status{Code: trace.StatusCodeUnauthenticated, Message: message})
			log.Warnf("%s (originating from %s)", message, r.RemoteAddr)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	} else {
		if !strings.HasPrefix(token, "Bearer ") {
			log.Warn("missing Bearer prefix in auth header")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")
		if h.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) != 1 {
			message := "token verification failed (originating from " + r.RemoteAddr + ")"
			span.SetStatus(trace.Status{Code: trace.StatusCodeUnauthenticated, Message: message})
			log.Warn(message)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	ctx = auth.WithPerm(ctx, AllPermissions)
	h.Next.ServeHTTP(w, r.WithContext(ctx))
}

func (h *AuthHandler) getClientIP(r *http.Request) string {
	realIP := r.Header.Get("X-Real-IP")
	if len(realIP) == 0 {
		return r.RemoteAddr
	}
	return realIP
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
