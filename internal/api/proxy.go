package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/KasumiMercury/gauchoride-api/internal/reqlog"
)

// FrontendProxyType is the declaring type of the frontend proxy route. It is
// on the default request log stoplist.
const FrontendProxyType = "api.FrontendProxyHandler"

var proxyFrontend = reqlog.Handler{Type: FrontendProxyType, Func: "Proxy"}

// FrontendProxyHandler forwards page and asset requests to the frontend
// dev server.
type FrontendProxyHandler struct {
	proxy *httputil.ReverseProxy
}

// NewFrontendProxyHandler proxies to target. An empty target disables the
// proxy and every request is answered with 404.
func NewFrontendProxyHandler(target string) (*FrontendProxyHandler, error) {
	if target == "" {
		return &FrontendProxyHandler{}, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse frontend proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("frontend proxy url %q must be absolute", target)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.WarnContext(r.Context(), "frontend proxy failed",
			slog.String("event", "frontend.proxy.fail"),
			slog.String("target", u.String()),
			slog.String("error", err.Error()),
		)
		WriteError(w, http.StatusBadGateway, StatusUnavailable, "frontend is not reachable")
	}

	return &FrontendProxyHandler{proxy: proxy}, nil
}

func (h *FrontendProxyHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		WriteError(w, http.StatusNotFound, StatusNotFound, fmt.Sprintf("no handler for %s %s", r.Method, r.URL.Path))
		return
	}

	if h.proxy == nil {
		WriteError(w, http.StatusNotFound, StatusNotFound, "frontend is not served by this instance")
		return
	}

	h.proxy.ServeHTTP(w, r)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
