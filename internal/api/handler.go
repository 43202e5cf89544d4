package api

import (
	"net/http"

	"github.com/KasumiMercury/gauchoride-api/internal/reqlog"
	"github.com/KasumiMercury/gauchoride-api/internal/sysinfo"
)

var getSystemInfo = reqlog.Handler{Type: "api.SystemInfoHandler", Func: "GetSystemInfo"}

// SystemInfoHandler serves the deployment metadata shown in the UI footer.
type SystemInfoHandler struct {
	provider *sysinfo.Provider
}

func NewSystemInfoHandler(provider *sysinfo.Provider) *SystemInfoHandler {
	return &SystemInfoHandler{provider: provider}
}

func (h *SystemInfoHandler) GetSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Get(r.Context()))
}
