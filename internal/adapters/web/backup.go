package web

import (
	"fmt"
	"net/http"
	"time"

	"ledgerbook/internal/core"
)

func (h *Handler) downloadBackup(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Backup.Export(r.Context())
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "backup_"+time.Now().Format("2006-01-02_150405")+".json"))
	writeJSON(w, snapshot)
}

func (h *Handler) restoreBackup(w http.ResponseWriter, r *http.Request) {
	var snapshot core.Snapshot
	if !decodeJSON(w, r, &snapshot) {
		return
	}
	if err := h.svc.Backup.Import(r.Context(), snapshot); err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, struct {
		Restored bool `json:"restored"`
	}{true})
}
