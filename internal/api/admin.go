package api

import (
	"net/http"

	"github.com/ohulko/matkarnia/internal/analytics"
	"github.com/ohulko/matkarnia/internal/clock"
	"github.com/ohulko/matkarnia/internal/kv"
	"github.com/ohulko/matkarnia/internal/model"
	"github.com/ohulko/matkarnia/internal/queue"
	"github.com/ohulko/matkarnia/internal/store"
)

// AdminHandler handles backup, audit, job queue, and user administration.
type AdminHandler struct {
	KVS    *kv.Store
	Clk    clock.Clock
	Worker *queue.Worker
}

// Backup handles GET /api/admin/backup: a full snapshot of the store.
func (h *AdminHandler) Backup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.KVS.Export(r.Context(), store.KeyPrefix, h.Clk.Now())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

// Restore handles POST /api/admin/restore: replays a snapshot over the store.
func (h *AdminHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var snap kv.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid snapshot")
		return
	}

	if err := h.KVS.Import(r.Context(), &snap); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to import backup")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"status": "restored",
		"keys":   len(snap.Data),
	})
}

// Audit handles GET /api/admin/audit: the audit trail, newest first.
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := store.ListAudit(r.Context(), h.KVS)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Jobs handles GET /api/admin/jobs?status=.
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs(r.Context(), h.KVS, r.URL.Query().Get("status"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []model.Job{}
	}
	jsonResponse(w, http.StatusOK, jobs)
}

// RedriveJob handles POST /api/admin/jobs/{id}/redrive: a failed job goes
// back to pending.
func (h *AdminHandler) RedriveJob(w http.ResponseWriter, r *http.Request) {
	if err := store.RedriveJob(r.Context(), h.KVS, h.Clk, r.PathValue("id")); err != nil {
		storeError(w, err, "failed to redrive job")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "pending"})
}

// DrainJobs handles POST /api/admin/jobs/drain: runs pending jobs now instead
// of waiting for the worker tick.
func (h *AdminHandler) DrainJobs(w http.ResponseWriter, r *http.Request) {
	n, err := h.Worker.DrainOnce(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to drain jobs")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"processed": n})
}

// Notifications handles GET /api/admin/notifications?channel=.
func (h *AdminHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	ns, err := store.ListNotifications(r.Context(), h.KVS, r.URL.Query().Get("channel"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if ns == nil {
		ns = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, ns)
}

// Users handles GET /api/admin/users. Password hashes are stripped.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.KVS)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	jsonResponse(w, http.StatusOK, out)
}

// Analytics handles GET /api/admin/analytics: the sales summary.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := analytics.Sales(r.Context(), h.KVS)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}
