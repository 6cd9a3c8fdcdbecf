package httpapi

import (
	"net/http"

	"pmd-directory/internal/filter"

	"go.uber.org/zap"
)

// SearchContacts GET /directory/api/v1/contacts
func (h *DirectoryHandler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r.URL.Query())
	res, err := h.svc.Search(r.Context(), viewerFromReq(r), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"state":      res.State,
		"generation": res.Generation,
		"selection":  res.Selection,
		"options":    res.Options,
		"items":      res.Contacts,
		"total":      len(res.Contacts),
		"empty":      res.Empty(),
	}))
}

// ExportContacts GET /directory/api/v1/contacts/export
func (h *DirectoryHandler) ExportContacts(w http.ResponseWriter, r *http.Request) {
	sel := selectionFromQuery(r.URL.Query())
	data, err := h.svc.ExportContacts(r.Context(), viewerFromReq(r), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeXLSX(w, "contacts-export.xlsx", data)
}

type reconcileRequest struct {
	Selection filter.Selection `json:"selection"`
	Dimension string           `json:"dimension"`
	Value     string           `json:"value"`
}

// Filters 级联筛选
//   - GET  返回 query 中 selection 的有效选项
//   - POST 修改一个维度后重新校验
func (h *DirectoryHandler) Filters(w http.ResponseWriter, r *http.Request) {
	var (
		sel   filter.Selection
		dim   filter.Dimension
		value string
	)
	switch r.Method {
	case http.MethodGet:
		sel = selectionFromQuery(r.URL.Query())
	case http.MethodPost:
		req := reconcileRequest{Selection: filter.Default()}
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		sel, dim, value = req.Selection, filter.ParseDimension(req.Dimension), req.Value
		if req.Dimension != "" && dim == filter.DimensionNone {
			writeJSON(w, http.StatusBadRequest, Fail("unknown dimension: "+req.Dimension))
			return
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sel, opts := h.svc.ReconcileFilters(sel, dim, value)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"selection": sel,
		"options":   opts,
	}))
}

// Taxonomy GET /directory/api/v1/taxonomy
func (h *DirectoryHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.svc.Taxonomy()))
}

// RefreshTaxonomy POST /directory/api/v1/taxonomy/refresh（仅管理员）
func (h *DirectoryHandler) RefreshTaxonomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.svc.IsAdmin(viewerFromReq(r)) {
		writeJSON(w, http.StatusForbidden, Fail("forbidden"))
		return
	}
	if err := h.svc.RefreshTaxonomy(r.Context()); err != nil {
		h.logger.Warn("Manual taxonomy refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"version": h.svc.Taxonomy().Version}))
}
