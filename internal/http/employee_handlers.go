package httpapi

import (
	"net/http"
	"strings"

	"pmd-directory/internal/models"
	"pmd-directory/internal/sheet"

	"go.uber.org/zap"
)

const (
	employeesPrefix = "/directory/api/v1/employees/"
	officersPrefix  = "/directory/api/v1/officers/"
)

// CreateEmployee POST /directory/api/v1/employees
// 管理员添加直接通过审批；注册（非管理员）需等待审批
func (h *DirectoryHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var e models.Employee
	if err := readBodyJSON(r, maxBodyBytes, &e); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	created, err := h.svc.CreateEmployee(r.Context(), viewerFromReq(r), e)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(created))
}

// EmployeeRoutes 处理 /employees/{kgid} 及 /employees/{kgid}/approve
func (h *DirectoryHandler) EmployeeRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, employeesPrefix)
	kgid, action, _ := strings.Cut(rest, "/")
	if kgid == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	actor := viewerFromReq(r)

	switch {
	case action == "" && r.Method == http.MethodPut:
		var e models.Employee
		if err := readBodyJSON(r, maxBodyBytes, &e); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		e.KGID = kgid
		updated, err := h.svc.UpdateEmployee(r.Context(), actor, e)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(updated))

	case action == "" && r.Method == http.MethodDelete:
		if err := h.svc.DeleteEmployee(r.Context(), actor, kgid); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"kgid": kgid, "deleted": true}))

	case action == "approve" && r.Method == http.MethodPost:
		req := struct {
			Approved *bool `json:"approved"`
		}{}
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		approved := true
		if req.Approved != nil {
			approved = *req.Approved
		}
		if err := h.svc.ApproveEmployee(r.Context(), actor, kgid, approved); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"kgid": kgid, "approved": approved}))

	case action == "" || action == "approve":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// OfficerRoutes PUT /directory/api/v1/officers/{agid}（仅管理员）
func (h *DirectoryHandler) OfficerRoutes(w http.ResponseWriter, r *http.Request) {
	agid := strings.TrimPrefix(r.URL.Path, officersPrefix)
	if agid == "" || strings.Contains(agid, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var o models.Officer
	if err := readBodyJSON(r, maxBodyBytes, &o); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	o.AGID = agid
	saved, err := h.svc.UpsertOfficer(r.Context(), viewerFromReq(r), o)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(saved))
}

// ImportOfficers POST /directory/api/v1/officers/import（multipart, 字段 file）
func (h *DirectoryHandler) ImportOfficers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to parse form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file not found in request"))
		return
	}
	defer file.Close()

	imported, err := h.svc.ImportOfficers(r.Context(), viewerFromReq(r), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"imported": len(imported.Officers),
		"skipped":  imported.Skipped,
	}))
}

// OfficerTemplate GET /directory/api/v1/officers/template
func (h *DirectoryHandler) OfficerTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, err := sheet.OfficerTemplate()
	if err != nil {
		h.logger.Error("OfficerTemplate failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate template"))
		return
	}
	writeXLSX(w, "officer-import-template.xlsx", data)
}
