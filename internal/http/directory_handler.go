package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"pmd-directory/internal/filter"
	"pmd-directory/internal/models"
	"pmd-directory/internal/pipeline"
	"pmd-directory/internal/repository"
	"pmd-directory/internal/service"
	"pmd-directory/internal/sheet"
	"pmd-directory/internal/taxonomy"

	"go.uber.org/zap"
)

// DirectoryAPI is the service surface the handlers need.
type DirectoryAPI interface {
	Search(ctx context.Context, viewerKGID string, sel filter.Selection) (pipeline.Result, error)
	ReconcileFilters(sel filter.Selection, dim filter.Dimension, value string) (filter.Selection, filter.Options)
	ExportContacts(ctx context.Context, viewerKGID string, sel filter.Selection) ([]byte, error)
	Taxonomy() *taxonomy.Taxonomy
	RefreshTaxonomy(ctx context.Context) error
	IsAdmin(kgid string) bool

	CreateSession(viewerKGID string) *pipeline.Session
	Session(id string) (*pipeline.Session, error)
	CloseSession(id string) error

	CreateEmployee(ctx context.Context, actorKGID string, e models.Employee) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, actorKGID string, e models.Employee) (*models.Employee, error)
	ApproveEmployee(ctx context.Context, actorKGID, kgid string, approved bool) error
	DeleteEmployee(ctx context.Context, actorKGID, kgid string) error
	UpsertOfficer(ctx context.Context, actorKGID string, o models.Officer) (*models.Officer, error)
	ImportOfficers(ctx context.Context, actorKGID string, r io.Reader) (*sheet.OfficerImport, error)
}

// DirectoryHandler 通讯录 HTTP Handler
type DirectoryHandler struct {
	svc    DirectoryAPI
	logger *zap.Logger
}

func NewDirectoryHandler(svc DirectoryAPI, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{svc: svc, logger: logger}
}

// writeError 按错误类型映射 HTTP 状态码
func (h *DirectoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, Fail(err.Error()))
}
