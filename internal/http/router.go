package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes 健康检查
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

// RegisterDirectoryRoutes 注册通讯录路由
func (r *Router) RegisterDirectoryRoutes(h *DirectoryHandler) {
	// search
	r.Handle("/directory/api/v1/contacts", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.SearchContacts(w, req)
	})
	r.Handle("/directory/api/v1/contacts/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ExportContacts(w, req)
	})

	// filters + taxonomy
	r.Handle("/directory/api/v1/filters", h.Filters)
	r.Handle("/directory/api/v1/taxonomy", h.Taxonomy)
	r.Handle("/directory/api/v1/taxonomy/refresh", h.RefreshTaxonomy)

	// sessions
	r.Handle("/directory/api/v1/sessions", h.CreateSession)
	r.Handle(sessionsPrefix, h.SessionRoutes)

	// writes
	r.Handle("/directory/api/v1/employees", h.CreateEmployee)
	r.Handle(employeesPrefix, h.EmployeeRoutes)
	r.Handle("/directory/api/v1/officers/import", h.ImportOfficers)
	r.Handle("/directory/api/v1/officers/template", h.OfficerTemplate)
	r.Handle(officersPrefix, h.OfficerRoutes)
}
