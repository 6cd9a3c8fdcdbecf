package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pmd-directory/internal/filter"
	"pmd-directory/internal/models"
	"pmd-directory/internal/pipeline"
)

const (
	sessionsPrefix     = "/directory/api/v1/sessions/"
	defaultPollTimeout = 25 * time.Second
	maxPollTimeout     = 60 * time.Second
)

type sessionView struct {
	SessionID string          `json:"sessionId"`
	Phase     pipeline.Phase  `json:"phase"`
	RawQuery  string          `json:"rawQuery"`
	Result    pipeline.Result `json:"result"`
}

func viewOf(s *pipeline.Session, res pipeline.Result) sessionView {
	return sessionView{
		SessionID: s.ID(),
		Phase:     s.Phase(),
		RawQuery:  s.RawQuery(),
		Result:    res,
	}
}

// CreateSession POST /directory/api/v1/sessions
func (h *DirectoryHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s := h.svc.CreateSession(viewerFromReq(r))
	res, _ := s.Current()
	writeJSON(w, http.StatusOK, Ok(viewOf(s, res)))
}

// SessionRoutes 处理 /sessions/{id} 及其子路径
//   - GET    /sessions/{id}?since=N&timeout=ms  长轮询
//   - DELETE /sessions/{id}
//   - POST   /sessions/{id}/input   {"query": "..."}
//   - POST   /sessions/{id}/select  {"dimension": "unit", "value": "CID"}
//   - POST   /sessions/{id}/reset
func (h *DirectoryHandler) SessionRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, sessionsPrefix)
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.pollSession(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		if err := h.svc.CloseSession(id); err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"sessionId": id, "closed": true}))
	case action == "input" && r.Method == http.MethodPost:
		h.sessionInput(w, r, id)
	case action == "select" && r.Method == http.MethodPost:
		h.sessionSelect(w, r, id)
	case action == "reset" && r.Method == http.MethodPost:
		h.withSession(w, r, id, func(s *pipeline.Session) { s.ResetFilters() })
	case action == "" || action == "input" || action == "select" || action == "reset":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *DirectoryHandler) pollSession(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.svc.Session(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	sinceRaw := q.Get("since")
	if sinceRaw == "" {
		res, _ := s.Current()
		writeJSON(w, http.StatusOK, Ok(viewOf(s, res)))
		return
	}
	since, err := strconv.ParseUint(sinceRaw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid since"))
		return
	}

	timeout := time.Duration(parseInt(q.Get("timeout"), int(defaultPollTimeout/time.Millisecond))) * time.Millisecond
	if timeout <= 0 || timeout > maxPollTimeout {
		timeout = maxPollTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	// 超时返回当前结果，由客户端继续轮询
	res, err := s.Wait(ctx, since)
	if errors.Is(err, pipeline.ErrClosed) {
		writeJSON(w, http.StatusGone, Fail("session closed"))
		return
	}
	s.Touch()
	writeJSON(w, http.StatusOK, Ok(viewOf(s, res)))
}

type inputRequest struct {
	Query string `json:"query"`
	// Immediate 跳过防抖（回车提交）
	Immediate bool `json:"immediate"`
}

func (h *DirectoryHandler) sessionInput(w http.ResponseWriter, r *http.Request, id string) {
	var req inputRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	h.withSession(w, r, id, func(s *pipeline.Session) {
		if req.Immediate {
			s.SetQuery(req.Query)
			return
		}
		s.Input(req.Query)
	})
}

type selectRequest struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

func (h *DirectoryHandler) sessionSelect(w http.ResponseWriter, r *http.Request, id string) {
	var req selectRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	dim := filter.ParseDimension(req.Dimension)
	if dim == filter.DimensionNone {
		writeJSON(w, http.StatusBadRequest, Fail("unknown dimension: "+req.Dimension))
		return
	}
	h.withSession(w, r, id, func(s *pipeline.Session) {
		if dim == filter.DimensionKind {
			s.SetFilterKind(models.ParseFilterKind(req.Value))
			return
		}
		s.Select(dim, req.Value)
	})
}

// withSession 执行修改；结果异步发布，客户端以 since 长轮询获取
func (h *DirectoryHandler) withSession(w http.ResponseWriter, r *http.Request, id string, fn func(*pipeline.Session)) {
	s, err := h.svc.Session(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	before, _ := s.Current()
	fn(s)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"sessionId": s.ID(),
		"phase":     s.Phase(),
		"rawQuery":  s.RawQuery(),
		"selection": s.Selection(),
		"since":     before.Generation,
	}))
}
