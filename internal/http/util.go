package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"pmd-directory/internal/filter"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
	xlsxMime       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxMime)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// viewerFromReq 当前查看者 kgid（由网关写入 X-User-Id）
func viewerFromReq(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}

// selectionFromQuery 未提供的维度保持默认值（All）
func selectionFromQuery(q url.Values) filter.Selection {
	sel := filter.Default()
	for _, dim := range []filter.Dimension{
		filter.DimensionUnit,
		filter.DimensionDistrict,
		filter.DimensionStation,
		filter.DimensionRank,
		filter.DimensionQuery,
		filter.DimensionKind,
	} {
		if v, ok := q[string(dim)]; ok && len(v) > 0 {
			sel = sel.With(dim, v[0])
		}
	}
	return sel
}
