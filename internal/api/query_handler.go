package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mirrorcat/gameversions/internal/common"
	"github.com/mirrorcat/gameversions/internal/mirror"
)

// handleQuery runs the request body as SQL against the mirrored catalog.
// The endpoint is deliberately generic: the caller supplies full SQL text
// and the read-only connection permission is the only restriction.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
		return
	}
	query := string(body)
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, errors.New("empty query"))
		return
	}

	rows, err := s.mirror.RunQuery(r.Context(), query)
	if err != nil {
		var queryErr *mirror.QueryError
		if errors.As(err, &queryErr) {
			writeError(w, http.StatusBadRequest, queryErr)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Debug("api: query served", "rows", len(rows))
	writeJSON(w, http.StatusOK, rows)
}
