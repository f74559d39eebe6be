package server

import (
	"net/http"

	"quill/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.Info(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := api.InfoResponse{
		DBPath:        s.opts.DBPath,
		SchemaVersion: info.SchemaVersion,
		Alive:         make(map[string]int, len(info.Alive)),
		Deleted:       make(map[string]int, len(info.Deleted)),
		Users:         info.Users,
		Media:         info.Media,
	}
	for entity, count := range info.Alive {
		resp.Alive[string(entity)] = count
	}
	for entity, count := range info.Deleted {
		resp.Deleted[string(entity)] = count
	}

	s.writeJSON(w, http.StatusOK, resp)
}
