package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	authmw "github.com/TrainerKiri/CorrigeProvas/internal/auth/middleware"
	"github.com/TrainerKiri/CorrigeProvas/internal/exam"
	"github.com/TrainerKiri/CorrigeProvas/internal/rbac"
)

// GET /exams?q=&limit=&offset=
func ListExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := exam.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		// admins see everything, teachers only their own partition
		if rbac.RoleFromContext(r.Context()) != "admin" {
			opts.OwnerID = authmw.SubjectFromContext(r.Context())
		}
		list, err := store.ListExams(r.Context(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
