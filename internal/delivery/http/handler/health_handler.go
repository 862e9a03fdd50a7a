package handler

import (
	"context"
	"net/http"
	"time"

	"panda-service/pkg/response"

	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check reports whether the database is reachable.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}

	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
