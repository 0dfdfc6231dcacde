package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tawteen-backend/internal/database"
	"tawteen-backend/internal/models"
)

// ActivityHandler serves the admin audit trail.
type ActivityHandler struct {
	db database.Service
}

func NewActivityHandler(db database.Service) *ActivityHandler {
	return &ActivityHandler{db: db}
}

// List returns recent audit-trail entries, newest first.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := clampQueryInt(r, "limit", 50, 1, 200)

	rows, err := h.db.GetPool().Query(ctx, `
		SELECT a.id, a.user_id::text, u.name, a.action, a.entity_type,
		       a.entity_id, a.details, a.created_at::text
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		log.Printf("Failed to list activity: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch activity log")
		return
	}
	defer rows.Close()

	entries := []models.ActivityEntry{}
	for rows.Next() {
		var e models.ActivityEntry
		var details []byte
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.UserName, &e.Action, &e.EntityType,
			&e.EntityID, &details, &e.CreatedAt,
		); err != nil {
			log.Printf("Failed to scan activity entry: %v", err)
			continue
		}
		if len(details) > 0 {
			var parsed any
			if json.Unmarshal(details, &parsed) == nil {
				e.Details = parsed
			}
		}
		entries = append(entries, e)
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}
