package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bookline-io/bookline/internal/models"
)

type scheduleBody struct {
	AddedBy   string    `json:"added_by"`
	AddedFor  string    `json:"added_for"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Detail    string    `json:"detail"`
}

func (api *Api) AddScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var body scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.AddedBy == "" {
		if userID, ok := UserIDFromContext(r.Context()); ok {
			body.AddedBy = userID
		}
	}
	if body.AddedFor == "" || body.Detail == "" {
		http.Error(w, "added_for and detail are required", http.StatusBadRequest)
		return
	}

	created, err := api.Schedules.AddSchedule(&models.Schedule{
		AddedBy:   body.AddedBy,
		AddedFor:  body.AddedFor,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Detail:    body.Detail,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

func (api *Api) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		if id, ok := UserIDFromContext(r.Context()); ok {
			userID = id
		}
	}
	if userID == "" {
		http.Error(w, "user_id query parameter required", http.StatusBadRequest)
		return
	}

	schedules, err := api.Schedules.GetSchedule(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if schedules == nil {
		schedules = []models.Schedule{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schedule": schedules})
}

func (api *Api) AddUpdateDeviceTokenHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string `json:"user_id"`
		DeviceToken string `json:"device_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if body.UserID == "" {
		if userID, ok := UserIDFromContext(r.Context()); ok {
			body.UserID = userID
		}
	}

	user, err := api.Schedules.AddUpdateDeviceToken(body.UserID, body.DeviceToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
