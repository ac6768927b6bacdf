package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
)

// Hearing exported for testing purposes
type Hearing struct {
	DB      databases.HearingDatabase
	Service *services.HearingService
}

type createHearingRequest struct {
	HearingDate time.Time `json:"hearingDate"`
	JudgeID     string    `json:"judgeId"`
	CourtRoom   string    `json:"courtRoom,omitempty"`
	Purpose     string    `json:"purpose"`
	Notes       string    `json:"notes,omitempty"`
}

// CreateHearingHandler schedules a hearing against a case
func (h Hearing) CreateHearingHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req createHearingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	hearing, err := h.Service.Create(ctx, models.HearingDetails{
		CaseID:      caseID,
		HearingDate: primitive.NewDateTimeFromTime(req.HearingDate),
		JudgeID:     req.JudgeID,
		CourtRoom:   req.CourtRoom,
		Purpose:     req.Purpose,
		Notes:       req.Notes,
	})
	if err != nil {
		serviceErrorStatus("failed to create hearing", w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(hearing)
}

// HearingByIDHandler returns a hearing by ID
func (h Hearing) HearingByIDHandler(w http.ResponseWriter, r *http.Request) {
	hearingID := mux.Vars(r)["hearing_id"]

	bID, err := primitive.ObjectIDFromHex(hearingID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find hearing", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// HearingsByCaseHandler returns all hearings for a case sorted by date
func (h Hearing) HearingsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := h.DB.Find(ctx, bson.M{"hearing.caseID": caseID},
		options.Find().SetSort(bson.M{"hearing.hearingDate": 1}))
	if err != nil {
		config.ErrorStatus("failed to find hearings", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Hearing{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

type updateHearingStatusRequest struct {
	Status            string     `json:"status"`
	Notes             *string    `json:"notes,omitempty"`
	NextHearingDate   *time.Time `json:"nextHearingDate,omitempty"`
	AdjournmentReason *string    `json:"adjournmentReason,omitempty"`
}

// UpdateHearingStatusHandler updates a hearing's outcome fields
func (h Hearing) UpdateHearingStatusHandler(w http.ResponseWriter, r *http.Request) {
	hearingID := mux.Vars(r)["hearing_id"]

	var req updateHearingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Status == "" {
		config.ErrorStatus("status is required", http.StatusBadRequest, w, services.ErrInvalidArgument)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	hearing, err := h.Service.UpdateStatus(ctx, hearingID, services.HearingStatusUpdate{
		Status:            req.Status,
		Notes:             req.Notes,
		NextHearingDate:   req.NextHearingDate,
		AdjournmentReason: req.AdjournmentReason,
	})
	if err != nil {
		serviceErrorStatus("failed to update hearing", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(hearing)
}

// DeleteHearingHandler removes a hearing
func (h Hearing) DeleteHearingHandler(w http.ResponseWriter, r *http.Request) {
	hearingID := mux.Vars(r)["hearing_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := h.Service.Delete(ctx, hearingID); err != nil {
		serviceErrorStatus("failed to delete hearing", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "hearing deleted"})
}
