package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
)

// Case exported for testing purposes
type Case struct {
	DB        databases.CaseDatabase
	Service   *services.CaseService
	Analytics *services.AnalyticsService
}

// CreateCaseHandler files a new case
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var courtCase models.Case
	if err := json.NewDecoder(r.Body).Decode(&courtCase.Details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if courtCase.Details.CaseNumber == "" || courtCase.Details.Title == "" {
		config.ErrorStatus("caseNumber and title are required", http.StatusBadRequest, w, services.ErrInvalidArgument)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// caseNumber is unique and immutable once filed
	count, err := c.DB.CountDocuments(ctx, bson.M{"case.caseNumber": courtCase.Details.CaseNumber})
	if err != nil {
		config.ErrorStatus("failed to check case number", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("case number already exists", http.StatusConflict, w, services.ErrConflict)
		return
	}

	if principal, ok := api.PrincipalFromContext(r.Context()); ok && courtCase.Details.FilerID == "" {
		courtCase.Details.FilerID = principal.ID
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	courtCase.ID = primitive.NewObjectID()
	courtCase.Details.Status = models.CaseStatusFiled
	courtCase.Details.FilingDate = now
	courtCase.Details.CreatedAt = now
	courtCase.Details.UpdatedAt = now
	courtCase.Details.HearingCount = 0
	courtCase.Details.ViewCount = 0
	courtCase.Details.BookmarkCount = 0
	courtCase.Details.AdmissionDate = nil
	courtCase.Details.JudgmentDate = nil
	courtCase.Details.NextHearingDate = nil

	if _, err := c.DB.InsertOne(ctx, courtCase); err != nil {
		// a concurrent filing can slip past the count check; the unique
		// index on case.caseNumber still rejects it
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("case number already exists", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(courtCase)
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// CaseByNumberHandler returns a case by its unique case number
func (c Case) CaseByNumberHandler(w http.ResponseWriter, r *http.Request) {
	caseNumber := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"case.caseNumber": caseNumber})
	if err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// CasesHandler returns paginated cases with optional status/priority/stage filters
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["case.status"] = status
	}
	if priority := r.URL.Query().Get("priority"); priority != "" {
		filter["case.priority"] = priority
	}
	if stage := r.URL.Query().Get("stage"); stage != "" {
		filter["case.stage"] = stage
	}
	if r.URL.Query().Get("public") == "true" {
		filter["case.isPublic"] = true
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindPaginated(ctx, filter, page, limit)
	if err != nil {
		config.ErrorStatus("failed to find cases", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Case{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

type transitionRequest struct {
	Status string `json:"status"`
}

// TransitionCaseHandler assigns a new lifecycle status to the case
func (c Case) TransitionCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := c.Service.Transition(ctx, caseID, req.Status)
	if err != nil {
		serviceErrorStatus("failed to transition case", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

type trackViewRequest struct {
	UserID    string `json:"userId,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// TrackCaseViewHandler appends one view event for the case
func (c Case) TrackCaseViewHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req trackViewRequest
	// body is optional; anonymous views carry no payload
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.IPAddress == "" {
		req.IPAddress = r.RemoteAddr
	}
	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Analytics.TrackView(ctx, caseID, req.UserID, req.IPAddress, req.UserAgent); err != nil {
		serviceErrorStatus("failed to track view", w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "view recorded"})
}
