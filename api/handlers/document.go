package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
	"github.com/courtflow/court-case-api/services/notifier"
)

// Document exported for testing purposes
type Document struct {
	DB       databases.CaseDocumentDatabase
	CDB      databases.CaseDatabase
	Notifier services.Notifier
}

// AddDocumentHandler records a document filed against a case
func (d Document) AddDocumentHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var details models.CaseDocumentDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if details.Title == "" {
		config.ErrorStatus("document title is required", http.StatusBadRequest, w, services.ErrInvalidArgument)
		return
	}

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	parent, err := d.CDB.FindOne(ctx, bson.M{"_id": bID})
	if err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	if principal, ok := api.PrincipalFromContext(r.Context()); ok && details.UploadedBy == "" {
		details.UploadedBy = principal.ID
	}
	details.CaseID = caseID
	details.CreatedAt = primitive.NewDateTimeFromTime(time.Now().UTC())
	document := models.CaseDocument{
		ID:      primitive.NewObjectID(),
		Details: details,
	}

	if _, err := d.DB.InsertOne(ctx, document); err != nil {
		config.ErrorStatus("failed to insert document", http.StatusInternalServerError, w, err)
		return
	}

	if d.Notifier != nil {
		d.Notifier.FanOut(parent, notifier.EventDocumentUploaded, map[string]interface{}{
			"documentId":     document.ID.Hex(),
			"title":          details.Title,
			"isConfidential": details.IsConfidential,
		})
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(document)
}

// DocumentsByCaseHandler lists the documents filed against a case
func (d Document) DocumentsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.Find(ctx, bson.M{"document.caseID": caseID})
	if err != nil {
		config.ErrorStatus("failed to find documents", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.CaseDocument{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}
