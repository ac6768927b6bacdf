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
)

// Party exported for testing purposes
type Party struct {
	DB  databases.CasePartyDatabase
	CDB databases.CaseDatabase
}

// AddPartyHandler attaches a party to a case
func (p Party) AddPartyHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var details models.CasePartyDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if details.Name == "" {
		config.ErrorStatus("party name is required", http.StatusBadRequest, w, services.ErrInvalidArgument)
		return
	}

	bID, err := primitive.ObjectIDFromHex(caseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.CDB.FindOne(ctx, bson.M{"_id": bID}); err != nil {
		config.ErrorStatus("failed to find case", http.StatusNotFound, w, err)
		return
	}

	details.CaseID = caseID
	details.CreatedAt = primitive.NewDateTimeFromTime(time.Now().UTC())
	party := models.CaseParty{
		ID:      primitive.NewObjectID(),
		Details: details,
	}

	if _, err := p.DB.InsertOne(ctx, party); err != nil {
		config.ErrorStatus("failed to insert party", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(party)
}

// PartiesByCaseHandler lists the parties attached to a case
func (p Party) PartiesByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.Find(ctx, bson.M{"party.caseID": caseID})
	if err != nil {
		config.ErrorStatus("failed to find parties", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.CaseParty{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// RemovePartyHandler detaches a party from its case
func (p Party) RemovePartyHandler(w http.ResponseWriter, r *http.Request) {
	partyID := mux.Vars(r)["party_id"]

	bID, err := primitive.ObjectIDFromHex(partyID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := p.DB.DeleteOne(ctx, bson.M{"_id": bID}); err != nil {
		config.ErrorStatus("failed to delete party", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "party removed"})
}
