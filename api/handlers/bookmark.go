package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
)

// Bookmark exported for testing purposes
type Bookmark struct {
	DB      databases.BookmarkDatabase
	Service *services.BookmarkService
}

type addBookmarkRequest struct {
	CaseID string `json:"caseId"`
	Notes  string `json:"notes,omitempty"`
}

// AddBookmarkHandler bookmarks a case for the authenticated user
func (b Bookmark) AddBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.PrincipalFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated user", http.StatusUnauthorized, w, services.ErrInvalidArgument)
		return
	}

	var req addBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	bookmark, err := b.Service.Add(ctx, principal.ID, req.CaseID, req.Notes)
	if err != nil {
		serviceErrorStatus("failed to add bookmark", w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bookmark)
}

// BookmarksHandler lists the authenticated user's bookmarks
func (b Bookmark) BookmarksHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.PrincipalFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated user", http.StatusUnauthorized, w, services.ErrInvalidArgument)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := b.DB.Find(ctx, bson.M{"bookmark.userID": principal.ID})
	if err != nil {
		config.ErrorStatus("failed to find bookmarks", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Bookmark{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dbResp)
}

// RemoveBookmarkHandler deletes a bookmark by its id
func (b Bookmark) RemoveBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	bookmarkID := mux.Vars(r)["bookmark_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := b.Service.Remove(ctx, bookmarkID); err != nil {
		serviceErrorStatus("failed to remove bookmark", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "bookmark removed"})
}

// RemoveBookmarkByCaseHandler deletes the authenticated user's bookmark for a case
func (b Bookmark) RemoveBookmarkByCaseHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := api.PrincipalFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated user", http.StatusUnauthorized, w, services.ErrInvalidArgument)
		return
	}
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := b.Service.RemoveByCase(ctx, principal.ID, caseID); err != nil {
		serviceErrorStatus("failed to remove bookmark", w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "bookmark removed"})
}
