package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/courtflow/court-case-api/api"
	"github.com/courtflow/court-case-api/api/scheduler"
	"github.com/courtflow/court-case-api/config"
	"github.com/courtflow/court-case-api/databases"
	"github.com/courtflow/court-case-api/models"
	"github.com/courtflow/court-case-api/services"
	"github.com/courtflow/court-case-api/services/notifier"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router     *mux.Router
	Config     config.Config
	Dispatcher *notifier.Dispatcher
	Scheduler  *scheduler.Scheduler

	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	caseDB := databases.NewCaseDatabase(a.dbHelper)
	hearingDB := databases.NewHearingDatabase(a.dbHelper)
	partyDB := databases.NewCasePartyDatabase(a.dbHelper)
	viewDB := databases.NewViewEventDatabase(a.dbHelper)
	bookmarkDB := databases.NewBookmarkDatabase(a.dbHelper)
	documentDB := databases.NewCaseDocumentDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper)

	hub := NewNotificationHub()

	a.Dispatcher = &notifier.Dispatcher{
		Parties: partyDB,
		Users:   userDB,
		Mailer: &notifier.SendgridMailer{
			APIKey:    a.Config.SendgridAPIKey,
			FromEmail: "no-reply@courtflow.org",
			FromName:  "Courtflow",
		},
		Pusher:  hub,
		Workers: a.Config.NotifyWorkers,
	}
	a.Dispatcher.Start()

	analyticsService := services.NewAnalyticsService(viewDB, caseDB)

	c := Case{
		DB: caseDB,
		Service: &services.CaseService{
			Cases:    caseDB,
			Notifier: a.Dispatcher,
		},
		Analytics: analyticsService,
	}
	h := Hearing{
		DB: hearingDB,
		Service: &services.HearingService{
			Hearings: hearingDB,
			Cases:    caseDB,
			Users:    userDB,
			Notifier: a.Dispatcher,
		},
	}
	b := Bookmark{
		DB: bookmarkDB,
		Service: &services.BookmarkService{
			Bookmarks: bookmarkDB,
			Cases:     caseDB,
		},
	}
	an := Analytics{Service: analyticsService}
	p := Party{DB: partyDB, CDB: caseDB}
	d := Document{DB: documentDB, CDB: caseDB, Notifier: a.Dispatcher}
	u := User{DB: userDB}

	a.Scheduler = scheduler.NewScheduler(viewDB, hearingDB, caseDB, a.Dispatcher, a.Config.ViewRetentionDays)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/ws/notifications", hub.HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/login", http.HandlerFunc(u.StaffLoginHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/case", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(c.CreateCaseHandler)))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/case/number/{case_number}", api.Middleware(http.HandlerFunc(c.CaseByNumberHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/status", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(c.TransitionCaseHandler)))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/view", http.HandlerFunc(c.TrackCaseViewHandler)).Methods("POST")

	apiCreate.Handle("/case/{case_id}/hearings", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(h.CreateHearingHandler)))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/hearings", api.Middleware(http.HandlerFunc(h.HearingsByCaseHandler))).Methods("GET")
	apiCreate.Handle("/hearing/{hearing_id}", api.Middleware(http.HandlerFunc(h.HearingByIDHandler))).Methods("GET")
	apiCreate.Handle("/hearing/{hearing_id}/status", api.Middleware(api.RequireCapability(models.CapabilityJudge, http.HandlerFunc(h.UpdateHearingStatusHandler)))).Methods("PUT")
	apiCreate.Handle("/hearing/{hearing_id}", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(h.DeleteHearingHandler)))).Methods("DELETE")

	apiCreate.Handle("/case/{case_id}/parties", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(p.AddPartyHandler)))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/parties", api.Middleware(http.HandlerFunc(p.PartiesByCaseHandler))).Methods("GET")
	apiCreate.Handle("/party/{party_id}", api.Middleware(api.RequireCapability(models.CapabilityClerk, http.HandlerFunc(p.RemovePartyHandler)))).Methods("DELETE")

	apiCreate.Handle("/case/{case_id}/documents", api.Middleware(http.HandlerFunc(d.AddDocumentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/documents", api.Middleware(http.HandlerFunc(d.DocumentsByCaseHandler))).Methods("GET")

	apiCreate.Handle("/bookmarks", api.Middleware(http.HandlerFunc(b.AddBookmarkHandler))).Methods("POST")
	apiCreate.Handle("/bookmarks", api.Middleware(http.HandlerFunc(b.BookmarksHandler))).Methods("GET")
	apiCreate.Handle("/bookmark/{bookmark_id}", api.Middleware(http.HandlerFunc(b.RemoveBookmarkHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/bookmark", api.Middleware(http.HandlerFunc(b.RemoveBookmarkByCaseHandler))).Methods("DELETE")

	apiCreate.Handle("/analytics/trending", api.Middleware(http.HandlerFunc(an.TrendingHandler))).Methods("GET")
	apiCreate.Handle("/analytics/most-viewed", api.Middleware(http.HandlerFunc(an.MostViewedHandler))).Methods("GET")
	apiCreate.Handle("/analytics/peak-hours", api.Middleware(http.HandlerFunc(an.PeakHoursHandler))).Methods("GET")
	apiCreate.Handle("/analytics/date-range", api.Middleware(http.HandlerFunc(an.DateRangeHandler))).Methods("GET")

	apiCreate.Handle("/metrics", api.Middleware(http.HandlerFunc(metricsHandler))).Methods("GET")

	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	return r
}

// Initialize connects to the database and builds the router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("court-case-api has connected to the database")

	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()
	if err := databases.EnsureIndexes(ctx, a.dbHelper); err != nil {
		zap.S().With(err).Error("failed to create indexes")
		return err
	}

	api.InitMetrics()

	// initialize api router
	a.initializeRoutes()

	a.Scheduler.Start()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(api.Summary())
}

// serviceErrorStatus maps a service layer failure onto the HTTP surface
func serviceErrorStatus(message string, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	config.ErrorStatus(message, status, w, err)
}
