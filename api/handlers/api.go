package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/config"
	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/databases/memdb"
	"github.com/linesmerrill/dinebuddies-api/notifications"
	"github.com/linesmerrill/dinebuddies-api/services"
)

const (
	maxTraces             = 1000
	defaultRequestTimeout = 30 * time.Second
)

// App stores the router, the stores and the wired services so they can be reused
type App struct {
	Router  *mux.Router
	Handler http.Handler
	Config  config.Config

	Users         databases.UserDatabase
	Invitations   databases.InvitationDatabase
	Notifications databases.NotificationDatabase
	Tx            databases.Transactor

	Services *services.Services
	Hub      *notifications.Hub
	Auth     *api.Auth
	Metrics  *api.MetricsCollector

	client     databases.ClientHelper
	publisher  *notifications.Publisher
	dispatcher *notifications.Dispatcher
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.Metrics.Middleware)

	u := User{DB: a.Users, Follow: a.Services.Follow, Policy: a.Services.Policy}
	inv := Invitation{Lifecycle: a.Services.Lifecycle, Guard: a.Services.Guard}
	c := Community{UDB: a.Users, Membership: a.Services.Community}
	n := Notification{DB: a.Notifications, Hub: a.Hub}

	auth := a.Auth.Middleware

	// healthchex
	r.HandleFunc("/health", api.HealthCheckHandler)

	r.Handle("/ws/notifications", api.TokenFromQuery(auth(http.HandlerFunc(n.WebSocketHandler)))).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.HandleFunc("/auth/token", a.Auth.CreateToken).Methods("POST")
	apiCreate.HandleFunc("/users", u.SignUpHandler).Methods("POST")
	apiCreate.Handle("/metrics", auth(http.HandlerFunc(a.Metrics.SummaryHandler))).Methods("GET")

	apiCreate.Handle("/users/{userId}", auth(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/followers", auth(http.HandlerFunc(u.FollowersHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/following", auth(http.HandlerFunc(u.FollowingHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/mutual-followers", auth(http.HandlerFunc(u.MutualFollowersHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/mutual-count", auth(http.HandlerFunc(u.MutualCountHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/follow", auth(http.HandlerFunc(u.FollowHandler))).Methods("POST")
	apiCreate.Handle("/users/{userId}/cancellations", auth(http.HandlerFunc(u.CancellationsHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/can-create-invitation", auth(http.HandlerFunc(u.CanCreateInvitationHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/notifications", auth(http.HandlerFunc(n.NotificationsHandler))).Methods("GET")
	apiCreate.Handle("/users/{userId}/notifications/{notificationId}/read", auth(http.HandlerFunc(n.MarkReadHandler))).Methods("PUT")

	apiCreate.Handle("/invitations", auth(http.HandlerFunc(inv.CreateInvitationHandler))).Methods("POST")
	// registered before /invitations/{invitationId} so "validate" is not taken as an id
	apiCreate.Handle("/invitations/validate", auth(http.HandlerFunc(inv.ValidateCreationHandler))).Methods("GET")
	apiCreate.Handle("/invitations/{invitationId}", auth(http.HandlerFunc(inv.InvitationHandler))).Methods("GET")
	apiCreate.Handle("/invitations/{invitationId}/eligibility", auth(http.HandlerFunc(inv.EligibilityHandler))).Methods("GET")
	apiCreate.Handle("/invitations/{invitationId}/requests", auth(http.HandlerFunc(inv.RequestToJoinHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/requests", auth(http.HandlerFunc(inv.CancelRequestHandler))).Methods("DELETE")
	apiCreate.Handle("/invitations/{invitationId}/requests/{userId}/approve", auth(http.HandlerFunc(inv.ApproveUserHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/requests/{userId}/reject", auth(http.HandlerFunc(inv.RejectUserHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/schedule", auth(http.HandlerFunc(inv.UpdateScheduleHandler))).Methods("PUT")
	apiCreate.Handle("/invitations/{invitationId}/schedule/approve", auth(http.HandlerFunc(inv.ApproveNewTimeHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/schedule/reject", auth(http.HandlerFunc(inv.RejectNewTimeHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/status", auth(http.HandlerFunc(inv.UpdateStatusHandler))).Methods("PUT")
	apiCreate.Handle("/invitations/{invitationId}/rating", auth(http.HandlerFunc(inv.RatingHandler))).Methods("POST")
	apiCreate.Handle("/invitations/{invitationId}/cancel", auth(http.HandlerFunc(inv.CancelInvitationHandler))).Methods("POST")

	apiCreate.Handle("/communities/{partnerId}/members", auth(http.HandlerFunc(c.JoinCommunityHandler))).Methods("POST")
	apiCreate.Handle("/communities/{partnerId}/members", auth(http.HandlerFunc(c.LeaveCommunityHandler))).Methods("DELETE")
	apiCreate.Handle("/communities/{partnerId}/members/{userId}", auth(http.HandlerFunc(c.RemoveMemberHandler))).Methods("DELETE")
	apiCreate.Handle("/communities/{partnerId}/messages", auth(http.HandlerFunc(c.BroadcastHandler))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect the store, wire the services and
// create the router
func (a *App) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.openStore(ctx); err != nil {
		return err
	}
	a.Hub = notifications.NewHub()

	a.dispatcher = notifications.NewDispatcher(time.Now, notifications.StoreSink{DB: a.Notifications})
	sinks := []notifications.Sink{a.Hub}
	if a.Config.SendgridAPIKey != "" {
		sinks = append(sinks, notifications.NewEmailSink(a.Config.SendgridAPIKey, a.Config.EmailFrom, a.Users))
	}
	if a.Config.AMQPURL != "" {
		pub, err := notifications.NewPublisher(a.Config.AMQPURL, a.Config.AMQPExchange)
		if err != nil {
			// the exchange is optional, keep serving without it
			zap.S().Warnw("failed to connect to the notification exchange", "error", err)
		} else {
			a.publisher = pub
			sinks = append(sinks, notifications.NewQueueSink(pub))
		}
	}

	a.Services = services.New(services.Deps{
		Users:       a.Users,
		Invitations: a.Invitations,
		Tx:          a.Tx,
		Notifier:    a.dispatcher.InBackground(sinks...),
	})
	if a.Config.JWTSecret == "" {
		// tokens signed with a random secret die with the process
		zap.S().Warn("JWT_SECRET is not set, using a random secret")
		a.Config.JWTSecret = uuid.New().String()
	}
	a.Auth = api.NewAuth(a.Users, a.Config.JWTSecret, a.Config.TokenTTL)
	a.Metrics = api.NewMetricsCollector(maxTraces)

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.StoreDriver {
	case "memory":
		store := memdb.New()
		a.Users, a.Invitations, a.Notifications, a.Tx = store.Users(), store.Invitations(), store.Notifications(), store
		zap.S().Warn("using the in-memory store, data is lost on restart")
		return nil
	case "mongo", "":
	default:
		return fmt.Errorf("unknown store driver %q", a.Config.StoreDriver)
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	if err := client.Connect(ctx); err != nil {
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("dinebuddies-api has connected to the database")

	db := databases.NewDatabase(&a.Config, client)
	a.client = client
	a.Users = databases.NewUserDatabase(db)
	a.Invitations = databases.NewInvitationDatabase(db)
	a.Notifications = databases.NewNotificationDatabase(db)
	a.Tx = databases.NewTransactor(client)
	return nil
}

func (a *App) initializeRoutes() {
	timeout := a.Config.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	a.Router = a.New()
	a.Handler = api.TimeoutMiddleware(timeout)(a.Router)
}

// Close drains background notifications and disconnects from the database
// and the notification exchange
func (a *App) Close(ctx context.Context) {
	if a.dispatcher != nil {
		if err := a.dispatcher.Wait(ctx); err != nil {
			zap.S().Warnw("notifications still pending at shutdown", "error", err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zap.S().Warnw("failed to close notification publisher", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}
