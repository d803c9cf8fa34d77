package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/oakmoor/homestead-ops/internal/alerts"
	"github.com/oakmoor/homestead-ops/internal/auth"
	"github.com/oakmoor/homestead-ops/internal/config"
	"github.com/oakmoor/homestead-ops/internal/db"
	"github.com/oakmoor/homestead-ops/internal/engine"
	"github.com/oakmoor/homestead-ops/internal/handlers"
	"github.com/oakmoor/homestead-ops/internal/middleware"
	"github.com/oakmoor/homestead-ops/internal/notify"
	"github.com/oakmoor/homestead-ops/internal/schedule"
	"github.com/oakmoor/homestead-ops/internal/usage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("connected to MongoDB")

	repo := db.NewRepo(db.NewCollections(client, cfg.MongoDB), cfg.Schedule.ClearOverrideWithoutRecurrence)
	users := &db.MongoUserCollection{Collection: client.Database(cfg.MongoDB).Collection("users")}

	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize auth service")
	}

	dispatcher := notify.NewDispatcher(alerts.NewRouter(cfg.Alerts.Channels), map[alerts.Channel]notify.Transport{
		alerts.ChannelDashboard: &notify.DashboardTransport{Store: repo},
		alerts.ChannelEmail:     notify.LogTransport{Name: alerts.ChannelEmail},
		alerts.ChannelCalendar:  notify.LogTransport{Name: alerts.ChannelCalendar},
	})

	eng := &engine.Engine{
		Subjects:           repo,
		Calc:               schedule.NewCalculator(cfg.Schedule.DueSoonDays),
		Triager:            schedule.Triager{Loc: cfg.Timezone},
		Dispatcher:         dispatcher,
		ColdBufferDegrees:  cfg.Alerts.ColdBufferDegrees,
		StorageWarnPercent: cfg.Alerts.StorageWarnPercent,
		StorageCritPercent: cfg.Alerts.StorageCritPercent,
		StorageUsedPercent: diskUsedPercent,
	}

	if cfg.MQTTBroker != "" {
		feed, err := usage.Start(cfg.MQTTBroker, cfg.MQTTClientID, cfg.UsageTopic, repo)
		if err != nil {
			log.WithError(err).Fatal("failed to start usage feed")
		}
		defer feed.Stop()
	} else {
		log.Info("MQTT_BROKER not set, usage readings arrive over HTTP only")
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.EvalSpec, func() {
		eng.RunCycle(context.Background())
	}); err != nil {
		log.WithError(err).Fatal("invalid EVAL_CRON spec")
	}
	c.Start()
	defer c.Stop()
	log.WithField("spec", cfg.EvalSpec).Info("evaluation cycle scheduled")

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()

	authHandler := handlers.NewAuthHandler(authService, users)
	dashHandler := handlers.NewDashboardHandler(eng, repo)
	subjHandler := handlers.NewSubjectsHandler(repo)
	compHandler := handlers.NewCompletionHandler(repo)
	readHandler := handlers.NewReadingsHandler(repo, eng)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)

	mux.Handle("/api/dashboard", perm(authMW, "view_dashboard", dashHandler.GetDashboard))
	mux.Handle("/api/alerts", perm(authMW, "view_alerts", dashHandler.ListAlerts))
	mux.Handle("/api/alerts/ack", perm(authMW, "acknowledge_alerts", dashHandler.AcknowledgeAlert))
	mux.Handle("/api/plants", rw(authMW, "view_plants", "edit_subjects", subjHandler.Plants))
	mux.Handle("/api/vehicles", rw(authMW, "view_vehicles", "edit_subjects", subjHandler.Vehicles))
	mux.Handle("/api/chores", rw(authMW, "view_chores", "edit_subjects", subjHandler.Chores))
	mux.Handle("/api/completions", rw(authMW, "view_completions", "record_completions", compHandler.Completions))
	mux.Handle("/api/readings/usage", perm(authMW, "record_readings", readHandler.PostUsage))
	mux.Handle("/api/readings/forecast", perm(authMW, "record_readings", readHandler.PostForecast))

	handler := rateMW.RateLimit(300, 60)(authMW.Authenticate(mux))

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: handler}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")
	server.Shutdown(context.Background())
}

// perm wraps a handler func with a permission check. Authentication itself
// runs once for the whole mux.
func perm(mw *middleware.AuthMiddleware, action string, h http.HandlerFunc) http.Handler {
	return mw.RequirePermission(action)(h)
}

// rw checks the read permission on GETs and the write permission on anything
// else, so viewers can list subjects without being able to create them.
func rw(mw *middleware.AuthMiddleware, readAction, writeAction string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := writeAction
		if r.Method == http.MethodGet {
			action = readAction
		}
		mw.RequirePermission(action)(h).ServeHTTP(w, r)
	})
}

// diskUsedPercent reports how full the filesystem holding the working
// directory is, for the storage alert trigger.
func diskUsedPercent() (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(".", &st); err != nil {
		return 0, err
	}
	total := float64(st.Blocks) * float64(st.Bsize)
	if total == 0 {
		return 0, nil
	}
	free := float64(st.Bavail) * float64(st.Bsize)
	return (total - free) / total * 100, nil
}
