package main

import (
	auth "OilPro/internal/auth"
	batch "OilPro/internal/calc/batch"
	bottom "OilPro/internal/calc/bottom"
	settlement "OilPro/internal/calc/settlement"
	shell "OilPro/internal/calc/shell"
	checklist "OilPro/internal/checklist"
	dashboard "OilPro/internal/dashboard"
	extract "OilPro/internal/extract"
	inspection "OilPro/internal/inspection"
	measurement "OilPro/internal/measurement"
	profile "OilPro/internal/profile"
	repo "OilPro/internal/repo"
	report "OilPro/internal/report"
	survey "OilPro/internal/survey"
	tank "OilPro/internal/tank"
	"context"
	"database/sql"
	"sync"

	"os/signal"
	"syscall"
	"time"

	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, db *sql.DB) {
	userRepo := repo.NewPostgresDB(db)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file, relying on environment")
	}
	tokenKey := os.Getenv("TOKEN_KEY")
	if tokenKey == "" {
		log.Fatal().Msg("TOKEN_KEY environment variable is not set")
	}

	authEnv := &auth.Authenv{JWTkey: []byte(tokenKey), Repo: userRepo}
	profileH := &profile.ProfileHandler{Repo: userRepo}

	limiter := auth.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/profile", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/profile", profileH.UpdateProfile).Methods("PATCH", "PUT")
	secureApi.HandleFunc("/profile/{id:[0-9]+}", profileH.GetProfile).Methods("GET")
	secureApi.HandleFunc("/upload-signature", profileH.UploadSignature).Methods("POST")

	tankH := &tank.Handler{Repo: userRepo}
	secureApi.HandleFunc("/tanks", tankH.Create).Methods("POST")
	secureApi.HandleFunc("/tanks", tankH.List).Methods("GET")
	secureApi.HandleFunc("/tanks/{id:[0-9]+}", tankH.Get).Methods("GET")
	secureApi.HandleFunc("/tanks/{id:[0-9]+}", tankH.Update).Methods("PUT", "PATCH")
	secureApi.HandleFunc("/tanks/{id:[0-9]+}", tankH.Delete).Methods("DELETE")

	inspectionH := &inspection.Handler{Repo: userRepo}
	secureApi.HandleFunc("/inspections", inspectionH.Create).Methods("POST")
	secureApi.HandleFunc("/tanks/{id:[0-9]+}/inspections", inspectionH.ListByTank).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}", inspectionH.Get).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}", inspectionH.Update).Methods("PUT", "PATCH")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}", inspectionH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/status", inspectionH.SetStatus).Methods("POST")

	measurementH := &measurement.Handler{Repo: userRepo}
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/measurements", measurementH.Create).Methods("POST")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/measurements", measurementH.List).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/measurements/{mid:[0-9]+}", measurementH.Delete).Methods("DELETE")

	checklistH := &checklist.Handler{Repo: userRepo}
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/checklist/seed", checklistH.Seed).Methods("POST")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/checklist", checklistH.Save).Methods("PUT")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/checklist", checklistH.List).Methods("GET")

	surveyH := &survey.Handler{Repo: userRepo}
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/surveys", surveyH.Create).Methods("POST")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/surveys", surveyH.ListByInspection).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/surveys/{sid:[0-9]+}", surveyH.Get).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/surveys/{sid:[0-9]+}/analyze", surveyH.Analyze).Methods("POST")

	shellH := &shell.Handler{}
	bottomH := &bottom.Handler{}
	settlementH := &settlement.Handler{}
	batchH := &batch.Handler{}
	secureApi.HandleFunc("/tools/shell/calc", shellH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/bottom/calc", bottomH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/settlement/calc", settlementH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/shell/batch", batchH.Shell).Methods("POST")

	reportH := &report.Handler{Repo: userRepo}
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/report/pdf", reportH.GeneratePDF).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/report/csv", reportH.GenerateCSV).Methods("GET")
	secureApi.HandleFunc("/inspections/{id:[0-9]+}/report/xlsx", reportH.GenerateXLSX).Methods("GET")
	secureApi.HandleFunc("/tools/report/pdf", reportH.GenerateQuick).Methods("POST")

	extractH := &extract.Handler{Repo: userRepo, Client: extract.NewClient(os.Getenv("OPENROUTER_API_KEY"))}
	secureApi.HandleFunc("/import/excel", extractH.ImportExcel).Methods("POST")
	secureApi.HandleFunc("/import/tickets", extractH.ListTickets).Methods("GET")
	secureApi.HandleFunc("/import/tickets/{id:[0-9]+}/review", extractH.ReviewTicket).Methods("POST")

	dashboardH := &dashboard.Handler{Repo: userRepo}
	secureApi.HandleFunc("/dashboard", dashboardH.Get).Methods("GET")

	mux.PathPrefix("/uploads/").
		Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir("./static/uploads/"))))

	authFileServer := http.FileServer(http.Dir("./static/auth"))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	mainFileServer := http.FileServer(http.Dir("./static/main"))
	mux.PathPrefix("/").
		Handler(mainFileServer)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db := auth.InitDB()
	defer db.Close()
	mux := mux.NewRouter()
	HandleList(mux, db)
	handler := CORS(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}
	log.Info().Str("addr", server.Addr).Msg("starting server")

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")

	wg.Wait()
}
