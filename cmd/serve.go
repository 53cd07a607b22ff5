package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prospect pipeline HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{env: env}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", api.health)
		r.Route("/api/prospects", func(r chi.Router) {
			r.Post("/search-and-assign", api.searchAndAssign)
			r.Get("/", api.list)
			r.Post("/", api.create)
			r.Get("/follow-up", api.followUp)
			r.Get("/stats", api.stats)
			r.Get("/{id}", api.get)
			r.Patch("/{id}/status", api.updateStatus)
			r.Post("/{id}/conversation", api.addMessage)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

type apiServer struct {
	env *env
}

func (a *apiServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) searchAndAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string          `json:"query"`
		Options json.RawMessage `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := model.DefaultSearchOptions()
	if len(req.Options) > 0 {
		if err := json.Unmarshal(req.Options, &opts); err != nil {
			writeError(w, http.StatusBadRequest, "invalid options")
			return
		}
	}

	result := a.env.Pipeline.Run(r.Context(), req.Query, opts)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (a *apiServer) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	hasEmail, _ := strconv.ParseBool(q.Get("hasEmail"))

	prospects, err := a.env.Store.ListProspects(r.Context(), model.ProspectFilter{
		Status:   model.ProspectStatus(q.Get("status")),
		Company:  q.Get("company"),
		Industry: q.Get("industry"),
		HasEmail: hasEmail,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if prospects == nil {
		prospects = []model.Prospect{}
	}
	writeJSON(w, http.StatusOK, prospects)
}

func (a *apiServer) create(w http.ResponseWriter, r *http.Request) {
	var p model.Prospect
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.FirstName == "" && p.LastName == "" {
		writeError(w, http.StatusBadRequest, "a name is required")
		return
	}

	created, err := a.env.Store.CreateProspect(r.Context(), &p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *apiServer) get(w http.ResponseWriter, r *http.Request) {
	p, err := a.env.Store.GetProspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "prospect not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *apiServer) updateStatus(w http.ResponseWriter, r *http.Request) {
	var update model.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !update.Status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", update.Status))
		return
	}

	id := chi.URLParam(r, "id")
	if err := a.env.Store.UpdateProspectStatus(r.Context(), id, update); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := a.env.Store.GetProspect(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *apiServer) addMessage(w http.ResponseWriter, r *http.Request) {
	var msg model.ConversationMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := a.env.Store.AddConversationMessage(r.Context(), id, msg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := a.env.Store.GetProspect(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *apiServer) followUp(w http.ResponseWriter, r *http.Request) {
	due, err := a.env.Store.ListNeedingFollowUp(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if due == nil {
		due = []model.Prospect{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(due),
		"window":    store.FollowUpWindow.String(),
		"prospects": due,
	})
}

func (a *apiServer) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.env.Store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
