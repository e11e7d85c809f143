package reportserver

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"anastat/domain/core"
	"anastat/domain/stats"
	"anastat/internal/errors"
	"anastat/internal/report"
	"anastat/ports"
)

// App serves rendered HTML reports for stored analysis runs.
type App struct {
	router *chi.Mux
	runs   ports.RunRepository
}

// Config holds report server configuration
type Config struct {
	Port string
}

// NewApp creates the report application.
func NewApp(runs ports.RunRepository) *App {
	app := &App{
		router: chi.NewRouter(),
		runs:   runs,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.RequestID)
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	a.router.Get("/reports", a.handleListReports)
	a.router.Get("/reports/{id}", a.handleReport)
	a.router.Get("/reports/{id}/markdown", a.handleReportMarkdown)
}

// Start runs the HTTP server on the configured port.
func (a *App) Start(config Config) error {
	log.Printf("[Report] Listening on :%s", config.Port)
	return http.ListenAndServe(":"+config.Port, a.router)
}

// Handler exposes the router for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) handleListReports(w http.ResponseWriter, r *http.Request) {
	ids, err := a.runs.ListRecent(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintln(w, "<!doctype html><title>Analysis Runs</title><h1>Analysis Runs</h1><ul>")
	for _, id := range ids {
		fmt.Fprintf(w, `<li><a href="/reports/%s">%s</a></li>`+"\n", id, id)
	}
	fmt.Fprintln(w, "</ul>")
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	results, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><title>Report %s</title>\n", results.RunID)
	w.Write(report.HTML(results))
}

func (a *App) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	results, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, report.Markdown(results))
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*stats.AnalysisResults, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	results, err := a.runs.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.HasCode(err, errors.CodeNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return results, true
}
