// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package web serves the browser pages of the gateway: a home page, the
// estimate registration form and the estimate list.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/estimate-gateway/pkg/apperr"
	"github.com/go-core-stack/estimate-gateway/pkg/estimate"
	"github.com/go-core-stack/estimate-gateway/pkg/normalize"
	"github.com/go-core-stack/estimate-gateway/pkg/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Lister fetches the estimate list.
type Lister interface {
	List(ctx context.Context, query url.Values, body any) (*estimate.ListResult, error)
}

// Pages renders the HTML pages.
type Pages struct {
	lister    Lister
	templates map[string]*template.Template
	logger    zerolog.Logger
}

// New parses the page templates.
func New(lister Lister) (*Pages, error) {
	p := &Pages{
		lister:    lister,
		templates: make(map[string]*template.Template),
		logger:    log.With().Str("component", "web").Logger(),
	}
	for _, name := range []string{"home", "about", "powerapp"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// Register mounts the pages on r.
func (p *Pages) Register(r *mux.Router) {
	r.HandleFunc("/", p.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/about", p.handleAbout).Methods(http.MethodGet)
	r.HandleFunc("/powerapp", p.handleList).Methods(http.MethodGet)
}

type pageData struct {
	Title string
}

type listPageData struct {
	Title  string
	Filter string
	Limit  string
	APIURL string
	Error  string
	Count  int
	View   render.View
}

func (p *Pages) handleHome(w http.ResponseWriter, r *http.Request) {
	p.execute(w, http.StatusOK, "home", pageData{Title: "Estimates"})
}

func (p *Pages) handleAbout(w http.ResponseWriter, r *http.Request) {
	p.execute(w, http.StatusOK, "about", pageData{Title: "Register Estimate"})
}

// handleList fetches and renders the estimate list. Filtering submits the
// form again, so each filter action replaces the previous page load.
func (p *Pages) handleList(w http.ResponseWriter, r *http.Request) {
	data := listPageData{
		Title:  "Estimates",
		Filter: r.URL.Query().Get("filter"),
		Limit:  r.URL.Query().Get("limit"),
		APIURL: apiURL(r),
	}

	result, err := p.lister.List(r.Context(), estimate.FilterQuery(data.Filter, data.Limit), nil)
	if err != nil {
		appErr := apperr.From(err)
		data.Error = appErr.Message
		p.logger.Warn().Err(err).Str("kind", string(appErr.Kind)).Msg("list page fetch failed")
		p.execute(w, appErr.Status(), "powerapp", data)
		return
	}

	view, err := render.Render(normalize.Classify(result.Data), render.EstimateColumns)
	if err != nil {
		data.Error = err.Error()
		p.execute(w, http.StatusInternalServerError, "powerapp", data)
		return
	}
	data.View = view
	if view.Tabular() {
		data.Count = len(view.Table.Rows)
	}
	p.execute(w, http.StatusOK, "powerapp", data)
}

// execute renders into a buffer first so template failures still produce a
// clean 500.
func (p *Pages) execute(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		p.logger.Error().Err(err).Str("template", name).Msg("render page failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func apiURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/api/powerapp"
}
