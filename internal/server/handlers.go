package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tilecalc/pkg/buildinfo"
	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/pipeline"
	"github.com/matzehuels/tilecalc/pkg/render"
	"github.com/matzehuels/tilecalc/pkg/store"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

// =============================================================================
// Requests and Responses
// =============================================================================

// field accepts a JSON number or string, so that form posts and typed
// clients share one request shape.
type field string

func (f *field) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = field(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = field(n.String())
	return nil
}

// calculationRequest is the body of POST /api/calculate and /api/calculations.
type calculationRequest struct {
	RoomLength field  `json:"roomLength"`
	RoomWidth  field  `json:"roomWidth"`
	TileLength field  `json:"tileLength"`
	TileWidth  field  `json:"tileWidth"`
	Spacing    field  `json:"spacing"`
	Pattern    string `json:"pattern"`

	ProjectName string `json:"projectName,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (req calculationRequest) raw() tile.RawInput {
	return tile.RawInput{
		RoomLength: string(req.RoomLength),
		RoomWidth:  string(req.RoomWidth),
		TileLength: string(req.TileLength),
		TileWidth:  string(req.TileWidth),
		Spacing:    string(req.Spacing),
		Pattern:    req.Pattern,
	}
}

type calculateResponse struct {
	Record      *tile.Record `json:"record"`
	Explanation string       `json:"explanation"`
}

type calculationResponse struct {
	*store.Calculation
	Explanation string `json:"explanation"`
}

// summary is a calculation without its cells.
type summary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    store.Status      `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	Pattern   tile.Pattern      `json:"pattern"`
	Room      tile.Room         `json:"room"`
	Tile      tile.TileSpec     `json:"tile"`
	Result    tile.LayoutResult `json:"result"`
}

func summarize(c *store.Calculation) summary {
	s := summary{ID: c.ID, Name: c.Name, Status: c.Status, CreatedAt: c.CreatedAt}
	if c.Record != nil {
		s.Pattern = c.Record.Pattern
		s.Room = c.Record.Room
		s.Tile = c.Record.Tile
		s.Result = c.Record.Result
	}
	return s
}

type listResponse struct {
	Calculations []summary `json:"calculations"`
	Limit        int       `json:"limit"`
	Offset       int       `json:"offset"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Current(),
	})
}

// calculate computes without saving.
func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	opts, _, err := s.decodeCalculation(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{Record: res.Record, Explanation: res.Record.Explain()})
}

// createCalculation computes and saves.
func (s *Server) createCalculation(w http.ResponseWriter, r *http.Request) {
	opts, req, err := s.decodeCalculation(w, r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts.Save = true
	opts.Name = strings.TrimSpace(req.ProjectName)
	opts.Status = req.Status

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Location", "/api/calculations/"+res.Calculation.ID)
	writeJSON(w, http.StatusCreated, calculationResponse{
		Calculation: res.Calculation,
		Explanation: res.Record.Explain(),
	})
}

func (s *Server) decodeCalculation(w http.ResponseWriter, r *http.Request) (pipeline.Options, calculationRequest, error) {
	var req calculationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return pipeline.Options{}, req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	room, spec, p, err := tile.ParseInput(req.raw())
	if err != nil {
		return pipeline.Options{}, req, err
	}
	opts := s.baseOptions()
	opts.Room = room
	opts.Tile = spec
	opts.Pattern = p
	return opts, req, nil
}

func (s *Server) listCalculations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultListLimit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	limit = min(max(limit, 1), maxListLimit)

	opts := store.ListOptions{Limit: limit, Offset: max(offset, 0)}
	if v := q.Get("pattern"); v != "" {
		p, err := tile.ParsePattern(v)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		opts.Pattern = p
	}
	if v := q.Get("status"); v != "" {
		st, err := store.ParseStatus(v)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		opts.Status = st
	}

	calcs, err := s.runner.Store.List(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resp := listResponse{Calculations: make([]summary, 0, len(calcs)), Limit: opts.Limit, Offset: opts.Offset}
	for _, c := range calcs {
		resp.Calculations = append(resp.Calculations, summarize(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getCalculation(w http.ResponseWriter, r *http.Request) {
	calc, err := s.runner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, calculationResponse{Calculation: calc, Explanation: calc.Record.Explain()})
}

func (s *Server) deleteCalculation(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// layout draws a saved calculation. Query parameters scale, dpi and shading
// override the configured look.
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts := s.baseOptions()
	q := r.URL.Query()
	if opts.Scale, err = floatParam(q.Get("scale"), opts.Scale); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if opts.DPI, err = floatParam(q.Get("dpi"), opts.DPI); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if v := q.Get("shading"); v != "" {
		if opts.Shading, err = strconv.ParseBool(v); err != nil {
			writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "invalid shading %q", v))
			return
		}
	}
	s.serveArtifact(w, r, format, opts)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	var format string
	switch chi.URLParam(r, "format") {
	case "pdf":
		format = pipeline.FormatReportPDF
	case "md":
		format = pipeline.FormatReportMD
	default:
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidFormat,
			"invalid report format %q (must be one of: pdf, md)", chi.URLParam(r, "format")))
		return
	}
	s.serveArtifact(w, r, format, s.baseOptions())
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, format string, opts pipeline.Options) {
	calc, err := s.runner.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	hash, err := pipeline.RecordHash(calc.Record)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts.Formats = []string{format}
	artifacts, err := s.runner.Render(r.Context(), calc.Record, hash, calc, opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	if format == render.FormatPDF || format == pipeline.FormatReportPDF {
		w.Header().Set("Content-Disposition", `inline; filename="`+filename(calc, format)+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	calcs, err := s.runner.Store.List(r.Context(), store.ListOptions{})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Summarize(calcs))
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) baseOptions() pipeline.Options {
	opts := s.opts.Render
	opts.MaxCells = s.opts.MaxCells
	opts.Formats = nil
	opts.Save = false
	return opts
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatReportPDF:
		return render.ContentType(render.FormatPDF)
	case pipeline.FormatReportMD:
		return "text/markdown; charset=utf-8"
	}
	return render.ContentType(format)
}

func filename(c *store.Calculation, format string) string {
	base := "tile-layout"
	if format == pipeline.FormatReportPDF {
		base = "tile-report"
	}
	return base + "-" + c.ID[:8] + ".pdf"
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid integer %q", raw)
	}
	return v, nil
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid positive number %q", raw)
	}
	return v, nil
}
