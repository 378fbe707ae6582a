package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/bookplot/pkg/buildinfo"
	"github.com/matzehuels/bookplot/pkg/core/dirichlet"
	"github.com/matzehuels/bookplot/pkg/core/opening"
	bperrors "github.com/matzehuels/bookplot/pkg/errors"
	"github.com/matzehuels/bookplot/pkg/pipeline"
	"github.com/matzehuels/bookplot/pkg/render"
	"github.com/matzehuels/bookplot/pkg/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FitRequest is the body of POST /v1/fit.
type FitRequest struct {
	Samples          []dirichlet.Counts `json:"samples" validate:"required,min=1,max=100000"`
	MaxIterations    int                `json:"max_iterations,omitempty" validate:"gte=0,lte=1000000"`
	Tolerance        float64            `json:"tolerance,omitempty" validate:"gte=0,lt=1"`
	AllowUnconverged bool               `json:"allow_unconverged,omitempty"`
}

// FitResponse is the result of a fit.
type FitResponse struct {
	Alpha      dirichlet.Alpha               `json:"alpha"`
	Mean       [dirichlet.Categories]float64 `json:"mean"`
	Iterations int                           `json:"iterations"`
	Converged  bool                          `json:"converged"`
}

// AnalysisResponse is returned when an analysis is created.
type AnalysisResponse struct {
	store.Summary
	Openings int  `json:"openings"`
	Skipped  int  `json:"skipped"`
	Cached   bool `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "build": buildinfo.Current()}
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body["error"] = err.Error()
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req FitRequest
	if err := decodeJSON(w, r, s.opts.MaxUploadBytes, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.opts.Plot
	// The fit does not watch the request context, so a request may lower the
	// server's iteration limit but never raise it.
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = pipeline.DefaultMaxIterations
	}
	if req.MaxIterations > 0 {
		opts.MaxIterations = min(req.MaxIterations, limit)
	}
	if req.Tolerance > 0 {
		opts.Tolerance = req.Tolerance
	}
	opts.AllowUnconverged = opts.AllowUnconverged || req.AllowUnconverged

	res, hit, err := s.runner.FitWithCacheInfo(r.Context(), req.Samples, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	opts.SetFitDefaults()
	writeJSON(w, http.StatusOK, FitResponse{
		Alpha:      res.Alpha,
		Mean:       res.Alpha.Mean(),
		Iterations: res.Iterations,
		Converged:  res.Converged(opts.Tolerance),
	})
}

func (s *Server) handleDensity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("alpha") == "" {
		s.writeError(w, r, bperrors.New(bperrors.ErrCodeInvalidAlpha, "alpha query parameter is required"))
		return
	}
	alpha, err := dirichlet.ParseAlpha(q.Get("alpha"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.plotOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := formatParam(r)

	data, hit, err := s.runner.DensityWithCacheInfo(r.Context(), alpha, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeImage(w, format, data)
}

func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.opts.Plot
	opts.Lenient = boolParam(q.Get("lenient"))
	opts.AllowUnconverged = opts.AllowUnconverged || boolParam(q.Get("allow_unconverged"))
	name := q.Get("name")
	if err := bperrors.ValidateName(name); err != nil {
		s.writeError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	book, stats, err := s.runner.AggregateReader(r.Context(), body, "upload", opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if book.Len() == 0 {
		s.writeError(w, r, bperrors.New(bperrors.ErrCodeInvalidSamples, "no games in upload"))
		return
	}

	fit, hit, err := s.runner.FitWithCacheInfo(r.Context(), book.Samples(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.SetFitDefaults()

	a := store.New(name, opening.NewAnalysis(book, fit, fit.Converged(opts.Tolerance)))
	if err := s.store.Put(r.Context(), a); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored analysis", "id", a.ID, "games", a.Games, "openings", book.Len(), "alpha", a.Alpha.String())

	w.Header().Set("Location", "/v1/analyses/"+a.ID)
	writeJSON(w, http.StatusCreated, AnalysisResponse{
		Summary:  a.Summary(),
		Openings: book.Len(),
		Skipped:  stats.Skipped,
		Cached:   hit,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, bperrors.New(bperrors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": list})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalysisPlot(w http.ResponseWriter, r *http.Request) {
	kind, format, ok := strings.Cut(chi.URLParam(r, "plot"), ".")
	if !ok || (kind != pipeline.KindScatter && kind != pipeline.KindDensity) {
		s.writeError(w, r, bperrors.New(bperrors.ErrCodeNotFound, "unknown plot %q (want scatter.<fmt> or density.<fmt>)", chi.URLParam(r, "plot")))
		return
	}
	a, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.plotOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, hit, err := s.runner.PlotWithCacheInfo(r.Context(), a.Analysis, kind, format, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeImage(w, format, data)
}

// plotOptions applies the side, ticks, divisions and title query parameters.
func (s *Server) plotOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.opts.Plot
	ints := []struct {
		name     string
		dst      *int
		min, max int
	}{
		{"ticks", &opts.Ticks, 1, 100},
		{"divisions", &opts.Divisions, 1, 200},
	}
	for _, p := range ints {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < p.min || n > p.max {
			return opts, bperrors.New(bperrors.ErrCodeInvalidInput, "%s must be an integer in [%d, %d]", p.name, p.min, p.max)
		}
		*p.dst = n
	}
	if v := q.Get("side"); v != "" {
		side, err := strconv.ParseFloat(v, 64)
		if err != nil || side < 50 || side > 4000 {
			return opts, bperrors.New(bperrors.ErrCodeInvalidInput, "side must be a number in [50, 4000]")
		}
		opts.Side = side
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	return opts, nil
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return strings.ToLower(f)
	}
	return render.FormatSVG
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

var contentTypes = map[string]string{
	render.FormatSVG: "image/svg+xml",
	render.FormatPNG: "image/png",
	render.FormatPDF: "application/pdf",
}

func writeImage(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return bperrors.Wrap(bperrors.ErrCodeInvalidInput, err, "decode request body")
	}
	if err := validate.Struct(v); err != nil {
		return bperrors.Wrap(bperrors.ErrCodeInvalidInput, err, "invalid request")
	}
	return nil
}
