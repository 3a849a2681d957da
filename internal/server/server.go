package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/TobiSchelling/DailyPen/internal/curriculum"
	"github.com/TobiSchelling/DailyPen/internal/review"
	"github.com/TobiSchelling/DailyPen/internal/store"
	"github.com/TobiSchelling/DailyPen/internal/textstat"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var pageNames = []string{
	"index.html",
	"writing.html",
	"speech.html",
	"analysis.html",
	"analyses.html",
	"review.html",
	"history.html",
	"profile.html",
}

// Server is the local web UI for daily practice.
type Server struct {
	store  *store.Store
	gen    review.Generator
	logger *zap.Logger
	pages  map[string]*template.Template
	mux    *http.ServeMux
}

// New creates a new Server.
func New(st *store.Store, gen review.Generator, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	funcMap := template.FuncMap{
		"markdown":    renderMarkdown,
		"safeHTML":    func(s string) template.HTML { return template.HTML(s) }, //nolint: gosec
		"comma":       func(n int) string { return humanize.Comma(int64(n)) },
		"ago":         func(t time.Time) string { return relTime(t, st.Now()) },
		"date":        func(t time.Time) string { return t.In(st.Location()).Format("2006-01-02 15:04") },
		"duration":    formatDuration,
		"excerpt":     textstat.Excerpt,
		"phaseLabel":  func(p curriculum.Phase) string { return p.Label() },
		"phaseDesc":   func(p curriculum.Phase) string { return p.Description() },
		"scorePct":    func(v float64) int { return int(v * 10) },
		"stars":       func(n int) string { return strings.Repeat("★", n) + strings.Repeat("☆", 3-n) },
		"writingType": func(t curriculum.WritingType) string { return t.Label() },
		"speechType":  func(t curriculum.SpeechType) string { return t.Label() },
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of the base so that "title" and "content"
	// can be redefined per page.
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{store: st, gen: gen, logger: logger, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /writing/{id}", s.handleWriting)
	s.mux.HandleFunc("POST /writing/{id}", s.handleSubmitWriting)
	s.mux.HandleFunc("GET /speech/{id}", s.handleSpeech)
	s.mux.HandleFunc("POST /speech/{id}", s.handleSubmitSpeech)
	s.mux.HandleFunc("GET /analysis", s.handleAnalysisList)
	s.mux.HandleFunc("GET /analysis/{id}", s.handleAnalysis)
	s.mux.HandleFunc("POST /analysis/{id}/done", s.handleAnalysisDone)
	s.mux.HandleFunc("GET /review/{type}/{id}", s.handleReview)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /profile", s.handleProfile)
	s.mux.HandleFunc("POST /profile/name", s.handleRename)
	s.mux.HandleFunc("POST /profile/reset", s.handleReset)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	plan := s.store.DailyPlan()
	s.render(w, "index.html", map[string]any{
		"Plan":        plan,
		"Profile":     s.store.Profile(),
		"Consecutive": s.store.ConsecutiveDays(),
		"Recent":      s.store.RecentEntries(5),
		"Heatmap":     heatmapWeeks(s.store.Heatmap(heatmapDays)),
	})
}

func (s *Server) handleWriting(w http.ResponseWriter, r *http.Request) {
	m := s.store.WritingMaterial(r.PathValue("id"))
	if m == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "writing.html", map[string]any{"Material": m})
}

func (s *Server) handleSubmitWriting(w http.ResponseWriter, r *http.Request) {
	m := s.store.WritingMaterial(r.PathValue("id"))
	if m == nil {
		http.NotFound(w, r)
		return
	}

	content, words, err := submission(r)
	if err != nil {
		s.render(w, "writing.html", map[string]any{"Material": m, "Error": err.Error(), "Draft": r.FormValue("content")})
		return
	}

	saved := s.store.SaveWriting(store.NewWriting{
		MaterialID: m.ID,
		Content:    content,
		WordCount:  words,
		TimeSpent:  formSeconds(r, "time_spent"),
	})
	s.logger.Info("writing saved", zap.String("id", saved.ID), zap.String("material", m.ID), zap.Int("words", words))
	http.Redirect(w, r, "/review/writing/"+saved.ID, http.StatusSeeOther)
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	m := s.store.SpeechMaterial(r.PathValue("id"))
	if m == nil {
		http.NotFound(w, r)
		return
	}
	s.render(w, "speech.html", map[string]any{"Material": m})
}

func (s *Server) handleSubmitSpeech(w http.ResponseWriter, r *http.Request) {
	m := s.store.SpeechMaterial(r.PathValue("id"))
	if m == nil {
		http.NotFound(w, r)
		return
	}

	content, words, err := submission(r)
	if err != nil {
		s.render(w, "speech.html", map[string]any{"Material": m, "Error": err.Error(), "Draft": r.FormValue("content")})
		return
	}

	saved := s.store.SaveSpeech(store.NewSpeech{
		SpeechMaterialID: m.ID,
		Content:          content,
		WordCount:        words,
		TimeSpent:        formSeconds(r, "time_spent"),
	})
	s.logger.Info("speech saved", zap.String("id", saved.ID), zap.String("material", m.ID), zap.Int("words", words))
	http.Redirect(w, r, "/review/speech/"+saved.ID, http.StatusSeeOther)
}

func (s *Server) handleAnalysisList(w http.ResponseWriter, r *http.Request) {
	s.render(w, "analyses.html", map[string]any{
		"Analyses": s.store.Catalog().Analyses(),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a := s.store.Analysis(r.PathValue("id"))
	if a == nil {
		http.NotFound(w, r)
		return
	}
	plan := s.store.DailyPlan()
	s.render(w, "analysis.html", map[string]any{
		"Analysis": a,
		"Done":     plan.Streak != nil && plan.Streak.AnalysisDone,
	})
}

func (s *Server) handleAnalysisDone(w http.ResponseWriter, r *http.Request) {
	if s.store.Analysis(r.PathValue("id")) == nil {
		http.NotFound(w, r)
		return
	}
	s.store.MarkAnalysisDone()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type scoreRow struct {
	Name  string
	Score float64
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	target := store.TargetType(r.PathValue("type"))
	id := r.PathValue("id")

	rv, tgt, err := review.ForTarget(s.store, s.gen, target, id)
	if errors.Is(err, review.ErrTargetNotFound) || errors.Is(err, review.ErrUnknownTargetType) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("loading review", zap.String("target", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var scores []scoreRow
	for _, dim := range review.Dimensions(target) {
		if v, ok := rv.Scores[dim]; ok {
			scores = append(scores, scoreRow{Name: dim, Score: v})
		}
	}

	data := map[string]any{
		"Review":    rv,
		"Scores":    scores,
		"Kind":      target,
		"Content":   tgt.Content,
		"WordCount": tgt.WordCount,
	}
	if target == store.TargetWriting {
		if m := s.store.WritingMaterial(tgt.MaterialID); m != nil {
			data["Title"] = m.Title
		}
	} else if m := s.store.SpeechMaterial(tgt.MaterialID); m != nil {
		data["Title"] = m.Title
	}
	s.render(w, "review.html", data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.render(w, "history.html", map[string]any{
		"Days":   s.store.History(),
		"Recent": s.store.RecentEntries(20),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	s.render(w, "profile.html", map[string]any{
		"Profile":      s.store.Profile(),
		"Achievements": s.store.Achievements(),
		"Consecutive":  s.store.ConsecutiveDays(),
		"Day":          s.store.CurrentDay(),
		"StartDate":    s.store.StartDate(),
	})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("display_name"))
	if name != "" {
		s.store.UpdateProfileName(name)
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("confirm") != "yes" {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	s.store.Reset()
	s.logger.Warn("all progress data reset")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("template not found", zap.String("template", name))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		s.logger.Error("rendering template", zap.String("template", name), zap.Error(err))
	}
}

// submission reads the Markdown body of a writing or speech form and returns
// its HTML and character count.
func submission(r *http.Request) (string, int, error) {
	source := strings.TrimSpace(r.FormValue("content"))
	if source == "" {
		return "", 0, errors.New("内容不能为空")
	}
	html, err := textstat.RenderMarkdown(source)
	if err != nil {
		return "", 0, err
	}
	return html, textstat.Count(html), nil
}

func formSeconds(r *http.Request, field string) int {
	n, err := strconv.Atoi(r.FormValue(field))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func renderMarkdown(text string) template.HTML {
	html, err := textstat.RenderMarkdown(text)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(html) //nolint: gosec
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%d秒", seconds)
	}
	if seconds%60 == 0 {
		return fmt.Sprintf("%d分钟", seconds/60)
	}
	return fmt.Sprintf("%d分%d秒", seconds/60, seconds%60)
}

const heatmapDays = 90

// heatmapWeeks lays days out in Sunday-first columns of seven, padding the
// first week with blank cells.
func heatmapWeeks(days []store.HeatmapDay) [][]store.HeatmapDay {
	if len(days) == 0 {
		return nil
	}
	cells := make([]store.HeatmapDay, int(days[0].Weekday), int(days[0].Weekday)+len(days))
	cells = append(cells, days...)

	var weeks [][]store.HeatmapDay
	for len(cells) > 0 {
		n := min(7, len(cells))
		weeks = append(weeks, cells[:n])
		cells = cells[n:]
	}
	return weeks
}

var relTimeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "刚刚", DivBy: 1},
	{D: time.Hour, Format: "%d分钟%s", DivBy: time.Minute},
	{D: 24 * time.Hour, Format: "%d小时%s", DivBy: time.Hour},
	{D: 30 * 24 * time.Hour, Format: "%d天%s", DivBy: 24 * time.Hour},
	{D: 365 * 24 * time.Hour, Format: "%d个月%s", DivBy: 30 * 24 * time.Hour},
	{D: math.MaxInt64, Format: "%d年%s", DivBy: 365 * 24 * time.Hour},
}

// relTime describes t relative to now in Chinese, e.g. "3小时前".
func relTime(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "前", "后", relTimeMagnitudes)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Serve starts the HTTP server on the given port, bound to localhost.
func Serve(st *store.Store, gen review.Generator, logger *zap.Logger, port int) error {
	srv, err := New(st, gen, logger)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv.logger.Info("server listening", zap.String("url", "http://"+addr))
	return http.ListenAndServe(addr, srv.Handler())
}
