// Package store is the progress store: the single owner of every writing,
// speech, review, streak, the profile and the start date. State lives in a
// key-value backend as six JSON values.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/TobiSchelling/DailyPen/internal/curriculum"
)

// Persisted keys. Renaming any of them orphans existing user data.
const (
	KeyWritings  = "dailypen_writings"
	KeySpeeches  = "dailypen_speeches"
	KeyReviews   = "dailypen_reviews"
	KeyStreaks   = "dailypen_streaks"
	KeyProfile   = "dailypen_profile"
	KeyStartDate = "dailypen_start_date"
)

// AllKeys lists every key the store owns.
var AllKeys = []string{KeyWritings, KeySpeeches, KeyReviews, KeyStreaks, KeyProfile, KeyStartDate}

// DefaultDisplayName is the profile name used until the user picks one.
const DefaultDisplayName = "写作者"

const dateLayout = "2006-01-02"

// KV is the storage the store persists into. *database.DB implements it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Store reads and writes all progress state. Storage failures never reach
// the caller: reads fall back to defaults and failed writes are dropped,
// both logged at warn.
type Store struct {
	mu          sync.Mutex
	kv          KV
	catalog     *curriculum.Catalog
	now         func() time.Time
	loc         *time.Location
	logger      *zap.Logger
	defaultName string
	entropy     *ulid.MonotonicEntropy
	lastMS      uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day it is.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger for swallowed storage errors.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultName sets the display name of a fresh profile.
func WithDefaultName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.defaultName = name
		}
	}
}

// New returns a store over kv serving materials from catalog.
func New(kv KV, catalog *curriculum.Catalog, opts ...Option) *Store {
	s := &Store{
		kv:          kv,
		catalog:     catalog,
		now:         time.Now,
		loc:         time.Local,
		logger:      zap.NewNop(),
		defaultName: DefaultDisplayName,
		entropy:     ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the curriculum the store serves.
func (s *Store) Catalog() *curriculum.Catalog {
	return s.catalog
}

// Location returns the time zone used for calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) newID(prefix string) string {
	ms := max(ulid.Timestamp(s.now()), s.lastMS)
	for {
		id, err := ulid.New(ms, s.entropy)
		if errors.Is(err, ulid.ErrMonotonicOverflow) {
			// Entropy for this millisecond is used up; borrow the next one.
			ms++
			continue
		}
		if err != nil {
			s.logger.Warn("generating id failed", zap.Error(err))
			return fmt.Sprintf("%s%d", prefix, s.now().UnixNano())
		}
		s.lastMS = ms
		return prefix + id.String()
	}
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Round(0)
}

func (s *Store) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Store) todayString() string {
	return s.today().Format(dateLayout)
}

// read decodes the value under key into dst. It reports false when the key
// is absent, unreadable or corrupt, leaving dst untouched.
func (s *Store) read(key string, dst any) bool {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("reading key failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding corrupt value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("encoding value failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		s.logger.Warn("writing key failed", zap.String("key", key), zap.Error(err))
	}
}

func readList[T any](s *Store, key string) []T {
	var list []T
	if !s.read(key, &list) || list == nil {
		return []T{}
	}
	return list
}

// StartDate returns the day the user began, setting it to today on first use.
func (s *Store) StartDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startDate()
}

func (s *Store) startDate() string {
	var stored string
	if s.read(KeyStartDate, &stored) {
		if _, err := time.Parse(dateLayout, stored); err == nil {
			return stored
		}
		s.logger.Warn("discarding invalid start date", zap.String("value", stored))
	}
	today := s.todayString()
	s.write(KeyStartDate, today)
	return today
}

// CurrentDay returns the 1-based number of calendar days since the start
// date. A start date in the future yields 1.
func (s *Store) CurrentDay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentDay()
}

func (s *Store) currentDay() int {
	start, err := time.Parse(dateLayout, s.startDate())
	if err != nil {
		return 1
	}
	days := int(s.today().Sub(start).Hours()/24) + 1
	return max(1, days)
}

// CurrentPhase returns the phase for the current day.
func (s *Store) CurrentPhase() curriculum.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PhaseForDay(s.currentDay())
}

// PhaseForDay maps a day count to its phase. Phase 3 has no upper bound.
func PhaseForDay(day int) curriculum.Phase {
	switch {
	case day <= 14:
		return curriculum.PhaseImitation
	case day <= 30:
		return curriculum.PhaseTransition
	default:
		return curriculum.PhaseCreation
	}
}

func dayInCycle(day int) int {
	if day < 1 {
		day = 1
	}
	return (day-1)%curriculum.CycleLength + 1
}

// DailyPlan returns today's materials and streak record.
func (s *Store) DailyPlan() DailyPlan {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.currentDay()
	slot := dayInCycle(day)
	plan := DailyPlan{
		Day:      day,
		Phase:    PhaseForDay(day),
		Writing:  s.catalog.WritingForDay(slot),
		Speech:   s.catalog.SpeechForDay(slot),
		Analysis: s.catalog.AnalysisForDay(slot),
	}

	today := s.todayString()
	for _, st := range readList[Streak](s, KeyStreaks) {
		if st.Date == today {
			plan.Streak = &st
			break
		}
	}
	return plan
}

// Writings returns every saved writing in insertion order.
func (s *Store) Writings() []Writing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[Writing](s, KeyWritings)
}

// Speeches returns every saved speech in insertion order.
func (s *Store) Speeches() []Speech {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[Speech](s, KeySpeeches)
}

// Reviews returns every saved review in insertion order.
func (s *Store) Reviews() []AIReview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[AIReview](s, KeyReviews)
}

// Streaks returns every streak record in insertion order.
func (s *Store) Streaks() []Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readList[Streak](s, KeyStreaks)
}

// SaveWriting records a writing, marks today's writing as done and adds its
// word count to the profile.
func (s *Store) SaveWriting(in NewWriting) Writing {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := Writing{
		ID:         s.newID("w-"),
		UserID:     LocalUser,
		MaterialID: in.MaterialID,
		Content:    in.Content,
		WordCount:  max(0, in.WordCount),
		TimeSpent:  max(0, in.TimeSpent),
		CreatedAt:  s.timestamp(),
	}
	writings := readList[Writing](s, KeyWritings)
	writings = append(writings, w)
	s.write(KeyWritings, writings)

	s.markDone(activityWriting)
	s.updateProfile(w.WordCount)
	return w
}

// SaveSpeech records a speech, marks today's speech as done and adds its
// word count to the profile.
func (s *Store) SaveSpeech(in NewSpeech) Speech {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp := Speech{
		ID:               s.newID("s-"),
		UserID:           LocalUser,
		SpeechMaterialID: in.SpeechMaterialID,
		Content:          in.Content,
		WordCount:        max(0, in.WordCount),
		TimeSpent:        max(0, in.TimeSpent),
		CreatedAt:        s.timestamp(),
	}
	speeches := readList[Speech](s, KeySpeeches)
	speeches = append(speeches, sp)
	s.write(KeySpeeches, speeches)

	s.markDone(activitySpeech)
	s.updateProfile(sp.WordCount)
	return sp
}

// SaveReview records a review. It has no streak or profile side effects.
func (s *Store) SaveReview(in NewReview) AIReview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveReview(in)
}

func (s *Store) saveReview(in NewReview) AIReview {
	r := AIReview{
		ID:            s.newID("r-"),
		TargetType:    in.TargetType,
		TargetID:      in.TargetID,
		ReviewContent: in.ReviewContent,
		Scores:        in.Scores,
		Suggestions:   in.Suggestions,
		RewriteDemo:   in.RewriteDemo,
		CreatedAt:     s.timestamp(),
	}
	if r.Scores == nil {
		r.Scores = map[string]float64{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	reviews := readList[AIReview](s, KeyReviews)
	reviews = append(reviews, r)
	s.write(KeyReviews, reviews)
	return r
}

// MarkAnalysisDone marks today's speech analysis as done.
func (s *Store) MarkAnalysisDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markDone(activityAnalysis)
}

type activity int

const (
	activityWriting activity = iota
	activitySpeech
	activityAnalysis
)

// markDone sets one flag on today's streak, creating the record if needed.
// Flags are never cleared.
func (s *Store) markDone(a activity) {
	streaks := readList[Streak](s, KeyStreaks)
	today := s.todayString()

	idx := -1
	for i := range streaks {
		if streaks[i].Date == today {
			idx = i
			break
		}
	}
	if idx < 0 {
		streaks = append(streaks, Streak{
			ID:     s.newID("streak-"),
			UserID: LocalUser,
			Date:   today,
		})
		idx = len(streaks) - 1
	}

	switch a {
	case activityWriting:
		streaks[idx].WritingDone = true
	case activitySpeech:
		streaks[idx].SpeechDone = true
	case activityAnalysis:
		streaks[idx].AnalysisDone = true
	}
	s.write(KeyStreaks, streaks)
}

// Profile returns the stored profile, or an unsaved default.
func (s *Store) Profile() UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile()
}

func (s *Store) profile() UserProfile {
	var p UserProfile
	if s.read(KeyProfile, &p) {
		return p
	}
	return UserProfile{
		ID:          LocalUser,
		UserID:      LocalUser,
		DisplayName: s.defaultName,
		Level:       1,
		CreatedAt:   s.timestamp(),
	}
}

// updateProfile adds words to the total and recomputes days and level from
// the streak records.
func (s *Store) updateProfile(wordsAdded int) {
	p := s.profile()
	p.TotalWords += wordsAdded
	p.TotalDays = len(readList[Streak](s, KeyStreaks))
	p.Level = LevelForDays(p.TotalDays)
	s.write(KeyProfile, p)
}

// LevelForDays returns the level reached after the given number of days.
func LevelForDays(days int) int {
	return days/7 + 1
}

// UpdateProfileName changes the display name.
func (s *Store) UpdateProfileName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile()
	p.DisplayName = name
	s.write(KeyProfile, p)
}

// ConsecutiveDays counts streak records on today and the days immediately
// before it, stopping at the first missing day.
func (s *Store) ConsecutiveDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveDays()
}

func (s *Store) consecutiveDays() int {
	dates := make([]string, 0)
	for _, st := range readList[Streak](s, KeyStreaks) {
		dates = append(dates, st.Date)
	}
	sortDatesDesc(dates)

	today := s.today()
	count := 0
	for i, d := range dates {
		if d != today.AddDate(0, 0, -i).Format(dateLayout) {
			break
		}
		count++
	}
	return count
}

// WritingMaterial looks up a writing exercise by id.
func (s *Store) WritingMaterial(id string) *curriculum.WritingMaterial {
	return s.catalog.WritingByID(id)
}

// SpeechMaterial looks up a speech exercise by id.
func (s *Store) SpeechMaterial(id string) *curriculum.SpeechMaterial {
	return s.catalog.SpeechByID(id)
}

// Analysis looks up a speech analysis by id.
func (s *Store) Analysis(id string) *curriculum.SpeechAnalysis {
	return s.catalog.AnalysisByID(id)
}

// ReviewByTarget returns the first review of the given writing or speech id.
func (s *Store) ReviewByTarget(targetID string) *AIReview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewByTarget(targetID)
}

func (s *Store) reviewByTarget(targetID string) *AIReview {
	for _, r := range readList[AIReview](s, KeyReviews) {
		if r.TargetID == targetID {
			return &r
		}
	}
	return nil
}

// ReviewOrCreate returns the existing review for targetID, or saves the one
// produced by generate. The lookup and save happen under one lock so a
// target never gets two reviews from this process.
func (s *Store) ReviewOrCreate(targetID string, generate func() NewReview) AIReview {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.reviewByTarget(targetID); r != nil {
		return *r
	}
	in := generate()
	in.TargetID = targetID
	return s.saveReview(in)
}

// Writing returns the saved writing with the given id, or nil.
func (s *Store) Writing(id string) *Writing {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range readList[Writing](s, KeyWritings) {
		if w.ID == id {
			return &w
		}
	}
	return nil
}

// Speech returns the saved speech with the given id, or nil.
func (s *Store) Speech(id string) *Speech {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range readList[Speech](s, KeySpeeches) {
		if sp.ID == id {
			return &sp
		}
	}
	return nil
}

// Reset deletes all persisted state. The next read starts over from day 1.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(AllKeys...); err != nil {
		s.logger.Warn("reset failed", zap.Error(err))
	}
}
