package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/TobiSchelling/DailyPen/internal/curriculum"
	"github.com/TobiSchelling/DailyPen/internal/database"
)

type memKV struct {
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type failingKV struct{}

var errUnavailable = errors.New("storage unavailable")

func (failingKV) Get(string) (string, bool, error) { return "", false, errUnavailable }
func (failingKV) Set(string, string) error         { return errUnavailable }
func (failingKV) Delete(...string) error           { return errUnavailable }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advanceDays(n int) { c.t = c.t.AddDate(0, 0, n) }

func newTestStore(t *testing.T, kv KV, at time.Time) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: at}
	s := New(kv, curriculum.MustLoad(), WithClock(clock.now), WithLocation(time.UTC))
	return s, clock
}

func seed(t *testing.T, kv *memKV, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	kv.data[key] = string(data)
}

func seedStreaks(t *testing.T, kv *memKV, dates ...string) {
	t.Helper()
	var streaks []Streak
	for i, d := range dates {
		streaks = append(streaks, Streak{ID: "streak-" + string(rune('a'+i)), UserID: LocalUser, Date: d, WritingDone: true})
	}
	seed(t, kv, KeyStreaks, streaks)
}

var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestFreshStoreStartsOnDayOne(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv, noon)

	if day := s.CurrentDay(); day != 1 {
		t.Errorf("expected day 1, got %d", day)
	}
	if got := s.StartDate(); got != "2026-03-10" {
		t.Errorf("expected start date 2026-03-10, got %q", got)
	}
	if _, ok := kv.data[KeyStartDate]; !ok {
		t.Error("expected start date to be persisted")
	}
}

func TestStartDateIsStable(t *testing.T) {
	s, clock := newTestStore(t, newMemKV(), noon)
	first := s.StartDate()
	clock.advanceDays(5)
	if got := s.StartDate(); got != first {
		t.Errorf("start date moved from %q to %q", first, got)
	}
	if day := s.CurrentDay(); day != 6 {
		t.Errorf("expected day 6, got %d", day)
	}
}

func TestCurrentDay(t *testing.T) {
	tests := []struct {
		name  string
		start string
		now   time.Time
		want  int
	}{
		{"same day", "2026-03-10", noon, 1},
		{"next day just after midnight", "2026-03-10", time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC), 2},
		{"nine days later", "2026-03-01", noon, 10},
		{"across month end", "2026-02-20", noon, 19},
		{"start in the future", "2026-04-01", noon, 1},
		{"one year", "2025-03-10", noon, 366},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			seed(t, kv, KeyStartDate, tt.start)
			s, _ := newTestStore(t, kv, tt.now)
			if got := s.CurrentDay(); got != tt.want {
				t.Errorf("CurrentDay() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentDayUsesConfiguredZone(t *testing.T) {
	kv := newMemKV()
	seed(t, kv, KeyStartDate, "2026-03-10")
	// 20:00 UTC is already the next morning at UTC+8.
	clock := &fakeClock{t: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}
	s := New(kv, curriculum.MustLoad(), WithClock(clock.now), WithLocation(time.FixedZone("UTC+8", 8*3600)))

	if got := s.CurrentDay(); got != 2 {
		t.Errorf("expected day 2 in UTC+8, got %d", got)
	}
}

func TestCorruptStartDateResets(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyStartDate] = `"not-a-date"`
	s, _ := newTestStore(t, kv, noon)
	if got := s.StartDate(); got != "2026-03-10" {
		t.Errorf("expected today, got %q", got)
	}
}

func TestPhaseForDay(t *testing.T) {
	tests := []struct {
		day  int
		want curriculum.Phase
	}{
		{1, 1}, {14, 1}, {15, 2}, {30, 2}, {31, 3}, {60, 3}, {1000, 3},
	}
	for _, tt := range tests {
		if got := PhaseForDay(tt.day); got != tt.want {
			t.Errorf("PhaseForDay(%d) = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestCurrentPhase(t *testing.T) {
	kv := newMemKV()
	seed(t, kv, KeyStartDate, "2026-02-24") // day 15 on 2026-03-10
	s, clock := newTestStore(t, kv, noon)

	if got := s.CurrentPhase(); got != curriculum.PhaseTransition {
		t.Errorf("expected phase 2, got %d", got)
	}
	clock.advanceDays(16)
	if got := s.CurrentPhase(); got != curriculum.PhaseCreation {
		t.Errorf("expected phase 3, got %d", got)
	}
}

func TestDailyPlanCycles(t *testing.T) {
	kv := newMemKV()
	s, clock := newTestStore(t, kv, noon)

	day1 := s.DailyPlan()
	if day1.Day != 1 || day1.Phase != curriculum.PhaseImitation {
		t.Fatalf("unexpected plan %+v", day1)
	}
	if day1.Writing == nil || day1.Writing.DayNumber != 1 {
		t.Fatalf("expected day 1 writing, got %+v", day1.Writing)
	}
	if day1.Streak != nil {
		t.Error("expected no streak before any activity")
	}

	clock.advanceDays(1)
	day2 := s.DailyPlan()
	if day2.Analysis != nil {
		t.Error("expected no analysis on day 2")
	}

	clock.advanceDays(29)
	day31 := s.DailyPlan()
	if day31.Day != 31 || day31.DayInCycle() != 1 {
		t.Fatalf("expected day 31 in slot 1, got day %d slot %d", day31.Day, day31.DayInCycle())
	}
	if day31.Phase != curriculum.PhaseCreation {
		t.Errorf("expected phase 3 on day 31, got %d", day31.Phase)
	}
	if day31.Writing.ID != day1.Writing.ID || day31.Speech.ID != day1.Speech.ID {
		t.Error("expected day 31 to reuse day 1 materials")
	}
	if day31.Analysis == nil || day31.Analysis.ID != day1.Analysis.ID {
		t.Error("expected day 31 to reuse day 1 analysis")
	}
}

func TestDailyPlanIncludesTodaysStreak(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)
	s.MarkAnalysisDone()

	plan := s.DailyPlan()
	if plan.Streak == nil {
		t.Fatal("expected today's streak")
	}
	if !plan.Streak.AnalysisDone || plan.Streak.WritingDone {
		t.Errorf("unexpected flags %+v", plan.Streak)
	}
}

func TestDefaultsWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	if n := len(s.Writings()); n != 0 {
		t.Errorf("expected no writings, got %d", n)
	}
	if s.Speeches() == nil || s.Reviews() == nil || s.Streaks() == nil {
		t.Error("expected empty lists, not nil")
	}

	p := s.Profile()
	if p.DisplayName != DefaultDisplayName || p.Level != 1 || p.TotalWords != 0 || p.TotalDays != 0 {
		t.Errorf("unexpected default profile %+v", p)
	}
}

func TestDefaultProfileNotPersisted(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv, noon)
	s.Profile()
	if _, ok := kv.data[KeyProfile]; ok {
		t.Error("reading the profile should not persist it")
	}
}

func TestDefaultNameOption(t *testing.T) {
	s := New(newMemKV(), curriculum.MustLoad(), WithDefaultName("小明"))
	if got := s.Profile().DisplayName; got != "小明" {
		t.Errorf("expected configured default name, got %q", got)
	}
}

func TestSaveWritingRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	saved := s.SaveWriting(NewWriting{MaterialID: "w-1", Content: "<p>你好</p>", WordCount: 2, TimeSpent: 90})
	if saved.UserID != LocalUser {
		t.Errorf("expected user_id local, got %q", saved.UserID)
	}
	if len(saved.ID) < 3 || saved.ID[:2] != "w-" {
		t.Errorf("unexpected id %q", saved.ID)
	}
	if !saved.CreatedAt.Equal(noon) {
		t.Errorf("expected created_at %v, got %v", noon, saved.CreatedAt)
	}

	writings := s.Writings()
	if len(writings) != 1 {
		t.Fatalf("expected 1 writing, got %d", len(writings))
	}
	got := writings[len(writings)-1]
	if got.ID != saved.ID || got.MaterialID != saved.MaterialID || got.Content != saved.Content ||
		got.WordCount != saved.WordCount || got.TimeSpent != saved.TimeSpent || got.UserID != saved.UserID ||
		!got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, saved)
	}

	if found := s.Writing(saved.ID); found == nil || found.ID != saved.ID {
		t.Error("expected lookup by id to find the writing")
	}
	if s.Writing("w-missing") != nil {
		t.Error("expected nil for unknown writing")
	}
}

func TestSaveWritingUpdatesProfile(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 120})
	p := s.Profile()
	if p.TotalWords != 120 {
		t.Errorf("expected 120 words, got %d", p.TotalWords)
	}
	if p.TotalDays != 1 || p.Level != 1 {
		t.Errorf("expected 1 day at level 1, got %d days level %d", p.TotalDays, p.Level)
	}

	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1", WordCount: 30})
	p = s.Profile()
	if p.TotalWords != 150 {
		t.Errorf("expected 150 words, got %d", p.TotalWords)
	}
	if p.TotalDays != 1 {
		t.Errorf("expected total_days to stay 1 on the same day, got %d", p.TotalDays)
	}
}

func TestLevelFollowsStreakCount(t *testing.T) {
	s, clock := newTestStore(t, newMemKV(), noon)
	for i := 0; i < 7; i++ {
		s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 10})
		clock.advanceDays(1)
	}
	p := s.Profile()
	if p.TotalDays != 7 || p.Level != 2 {
		t.Errorf("expected 7 days at level 2, got %d days level %d", p.TotalDays, p.Level)
	}

	// Analysis alone creates a streak record but leaves the profile until the next save.
	s.MarkAnalysisDone()
	if got := s.Profile().TotalDays; got != 7 {
		t.Errorf("expected total_days 7 before next save, got %d", got)
	}
	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1"})
	if got := s.Profile().TotalDays; got != 8 {
		t.Errorf("expected total_days 8, got %d", got)
	}
}

func TestOneStreakPerDay(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 5})
	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 5})
	streaks := s.Streaks()
	if len(streaks) != 1 {
		t.Fatalf("expected 1 streak, got %d", len(streaks))
	}
	if !streaks[0].WritingDone || streaks[0].SpeechDone || streaks[0].AnalysisDone {
		t.Errorf("unexpected flags %+v", streaks[0])
	}
	id := streaks[0].ID

	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1"})
	s.MarkAnalysisDone()
	streaks = s.Streaks()
	if len(streaks) != 1 {
		t.Fatalf("expected still 1 streak, got %d", len(streaks))
	}
	if streaks[0].ID != id {
		t.Error("expected the same streak record to be updated")
	}
	if !streaks[0].Complete() {
		t.Errorf("expected all flags set, got %+v", streaks[0])
	}
	if streaks[0].Date != "2026-03-10" {
		t.Errorf("unexpected date %q", streaks[0].Date)
	}
}

func TestConsecutiveDays(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"none", nil, 0},
		{"no record today", []string{"2026-03-09", "2026-03-08"}, 0},
		{"today only", []string{"2026-03-10"}, 1},
		{"three in a row unsorted", []string{"2026-03-08", "2026-03-10", "2026-03-09"}, 3},
		{"gap two days back", []string{"2026-03-10", "2026-03-09", "2026-03-07", "2026-03-06"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			seedStreaks(t, kv, tt.dates...)
			s, _ := newTestStore(t, kv, noon)
			if got := s.ConsecutiveDays(); got != tt.want {
				t.Errorf("ConsecutiveDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsecutiveDaysAcrossMonth(t *testing.T) {
	kv := newMemKV()
	seedStreaks(t, kv, "2026-03-01", "2026-02-28", "2026-02-27")
	s, _ := newTestStore(t, kv, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	if got := s.ConsecutiveDays(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestConsecutiveDaysCountsAnyActivity(t *testing.T) {
	s, clock := newTestStore(t, newMemKV(), noon)
	s.SaveWriting(NewWriting{MaterialID: "w-1"})
	clock.advanceDays(1)
	s.MarkAnalysisDone()
	if got := s.ConsecutiveDays(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestReviewByTarget(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	if s.ReviewByTarget("w-x") != nil {
		t.Fatal("expected no review yet")
	}
	saved := s.SaveReview(NewReview{
		TargetType:    TargetWriting,
		TargetID:      "w-x",
		ReviewContent: "不错",
		Scores:        map[string]float64{"表达清晰度": 7.5},
		Suggestions:   []string{"多用短句"},
	})
	if saved.ID[:2] != "r-" {
		t.Errorf("unexpected review id %q", saved.ID)
	}

	first := s.ReviewByTarget("w-x")
	second := s.ReviewByTarget("w-x")
	if first == nil || second == nil {
		t.Fatal("expected review")
	}
	if first.ID != saved.ID || second.ID != saved.ID || first.Scores["表达清晰度"] != 7.5 {
		t.Errorf("unexpected review %+v", first)
	}

	// Reviews have no progress side effects.
	if n := len(s.Streaks()); n != 0 {
		t.Errorf("expected no streaks, got %d", n)
	}
}

func TestReviewOrCreate(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)

	calls := 0
	gen := func() NewReview {
		calls++
		return NewReview{TargetType: TargetSpeech, ReviewContent: "ok"}
	}
	a := s.ReviewOrCreate("s-1", gen)
	b := s.ReviewOrCreate("s-1", gen)
	if calls != 1 {
		t.Errorf("expected generator called once, got %d", calls)
	}
	if a.ID != b.ID || a.TargetID != "s-1" {
		t.Errorf("expected same review, got %q and %q", a.ID, b.ID)
	}
	if n := len(s.Reviews()); n != 1 {
		t.Errorf("expected 1 review, got %d", n)
	}
}

func TestUpdateProfileName(t *testing.T) {
	kv := newMemKV()
	s, _ := newTestStore(t, kv, noon)
	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 40})

	s.UpdateProfileName("阿笔")
	p := s.Profile()
	if p.DisplayName != "阿笔" {
		t.Errorf("expected new name, got %q", p.DisplayName)
	}
	if p.TotalWords != 40 {
		t.Errorf("rename should keep totals, got %d words", p.TotalWords)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	kv := newMemKV()
	seed(t, kv, KeyStartDate, "2026-01-01")
	s, _ := newTestStore(t, kv, noon)

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 10})
	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1", WordCount: 10})
	s.SaveReview(NewReview{TargetType: TargetWriting, TargetID: "x"})
	s.UpdateProfileName("someone")

	s.Reset()
	if len(kv.data) != 0 {
		t.Errorf("expected all keys removed, left %v", kv.data)
	}

	if len(s.Writings()) != 0 || len(s.Speeches()) != 0 || len(s.Reviews()) != 0 || len(s.Streaks()) != 0 {
		t.Error("expected empty collections after reset")
	}
	p := s.Profile()
	if p.DisplayName != DefaultDisplayName || p.Level != 1 || p.TotalWords != 0 || p.TotalDays != 0 {
		t.Errorf("unexpected profile after reset %+v", p)
	}
	if day := s.CurrentDay(); day != 1 {
		t.Errorf("expected day 1 after reset, got %d", day)
	}
	if s.ConsecutiveDays() != 0 {
		t.Error("expected no consecutive days after reset")
	}
}

func TestIDsUniqueWithinSameInstant(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		w := s.SaveWriting(NewWriting{MaterialID: "w-1"})
		if seen[w.ID] {
			t.Fatalf("duplicate id %q", w.ID)
		}
		seen[w.ID] = true
	}
	if n := len(s.Writings()); n != 50 {
		t.Errorf("expected 50 writings, got %d", n)
	}
}

func TestCorruptValuesFallBack(t *testing.T) {
	kv := newMemKV()
	kv.data[KeyWritings] = "{not json"
	kv.data[KeyProfile] = "[]"
	kv.data[KeyStreaks] = "null"
	s, _ := newTestStore(t, kv, noon)

	if n := len(s.Writings()); n != 0 {
		t.Errorf("expected empty writings, got %d", n)
	}
	if s.Profile().DisplayName != DefaultDisplayName {
		t.Error("expected default profile")
	}
	if s.Streaks() == nil {
		t.Error("expected empty streak list")
	}

	// A save replaces the corrupt value.
	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 3})
	if n := len(s.Writings()); n != 1 {
		t.Errorf("expected 1 writing, got %d", n)
	}
}

func TestUnavailableStorage(t *testing.T) {
	s, _ := newTestStore(t, failingKV{}, noon)

	w := s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 10})
	if w.ID == "" {
		t.Error("expected a record even when the write is dropped")
	}
	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1"})
	s.MarkAnalysisDone()
	s.UpdateProfileName("x")
	s.Reset()

	if len(s.Writings()) != 0 {
		t.Error("expected reads to fall back to defaults")
	}
	if s.CurrentDay() != 1 {
		t.Error("expected day 1")
	}
	if s.Profile().DisplayName != DefaultDisplayName {
		t.Error("expected default profile")
	}
}

func TestAchievements(t *testing.T) {
	kv := newMemKV()
	seedStreaks(t, kv, "2026-03-08", "2026-03-09")
	s, _ := newTestStore(t, kv, noon)

	unlocked := func() map[string]bool {
		m := make(map[string]bool)
		for _, a := range s.Achievements() {
			m[a.Title] = a.Unlocked
		}
		return m
	}

	got := unlocked()
	if len(got) != 6 {
		t.Fatalf("expected 6 achievements, got %d", len(got))
	}
	for title, ok := range got {
		if ok {
			t.Errorf("expected %s locked", title)
		}
	}

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 10000})
	got = unlocked()
	if !got["初次动笔"] || !got["三日连续"] || !got["万字达人"] {
		t.Errorf("unexpected unlocks %v", got)
	}
	if got["演讲新星"] || got["一周坚持"] || got["月度坚持"] {
		t.Errorf("unexpected unlocks %v", got)
	}
}

func TestRecentEntries(t *testing.T) {
	s, clock := newTestStore(t, newMemKV(), noon)

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 1})
	clock.t = clock.t.Add(time.Minute)
	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1", WordCount: 2})
	clock.t = clock.t.Add(time.Minute)
	s.SaveWriting(NewWriting{MaterialID: "unknown", WordCount: 3})

	entries := s.RecentEntries(5)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].WordCount != 3 || entries[0].Label != "写作" {
		t.Errorf("expected newest unknown writing first, got %+v", entries[0])
	}
	if entries[1].Kind != TargetSpeech || entries[1].Label != "自我介绍" {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
	wantLabel := curriculum.MustLoad().WritingByID("w-1").Type.Label()
	if entries[2].Label != wantLabel {
		t.Errorf("expected label %q, got %q", wantLabel, entries[2].Label)
	}

	if n := len(s.RecentEntries(2)); n != 2 {
		t.Errorf("expected limit 2, got %d", n)
	}
}

func TestHistory(t *testing.T) {
	s, clock := newTestStore(t, newMemKV(), noon)

	s.SaveWriting(NewWriting{MaterialID: "w-1", WordCount: 100})
	s.SaveSpeech(NewSpeech{SpeechMaterialID: "s-1", WordCount: 20})
	clock.advanceDays(2)
	s.MarkAnalysisDone()

	days := s.History()
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Streak.Date != "2026-03-12" || days[0].Writings != 0 || !days[0].Streak.AnalysisDone {
		t.Errorf("unexpected newest day %+v", days[0])
	}
	if days[1].Writings != 1 || days[1].Speeches != 1 || days[1].Words != 120 {
		t.Errorf("unexpected first day %+v", days[1])
	}
}

func TestStoreOverDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dailypen.db")
	db, err := database.Open(path, nil)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	s, _ := newTestStore(t, db, noon)
	saved := s.SaveWriting(NewWriting{MaterialID: "w-2", Content: "内容", WordCount: 2})
	s.UpdateProfileName("持久")
	db.Close()

	db, err = database.Open(path, nil)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	s, _ = newTestStore(t, db, noon)
	writings := s.Writings()
	if len(writings) != 1 || writings[0].ID != saved.ID {
		t.Fatalf("expected saved writing after reopen, got %+v", writings)
	}
	if s.Profile().DisplayName != "持久" {
		t.Error("expected profile to persist")
	}
	if s.StartDate() != "2026-03-10" {
		t.Errorf("unexpected start date %q", s.StartDate())
	}

	s.Reset()
	keys, err := db.Keys()
	if err != nil {
		t.Fatalf("listing keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys after reset, got %v", keys)
	}
}

func TestHeatmap(t *testing.T) {
	kv := newMemKV()
	seed(t, kv, KeyStreaks, []Streak{
		{ID: "streak-a", Date: "2026-03-10", WritingDone: true, SpeechDone: true, AnalysisDone: true},
		{ID: "streak-b", Date: "2026-03-08", SpeechDone: true},
		{ID: "streak-c", Date: "2025-11-01", WritingDone: true},
	})
	s, _ := newTestStore(t, kv, noon)

	days := s.Heatmap(90)
	if len(days) != 90 {
		t.Fatalf("expected 90 days, got %d", len(days))
	}
	last := days[len(days)-1]
	if last.Date != "2026-03-10" || last.Level != 3 {
		t.Errorf("expected today at level 3, got %+v", last)
	}
	if last.Weekday != time.Tuesday {
		t.Errorf("expected Tuesday, got %v", last.Weekday)
	}
	if days[len(days)-3].Level != 1 || days[len(days)-2].Level != 0 {
		t.Errorf("unexpected levels %+v %+v", days[len(days)-3], days[len(days)-2])
	}
	if days[0].Date != "2025-12-11" {
		t.Errorf("expected window to start 2025-12-11, got %s", days[0].Date)
	}
	for _, d := range days {
		if d.Date == "2025-11-01" {
			t.Error("record outside the window should not appear")
		}
	}

	if n := len(s.Heatmap(0)); n != 0 {
		t.Errorf("expected empty heatmap, got %d", n)
	}
}

type saturatedEntropy struct{}

func (saturatedEntropy) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0xFF
	}
	return len(p), nil
}

func TestIDsSurviveEntropyOverflow(t *testing.T) {
	s, _ := newTestStore(t, newMemKV(), noon)
	s.entropy = ulid.Monotonic(saturatedEntropy{}, 0)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		w := s.SaveWriting(NewWriting{MaterialID: "w-1"})
		if seen[w.ID] {
			t.Fatalf("duplicate id %q", w.ID)
		}
		seen[w.ID] = true
	}
}
