package store

import (
	"time"

	"github.com/TobiSchelling/DailyPen/internal/curriculum"
)

// LocalUser is the user id stamped on every record.
const LocalUser = "local"

// TargetType discriminates what an AIReview evaluates.
type TargetType string

const (
	TargetWriting TargetType = "writing"
	TargetSpeech  TargetType = "speech"
)

// Valid reports whether t is writing or speech.
func (t TargetType) Valid() bool {
	return t == TargetWriting || t == TargetSpeech
}

// Writing is a submitted writing exercise.
type Writing struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MaterialID string    `json:"material_id"`
	Content    string    `json:"content"`
	WordCount  int       `json:"word_count"`
	TimeSpent  int       `json:"time_spent"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewWriting holds the caller-supplied fields of a Writing.
type NewWriting struct {
	MaterialID string
	Content    string
	WordCount  int
	TimeSpent  int
}

// Speech is a submitted speech exercise (its transcript or outline).
type Speech struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	SpeechMaterialID string    `json:"speech_material_id"`
	Content          string    `json:"content"`
	WordCount        int       `json:"word_count"`
	TimeSpent        int       `json:"time_spent"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewSpeech holds the caller-supplied fields of a Speech.
type NewSpeech struct {
	SpeechMaterialID string
	Content          string
	WordCount        int
	TimeSpent        int
}

// AIReview is feedback attached to a writing or speech.
type AIReview struct {
	ID            string             `json:"id"`
	TargetType    TargetType         `json:"target_type"`
	TargetID      string             `json:"target_id"`
	ReviewContent string             `json:"review_content"`
	Scores        map[string]float64 `json:"scores"`
	Suggestions   []string           `json:"suggestions"`
	RewriteDemo   string             `json:"rewrite_demo"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewReview holds the caller-supplied fields of an AIReview.
type NewReview struct {
	TargetType    TargetType
	TargetID      string
	ReviewContent string
	Scores        map[string]float64
	Suggestions   []string
	RewriteDemo   string
}

// Streak tracks which activities were completed on one calendar day.
type Streak struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	WritingDone  bool   `json:"writing_done"`
	SpeechDone   bool   `json:"speech_done"`
	AnalysisDone bool   `json:"analysis_done"`
}

// Complete reports whether all three activities are done.
func (s Streak) Complete() bool {
	return s.WritingDone && s.SpeechDone && s.AnalysisDone
}

// Level counts the activities done that day, 0 to 3.
func (s Streak) Level() int {
	n := 0
	for _, done := range []bool{s.WritingDone, s.SpeechDone, s.AnalysisDone} {
		if done {
			n++
		}
	}
	return n
}

// UserProfile is the singleton profile with aggregate progress.
type UserProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	TotalWords  int       `json:"total_words"`
	TotalDays   int       `json:"total_days"`
	CreatedAt   time.Time `json:"created_at"`
}

// DailyPlan is what the user should practice today.
type DailyPlan struct {
	Day      int
	Phase    curriculum.Phase
	Writing  *curriculum.WritingMaterial
	Speech   *curriculum.SpeechMaterial
	Analysis *curriculum.SpeechAnalysis
	Streak   *Streak
}

// DayInCycle returns the curriculum slot, 1..30, that Day maps to.
func (p DailyPlan) DayInCycle() int {
	return dayInCycle(p.Day)
}

// Achievement is a milestone badge.
type Achievement struct {
	Icon     string
	Title    string
	Desc     string
	Unlocked bool
}

// Entry is a writing or speech in the recent activity list.
type Entry struct {
	Kind       TargetType
	ID         string
	MaterialID string
	Label      string
	WordCount  int
	CreatedAt  time.Time
}

// HistoryDay summarizes one calendar day of practice.
type HistoryDay struct {
	Streak   Streak
	Writings int
	Speeches int
	Words    int
}

// HeatmapDay is one cell of the activity heatmap.
type HeatmapDay struct {
	Date    string // YYYY-MM-DD
	Weekday time.Weekday
	Level   int // activities done, 0..3
}
