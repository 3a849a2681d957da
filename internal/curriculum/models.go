package curriculum

// Phase is one of the three curriculum stages.
type Phase int

const (
	PhaseImitation  Phase = 1
	PhaseTransition Phase = 2
	PhaseCreation   Phase = 3
)

type WritingType string

const (
	WritingCopy          WritingType = "copy"
	WritingFillBlank     WritingType = "fill_blank"
	WritingImitate       WritingType = "imitate"
	WritingSummarize     WritingType = "summarize"
	WritingRewrite       WritingType = "rewrite"
	WritingImageWrite    WritingType = "image_write"
	WritingContinueWrite WritingType = "continue_write"
	WritingTopic         WritingType = "topic"
	WritingFree          WritingType = "free"
)

type SpeechType string

const (
	SpeechSelfIntro    SpeechType = "self_intro"
	SpeechRetell       SpeechType = "retell"
	SpeechExplainQuote SpeechType = "explain_quote"
	SpeechElevator     SpeechType = "elevator"
	SpeechImpromptu    SpeechType = "impromptu"
	SpeechStorytelling SpeechType = "storytelling"
	SpeechPersuade     SpeechType = "persuade"
	SpeechTED          SpeechType = "ted"
	SpeechScenario     SpeechType = "scenario"
)

// WritingMaterial is a writing exercise in the curriculum.
type WritingMaterial struct {
	ID         string      `yaml:"id" json:"id"`
	Type       WritingType `yaml:"type" json:"type"`
	Title      string      `yaml:"title" json:"title"`
	Content    string      `yaml:"content" json:"content"`
	ImageURL   string      `yaml:"image_url,omitempty" json:"image_url,omitempty"`
	Difficulty int         `yaml:"difficulty" json:"difficulty"`
	DayNumber  int         `yaml:"day_number" json:"day_number"`
	Phase      Phase       `yaml:"phase" json:"phase"`
}

// SpeechMaterial is a speech exercise in the curriculum.
type SpeechMaterial struct {
	ID               string     `yaml:"id" json:"id"`
	Type             SpeechType `yaml:"type" json:"type"`
	Title            string     `yaml:"title" json:"title"`
	Prompt           string     `yaml:"prompt" json:"prompt"`
	ReferenceText    string     `yaml:"reference_text,omitempty" json:"reference_text,omitempty"`
	Difficulty       int        `yaml:"difficulty" json:"difficulty"`
	DayNumber        int        `yaml:"day_number" json:"day_number"`
	Phase            Phase      `yaml:"phase" json:"phase"`
	TimeLimitSeconds int        `yaml:"time_limit_seconds" json:"time_limit_seconds"`
}

// Segment is one part of a speech's structure breakdown.
type Segment struct {
	Type    string `yaml:"type" json:"type"` // opening, body or closing
	Label   string `yaml:"label" json:"label"`
	Content string `yaml:"content" json:"content"`
}

// Technique annotates a phrase of a speech with the rhetorical device it uses.
type Technique struct {
	Text        string `yaml:"text" json:"text"`
	Technique   string `yaml:"technique" json:"technique"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// SpeechAnalysis is an annotated famous speech.
type SpeechAnalysis struct {
	ID                 string      `yaml:"id" json:"id"`
	Title              string      `yaml:"title" json:"title"`
	Speaker            string      `yaml:"speaker" json:"speaker"`
	Occasion           string      `yaml:"occasion" json:"occasion"`
	Background         string      `yaml:"background" json:"background"`
	FullText           string      `yaml:"full_text" json:"full_text"`
	StructureBreakdown []Segment   `yaml:"structure_breakdown" json:"structure_breakdown"`
	Techniques         []Technique `yaml:"techniques" json:"techniques"`
	Quotes             []string    `yaml:"quotes" json:"quotes"`
	ExercisePrompt     string      `yaml:"exercise_prompt" json:"exercise_prompt"`
	VideoURL           string      `yaml:"video_url,omitempty" json:"video_url,omitempty"`
	DayNumber          int         `yaml:"day_number" json:"day_number"`
}

// clone returns a copy that shares no slices with a.
func (a SpeechAnalysis) clone() SpeechAnalysis {
	a.StructureBreakdown = append([]Segment(nil), a.StructureBreakdown...)
	a.Techniques = append([]Technique(nil), a.Techniques...)
	a.Quotes = append([]string(nil), a.Quotes...)
	return a
}
