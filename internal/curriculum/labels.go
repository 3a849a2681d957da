package curriculum

var writingTypeLabels = map[WritingType]string{
	WritingCopy:          "抄写批注",
	WritingFillBlank:     "填空补全",
	WritingImitate:       "仿写练习",
	WritingSummarize:     "缩写训练",
	WritingRewrite:       "改写练习",
	WritingImageWrite:    "看图写话",
	WritingContinueWrite: "续写练习",
	WritingTopic:         "观点表达",
	WritingFree:          "自由写作",
}

var speechTypeLabels = map[SpeechType]string{
	SpeechSelfIntro:    "自我介绍",
	SpeechRetell:       "复述练习",
	SpeechExplainQuote: "名言解读",
	SpeechElevator:     "电梯演讲",
	SpeechImpromptu:    "即兴表达",
	SpeechStorytelling: "故事化表达",
	SpeechPersuade:     "说服演讲",
	SpeechTED:          "TED分享",
	SpeechScenario:     "场景模拟",
}

var phaseLabels = map[Phase]string{
	PhaseImitation:  "模仿期",
	PhaseTransition: "转化期",
	PhaseCreation:   "创造期",
}

var phaseDescriptions = map[Phase]string{
	PhaseImitation:  "降低门槛，建立习惯",
	PhaseTransition: "有引导的自主表达",
	PhaseCreation:   "自由创作，形成风格",
}

// Label returns the display name of the writing type.
func (t WritingType) Label() string { return writingTypeLabels[t] }

// Valid reports whether t is a known writing type.
func (t WritingType) Valid() bool {
	_, ok := writingTypeLabels[t]
	return ok
}

// Label returns the display name of the speech type.
func (t SpeechType) Label() string { return speechTypeLabels[t] }

// Valid reports whether t is a known speech type.
func (t SpeechType) Valid() bool {
	_, ok := speechTypeLabels[t]
	return ok
}

// Label returns the phase name, e.g. 模仿期.
func (p Phase) Label() string { return phaseLabels[p] }

// Description returns the one-line goal of the phase.
func (p Phase) Description() string { return phaseDescriptions[p] }

// Valid reports whether p is 1, 2 or 3.
func (p Phase) Valid() bool { return p >= PhaseImitation && p <= PhaseCreation }
