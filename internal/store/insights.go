package store

import (
	"sort"
	"time"
)

// Achievements returns every badge with its unlocked state.
func (s *Store) Achievements() []Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()

	writings := len(readList[Writing](s, KeyWritings))
	speeches := len(readList[Speech](s, KeySpeeches))
	consecutive := s.consecutiveDays()
	p := s.profile()

	return []Achievement{
		{Icon: "🌱", Title: "初次动笔", Desc: "完成第一篇写作", Unlocked: writings > 0},
		{Icon: "🎤", Title: "演讲新星", Desc: "完成第一次演讲", Unlocked: speeches > 0},
		{Icon: "🔥", Title: "三日连续", Desc: "连续练习3天", Unlocked: consecutive >= 3},
		{Icon: "⚡", Title: "一周坚持", Desc: "连续练习7天", Unlocked: consecutive >= 7},
		{Icon: "📝", Title: "万字达人", Desc: "累计写作10000字", Unlocked: p.TotalWords >= 10000},
		{Icon: "🏆", Title: "月度坚持", Desc: "累计练习30天", Unlocked: p.TotalDays >= 30},
	}
}

// RecentEntries merges writings and speeches, newest first, up to limit.
func (s *Store) RecentEntries(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry
	for _, w := range readList[Writing](s, KeyWritings) {
		label := "写作"
		if m := s.catalog.WritingByID(w.MaterialID); m != nil {
			label = m.Type.Label()
		}
		entries = append(entries, Entry{
			Kind:       TargetWriting,
			ID:         w.ID,
			MaterialID: w.MaterialID,
			Label:      label,
			WordCount:  w.WordCount,
			CreatedAt:  w.CreatedAt,
		})
	}
	for _, sp := range readList[Speech](s, KeySpeeches) {
		label := "演讲"
		if m := s.catalog.SpeechByID(sp.SpeechMaterialID); m != nil {
			label = m.Type.Label()
		}
		entries = append(entries, Entry{
			Kind:       TargetSpeech,
			ID:         sp.ID,
			MaterialID: sp.SpeechMaterialID,
			Label:      label,
			WordCount:  sp.WordCount,
			CreatedAt:  sp.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// History returns one row per streak date, newest first, with the
// submissions made on that day.
func (s *Store) History() []HistoryDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDate := make(map[string]*HistoryDay)
	var days []*HistoryDay
	for _, st := range readList[Streak](s, KeyStreaks) {
		if _, ok := byDate[st.Date]; ok {
			continue
		}
		d := &HistoryDay{Streak: st}
		byDate[st.Date] = d
		days = append(days, d)
	}

	for _, w := range readList[Writing](s, KeyWritings) {
		if d, ok := byDate[s.localDateOf(w.CreatedAt)]; ok {
			d.Writings++
			d.Words += w.WordCount
		}
	}
	for _, sp := range readList[Speech](s, KeySpeeches) {
		if d, ok := byDate[s.localDateOf(sp.CreatedAt)]; ok {
			d.Speeches++
			d.Words += sp.WordCount
		}
	}

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Streak.Date > days[j].Streak.Date
	})
	out := make([]HistoryDay, len(days))
	for i, d := range days {
		out[i] = *d
	}
	return out
}

// Heatmap returns the last n calendar days ending today, oldest first, with
// the number of activities done on each.
func (s *Store) Heatmap(n int) []HeatmapDay {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make(map[string]int)
	for _, st := range readList[Streak](s, KeyStreaks) {
		levels[st.Date] = st.Level()
	}

	today := s.today()
	out := make([]HeatmapDay, 0, max(n, 0))
	for i := n - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		date := d.Format(dateLayout)
		out = append(out, HeatmapDay{Date: date, Weekday: d.Weekday(), Level: levels[date]})
	}
	return out
}

func (s *Store) localDateOf(t time.Time) string {
	return t.In(s.loc).Format(dateLayout)
}

// sortDatesDesc sorts YYYY-MM-DD strings newest first.
func sortDatesDesc(dates []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
}
