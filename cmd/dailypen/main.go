package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TobiSchelling/DailyPen/internal/config"
	"github.com/TobiSchelling/DailyPen/internal/curriculum"
	"github.com/TobiSchelling/DailyPen/internal/database"
	"github.com/TobiSchelling/DailyPen/internal/logging"
	"github.com/TobiSchelling/DailyPen/internal/review"
	"github.com/TobiSchelling/DailyPen/internal/server"
	"github.com/TobiSchelling/DailyPen/internal/store"
	"github.com/TobiSchelling/DailyPen/internal/textstat"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     = zap.NewNop()
)

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "dailypen",
	Short:   "Daily writing and speaking practice",
	Long:    "DailyPen serves a 30-day rotating curriculum of writing and speech exercises and tracks your streaks.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("configuring logging: %w", err)
		}
		if path != "" {
			logger.Debug("config loaded", zap.String("path", path))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dailypen", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/dailypen/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set your time zone, data directory and display name.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress and database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		day := st.CurrentDay()
		phase := store.PhaseForDay(day)
		p := st.Profile()

		fmt.Printf("Started: %s (day %d)\n", st.StartDate(), day)
		fmt.Printf("Phase %d: %s, %s\n\n", phase, phase.Label(), phase.Description())

		fmt.Println("Progress:")
		fmt.Printf("  Name: %s (Lv.%d)\n", p.DisplayName, p.Level)
		fmt.Printf("  Consecutive days: %d\n", st.ConsecutiveDays())
		fmt.Printf("  Practice days: %d\n", p.TotalDays)
		fmt.Printf("  Total words: %s\n", humanize.Comma(int64(p.TotalWords)))
		fmt.Printf("  Writings: %d\n", len(st.Writings()))
		fmt.Printf("  Speeches: %d\n", len(st.Speeches()))
		fmt.Printf("  Reviews: %d\n", len(st.Reviews()))

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		fmt.Println("\nDatabase:")
		fmt.Printf("  Path: %s\n", db.Path())
		fmt.Printf("  Keys: %d (%s)\n", stats.Keys, humanize.Bytes(uint64(stats.ValueBytes)))
		if stats.LastWrite != nil {
			fmt.Printf("  Last write: %s UTC\n", *stats.LastWrite)
		}
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's practice plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		plan := st.DailyPlan()
		var done store.Streak
		if plan.Streak != nil {
			done = *plan.Streak
		}

		fmt.Printf("Day %d (cycle day %d), %s\n\n", plan.Day, plan.DayInCycle(), plan.Phase.Label())
		if m := plan.Writing; m != nil {
			fmt.Printf("%s Writing  [%s] %s (%s)\n", check(done.WritingDone), m.ID, m.Title, m.Type.Label())
		}
		if m := plan.Speech; m != nil {
			fmt.Printf("%s Speech   [%s] %s (%s, %ds)\n", check(done.SpeechDone), m.ID, m.Title, m.Type.Label(), m.TimeLimitSeconds)
		}
		if a := plan.Analysis; a != nil {
			fmt.Printf("%s Analysis [%s] %s / %s\n", check(done.AnalysisDone), a.ID, a.Title, a.Speaker)
		} else {
			fmt.Println("  No speech analysis today.")
		}
		return nil
	},
}

func check(ok bool) string {
	if ok {
		return "[x]"
	}
	return "[ ]"
}

// --- write and speak commands ---

var timeSpent int

var writeCmd = &cobra.Command{
	Use:   "write <material-id> [text]",
	Short: "Submit a writing exercise (Markdown from args or stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		m := st.WritingMaterial(args[0])
		if m == nil {
			return fmt.Errorf("writing material %s not found", args[0])
		}
		html, words, err := readSubmission(cmd, args[1:])
		if err != nil {
			return err
		}

		w := st.SaveWriting(store.NewWriting{MaterialID: m.ID, Content: html, WordCount: words, TimeSpent: timeSpent})
		fmt.Printf("Saved writing %s: %s characters for %q\n", w.ID, humanize.Comma(int64(words)), m.Title)
		fmt.Printf("See feedback with: dailypen review writing %s\n", w.ID)
		return nil
	},
}

var speakCmd = &cobra.Command{
	Use:   "speak <material-id> [text]",
	Short: "Submit a speech transcript (Markdown from args or stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		m := st.SpeechMaterial(args[0])
		if m == nil {
			return fmt.Errorf("speech material %s not found", args[0])
		}
		html, words, err := readSubmission(cmd, args[1:])
		if err != nil {
			return err
		}

		sp := st.SaveSpeech(store.NewSpeech{SpeechMaterialID: m.ID, Content: html, WordCount: words, TimeSpent: timeSpent})
		fmt.Printf("Saved speech %s: %s characters for %q\n", sp.ID, humanize.Comma(int64(words)), m.Title)
		if timeSpent > m.TimeLimitSeconds {
			fmt.Printf("Over the %ds limit by %ds.\n", m.TimeLimitSeconds, timeSpent-m.TimeLimitSeconds)
		}
		fmt.Printf("See feedback with: dailypen review speech %s\n", sp.ID)
		return nil
	},
}

func init() {
	writeCmd.Flags().IntVarP(&timeSpent, "time-spent", "t", 0, "Seconds spent on the exercise")
	speakCmd.Flags().IntVarP(&timeSpent, "time-spent", "t", 0, "Seconds spent on the speech")
}

// readSubmission takes Markdown from args, or stdin when there are none, and
// returns the rendered HTML with its character count.
func readSubmission(cmd *cobra.Command, args []string) (string, int, error) {
	source := strings.Join(args, " ")
	if source == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", 0, fmt.Errorf("reading stdin: %w", err)
		}
		source = string(data)
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return "", 0, fmt.Errorf("nothing to submit")
	}

	html, err := textstat.RenderMarkdown(source)
	if err != nil {
		return "", 0, err
	}
	return html, textstat.Count(html), nil
}

// --- analysis command ---

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Read and complete speech analyses",
}

var analysisShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a speech analysis (today's by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		var a *curriculum.SpeechAnalysis
		if len(args) == 1 {
			a = st.Analysis(args[0])
		} else {
			a = st.DailyPlan().Analysis
		}
		if a == nil {
			fmt.Println("No speech analysis found.")
			return nil
		}

		fmt.Printf("%s / %s\n%s\n\n%s\n\n", a.Title, a.Speaker, a.Occasion, a.FullText)
		fmt.Println("Structure:")
		for _, seg := range a.StructureBreakdown {
			fmt.Printf("  [%s] %s: %s\n", seg.Type, seg.Label, seg.Content)
		}
		fmt.Println("\nTechniques:")
		for _, tq := range a.Techniques {
			fmt.Printf("  「%s」 %s: %s\n", tq.Text, tq.Technique, tq.Explanation)
		}
		fmt.Printf("\nExercise: %s\n", a.ExercisePrompt)
		return nil
	},
}

var analysisDoneCmd = &cobra.Command{
	Use:   "done",
	Short: "Mark today's speech analysis as done",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		st.MarkAnalysisDone()
		fmt.Printf("Analysis marked done. Consecutive days: %d\n", st.ConsecutiveDays())
		return nil
	},
}

func init() {
	analysisCmd.AddCommand(analysisShowCmd)
	analysisCmd.AddCommand(analysisDoneCmd)
}

// --- review command ---

var reviewCmd = &cobra.Command{
	Use:   "review <writing|speech> <id>",
	Short: "Show feedback for a saved writing or speech",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		target := store.TargetType(args[0])
		r, _, err := review.ForTarget(st, review.NewMock(), target, args[1])
		if err != nil {
			return err
		}

		fmt.Println("Scores:")
		for _, dim := range review.Dimensions(target) {
			fmt.Printf("  %s %.1f\n", dim, r.Scores[dim])
		}
		fmt.Printf("\n%s\n\nSuggestions:\n", r.ReviewContent)
		for i, s := range r.Suggestions {
			fmt.Printf("  %d. %s\n", i+1, s)
		}
		fmt.Printf("\nRewrite demo:\n%s\n", r.RewriteDemo)
		return nil
	},
}

// --- history command ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List practice days and recent submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		days := st.History()
		if len(days) == 0 {
			fmt.Println("No practice yet. Start with: dailypen today")
			return nil
		}

		fmt.Println("Date        W S A  Words")
		for _, d := range days {
			fmt.Printf("%s  %s %s %s  %s\n", d.Streak.Date,
				mark(d.Streak.WritingDone), mark(d.Streak.SpeechDone), mark(d.Streak.AnalysisDone),
				humanize.Comma(int64(d.Words)))
		}

		fmt.Println("\nRecent:")
		for _, e := range st.RecentEntries(5) {
			fmt.Printf("  %s %s (%s, %d chars, %s)\n", e.Kind, e.ID, e.Label, e.WordCount, humanize.Time(e.CreatedAt))
		}
		return nil
	},
}

func mark(ok bool) string {
	if ok {
		return "x"
	}
	return "."
}

// --- profile command ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		p := st.Profile()
		fmt.Printf("%s\n", p.DisplayName)
		fmt.Printf("  Level: %d\n", p.Level)
		fmt.Printf("  Practice days: %d\n", p.TotalDays)
		fmt.Printf("  Total words: %s\n", humanize.Comma(int64(p.TotalWords)))
		fmt.Printf("  Since: %s\n", st.StartDate())
		return nil
	},
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <name>",
	Short: "Change the display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("name must not be empty")
		}

		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		st.UpdateProfileName(name)
		fmt.Printf("Display name set to %s\n", name)
		return nil
	},
}

var profileAchievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		for _, a := range st.Achievements() {
			fmt.Printf("%s %s %s: %s\n", check(a.Unlocked), a.Icon, a.Title, a.Desc)
		}
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileRenameCmd)
	profileCmd.AddCommand(profileAchievementsCmd)
}

// --- reset command ---

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all progress and start again from day 1",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return fmt.Errorf("refusing to reset without --yes")
		}

		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		st.Reset()
		logger.Warn("all progress data reset", zap.String("db", db.Path()))
		fmt.Println("All data deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm deleting all data")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(st, review.NewMock(), logger, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openStore() (*store.Store, *database.DB, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	catalog, err := curriculum.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading curriculum: %w", err)
	}

	db, err := database.Open(cfg.DBPath(), logger)
	if err != nil {
		return nil, nil, err
	}

	st := store.New(db, catalog,
		store.WithLocation(loc),
		store.WithLogger(logger),
		store.WithDefaultName(cfg.Profile.DefaultName),
	)
	return st, db, nil
}
