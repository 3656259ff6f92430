package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/exporter"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/handler"
	appI18n "github.com/shravyanakshatri-a11y/Online-exam-tool/internal/i18n"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/model"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/roster"
	"github.com/shravyanakshatri-a11y/Online-exam-tool/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examtool",
		Short: "One-shot online exam server with automatic scoring",
	}

	serve := serveCmd()
	root.AddCommand(serve, importStudentsCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `examtool --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "examtool.db", "SQLite database path")
	f.StringP("students", "s", "", "Roster CSV to import at startup (roll_no,name,email,password)")
	f.StringSliceP("questions", "q", nil, "Paths to questions JSON files (repeatable)")
	f.StringP("results", "r", "results.csv", "CSV file mirroring finalized attempts")
	f.StringP("lang", "l", "en", "Language for user-facing messages (en, ru)")
	f.String("admin-password", "", "Initial admin password (or set EXAMTOOL_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func importStudentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-students",
		Short: "Import or update students from a roster CSV",
		RunE:  runImportStudents,
	}
	f := cmd.Flags()
	f.String("db", "examtool.db", "SQLite database path")
	f.StringP("file", "f", "", "Roster CSV path (required)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all attempts to the results CSV",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "examtool.db", "SQLite database path")
	f.StringP("results", "r", "results.csv", "CSV file to write")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAMTOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("examtool")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/examtool")
	v.AddConfigPath("/etc/examtool")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if path := v.GetString("students"); path != "" {
		if _, err := roster.ImportFile(db, path); err != nil {
			return fmt.Errorf("import roster: %w", err)
		}
	}

	if err := loadQuestions(db, v.GetStringSlice("questions")); err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	if err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("cleanup expired sessions", "error", err)
	}

	resultsPath := v.GetString("results")
	exp := exporter.New(resultsPath, db)

	h := handler.New(db, exp, model.ServerConfig{
		Addr:        v.GetString("addr"),
		ResultsPath: resultsPath,
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	questionCount, err := db.QuestionCount()
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	totalTime, err := db.TotalTime()
	if err != nil {
		return fmt.Errorf("total time: %w", err)
	}
	studentCount, err := db.StudentCount()
	if err != nil {
		return fmt.Errorf("count students: %w", err)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"questions", questionCount,
		"total_time_sec", totalTime,
		"students", studentCount,
		"results", resultsPath,
		"lang", lang,
	)
	return http.ListenAndServe(addr, r)
}

func runImportStudents(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	stats, err := roster.ImportFile(db, v.GetString("file"))
	if err != nil {
		return fmt.Errorf("import roster: %w", err)
	}
	fmt.Printf("Imported roster: %d added, %d updated, %d skipped.\n",
		stats.Added, stats.Updated, stats.Skipped)
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	exp := exporter.New(v.GetString("results"), db)
	if err := exp.ExportAll(); err != nil {
		return fmt.Errorf("export attempts: %w", err)
	}
	fmt.Printf("Wrote results to %s.\n", v.GetString("results"))
	return nil
}

// loadQuestions seeds the catalog from JSON files. A non-empty catalog
// skips loading so restarts cannot mutate questions while attempts exist.
func loadQuestions(db *store.Store, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	count, err := db.QuestionCount()
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("catalog already loaded, skipping question files", "count", count)
		return nil
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var questions []model.QuestionImport
		if err := json.Unmarshal(data, &questions); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		for _, qi := range questions {
			_, err := db.InsertQuestion(model.Question{
				Text:            qi.Text,
				OptA:            qi.OptA,
				OptB:            qi.OptB,
				OptC:            qi.OptC,
				OptD:            qi.OptD,
				Correct:         qi.Correct,
				PerQuestionTime: qi.PerQuestionTime,
				OrderIndex:      qi.OrderIndex,
			})
			if err != nil {
				return fmt.Errorf("insert question from %s: %w", path, err)
			}
		}
		slog.Info("imported questions", "path", path, "count", len(questions))
	}

	return nil
}

func seedAdmin(db *store.Store, password string) error {
	existing, err := db.GetAdminPasswordHash()
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or EXAMTOOL_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := db.SetAdminPasswordHash(string(hash)); err != nil {
		return fmt.Errorf("store admin credential: %w", err)
	}

	slog.Info("seeded admin credential", "username", "admin")
	return nil
}
