// Command ateneo is a terminal chat client for a university course
// assistant.
//
// Usage:
//
//	ateneo [flags]
//
// Flags:
//
//	-config string        Path to YAML config file (default: .ateneo/config.yaml)
//	-backend string       Backend base URL (overrides config)
//	-course string        Course ID to scope retrieval to (overrides config)
//	-conversation string  Path to a conversation file to resume
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ateneo-app/ateneo"
	bt "github.com/ateneo-app/ateneo/bubbletea"
	"github.com/ateneo-app/ateneo/chatapi"
	ateneojson "github.com/ateneo-app/ateneo/json"
	"github.com/ateneo-app/ateneo/university"
)

const defaultConfigPath = ".ateneo/config.yaml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ateneo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", defaultConfigPath, "Path to YAML config file")
		backendURL = flag.String("backend", "", "Backend base URL (overrides config)")
		courseID   = flag.String("course", "", "Course ID to scope retrieval to (overrides config)")
		convPath   = flag.String("conversation", "", "Path to a conversation file to resume")
	)
	flag.Parse()

	// A .env next to the binary can hold ATENEO_BACKEND_URL for local runs.
	_ = godotenv.Load()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	} else if env := os.Getenv("ATENEO_BACKEND_URL"); env != "" {
		cfg.Backend.BaseURL = env
	}
	if *courseID != "" {
		cfg.Chat.CourseID = *courseID
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	client := chatapi.New(cfg.Backend.BaseURL, chatapi.WithLogger(logger))

	// Load or create the conversation transcript.
	conv, err := loadOrCreateConversation(*convPath, cfg.Chat.CourseID)
	if err != nil {
		return err
	}

	// Resolve the course title for the status line; cosmetic, so a failure
	// only logs.
	courseLabel := courseTitle(ctx, cfg.Backend.BaseURL, conv.CourseID, logger)

	r := newRunner(client, client, client, &conv, logger, time.Duration(cfg.Chat.Timeout))

	theme := ateneo.DefaultTheme()
	tuiModel := bt.New(r.Turn, r.Stop, r.Reset, &conv, courseLabel, theme)

	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Save the transcript on exit.
	final := r.Conversation()
	if len(final.Turns) == 0 {
		return nil
	}
	savePath := *convPath
	autoSaved := savePath == ""
	if autoSaved {
		savePath = defaultConversationPath(final.ID)
	}
	if err := ateneojson.Save(savePath, final); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	if autoSaved {
		fmt.Fprintf(os.Stderr, "Conversation saved to %s\n", savePath)
	}

	return nil
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist. An explicit -config path must exist.
func loadConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		return DefaultConfig(), nil
	}
	return nil, fmt.Errorf("load config %s: %w", path, err)
}

func newLogger(cfg LogConfig) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger, closeFn, nil
}

func loadOrCreateConversation(path, courseID string) (ateneo.Conversation, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			conv, err := ateneojson.Load(path)
			if err != nil {
				return ateneo.Conversation{}, fmt.Errorf("load conversation: %w", err)
			}
			if courseID != "" {
				conv.CourseID = courseID
			}
			return conv, nil
		}
	}
	now := time.Now()
	return ateneo.Conversation{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// courseTitle looks up the course's display title from the university API.
func courseTitle(ctx context.Context, baseURL, courseID string, logger *log.Logger) string {
	if courseID == "" {
		return ""
	}
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	uni := university.New(baseURL)
	courses, err := uni.Courses(lookupCtx)
	if err != nil {
		logger.Warn("course lookup failed", "course_id", courseID, "err", err)
		return courseID
	}
	for _, c := range courses {
		if c.ID == courseID {
			return c.Title
		}
	}
	return courseID
}

func defaultConversationPath(id string) string {
	return filepath.Join(".ateneo", "conversations", id+".json")
}
