package app

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("FIC_CONFIG_PATH", "/custom/fic.toml")
		t.Setenv("FIC_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/custom/fic.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("log_dir = %q", defaults["log_dir"])
		}
	})

	t.Run("home fallbacks", func(t *testing.T) {
		t.Setenv("FIC_CONFIG_PATH", "")
		t.Setenv("FIC_HOME", "")
		t.Setenv("HOME", "/home/tester")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["config_path"] != "/home/tester/.config/fic.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/home/tester/.local/share/fic" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
	})
}

func TestFicHandler(t *testing.T) {
	t.Parallel()

	t.Run("tab separated format", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(&ficHandler{w: &buf, opID: "20240115T103000Z", min: slog.LevelDebug})

		logger.Info("verification complete", "verified", 3, "tampered", 1)

		line := strings.TrimSuffix(buf.String(), "\n")
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			t.Fatalf("got %d fields (%q), want 6", len(fields), line)
		}
		if _, err := time.Parse("2006-01-02T15:04:05Z", fields[0]); err != nil {
			t.Errorf("timestamp %q: %v", fields[0], err)
		}
		if fields[1] != "INFO" || fields[2] != "20240115T103000Z" || fields[3] != "verification complete" {
			t.Errorf("fields = %v", fields[1:4])
		}
		if fields[4] != "verified=3" || fields[5] != "tampered=1" {
			t.Errorf("attrs = %v", fields[4:])
		}
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(&ficHandler{w: &buf, opID: "op", min: slog.LevelInfo})

		logger.Debug("hidden")
		if buf.Len() != 0 {
			t.Errorf("debug line written below min level: %q", buf.String())
		}
	})

	t.Run("with attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(&ficHandler{w: &buf, opID: "op", min: slog.LevelDebug})

		logger.With("identity", "/data/a.txt").Warn("digest mismatch")

		if !strings.Contains(buf.String(), "\tidentity=/data/a.txt") {
			t.Errorf("pre-set attr missing: %q", buf.String())
		}
	})
}

// chunkWriter records each Write it receives, so a test can tell
// whether a log record arrived whole or in pieces.
type chunkWriter struct {
	mu     sync.Mutex
	chunks []string
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunks = append(w.chunks, string(p))
	return len(p), nil
}

func TestFicHandler_ConcurrentWritesStayWhole(t *testing.T) {
	t.Parallel()
	w := &chunkWriter{}
	logger := slog.New(&ficHandler{w: w, opID: "op", min: slog.LevelDebug})

	const goroutines = 8
	const perGoroutine = 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				logger.Info("record checked", "worker", g, "seq", i)
			}
		}(g)
	}
	wg.Wait()

	if len(w.chunks) != goroutines*perGoroutine {
		t.Fatalf("got %d writes, want %d (one per record)", len(w.chunks), goroutines*perGoroutine)
	}
	for _, chunk := range w.chunks {
		if !strings.HasSuffix(chunk, "\n") {
			t.Fatalf("partial log write: %q", chunk)
		}
		fields := strings.Split(strings.TrimSuffix(chunk, "\n"), "\t")
		if len(fields) != 6 || fields[3] != "record checked" {
			t.Fatalf("garbled log line: %q", chunk)
		}
	}
}

func TestNewLogger_MirrorsToSecondWriter(t *testing.T) {
	t.Parallel()
	logDir := t.TempDir()
	var mirror bytes.Buffer

	logger, closer, err := newLoggerTo(logDir, "op", &mirror)
	if err != nil {
		t.Fatalf("newLoggerTo() error = %v", err)
	}
	logger.Info("database exported", "records", 2)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.Contains(mirror.String(), "database exported\trecords=2") {
		t.Errorf("mirror missing log line: %q", mirror.String())
	}
	b, err := os.ReadFile(filepath.Join(logDir, "fic.log"))
	if err != nil {
		t.Fatalf("ReadFile(fic.log) error = %v", err)
	}
	if !strings.Contains(string(b), "database exported\trecords=2") {
		t.Errorf("log file missing log line: %q", b)
	}
}

func TestCheckRun(t *testing.T) {
	t.Parallel()
	run := NewCheckRun("Add", "/data/a.txt")
	if run.Persisted() {
		t.Error("Persisted() = true before the run is saved")
	}
	if run.Status != "success" {
		t.Errorf("Status = %q, want success", run.Status)
	}

	run.ID = "2b7e1516-28ae-d2a6-abf7-158809cf4f3c"
	if !run.Persisted() {
		t.Error("Persisted() = false after an ID is assigned")
	}
}
