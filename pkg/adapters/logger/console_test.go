package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/user/insvframe/pkg/ports"
)

func TestConsoleLogger_LevelsAndStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	l.Debug("debug line %d", 1)
	l.Info("info line %d", 2)
	l.Warn("warn line %d", 3)
	l.Error("error line %d", 4)

	if strings.Contains(out.String(), "debug line") {
		t.Error("debug output should be filtered at info level")
	}
	if out.String() != "info line 2\n" {
		t.Errorf("unexpected stdout: %q", out.String())
	}
	if errOut.String() != "warn line 3\nerror line 4\n" {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelDebug, &out, &out)

	l.WithComponent("extractor").Debug("probe %s", "x")

	if out.String() != "[extractor] probe x\n" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelQuiet, &out, &out)

	l.Error("should not appear")
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestConsoleLogger_ConcurrentComponents(t *testing.T) {
	var out bytes.Buffer
	l := NewConsoleWriter(ports.LevelInfo, &out, &out)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := l.WithComponent("batch")
			for j := 0; j < 50; j++ {
				c.Info("line %d", j)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[batch] line ") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}
