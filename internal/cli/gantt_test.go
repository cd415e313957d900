package cli

import (
	"strings"
	"testing"
)

func TestRenderTasks(t *testing.T) {
	out := RenderTasks(testSchedule(t), false)

	wants := []string{
		"Build : ■ ■ ■ :",
		"  API : ■ ■ □ : Dev",
		"  UT  : □ □ ■ : Dev",
	}
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("task grid missing %q:\n%s", w, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("expected 3 rows, got %d", lines)
	}
}

func TestRenderTasks_Compact(t *testing.T) {
	out := RenderTasks(testSchedule(t), true)

	if !strings.Contains(out, `Task "API" is performed by "Dev" (2026-01-05 .. 2026-01-07)`) {
		t.Errorf("unexpected compact output:\n%s", out)
	}
	if strings.Contains(out, "Build") {
		t.Error("compact output should omit summary tasks")
	}
}

func TestRenderWorkers(t *testing.T) {
	out := RenderWorkers(testSchedule(t), false)

	if !strings.Contains(out, "Dev : ♥ ♥ ♦") {
		t.Errorf("worker grid missing Dev row:\n%s", out)
	}
	if !strings.Contains(out, "--- Legend ---") {
		t.Error("expected a legend")
	}
	for _, w := range []string{" ♥: API", " ♦: UT"} {
		if !strings.Contains(out, w) {
			t.Errorf("legend missing %q", w)
		}
	}
}

func TestRenderWorkers_Compact(t *testing.T) {
	out := RenderWorkers(testSchedule(t), true)

	want := `Worker "Dev" is assigned following tasks: [API@0 API@1 UT@2]`
	if !strings.Contains(out, want) {
		t.Errorf("compact output = %q, want it to contain %q", out, want)
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(testSchedule(t))

	for _, w := range []string{"demo", "optimal", "single cost", "2026-01-05", "3 days", "1200"} {
		if !strings.Contains(out, w) {
			t.Errorf("summary missing %q:\n%s", w, out)
		}
	}
}

func TestGlyphForWraps(t *testing.T) {
	if glyphFor(len(workerGlyphs)) != glyphFor(0) {
		t.Error("glyphs should repeat after the last one")
	}
	if glyphFor(1) == glyphFor(0) {
		t.Error("adjacent tasks should get different glyphs")
	}
}
