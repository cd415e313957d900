package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/staffplan/internal/storage"
	"github.com/valter-silva-au/staffplan/pkg/models"
)

func runVerifyCmd(t *testing.T, planPath, schedPath string) (string, string, error) {
	t.Helper()
	origIn, origSched := verifyInput, verifySchedule
	t.Cleanup(func() { verifyInput, verifySchedule = origIn, origSched })
	verifyInput, verifySchedule = planPath, schedPath

	var out, errOut bytes.Buffer
	verifyCmd.SetOut(&out)
	verifyCmd.SetErr(&errOut)
	err := verifyCmd.RunE(verifyCmd, nil)
	return out.String(), errOut.String(), err
}

func saveTestSchedule(t *testing.T, s *storage.ScheduleFile) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := storage.SaveSchedule(path, s); err != nil {
		t.Fatalf("saving schedule: %v", err)
	}
	return path
}

func TestVerifyCmd_Valid(t *testing.T) {
	withPlanner(t, &fakePlanner{})
	sched := testSchedule(t)

	out, warn, err := runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, sched))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "is valid: 3 days, cost 1200, 1 resources") {
		t.Errorf("unexpected output: %s", out)
	}
	if warn != "" {
		t.Errorf("unexpected warning: %s", warn)
	}
}

func TestVerifyCmd_Violated(t *testing.T) {
	withPlanner(t, &fakePlanner{verifyStatus: models.StatusInfeasible})

	_, _, err := runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, testSchedule(t)))
	if err == nil || !strings.Contains(err.Error(), "violates") {
		t.Errorf("expected violation error, got %v", err)
	}
}

func TestVerifyCmd_DigestMismatchWarns(t *testing.T) {
	withPlanner(t, &fakePlanner{})
	sched := testSchedule(t)
	sched.PlanDigest = "stale"

	_, warn, err := runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, sched))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(warn, "different version") {
		t.Errorf("expected a digest warning, got %q", warn)
	}
}

func TestVerifyCmd_ForeignSchedule(t *testing.T) {
	withPlanner(t, &fakePlanner{})
	sched := testSchedule(t)
	sched.Tasks[1].ID = "Other"

	_, _, err := runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, sched))
	if err == nil || !strings.Contains(err.Error(), "unknown task") {
		t.Errorf("expected unknown task error, got %v", err)
	}
}

func TestVerifyCmd_RejectsHandEditedDays(t *testing.T) {
	withPlanner(t, &fakePlanner{})

	startBefore := testSchedule(t)
	startBefore.Tasks[1].StartDay = -1
	_, _, err := runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, startBefore))
	if err == nil || !strings.Contains(err.Error(), "start day -1") {
		t.Errorf("expected negative start day error, got %v", err)
	}

	farDay := testSchedule(t)
	farDay.Resources[0].Days[2].Day = 1_000_000_000_000
	_, _, err = runVerifyCmd(t, writeTestPlan(t), saveTestSchedule(t, farDay))
	if err == nil || !strings.Contains(err.Error(), "outside") {
		t.Errorf("expected out-of-horizon day error, got %v", err)
	}
}
