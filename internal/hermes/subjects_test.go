package hermes

import (
	"strings"
	"testing"
)

func TestSubjectsFallUnderStream(t *testing.T) {
	subjects := []string{
		SubjectCPURequest,
		SubjectCPUCalculated("abc"),
		SubjectCPUFailed("abc"),
		SubjectSeasonUpdated("gcw-s1"),
	}
	for _, s := range subjects {
		covered := false
		for _, pattern := range StreamSubjects {
			if strings.HasPrefix(s, strings.TrimSuffix(pattern, ">")) {
				covered = true
			}
		}
		if !covered {
			t.Errorf("subject %s not captured by stream %s", s, StreamName)
		}
	}
}

func TestSubjectFormat(t *testing.T) {
	if got := SubjectCPUCalculated("r1"); got != "pow2.cpu.r1.calculated" {
		t.Errorf("unexpected subject %s", got)
	}
	if got := SubjectCPUFailed("r1"); got != "pow2.cpu.r1.failed" {
		t.Errorf("unexpected subject %s", got)
	}
}

func TestValidToken(t *testing.T) {
	valid := []string{"req-42", "gcw-s6", "6f1c2b1e-8a7d-4c1b-9d6e-1f2a3b4c5d6e"}
	for _, s := range valid {
		if !ValidToken(s) {
			t.Errorf("expected %q to be a valid token", s)
		}
	}
	invalid := []string{"", "a.b", "*", "req>", "has space", "tab\there"}
	for _, s := range invalid {
		if ValidToken(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestValidPublishSubject(t *testing.T) {
	if !validPublishSubject(SubjectCPUCalculated("r1")) {
		t.Error("expected calculated subject to be publishable")
	}
	for _, s := range []string{SubjectCPUFailed("a.b"), SubjectCPUFailed("*"), "pow2.cpu.>", "pow2..failed"} {
		if validPublishSubject(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}
