package models

import "testing"

func TestParseProblemStatusCanonicalizesLegacySpellings(t *testing.T) {
	cases := []struct {
		in   string
		want ProblemStatus
	}{
		{"pending", ProblemStatusPending},
		{"reviewing", ProblemStatusReviewing},
		{"in-progress", ProblemStatusReviewing},
		{"completed", ProblemStatusCompleted},
		{"resolved", ProblemStatusCompleted},
		{"rejected", ProblemStatusRejected},
	}
	for _, tc := range cases {
		got, err := ParseProblemStatus(tc.in)
		if err != nil {
			t.Fatalf("ParseProblemStatus(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseProblemStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseProblemStatusRejectsUnknownValues(t *testing.T) {
	for _, in := range []string{"", "done", "PENDING", "Pending", "closed", "in_progress"} {
		if _, err := ParseProblemStatus(in); err == nil {
			t.Fatalf("ParseProblemStatus(%q) accepted an unknown status", in)
		}
	}
}

func TestCanTransitionFollowsLifecycleGraph(t *testing.T) {
	allowed := []struct{ from, to ProblemStatus }{
		{ProblemStatusPending, ProblemStatusReviewing},
		{ProblemStatusReviewing, ProblemStatusCompleted},
		{ProblemStatusReviewing, ProblemStatusRejected},
		// same-status retries are idempotent
		{ProblemStatusPending, ProblemStatusPending},
		{ProblemStatusCompleted, ProblemStatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("CanTransition(%q, %q) = false, want true", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to ProblemStatus }{
		{ProblemStatusPending, ProblemStatusCompleted},
		{ProblemStatusPending, ProblemStatusRejected},
		{ProblemStatusCompleted, ProblemStatusReviewing},
		{ProblemStatusCompleted, ProblemStatusRejected},
		{ProblemStatusRejected, ProblemStatusPending},
		{ProblemStatusReviewing, ProblemStatusPending},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("CanTransition(%q, %q) = true, want false", tc.from, tc.to)
		}
	}
}

func TestParseUserRoleDefaultsToCitizen(t *testing.T) {
	role, err := ParseUserRole("")
	if err != nil {
		t.Fatalf("ParseUserRole(\"\"): %v", err)
	}
	if role != UserRoleCitizen {
		t.Fatalf("ParseUserRole(\"\") = %q, want citizen", role)
	}
	if _, err := ParseUserRole("admin"); err == nil {
		t.Fatal("ParseUserRole(\"admin\") accepted an unknown role")
	}
}
