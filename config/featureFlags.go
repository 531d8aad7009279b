package config

import (
	"os"
	"strings"
)

// VoteDedupPerUser enables one-vote-per-identity: a repeat vote by the same
// user on the same problem is rejected instead of counted again.
//
// Set via env:
// - VOTE_DEDUP_PER_USER=true
func VoteDedupPerUser() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("VOTE_DEDUP_PER_USER")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictStatusTransitions enforces the declared lifecycle graph
// (pending -> reviewing -> completed/rejected) instead of free overwrite.
//
// Set via env:
// - STRICT_STATUS_TRANSITIONS=true
func StrictStatusTransitions() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_STATUS_TRANSITIONS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
