package models_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/civicsolver/civicsolver_backend/config"
	"github.com/civicsolver/civicsolver_backend/models"
	"github.com/civicsolver/civicsolver_backend/utils"
)

func TestProblemLifecycle(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "civicsolver_test")
	t.Setenv("VOTE_DEDUP_PER_USER", "")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	// Submit: defaults are pending / 0 votes, ids are unique.
	first, err := models.CreateProblem(ctx, &models.NewProblem{
		Title:       "Pothole",
		Description: "Deep pothole near the school",
		Location:    "Elm street",
		Date:        "2026-08-29",
	})
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}
	if first.Status != models.ProblemStatusPending || first.Votes != 0 {
		t.Fatalf("new problem: status=%q votes=%d", first.Status, first.Votes)
	}

	second, err := models.CreateProblem(ctx, &models.NewProblem{
		Title:       "Broken streetlight",
		Description: "Dark corner at night",
		Location:    "5th and Main",
		Date:        "2026-08-30",
	})
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("ids are not unique: %d", first.ID)
	}

	// An image-less submit serializes without an image object.
	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal problem: %v", err)
	}
	if strings.Contains(string(raw), `"image"`) {
		t.Fatalf("image key present for image-less problem: %s", raw)
	}

	// Missing required field is a validation error.
	if _, err := models.CreateProblem(ctx, &models.NewProblem{
		Title: "No description", Location: "x", Date: "2026-08-30",
	}); err == nil {
		t.Fatal("expected validation error for missing description")
	}

	// Two concurrent votes both land.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := models.IncrementProblemVotes(ctx, first.ID); err != nil {
				t.Errorf("IncrementProblemVotes: %v", err)
			}
		}()
	}
	wg.Wait()
	got, err := models.GetProblem(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	if got.Votes != 2 {
		t.Fatalf("votes = %d, want 2", got.Votes)
	}

	// Vote on a missing id: not found, nothing else changes.
	if _, err := models.IncrementProblemVotes(ctx, 999999); err != utils.ErrorRecordNotFound {
		t.Fatalf("vote on missing id: %v", err)
	}
	got, _ = models.GetProblem(ctx, first.ID)
	if got.Votes != 2 {
		t.Fatalf("votes changed after failed vote: %d", got.Votes)
	}

	// Status set is visible on re-read and audited.
	updated, err := models.SetProblemStatus(ctx, first.ID, "in-progress")
	if err != nil {
		t.Fatalf("SetProblemStatus: %v", err)
	}
	if updated.Status != models.ProblemStatusReviewing {
		t.Fatalf("status = %q, want reviewing", updated.Status)
	}
	reread, _ := models.GetProblem(ctx, first.ID)
	if reread.Status != models.ProblemStatusReviewing {
		t.Fatalf("re-read status = %q", reread.Status)
	}
	history, err := models.GetProblemStatusHistory(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetProblemStatusHistory: %v", err)
	}
	if len(history) != 1 || history[0].ToStatus != models.ProblemStatusReviewing {
		t.Fatalf("unexpected history: %+v", history)
	}

	// An invalid status leaves the prior status untouched.
	if _, err := models.SetProblemStatus(ctx, first.ID, "done"); err != utils.ErrorInvalidStatus {
		t.Fatalf("invalid status: %v", err)
	}
	reread, _ = models.GetProblem(ctx, first.ID)
	if reread.Status != models.ProblemStatusReviewing {
		t.Fatalf("status changed after invalid input: %q", reread.Status)
	}

	// List returns each problem exactly once, newest first.
	list, err := models.GetProblems(ctx)
	if err != nil {
		t.Fatalf("GetProblems: %v", err)
	}
	seen := map[int]int{}
	for _, p := range list {
		seen[p.ID]++
	}
	if seen[first.ID] != 1 || seen[second.ID] != 1 {
		t.Fatalf("list duplicates or misses problems: %v", seen)
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].CreatedAt.Before(list[i].CreatedAt) {
			t.Fatalf("list not newest-first at index %d", i)
		}
	}

	// Every state change wrote an outbox row.
	db := config.GetDB()
	var eventCount int64
	if err := db.Model(&models.ProblemEventRecord{}).Where("problem_id = ?", first.ID).Count(&eventCount).Error; err != nil {
		t.Fatalf("count outbox rows: %v", err)
	}
	// created + 2 votes + 1 status change
	if eventCount != 4 {
		t.Fatalf("outbox rows = %d, want 4", eventCount)
	}
}

func TestProblemVoteDedup(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "civicsolver_test")
	t.Setenv("VOTE_DEDUP_PER_USER", "true")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}

	ctx = utils.SetUserIdInContext(ctx, 42)
	ctx = utils.SetUsernameInContext(ctx, "voter@local")

	problem, err := models.CreateProblem(ctx, &models.NewProblem{
		Title:       "Overflowing bin",
		Description: "Trash everywhere",
		Location:    "Central park",
		Date:        "2026-08-31",
	})
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}

	if _, err := models.IncrementProblemVotes(ctx, problem.ID); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := models.IncrementProblemVotes(ctx, problem.ID); err != utils.ErrorAlreadyVoted {
		t.Fatalf("repeat vote: %v, want ErrorAlreadyVoted", err)
	}

	got, err := models.GetProblem(ctx, problem.ID)
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	if got.Votes != 1 {
		t.Fatalf("votes = %d, want 1 (rolled back repeat)", got.Votes)
	}

	// A different user may still vote.
	other := utils.SetUserIdInContext(context.Background(), 43)
	if _, err := models.IncrementProblemVotes(other, problem.ID); err != nil {
		t.Fatalf("second user vote: %v", err)
	}
	got, _ = models.GetProblem(ctx, problem.ID)
	if got.Votes != 2 {
		t.Fatalf("votes = %d, want 2", got.Votes)
	}

	// The vote rows stay in step with the counter.
	rows, err := models.GetProblemVoteCount(ctx, problem.ID)
	if err != nil {
		t.Fatalf("GetProblemVoteCount: %v", err)
	}
	if rows != int64(got.Votes) {
		t.Fatalf("vote rows = %d, counter = %d; want equal", rows, got.Votes)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("civicsolver-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("civicsolver-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=civicsolver_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
