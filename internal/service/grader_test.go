package service

import (
	"context"
	"errors"
	"testing"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name   string
		prev   bool
		now    bool
		reward int
		want   int
	}{
		{"stays wrong", false, false, 100, 0},
		{"stays correct", true, true, 100, 0},
		{"promoted", false, true, 100, 100},
		{"demoted", true, false, 100, -100},
		{"promoted zero reward", false, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := settle(tt.prev, tt.now, tt.reward); got != tt.want {
				t.Fatalf("settle(%v, %v, %d) = %d, want %d", tt.prev, tt.now, tt.reward, got, tt.want)
			}
		})
	}
}

// confirmWalk plays the whole set with the given value and confirms.
func confirmWalk(t *testing.T, env *testEnv, userID int64, setID int64, value string) {
	t.Helper()
	walkSet(t, env, userID, setID, value)
	if _, err := env.play.Confirm(context.Background(), userID, "player", setID); err != nil {
		t.Fatalf("confirm for user %d: %v", userID, err)
	}
}

func TestRevealGradesAnswers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)

	// Only the first question accepts "Yes".
	for _, q := range env.store.questions {
		if q.SetID == set.ID && q.Position > 1 {
			q.Answers = []string{"No"}
		}
	}

	confirmWalk(t, env, testUserID, set.ID, "Yes")

	report, err := env.grader.Reveal(ctx, set.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if report.Graded != entities.BingoQuestionCount {
		t.Fatalf("graded %d, want %d", report.Graded, entities.BingoQuestionCount)
	}
	if report.Correct != 1 {
		t.Fatalf("correct %d, want 1", report.Correct)
	}
	if len(report.PerfectUsers) != 0 {
		t.Fatalf("perfect users %v, want none at 1/9", report.PerfectUsers)
	}

	souls, err := env.users.Balance(ctx, testUserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if souls != 10 {
		t.Fatalf("balance = %d, want 10 for one correct prediction", souls)
	}

	summary, err := env.play.Result(ctx, testUserID, set.ID)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if summary.Score != 10 || summary.CorrectCount != 1 || summary.Perfect {
		t.Fatalf("summary = score %d / %d correct / perfect %v, want 10 / 1 / false",
			summary.Score, summary.CorrectCount, summary.Perfect)
	}
}

func TestRevealIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)

	confirmWalk(t, env, testUserID, set.ID, "Yes")

	if _, err := env.grader.Reveal(ctx, set.ID); err != nil {
		t.Fatalf("first reveal: %v", err)
	}
	before, err := env.users.Balance(ctx, testUserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	if _, err := env.grader.Reveal(ctx, set.ID); err != nil {
		t.Fatalf("second reveal: %v", err)
	}
	after, err := env.users.Balance(ctx, testUserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}

	if after != before {
		t.Fatalf("second reveal moved the balance from %d to %d", before, after)
	}
}

func TestRevealSkipsManualQuestions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)

	q, err := env.store.firstQuestion(set.ID)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	q.ManualGrading = true

	confirmWalk(t, env, testUserID, set.ID, "Yes")

	report, err := env.grader.Reveal(ctx, set.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	// Eight auto-graded matches; the manual one stays unjudged.
	if report.Correct != entities.BingoQuestionCount-1 {
		t.Fatalf("correct %d, want %d with the manual question held back",
			report.Correct, entities.BingoQuestionCount-1)
	}

	// A human verdict settles the remaining question.
	rows, err := env.play.answers.ListByUserAndSet(ctx, testUserID, set.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var manualAnswerID int64
	for _, row := range rows {
		if row.QuestionID == q.ID {
			manualAnswerID = row.ID
		}
	}
	delta, err := env.grader.Grade(ctx, manualAnswerID, true)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if delta != 10 {
		t.Fatalf("delta = %d, want 10", delta)
	}

	souls, err := env.users.Balance(ctx, testUserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if souls != 10*entities.BingoQuestionCount {
		t.Fatalf("balance = %d, want %d after the manual verdict", souls, 10*entities.BingoQuestionCount)
	}
}

func TestGradeReversalTakesPointsBack(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)

	confirmWalk(t, env, testUserID, set.ID, "Yes")
	if _, err := env.grader.Reveal(ctx, set.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	rows, err := env.play.answers.ListByUserAndSet(ctx, testUserID, set.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	target := rows[0]
	if !target.IsCorrect {
		t.Fatal("expected the revealed answer to be correct")
	}

	// Unchanged verdict is a no-op.
	delta, err := env.grader.Grade(ctx, target.ID, true)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if delta != 0 {
		t.Fatalf("no-op delta = %d, want 0", delta)
	}

	// Reversal decrements.
	delta, err = env.grader.Grade(ctx, target.ID, false)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if delta != -10 {
		t.Fatalf("reversal delta = %d, want -10", delta)
	}

	souls, err := env.users.Balance(ctx, testUserID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if souls != 10*(entities.BingoQuestionCount-1) {
		t.Fatalf("balance = %d, want %d after one reversal", souls, 10*(entities.BingoQuestionCount-1))
	}
}

func TestGradeMissingAnswer(t *testing.T) {
	env := newTestEnv()

	if _, err := env.grader.Grade(context.Background(), 404, true); !errors.Is(err, ErrAnswerNotFound) {
		t.Fatalf("got %v, want ErrAnswerNotFound", err)
	}
}

func TestRevealGrantsCompletionReward(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)
	env.store.sets[set.ID].RewardChannelID = -1009001

	perfectUser := int64(1)
	partialUser := int64(2)

	confirmWalk(t, env, perfectUser, set.ID, "Yes")
	confirmWalk(t, env, partialUser, set.ID, "No")

	report, err := env.grader.Reveal(ctx, set.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}

	if len(report.PerfectUsers) != 1 || report.PerfectUsers[0] != perfectUser {
		t.Fatalf("perfect users = %v, want [%d]", report.PerfectUsers, perfectUser)
	}
	if len(env.granter.grants) != 1 || env.granter.grants[0] != perfectUser {
		t.Fatalf("grants = %v, want exactly one for user %d", env.granter.grants, perfectUser)
	}
}

func TestRevealGrantFailureDoesNotAbort(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)
	env.store.sets[set.ID].RewardChannelID = -1009001
	env.granter.failFor = map[int64]error{1: errors.New("user blocked the bot")}

	confirmWalk(t, env, 1, set.ID, "Yes")
	confirmWalk(t, env, 2, set.ID, "Yes")

	report, err := env.grader.Reveal(ctx, set.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(report.PerfectUsers) != 2 {
		t.Fatalf("perfect users = %v, want both", report.PerfectUsers)
	}
	if len(env.granter.grants) != 1 || env.granter.grants[0] != 2 {
		t.Fatalf("grants = %v, want the unaffected user only", env.granter.grants)
	}

	// Points still landed for both.
	for _, userID := range []int64{1, 2} {
		souls, err := env.users.Balance(ctx, userID)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if souls != 10*entities.BingoQuestionCount {
			t.Fatalf("user %d balance = %d, want %d", userID, souls, 10*entities.BingoQuestionCount)
		}
	}
}

func TestRevealWithoutRewardChannelSkipsGrant(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	set := env.seedBingoSet(t, 10)

	confirmWalk(t, env, testUserID, set.ID, "Yes")

	report, err := env.grader.Reveal(ctx, set.ID)
	if err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if len(report.PerfectUsers) != 0 || len(env.granter.grants) != 0 {
		t.Fatalf("grants = %v without a reward channel", env.granter.grants)
	}
}
