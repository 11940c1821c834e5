package storage

import (
	"sync"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionStore()

	sess := store.Start(1, 10)
	if sess.Current != 1 {
		t.Fatalf("expected fresh session at position 1, got %d", sess.Current)
	}

	// Starting again resumes the same session.
	_, err := store.Mutate(1, 10, func(s *Session) {
		s.Answers = append(s.Answers, SessionAnswer{QuestionID: 7, Value: "Yes", Position: 1})
		s.Current++
	})
	if err != nil {
		t.Fatalf("mutate failed: %v", err)
	}

	resumed := store.Start(1, 10)
	if resumed.Current != 2 || len(resumed.Answers) != 1 {
		t.Fatalf("expected resumed session at position 2 with 1 answer, got %+v", resumed)
	}

	store.Delete(1, 10)
	if _, ok := store.Snapshot(1, 10); ok {
		t.Fatalf("expected session removed")
	}
}

func TestMutateMissingSession(t *testing.T) {
	store := NewSessionStore()

	if _, err := store.Mutate(1, 10, func(*Session) {}); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPointerAdvancesWithEachAnswer(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 10)

	const k = 9
	for i := 0; i < k; i++ {
		qid := int64(100 + i)
		_, err := store.Mutate(1, 10, func(s *Session) {
			if s.HasAnswered(qid) {
				return
			}
			s.Answers = append(s.Answers, SessionAnswer{QuestionID: qid, Position: i + 1})
			s.Current++
		})
		if err != nil {
			t.Fatalf("mutate %d failed: %v", i, err)
		}
	}

	sess, _ := store.Snapshot(1, 10)
	if sess.Current != 1+k {
		t.Fatalf("expected pointer %d after %d answers, got %d", 1+k, k, sess.Current)
	}
	if len(sess.Answers) != k {
		t.Fatalf("expected %d answers, got %d", k, len(sess.Answers))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 10)
	_, _ = store.Mutate(1, 10, func(s *Session) {
		s.Answers = append(s.Answers, SessionAnswer{QuestionID: 1, Value: "Yes"})
	})

	sess, _ := store.Snapshot(1, 10)
	sess.Answers[0].Value = "No"

	fresh, _ := store.Snapshot(1, 10)
	if fresh.Answers[0].Value != "Yes" {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestResetDropsCollectedAnswers(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 10)
	_, _ = store.Mutate(1, 10, func(s *Session) {
		s.Answers = append(s.Answers, SessionAnswer{QuestionID: 1})
		s.Current = 5
	})

	sess := store.Reset(1, 10)
	if sess.Current != 1 || len(sess.Answers) != 0 {
		t.Fatalf("expected reset session, got %+v", sess)
	}
}

func TestConcurrentMutationsDoNotDropAnswers(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 10)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(qid int64) {
			defer wg.Done()
			_, _ = store.Mutate(1, 10, func(s *Session) {
				if s.HasAnswered(qid) {
					return
				}
				s.Answers = append(s.Answers, SessionAnswer{QuestionID: qid})
				s.Current++
			})
		}(int64(i))
	}
	wg.Wait()

	sess, _ := store.Snapshot(1, 10)
	if len(sess.Answers) != n {
		t.Fatalf("expected %d answers after concurrent writes, got %d", n, len(sess.Answers))
	}
	if sess.Current != 1+n {
		t.Fatalf("expected pointer %d, got %d", 1+n, sess.Current)
	}
}

func TestFindAwaitingText(t *testing.T) {
	store := NewSessionStore()
	store.Start(1, 10)

	if _, _, ok := store.FindAwaitingText(1); ok {
		t.Fatalf("expected no pending text question")
	}

	_, _ = store.Mutate(1, 10, func(s *Session) { s.AwaitingTextQID = 42 })

	setID, qid, ok := store.FindAwaitingText(1)
	if !ok || setID != 10 || qid != 42 {
		t.Fatalf("expected pending text question 42 in set 10, got %d/%d/%v", setID, qid, ok)
	}
}
