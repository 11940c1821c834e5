package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

// memStore backs the fake repositories with maps, mirroring the relational
// schema closely enough to exercise the services, including the
// (user, question) uniqueness constraint.
type memStore struct {
	mu sync.Mutex

	sets      map[int64]*entities.QuestionSet
	questions map[int64]*entities.Question
	answers   map[int64]*entities.Answer
	users     map[int64]*entities.User

	nextSet, nextQuestion, nextAnswer int64
}

func newMemStore() *memStore {
	return &memStore{
		sets:      make(map[int64]*entities.QuestionSet),
		questions: make(map[int64]*entities.Question),
		answers:   make(map[int64]*entities.Answer),
		users:     make(map[int64]*entities.User),
	}
}

// firstQuestion returns the stored question at position 1 of a set. The
// pointer is live so tests can tweak fields in place.
func (m *memStore) firstQuestion(setID int64) (*entities.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range m.questions {
		if q.SetID == setID && q.Position == 1 {
			return q, nil
		}
	}
	return nil, repository.ErrQuestionNotFound
}

type fakeSets struct{ m *memStore }

func (f *fakeSets) CreateWithQuestions(_ context.Context, set *entities.QuestionSet, questions []*entities.Question) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	f.m.nextSet++
	set.ID = f.m.nextSet
	set.CreatedAt = time.Now()
	cp := *set
	f.m.sets[set.ID] = &cp

	for _, q := range questions {
		f.m.nextQuestion++
		q.ID = f.m.nextQuestion
		q.SetID = set.ID
		qcp := *q
		f.m.questions[q.ID] = &qcp
	}

	return set.ID, nil
}

func (f *fakeSets) GetByID(_ context.Context, setID int64) (*entities.QuestionSet, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	set, ok := f.m.sets[setID]
	if !ok {
		return nil, repository.ErrSetNotFound
	}
	cp := *set
	return &cp, nil
}

func (f *fakeSets) List(_ context.Context) ([]*entities.QuestionSet, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var sets []*entities.QuestionSet
	for _, s := range f.m.sets {
		cp := *s
		sets = append(sets, &cp)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID > sets[j].ID })
	return sets, nil
}

func (f *fakeSets) Update(_ context.Context, set *entities.QuestionSet) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	existing, ok := f.m.sets[set.ID]
	if !ok {
		return repository.ErrSetNotFound
	}
	existing.Title = set.Title
	existing.Description = set.Description
	existing.RewardChannelID = set.RewardChannelID
	return nil
}

func (f *fakeSets) UpdateStatus(_ context.Context, setID int64, status entities.SetStatus) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	set, ok := f.m.sets[setID]
	if !ok {
		return repository.ErrSetNotFound
	}
	set.Status = status
	return nil
}

func (f *fakeSets) SetPanelMessage(_ context.Context, setID, chatID int64, messageID int) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	set, ok := f.m.sets[setID]
	if !ok {
		return repository.ErrSetNotFound
	}
	set.PanelChatID = chatID
	set.PanelMessageID = messageID
	return nil
}

func (f *fakeSets) Delete(_ context.Context, setID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	if _, ok := f.m.sets[setID]; !ok {
		return repository.ErrSetNotFound
	}
	delete(f.m.sets, setID)
	for qid, q := range f.m.questions {
		if q.SetID != setID {
			continue
		}
		delete(f.m.questions, qid)
		for aid, a := range f.m.answers {
			if a.QuestionID == qid {
				delete(f.m.answers, aid)
			}
		}
	}
	return nil
}

type fakeQuestions struct{ m *memStore }

func (f *fakeQuestions) Create(_ context.Context, q *entities.Question) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	f.m.nextQuestion++
	q.ID = f.m.nextQuestion
	cp := *q
	f.m.questions[q.ID] = &cp
	return q.ID, nil
}

func (f *fakeQuestions) GetByID(_ context.Context, questionID int64) (*entities.Question, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	q, ok := f.m.questions[questionID]
	if !ok {
		return nil, repository.ErrQuestionNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestions) GetByPosition(_ context.Context, setID int64, position int) (*entities.Question, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	for _, q := range f.m.questions {
		if q.SetID == setID && q.Position == position && q.IsActive {
			cp := *q
			return &cp, nil
		}
	}
	return nil, repository.ErrQuestionNotFound
}

func (f *fakeQuestions) ListBySet(_ context.Context, setID int64, activeOnly bool) ([]*entities.Question, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*entities.Question
	for _, q := range f.m.questions {
		if q.SetID != setID || (activeOnly && !q.IsActive) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeQuestions) CountBySet(_ context.Context, setID int64) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	count := 0
	for _, q := range f.m.questions {
		if q.SetID == setID {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuestions) Update(_ context.Context, q *entities.Question) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	if _, ok := f.m.questions[q.ID]; !ok {
		return repository.ErrQuestionNotFound
	}
	cp := *q
	f.m.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestions) Delete(_ context.Context, questionID int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	if _, ok := f.m.questions[questionID]; !ok {
		return repository.ErrQuestionNotFound
	}
	delete(f.m.questions, questionID)
	for aid, a := range f.m.answers {
		if a.QuestionID == questionID {
			delete(f.m.answers, aid)
		}
	}
	return nil
}

type fakeAnswers struct{ m *memStore }

func (f *fakeAnswers) Create(_ context.Context, a *entities.Answer) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	for _, existing := range f.m.answers {
		if existing.UserID == a.UserID && existing.QuestionID == a.QuestionID {
			return errors.New("duplicate answer violates uniqueness")
		}
	}

	f.m.nextAnswer++
	a.ID = f.m.nextAnswer
	a.CreatedAt = time.Now()
	cp := *a
	f.m.answers[a.ID] = &cp
	return nil
}

func (f *fakeAnswers) Exists(_ context.Context, userID, questionID int64) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	for _, a := range f.m.answers {
		if a.UserID == userID && a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAnswers) HasAnyForSet(_ context.Context, userID, setID int64) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	for _, a := range f.m.answers {
		q, ok := f.m.questions[a.QuestionID]
		if ok && a.UserID == userID && q.SetID == setID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAnswers) GetByID(_ context.Context, answerID int64) (*entities.AnswerWithQuestion, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	a, ok := f.m.answers[answerID]
	if !ok {
		return nil, repository.ErrAnswerNotFound
	}
	return f.join(a), nil
}

func (f *fakeAnswers) ListBySet(_ context.Context, setID int64) ([]*entities.AnswerWithQuestion, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*entities.AnswerWithQuestion
	for _, a := range f.m.answers {
		q, ok := f.m.questions[a.QuestionID]
		if ok && q.SetID == setID {
			out = append(out, f.join(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Question.Position < out[j].Question.Position
	})
	return out, nil
}

func (f *fakeAnswers) ListByUserAndSet(_ context.Context, userID, setID int64) ([]*entities.AnswerWithQuestion, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var out []*entities.AnswerWithQuestion
	for _, a := range f.m.answers {
		q, ok := f.m.questions[a.QuestionID]
		if ok && a.UserID == userID && q.SetID == setID {
			out = append(out, f.join(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Question.Position < out[j].Question.Position })
	return out, nil
}

func (f *fakeAnswers) SetCorrect(_ context.Context, answerID int64, correct bool) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	a, ok := f.m.answers[answerID]
	if !ok {
		return repository.ErrAnswerNotFound
	}
	a.IsCorrect = correct
	return nil
}

// join must be called with the store lock held.
func (f *fakeAnswers) join(a *entities.Answer) *entities.AnswerWithQuestion {
	out := &entities.AnswerWithQuestion{Answer: *a}
	if q, ok := f.m.questions[a.QuestionID]; ok {
		out.Question = *q
	}
	return out
}

type fakeUsers struct{ m *memStore }

func (f *fakeUsers) Upsert(_ context.Context, user *entities.User) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	if existing, ok := f.m.users[user.ID]; ok {
		existing.Username = user.Username
		return nil
	}
	cp := *user
	cp.CreatedAt = time.Now()
	f.m.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (*entities.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	user, ok := f.m.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUsers) AddSouls(_ context.Context, userID int64, delta int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	if user, ok := f.m.users[userID]; ok {
		user.Souls += delta
		return nil
	}
	f.m.users[userID] = &entities.User{ID: userID, Souls: delta, CreatedAt: time.Now()}
	return nil
}

func (f *fakeUsers) SetSouls(_ context.Context, userID int64, souls int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	user, ok := f.m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Souls = souls
	return nil
}

func (f *fakeUsers) ListTop(_ context.Context, limit int) ([]*entities.User, error) {
	users, _ := f.ListAll(context.Background())
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeUsers) ListAll(_ context.Context) ([]*entities.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var users []*entities.User
	for _, u := range f.m.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Souls != users[j].Souls {
			return users[i].Souls > users[j].Souls
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

type fakeGranter struct {
	mu      sync.Mutex
	grants  []int64
	failFor map[int64]error
}

func (f *fakeGranter) GrantReward(_ context.Context, userID int64, _ *entities.QuestionSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failFor[userID]; ok {
		return err
	}
	f.grants = append(f.grants, userID)
	return nil
}

// testEnv wires the services over the in-memory fakes.
type testEnv struct {
	store    *memStore
	sets     *fakeSets
	granter  *fakeGranter
	sessions *storage.SessionStore

	play   *PlayService
	grader *GraderService
	set    *SetService
	users  *UserService
}

func newTestEnv() *testEnv {
	m := newMemStore()
	logger := zap.NewNop()

	sets := &fakeSets{m: m}
	questions := &fakeQuestions{m: m}
	answers := &fakeAnswers{m: m}
	users := &fakeUsers{m: m}
	granter := &fakeGranter{}
	sessions := storage.NewSessionStore()

	grader := NewGraderService(sets, questions, answers, users, granter, logger)

	return &testEnv{
		store:    m,
		sets:     sets,
		granter:  granter,
		sessions: sessions,
		play:     NewPlayService(sets, questions, answers, users, sessions, logger),
		grader:   grader,
		set:      NewSetService(sets, questions, grader, logger),
		users:    NewUserService(users),
	}
}

// seedBingoSet creates an OPEN bingo set with nine yes-questions worth the
// given reward each.
func (e *testEnv) seedBingoSet(t interface{ Fatalf(string, ...any) }, reward int) *entities.QuestionSet {
	ctx := context.Background()

	set, err := e.set.Create(ctx, CreateSetInput{Title: "Season Finale Predictions"})
	if err != nil {
		t.Fatalf("create set: %v", err)
	}
	for _, q := range e.store.questions {
		q.Reward = reward
	}

	set, _, err = e.set.Transition(ctx, set.ID, entities.StatusOpen)
	if err != nil {
		t.Fatalf("open set: %v", err)
	}
	return set
}
