package checks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"preop-drug-check/internal/platform/logger/loggertest"
	"preop-drug-check/internal/ports/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// -------------------------
// Fakes
// -------------------------

type fakeKeys struct {
	key   string
	err   error
	calls int
}

func (k *fakeKeys) APIKey(context.Context) (string, error) {
	k.calls++
	return k.key, k.err
}

// fakeRunner responde por medicamento; block=true espera a que cancelen el contexto.
type fakeRunner struct {
	mu       sync.Mutex
	requests []workflow.Request
	keys     []string

	outputs map[string]workflow.Output
	errs    map[string]error
	block   map[string]bool
	delay   map[string]time.Duration
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]workflow.Output{},
		errs:    map[string]error{},
		block:   map[string]bool{},
		delay:   map[string]time.Duration{},
	}
}

func (f *fakeRunner) Run(ctx context.Context, apiKey string, req workflow.Request) (workflow.Output, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.keys = append(f.keys, apiKey)
	out, err, block, delay := f.outputs[req.Drug], f.errs[req.Drug], f.block[req.Drug], f.delay[req.Drug]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return workflow.Output{}, ctx.Err()
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return out, err
}

func (f *fakeRunner) drugs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Drug)
	}
	sort.Strings(out)
	return out
}

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Check
	err  error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Check{}}
}

func (r *testRepo) Create(_ context.Context, c Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return Check{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) ListRecent(_ context.Context, limit int) ([]Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Check, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]workflow.Output
}

func (c *memCache) Get(_ context.Context, req workflow.Request) (workflow.Output, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.data[req.SurgeryDate+"|"+req.User+"|"+req.Drug]
	return out, ok, nil
}

func (c *memCache) Set(_ context.Context, req workflow.Request, out workflow.Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[req.SurgeryDate+"|"+req.User+"|"+req.Drug] = out
	return nil
}

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)

func newTestService(t *testing.T, keys *fakeKeys, runner *fakeRunner, repo *testRepo) *Service {
	t.Helper()
	return NewService(Deps{
		Keys:        keys,
		Runner:      runner,
		Repo:        repo,
		Logger:      loggertest.New(t),
		DefaultUser: "webapp-user",
		Now:         func() time.Time { return fixedNow },
	})
}

// -------------------------
// Tests
// -------------------------

func TestService_Run_ValidationMakesNoCalls(t *testing.T) {
	cases := []Input{
		{RawDrugs: "", SurgeryDate: "2026-10-20"},
		{RawDrugs: "\n \n", SurgeryDate: "2026-10-20"},
		{RawDrugs: "A", SurgeryDate: ""},
		{RawDrugs: "A", SurgeryDate: "2026-10-15"},
	}
	for _, in := range cases {
		keys := &fakeKeys{key: "k"}
		runner := newFakeRunner()
		repo := newTestRepo()

		_, err := newTestService(t, keys, runner, repo).Run(context.Background(), in)

		require.Error(t, err)
		assert.NotEmpty(t, AlertMessage(err))
		assert.Zero(t, keys.calls, "no config fetch on invalid input")
		assert.Empty(t, runner.drugs(), "no workflow calls on invalid input")
		assert.Empty(t, repo.byID)
	}
}

func TestService_Run_MissingInputAlert(t *testing.T) {
	_, err := newTestService(t, &fakeKeys{key: "k"}, newFakeRunner(), newTestRepo()).
		Run(context.Background(), Input{RawDrugs: "A"})
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, "お薬の名前と手術予定日を両方入力してください。", AlertMessage(err))
}

func TestService_Run_TooManyDrugsMakesNoCalls(t *testing.T) {
	lines := make([]string, MaxDrugs+1)
	for i := range lines {
		lines[i] = fmt.Sprintf("drug-%d", i)
	}
	keys := &fakeKeys{key: "k"}
	runner := newFakeRunner()

	_, err := newTestService(t, keys, runner, newTestRepo()).Run(context.Background(), Input{
		RawDrugs:    strings.Join(lines, "\n"),
		SurgeryDate: "2026-10-20",
	})

	assert.ErrorIs(t, err, ErrTooManyDrugs)
	assert.Equal(t, "お薬は一度に50件まで入力してください。", AlertMessage(err))
	assert.Zero(t, keys.calls)
	assert.Empty(t, runner.drugs())
}

func TestService_Run_KeyFailurePreventsCalls(t *testing.T) {
	keys := &fakeKeys{err: errors.New("config endpoint down")}
	runner := newFakeRunner()
	repo := newTestRepo()

	_, err := newTestService(t, keys, runner, repo).Run(context.Background(), Input{
		RawDrugs:    "A\nB",
		SurgeryDate: "2026-10-20",
	})

	assert.ErrorIs(t, err, ErrKeyUnavailable)
	assert.Equal(t, "APIキーの取得に失敗しました。", AlertMessage(err))
	assert.Equal(t, 1, keys.calls)
	assert.Empty(t, runner.drugs())
	assert.Empty(t, repo.byID)
}

func TestService_Run_OneRequestPerDrug(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "a", HasText: true}
	runner.outputs["B"] = workflow.Output{Text: "b", HasText: true}

	_, err := newTestService(t, &fakeKeys{key: "app-key"}, runner, newTestRepo()).Run(context.Background(), Input{
		Drugs:       []string{"A", " B "},
		SurgeryDate: "2026-10-20",
	})
	require.NoError(t, err)

	require.Len(t, runner.requests, 2)
	assert.Equal(t, []string{"A", "B"}, runner.drugs())
	for i, req := range runner.requests {
		assert.Equal(t, "2026-10-20", req.SurgeryDate)
		assert.Equal(t, "webapp-user", req.User)
		assert.Equal(t, "app-key", runner.keys[i])
	}
}

func TestService_Run_ResultsInInputOrder(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "a-text", HasText: true}
	runner.outputs["B"] = workflow.Output{}
	runner.outputs["C"] = workflow.Output{Text: "c-text", HasText: true}
	// A termina último: el orden no depende de quién responde primero
	runner.delay["A"] = 30 * time.Millisecond

	repo := newTestRepo()
	c, err := newTestService(t, &fakeKeys{key: "k"}, runner, repo).Run(context.Background(), Input{
		RawDrugs:    "A\n\nB\nC",
		SurgeryDate: "2026-10-16",
		User:        "ward-3",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, c.Status)
	assert.Equal(t, []string{
		"A: a-text",
		"B: 結果が取得できませんでした。",
		"C: c-text",
	}, c.Lines())
	assert.Equal(t, "ward-3", c.User)
	assert.Equal(t, fixedNow, c.CreatedAt)

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, stored)
}

func TestService_Run_FailureDiscardsPartialResults(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "ok", HasText: true}
	runner.errs["B"] = &workflow.StatusError{Drug: "B", StatusCode: 400, Message: "invalid drug"}
	runner.block["C"] = true

	repo := newTestRepo()
	c, err := newTestService(t, &fakeKeys{key: "k"}, runner, repo).Run(context.Background(), Input{
		RawDrugs:    "A\nB\nC",
		SurgeryDate: "2026-10-20",
	})

	var drugErr *DrugError
	require.True(t, errors.As(err, &drugErr))
	assert.Equal(t, "B", drugErr.Drug)
	assert.Equal(t, "「B」の確認中にエラーが発生しました (Status: 400): invalid drug", err.Error())

	assert.Equal(t, StatusFailed, c.Status)
	assert.Empty(t, c.Results)
	assert.Equal(t, []string{
		"エラーが発生しました: 「B」の確認中にエラーが発生しました (Status: 400): invalid drug。サーバーログで詳細を確認してください。",
	}, c.Lines())

	stored, getErr := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestService_Run_TransportErrorMessage(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["A"] = errors.New("connection refused")

	_, err := newTestService(t, &fakeKeys{key: "k"}, runner, newTestRepo()).Run(context.Background(), Input{
		RawDrugs:    "A",
		SurgeryDate: "2026-10-20",
	})
	assert.EqualError(t, err, "「A」の確認中にエラーが発生しました: connection refused")
}

func TestService_Run_RepoErrorDoesNotFailCheck(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "ok", HasText: true}
	repo := newTestRepo()
	repo.err = errors.New("db down")

	c, err := newTestService(t, &fakeKeys{key: "k"}, runner, repo).Run(context.Background(), Input{
		RawDrugs:    "A",
		SurgeryDate: "2026-10-20",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A: ok"}, c.Lines())
}

func TestService_Run_UsesCache(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "fresh", HasText: true}
	runner.outputs["B"] = workflow.Output{}

	cache := &memCache{data: map[string]workflow.Output{}}
	svc := newTestService(t, &fakeKeys{key: "k"}, runner, newTestRepo())
	svc.cache = cache

	in := Input{RawDrugs: "A\nB", SurgeryDate: "2026-10-20"}
	_, err := svc.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, runner.requests, 2)
	assert.Len(t, cache.data, 1, "outputs without text are not cached")

	c, err := svc.Run(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, runner.requests, 3, "only B goes to the workflow again")
	assert.True(t, c.Results[0].Cached)
	assert.Equal(t, "A: fresh", c.Results[0].Line())
}

func TestService_GetAndList(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["A"] = workflow.Output{Text: "ok", HasText: true}
	svc := newTestService(t, &fakeKeys{key: "k"}, runner, newTestRepo())

	c, err := svc.Run(context.Background(), Input{RawDrugs: "A", SurgeryDate: "2026-10-20"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
