package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m3rciful/autoservice-bot/core/telegram/state"
	"github.com/m3rciful/autoservice-bot/internal/domain"
	"github.com/m3rciful/autoservice-bot/internal/report"
	"github.com/m3rciful/autoservice-bot/internal/storage"
)

type fakeRepo struct {
	mu           sync.Mutex
	apptDelay    time.Duration
	users        map[string]domain.User
	inserts      int
	insertErr    error
	appointments []domain.Appointment
	apptErr      error
	clients      []domain.Client
	orders       []domain.OrderEntry
	daily        []domain.DailyIncome
	searched     []string
	reportErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]domain.User{}}
}

func (f *fakeRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeRepo) InsertUser(_ context.Context, u domain.User) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.users[u.Username]; ok {
		return storage.ErrUsernameOccupied
	}
	f.users[u.Username] = u
	return nil
}

func (f *fakeRepo) ClientsRanked(context.Context) ([]domain.ClientSpend, error) {
	return []domain.ClientSpend{{ID: 1, FullName: "Иван", Status: "gold", TotalSpent: decimal.RequireFromString("180")}}, f.reportErr
}

func (f *fakeRepo) TopServices(_ context.Context, limit int) ([]domain.ServiceUsage, error) {
	if limit != domain.TopServicesLimit {
		return nil, fmt.Errorf("unexpected limit %d", limit)
	}
	return nil, f.reportErr
}

func (f *fakeRepo) BranchIncome(context.Context) ([]domain.BranchIncome, error) {
	return nil, f.reportErr
}

func (f *fakeRepo) LowStockParts(_ context.Context, threshold int) ([]domain.LowStockPart, error) {
	if threshold != domain.LowStockThreshold {
		return nil, fmt.Errorf("unexpected threshold %d", threshold)
	}
	return []domain.LowStockPart{{ID: 1, Name: "Свеча", StockQuantity: 5}}, f.reportErr
}

func (f *fakeRepo) OrdersChronological(context.Context) ([]domain.OrderEntry, error) {
	return f.orders, f.reportErr
}

func (f *fakeRepo) DailyReport(context.Context) ([]domain.DailyIncome, error) {
	return f.daily, f.reportErr
}

func (f *fakeRepo) SearchClients(_ context.Context, substr string) ([]domain.Client, error) {
	f.searched = append(f.searched, substr)
	return f.clients, nil
}

func (f *fakeRepo) ListClientsBrief(context.Context) ([]domain.RefItem, error) {
	return []domain.RefItem{{ID: 3, Label: "Иван Петров"}}, nil
}

func (f *fakeRepo) ListBranchesBrief(context.Context) ([]domain.RefItem, error) {
	return []domain.RefItem{{ID: 7, Label: "Казань ул. Баумана, 1"}}, nil
}

func (f *fakeRepo) ListServicesBrief(context.Context) ([]domain.RefItem, error) {
	return []domain.RefItem{{ID: 2, Label: "Замена масла"}}, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, a domain.Appointment) error {
	time.Sleep(f.apptDelay)
	if f.apptErr != nil {
		return f.apptErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appointments = append(f.appointments, a)
	return nil
}

func (f *fakeRepo) appointmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appointments)
}

// brokenStore fails every load.
type brokenStore struct {
	state.Store
	loadErr error
	cleared int
}

func (b *brokenStore) Load(context.Context, int64) (state.Session, error) {
	return state.Idle(), b.loadErr
}

func (b *brokenStore) Clear(context.Context, int64) error {
	b.cleared++
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, repo *fakeRepo, askService bool) *Engine {
	t.Helper()
	return New(Options{
		Repo:       repo,
		Sessions:   state.NewMemoryStore(time.Hour),
		AskService: askService,
		Now:        func() time.Time { return fixedNow },
	})
}

func requireStep(t *testing.T, e *Engine, userID int64, want Step) {
	t.Helper()
	got, err := e.Step(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func texts(replies []Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Text
	}
	return out
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	replies, err := e.BeginRegistration(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, textAskUsername, replies[0].Text)
	requireStep(t, e, 1, AwaitingUsername{})

	replies, err = e.HandleText(ctx, 1, " bob ")
	require.NoError(t, err)
	assert.Equal(t, textAskPassword, replies[0].Text)
	requireStep(t, e, 1, AwaitingPassword{Username: "bob"})

	replies, err = e.HandleText(ctx, 1, "secret")
	require.NoError(t, err)
	assert.Equal(t, KeyboardRoles, replies[0].Keyboard)
	requireStep(t, e, 1, AwaitingRole{Username: "bob", Password: "secret"})

	replies, err = e.SelectRole(ctx, 1, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, []string{textRegistered}, texts(replies))
	assert.Equal(t, KeyboardMenu, replies[0].Keyboard)
	requireStep(t, e, 1, Idle{})
	assert.False(t, e.Active(ctx, 1))

	user := repo.users["bob"]
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))
}

func TestRegistrationUsernameOccupied(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.users["bob"] = domain.User{Username: "bob", Role: domain.RoleAdmin}
	e := newEngine(t, repo, false)

	_, err := e.BeginRegistration(ctx, 1)
	require.NoError(t, err)
	replies, err := e.HandleText(ctx, 1, "bob")
	require.NoError(t, err)

	assert.Equal(t, textUsernameTaken, replies[0].Text)
	assert.Zero(t, repo.inserts)
	requireStep(t, e, 1, AwaitingUsername{})
}

func TestRegistrationRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeRepo(), false)

	_, err := e.BeginRegistration(ctx, 1)
	require.NoError(t, err)
	replies, err := e.HandleText(ctx, 1, string(make([]rune, 65)))
	require.NoError(t, err)
	assert.Equal(t, textBadUsername, replies[0].Text)
	requireStep(t, e, 1, AwaitingUsername{})

	_, err = e.HandleText(ctx, 1, "bob")
	require.NoError(t, err)
	replies, err = e.HandleText(ctx, 1, "ж"+string(make([]byte, 72)))
	require.NoError(t, err)
	assert.Equal(t, textBadPassword, replies[0].Text)
	requireStep(t, e, 1, AwaitingPassword{Username: "bob"})
}

func TestRegistrationStoreFailureAbandonsFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.insertErr = fmt.Errorf("insert user: %w: users_role_check", storage.ErrConstraintViolation)
	e := newEngine(t, repo, false)

	_, _ = e.BeginRegistration(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "bob")
	_, _ = e.HandleText(ctx, 1, "secret")
	replies, err := e.SelectRole(ctx, 1, domain.RoleMaster)

	assert.ErrorIs(t, err, storage.ErrConstraintViolation)
	assert.Contains(t, replies[0].Text, "🚫 Ошибка")
	assert.Contains(t, replies[0].Text, "users_role_check")
	requireStep(t, e, 1, Idle{})
}

func TestRegistrationInsertRace(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	_, _ = e.BeginRegistration(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "bob")
	_, _ = e.HandleText(ctx, 1, "secret")
	repo.users["bob"] = domain.User{Username: "bob"}

	replies, err := e.SelectRole(ctx, 1, domain.RoleAnalyst)
	require.Error(t, err)
	assert.Contains(t, replies[0].Text, "username уже занят")
	requireStep(t, e, 1, Idle{})
}

func TestSelectRoleWithoutRegistration(t *testing.T) {
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	replies, err := e.SelectRole(context.Background(), 1, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, textNoRegistration, replies[0].Text)
	assert.Zero(t, repo.inserts)
}

func TestAppointmentFlow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	replies, err := e.BeginAppointment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "3) Иван Петров")
	assert.Equal(t, textAskClientID, replies[1].Text)

	replies, err = e.HandleText(ctx, 1, "3")
	require.NoError(t, err)
	assert.Contains(t, replies[0].Text, "7) Казань")
	requireStep(t, e, 1, AwaitingBranchID{ClientID: "3", ServiceID: "3"})

	replies, err = e.HandleText(ctx, 1, "7")
	require.NoError(t, err)
	assert.Equal(t, []string{textAppointmentDone}, texts(replies))
	require.Len(t, repo.appointments, 1)
	assert.Equal(t, domain.Appointment{ClientID: 3, BranchID: 7, ServiceID: 3, At: fixedNow}, repo.appointments[0])
	requireStep(t, e, 1, Idle{})
}

func TestAppointmentAskService(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, true)

	_, _ = e.BeginAppointment(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "3")
	requireStep(t, e, 1, AwaitingBranchID{ClientID: "3"})

	replies, err := e.HandleText(ctx, 1, "7")
	require.NoError(t, err)
	assert.Equal(t, textAskServiceID, replies[1].Text)
	requireStep(t, e, 1, AwaitingServiceID{ClientID: "3", BranchID: "7"})

	_, err = e.HandleText(ctx, 1, "2")
	require.NoError(t, err)
	require.Len(t, repo.appointments, 1)
	assert.Equal(t, int64(2), repo.appointments[0].ServiceID)
}

func TestAppointmentForeignKeyFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.apptErr = fmt.Errorf("create appointment: %w: branch_id_fkey", storage.ErrForeignKeyViolation)
	e := newEngine(t, repo, false)

	_, _ = e.BeginAppointment(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "3")
	replies, err := e.HandleText(ctx, 1, "999")

	assert.ErrorIs(t, err, storage.ErrForeignKeyViolation)
	assert.Contains(t, replies[0].Text, "🚫 Ошибка")
	assert.Empty(t, repo.appointments)
	requireStep(t, e, 1, Idle{})
}

func TestAppointmentMalformedID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	_, _ = e.BeginAppointment(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "abc")
	replies, err := e.HandleText(ctx, 1, "7")

	require.Error(t, err)
	assert.Contains(t, replies[0].Text, "client_id")
	assert.Empty(t, repo.appointments)
	requireStep(t, e, 1, Idle{})
}

func TestSearchEmptyClearsSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	_, err := e.BeginSearch(ctx, 1)
	require.NoError(t, err)
	assert.True(t, e.Active(ctx, 1))

	replies, err := e.HandleText(ctx, 1, "zzz")
	require.NoError(t, err)
	assert.Equal(t, []string{report.EmptyText}, texts(replies))
	assert.Equal(t, []string{"zzz"}, repo.searched)
	requireStep(t, e, 1, Idle{})
}

func TestSearchMatches(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.clients = []domain.Client{{ID: 1, FullName: "Иван Петров", Phone: "+79001234567", Status: "gold"}}
	e := newEngine(t, repo, false)

	_, _ = e.BeginSearch(ctx, 1)
	replies, err := e.HandleText(ctx, 1, "иван")
	require.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Иван Петров (gold)")
	assert.Equal(t, KeyboardMenu, replies[0].Keyboard)
}

func TestNewFlowOverwritesOld(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeRepo(), false)

	_, _ = e.BeginRegistration(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "bob")
	_, _ = e.BeginSearch(ctx, 1)
	requireStep(t, e, 1, AwaitingQuery{})
}

func TestSessionsArePerUser(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeRepo(), false)

	_, _ = e.BeginRegistration(ctx, 1)
	_, _ = e.BeginSearch(ctx, 2)
	requireStep(t, e, 1, AwaitingUsername{})
	requireStep(t, e, 2, AwaitingQuery{})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeRepo(), false)

	replies, err := e.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, textNothingToCancel, replies[0].Text)

	_, _ = e.BeginAppointment(ctx, 1)
	replies, err = e.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, textCancelled, replies[0].Text)
	requireStep(t, e, 1, Idle{})
}

func TestCancelReportsStoreFailure(t *testing.T) {
	sessions := &brokenStore{loadErr: errors.New("redis: connection refused")}
	e := New(Options{Repo: newFakeRepo(), Sessions: sessions})

	replies, err := e.Cancel(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, replies[0].Text, "connection refused")
	assert.NotEqual(t, textNothingToCancel, replies[0].Text)
	assert.Equal(t, 1, sessions.cleared)
}

func TestConcurrentBranchIDCreatesOneAppointment(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.apptDelay = 20 * time.Millisecond
	e := newEngine(t, repo, false)

	_, err := e.BeginAppointment(ctx, 1)
	require.NoError(t, err)
	_, err = e.HandleText(ctx, 1, "3")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.HandleText(ctx, 1, "7")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.appointmentCount())
	requireStep(t, e, 1, Idle{})
	assert.Zero(t, e.locks.held())
}

func TestConcurrentRolePressRegistersOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	_, _ = e.BeginRegistration(ctx, 1)
	_, _ = e.HandleText(ctx, 1, "bob")
	_, _ = e.HandleText(ctx, 1, "secret")

	results := make([]string, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies, err := e.SelectRole(ctx, 1, domain.RoleManager)
			assert.NoError(t, err)
			results[i] = replies[0].Text
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, repo.inserts)
	assert.ElementsMatch(t, []string{textRegistered, textNoRegistration}, results)
}

func TestTextOutsideFlowIsIgnored(t *testing.T) {
	replies, err := newEngine(t, newFakeRepo(), false).HandleText(context.Background(), 1, "hello")
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestStartGreetsAndResets(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, newFakeRepo(), false)
	_, _ = e.BeginSearch(ctx, 1)

	replies, err := e.Start(ctx, 1, "<bob>")
	require.NoError(t, err)
	assert.Contains(t, replies[0].Text, "Добро пожаловать, &lt;bob&gt;!")
	assert.Equal(t, KeyboardMenu, replies[0].Keyboard)
	requireStep(t, e, 1, Idle{})
}

func TestOrdersReportPages(t *testing.T) {
	repo := newFakeRepo()
	for i := range 45 {
		repo.orders = append(repo.orders, domain.OrderEntry{
			ID:         int64(45 - i),
			ClientName: fmt.Sprintf("client-%02d", i),
			CreatedAt:  fixedNow.Add(-time.Duration(i) * time.Hour),
		})
	}
	e := newEngine(t, repo, false)

	replies, err := e.Report(context.Background(), ReportOrders)
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, KeyboardNone, replies[0].Keyboard)
	assert.Equal(t, KeyboardNone, replies[1].Keyboard)
	assert.Equal(t, KeyboardMenu, replies[2].Keyboard)
}

func TestInfoReportsKeepInfoKeyboard(t *testing.T) {
	e := newEngine(t, newFakeRepo(), false)
	for _, kind := range []ReportKind{ReportClients, ReportServices, ReportBranches, ReportParts} {
		replies, err := e.Report(context.Background(), kind)
		require.NoError(t, err, kind)
		require.Len(t, replies, 1)
		assert.Equal(t, KeyboardInfo, replies[0].Keyboard, kind)
	}
}

func TestReportFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.reportErr = errors.New("connection refused")
	e := newEngine(t, repo, false)

	replies, err := e.Report(context.Background(), ReportDaily)
	require.Error(t, err)
	assert.Equal(t, "🚫 Ошибка connection refused", replies[0].Text)
}

func TestDailyReportAndExport(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newEngine(t, repo, false)

	replies, err := e.Report(ctx, ReportDaily)
	require.NoError(t, err)
	assert.Equal(t, report.EmptyText, replies[0].Text)
	assert.Equal(t, KeyboardMenu, replies[0].Keyboard)

	repo.daily = []domain.DailyIncome{{
		Date:           fixedNow,
		Orders:         1,
		ServicesIncome: decimal.NewFromInt(100),
		PartsIncome:    decimal.Zero,
		TotalIncome:    decimal.NewFromInt(100),
	}}
	replies, err = e.Report(ctx, ReportDaily)
	require.NoError(t, err)
	assert.Equal(t, KeyboardReport, replies[0].Keyboard)

	replies, err = e.ExportDaily(ctx)
	require.NoError(t, err)
	require.NotNil(t, replies[0].Document)
	assert.Equal(t, "orders_report_20240501_1200.xlsx", replies[0].Document.Name)
	assert.NotEmpty(t, replies[0].Document.Data)
}

func TestStepCodecRoundTrip(t *testing.T) {
	steps := []Step{
		Idle{},
		AwaitingUsername{},
		AwaitingPassword{Username: "bob"},
		AwaitingRole{Username: "bob", Password: "secret"},
		AwaitingClientID{},
		AwaitingBranchID{ClientID: "3", ServiceID: "3"},
		AwaitingServiceID{ClientID: "3", BranchID: "7"},
		AwaitingQuery{},
	}
	for _, step := range steps {
		got, err := decode(encode(step))
		require.NoError(t, err)
		assert.Equal(t, step, got)
	}

	_, err := decode(state.Session{State: "bogus"})
	assert.Error(t, err)
}

func TestPendingPasswordExpiresEarly(t *testing.T) {
	assert.Equal(t, pendingPasswordTTL, encode(AwaitingRole{Username: "bob", Password: "secret"}).TTL)
	assert.Zero(t, encode(AwaitingPassword{Username: "bob"}).TTL)
	assert.Zero(t, encode(AwaitingBranchID{ClientID: "3"}).TTL)
}
