package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/domain"
	"github.com/spec-kit/correspondence-service/internal/events"
	"github.com/spec-kit/correspondence-service/internal/repository"
	"github.com/spec-kit/correspondence-service/internal/triage"
	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

type fakeCorrespondenceRepo struct {
	items  map[int64]*domain.Correspondence
	nextID int64

	listErr    error
	statsOut   *domain.Stats
	statsHit   int
	patchCalls int
}

func newFakeCorrespondenceRepo() *fakeCorrespondenceRepo {
	return &fakeCorrespondenceRepo{items: map[int64]*domain.Correspondence{}, nextID: 1}
}

func (f *fakeCorrespondenceRepo) Create(_ context.Context, item *domain.Correspondence) error {
	item.ID = f.nextID
	f.nextID++
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeCorrespondenceRepo) GetByID(_ context.Context, id int64) (*domain.Correspondence, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCorrespondenceRepo) List(_ context.Context) ([]domain.Correspondence, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Correspondence, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeCorrespondenceRepo) CurrentState(_ context.Context, id int64) (domain.Status, domain.Priority, error) {
	item, ok := f.items[id]
	if !ok {
		return "", "", pgx.ErrNoRows
	}
	return item.Status, item.Priority, nil
}

func (f *fakeCorrespondenceRepo) ApplyPatch(_ context.Context, id int64, patch repository.CorrespondencePatch) (*domain.Correspondence, error) {
	f.patchCalls++
	item, ok := f.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Status != nil {
		item.Status = *patch.Status
	}
	if patch.Priority != nil {
		item.Priority = *patch.Priority
	}
	if patch.AssignedToID.Set {
		item.AssignedToID = patch.AssignedToID.ID
	}
	if patch.DepartmentID.Set {
		item.DepartmentID = patch.DepartmentID.ID
	}
	if patch.Notes != nil {
		item.Notes = patch.Notes
	}
	if patch.CompleteNow {
		now := time.Now()
		item.CompletedDate = &now
	}
	item.UpdatedAt = time.Now()
	copied := *item
	return &copied, nil
}

func (f *fakeCorrespondenceRepo) Stats(_ context.Context) (*domain.Stats, error) {
	f.statsHit++
	if f.statsOut != nil {
		return f.statsOut, nil
	}
	return &domain.Stats{Total: len(f.items)}, nil
}

type fakeActivityRepo struct {
	entries   []domain.ActivityLogEntry
	createErr error
}

func (f *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLogEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = int64(len(f.entries) + 1)
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) ListByCorrespondence(_ context.Context, correspondenceID int64) ([]domain.ActivityLogEntry, error) {
	var out []domain.ActivityLogEntry
	for _, entry := range f.entries {
		if entry.CorrespondenceID == correspondenceID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = int64(len(f.comments) + 1)
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByCorrespondence(_ context.Context, correspondenceID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range f.comments {
		if comment.CorrespondenceID == correspondenceID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeSLARepo struct {
	rules []domain.SLARule
}

func (f *fakeSLARepo) Create(_ context.Context, rule *domain.SLARule) error {
	rule.ID = int64(len(f.rules) + 1)
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeSLARepo) ListActive(_ context.Context) ([]domain.SLARule, error) {
	return f.rules, nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) ofType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fakeCache struct {
	store map[string]string
	sets  int
}

func (c *fakeCache) GetString(_ context.Context, key string) (string, bool, error) {
	if c.store == nil {
		return "", false, nil
	}
	val, ok := c.store[key]
	return val, ok, nil
}

func (c *fakeCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	if c.store == nil {
		c.store = map[string]string{}
	}
	c.store[key] = value
	c.sets++
	return nil
}

type serviceFixture struct {
	svc        *CorrespondenceService
	items      *fakeCorrespondenceRepo
	comments   *fakeCommentRepo
	activity   *fakeActivityRepo
	slaRules   *fakeSLARepo
	dispatcher *capturingDispatcher
	cache      *fakeCache
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		items:      newFakeCorrespondenceRepo(),
		comments:   &fakeCommentRepo{},
		activity:   &fakeActivityRepo{},
		slaRules:   &fakeSLARepo{},
		dispatcher: &capturingDispatcher{},
		cache:      &fakeCache{},
	}
	f.svc = NewCorrespondenceService(CorrespondenceDependencies{
		CorrespondenceRepo: f.items,
		CommentRepo:        f.comments,
		ActivityRepo:       f.activity,
		SLARuleRepo:        f.slaRules,
		Dispatcher:         f.dispatcher,
		Cache:              f.cache,
		CacheTTL:           time.Minute,
		Logger:             zap.NewNop(),
	})
	return f
}

var actingManager = domain.ActingUser{ID: 7, Role: domain.RoleManager}

func seedItem(t *testing.T, f *serviceFixture, mutate func(*CreateInput)) *domain.Correspondence {
	t.Helper()
	input := CreateInput{
		Subject:     "Budget request",
		Description: "Quarterly budget revision",
		Type:        domain.TypeRequest,
		SenderName:  "Ministry of Finance",
		DueDate:     time.Now().AddDate(0, 0, 10),
	}
	if mutate != nil {
		mutate(&input)
	}
	item, err := f.svc.Create(context.Background(), actingManager, input)
	require.NoError(t, err)
	return item
}

func TestCreateRequiresCoreFields(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), actingManager, CreateInput{
		Subject:     "   ",
		Description: "something",
		SenderName:  "someone",
	})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	assert.Equal(t, domain.PriorityNormal, item.Priority)
	assert.Equal(t, domain.StatusPending, item.Status)
	assert.Equal(t, int64(7), item.CreatedByID)
	assert.False(t, item.ReceivedDate.IsZero())
	assert.Regexp(t, regexp.MustCompile(`^COR-\d{4}-\d{4}$`), item.ReferenceNumber)

	created := f.dispatcher.ofType(events.EventCorrespondenceCreated)
	require.Len(t, created, 1)
	assert.Equal(t, item.ID, created[0].CorrespondenceID)
}

func TestCreateDerivesDueDateFromSLA(t *testing.T) {
	f := newFixture()
	urgent := domain.PriorityUrgent
	f.slaRules.rules = []domain.SLARule{
		{Name: "Default", ResponseDays: 3, ResolutionDays: 14, IsActive: true},
		{Name: "Urgent", Priority: &urgent, ResponseDays: 1, ResolutionDays: 2, IsActive: true},
	}

	received := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	item := seedItem(t, f, func(in *CreateInput) {
		in.Priority = domain.PriorityUrgent
		in.ReceivedDate = received
		in.DueDate = time.Time{}
	})

	assert.Equal(t, received.AddDate(0, 0, 2), item.DueDate, "most specific rule wins")
}

func TestCreateWithoutDueDateOrRuleFails(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), actingManager, CreateInput{
		Subject:     "No due date",
		Description: "desc",
		SenderName:  "sender",
	})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestUpdateStatusAppendsOneAuditEntry(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	newStatus := domain.StatusInProgress
	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &newStatus})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	require.Len(t, f.activity.entries, 1)
	entry := f.activity.entries[0]
	assert.Equal(t, domain.ActionStatusChange, entry.Action)
	assert.Equal(t, "Status changed from pending to in_progress", entry.Description)
	require.NotNil(t, entry.PreviousValue)
	require.NotNil(t, entry.NewValue)
	assert.Equal(t, "pending", *entry.PreviousValue)
	assert.Equal(t, "in_progress", *entry.NewValue)
	assert.Equal(t, actingManager.ID, entry.UserID)

	require.Len(t, f.dispatcher.ofType(events.EventStatusChanged), 1)
}

func TestUpdateEmptyPatchWritesNothing(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)
	before := f.items.items[item.ID].UpdatedAt

	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Zero(t, f.items.patchCalls, "no-op patch skips the write")
	assert.Equal(t, before, f.items.items[item.ID].UpdatedAt)
	assert.Empty(t, f.activity.entries)
}

func TestUpdateSameStatusRecordsNothing(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	same := domain.StatusPending
	_, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &same})
	require.NoError(t, err)

	assert.Empty(t, f.activity.entries)
	assert.Empty(t, f.dispatcher.ofType(events.EventStatusChanged))
}

func TestUpdatePriorityAppendsAuditEntry(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	urgent := domain.PriorityUrgent
	_, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Priority: &urgent})
	require.NoError(t, err)

	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, domain.ActionPriorityChange, f.activity.entries[0].Action)
	assert.Equal(t, "Priority changed from normal to urgent", f.activity.entries[0].Description)
}

func TestUpdateCombinedStatusAndPriority(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	status := domain.StatusInProgress
	priority := domain.PriorityHigh
	_, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &status, Priority: &priority})
	require.NoError(t, err)

	require.Len(t, f.activity.entries, 2)
	assert.Equal(t, domain.ActionStatusChange, f.activity.entries[0].Action)
	assert.Equal(t, domain.ActionPriorityChange, f.activity.entries[1].Action)
}

func TestUpdateClearsAssignmentOnExplicitNull(t *testing.T) {
	f := newFixture()
	assignee := int64(42)
	item := seedItem(t, f, func(in *CreateInput) { in.AssignedToID = &assignee })

	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{
		AssignedToID: repository.OptionalID{Set: true, ID: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AssignedToID)

	require.Len(t, f.dispatcher.ofType(events.EventAssignmentChanged), 1)
}

func TestUpdateAbsentAssignmentLeftUntouched(t *testing.T) {
	f := newFixture()
	assignee := int64(42)
	item := seedItem(t, f, func(in *CreateInput) { in.AssignedToID = &assignee })

	urgent := domain.PriorityUrgent
	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Priority: &urgent})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedToID)
	assert.Equal(t, assignee, *updated.AssignedToID)
	assert.Empty(t, f.dispatcher.ofType(events.EventAssignmentChanged))
}

func TestUpdateToCompletedStampsCompletionDate(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	completed := domain.StatusCompleted
	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedDate)
	first := *updated.CompletedDate

	// A repeated completed patch refreshes the stamp.
	time.Sleep(5 * time.Millisecond)
	updated, err = f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedDate)
	assert.True(t, updated.CompletedDate.After(first))
}

func TestUpdateAwayFromCompletedKeepsCompletionDate(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	completed := domain.StatusCompleted
	_, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)

	reopened := domain.StatusInProgress
	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &reopened})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.NotNil(t, updated.CompletedDate, "completion stamp survives reopening")
}

func TestUpdateSucceedsWhenAuditWriteFails(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)
	f.activity.createErr = errors.New("activity table unavailable")

	status := domain.StatusInProgress
	updated, err := f.svc.Update(context.Background(), actingManager, item.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.Empty(t, f.activity.entries)
}

func TestUpdateUnknownItemReturnsNotFound(t *testing.T) {
	f := newFixture()

	status := domain.StatusInProgress
	_, err := f.svc.Update(context.Background(), actingManager, 999, UpdateInput{Status: &status})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddCommentRejectsBlankContent(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	_, err := f.svc.AddComment(context.Background(), actingManager, item.ID, "   \t  ", true)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Empty(t, f.comments.comments)
}

func TestAddCommentUnknownItemReturnsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddComment(context.Background(), actingManager, 123, "note", true)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAddCommentTrimsAndPublishes(t *testing.T) {
	f := newFixture()
	item := seedItem(t, f, nil)

	comment, err := f.svc.AddComment(context.Background(), actingManager, item.ID, "  called the sender back  ", false)
	require.NoError(t, err)
	assert.Equal(t, "called the sender back", comment.Content)
	assert.False(t, comment.IsInternal)
	assert.Equal(t, actingManager.ID, comment.UserID)

	require.Len(t, f.dispatcher.ofType(events.EventCommentAdded), 1)
}

func TestStatsServedFromCache(t *testing.T) {
	f := newFixture()
	f.cache.store = map[string]string{statsCacheKey: `{"Total":99,"Pending":5}`}

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, stats.Total)
	assert.Equal(t, 5, stats.Pending)
	assert.Zero(t, f.items.statsHit, "cache hit skips the database")
}

func TestStatsCacheMissQueriesAndWritesBack(t *testing.T) {
	f := newFixture()
	f.items.statsOut = &domain.Stats{Total: 3, Pending: 2, Completed: 1}

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, f.items.statsHit)
	assert.Equal(t, 1, f.cache.sets)
}

func TestTriageViewGroupsItems(t *testing.T) {
	f := newFixture()
	now := time.Now()
	seedItem(t, f, func(in *CreateInput) { in.DueDate = now.AddDate(0, 0, -2) })
	seedItem(t, f, func(in *CreateInput) { in.DueDate = now.AddDate(0, 0, 3) })

	groups, err := f.svc.TriageView(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, groups[triage.BucketOverdue], 1)
	assert.Len(t, groups[triage.BucketThisWeek], 1)
}

func TestBestSLAMatchPrefersSpecificity(t *testing.T) {
	urgent := domain.PriorityUrgent
	complaint := domain.TypeComplaint
	rules := []domain.SLARule{
		{Name: "Default", ResolutionDays: 14, IsActive: true},
		{Name: "Complaints", Type: &complaint, ResolutionDays: 10, IsActive: true},
		{Name: "Urgent complaints", Type: &complaint, Priority: &urgent, ResolutionDays: 2, IsActive: true},
		{Name: "Inactive", Type: &complaint, Priority: &urgent, ResolutionDays: 1, IsActive: false},
	}

	best := BestSLAMatch(rules, domain.TypeComplaint, domain.PriorityUrgent)
	require.NotNil(t, best)
	assert.Equal(t, "Urgent complaints", best.Name)

	best = BestSLAMatch(rules, domain.TypeComplaint, domain.PriorityLow)
	require.NotNil(t, best)
	assert.Equal(t, "Complaints", best.Name)

	best = BestSLAMatch(rules, domain.TypeLetter, domain.PriorityLow)
	require.NotNil(t, best)
	assert.Equal(t, "Default", best.Name)

	assert.Nil(t, BestSLAMatch(nil, domain.TypeLetter, domain.PriorityLow))
}

func TestGenerateReferenceNumberFormat(t *testing.T) {
	ref := GenerateReferenceNumber(time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^COR-2026-\d{4}$`), ref)
}
