package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errDBDown = errors.New("connection refused")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
	require.NoError(t, err)
	return token
}

func ptr[T any](v T) *T { return &v }

// fakeProfiles

type fakeProfiles struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*model.Profile
	order    []uuid.UUID
	err      error
	roleSets int

	// beforeCreate срабатывает один раз перед вставкой
	beforeCreate func()
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byID: make(map[uuid.UUID]*model.Profile)}
}

func (f *fakeProfiles) add(p *model.Profile) *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
	return p
}

func (f *fakeProfiles) addWithRole(role model.Role) *model.Profile {
	return f.add(&model.Profile{DisplayName: string(role), Role: ptr(role)})
}

func (f *fakeProfiles) Create(_ context.Context, p *model.Profile) error {
	if hook := f.beforeCreate; hook != nil {
		f.beforeCreate = nil
		hook()
	}
	if f.err != nil {
		return f.err
	}
	if f.taken(p) {
		return fmt.Errorf("create profile: %w", repository.ErrDuplicate)
	}
	f.add(p)
	return nil
}

func (f *fakeProfiles) taken(p *model.Profile) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.byID {
		if p.SubjectID != nil && other.SubjectID != nil && *p.SubjectID == *other.SubjectID {
			return true
		}
		if p.Phone != nil && other.Phone != nil && *p.Phone == *other.Phone {
			return true
		}
	}
	return false
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) FindBySubjectOrPhone(_ context.Context, subjectID, phone string) ([]*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Profile
	for _, id := range f.order {
		p := f.byID[id]
		if (subjectID != "" && p.SubjectID != nil && *p.SubjectID == subjectID) ||
			(phone != "" && p.Phone != nil && *p.Phone == phone) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProfiles) LinkSubject(_ context.Context, id uuid.UUID, subjectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.SubjectID != nil {
		return errors.New("profile not found or already linked")
	}
	p.SubjectID = &subjectID
	return nil
}

func (f *fakeProfiles) UpdateRole(_ context.Context, id uuid.UUID, role model.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return errors.New("profile not found")
	}
	f.roleSets++
	p.Role = &role
	return nil
}

func (f *fakeProfiles) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]uuid.UUID(nil), f.order...), nil
}

// fakePermissions

type fakePermissions struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]map[model.MenuKey]bool
	inserts int
	err     error
}

func newFakePermissions() *fakePermissions {
	return &fakePermissions{rows: make(map[uuid.UUID]map[model.MenuKey]bool)}
}

func (f *fakePermissions) set(profileID uuid.UUID, key model.MenuKey, granted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows[profileID] == nil {
		f.rows[profileID] = make(map[model.MenuKey]bool)
	}
	f.rows[profileID][key] = granted
}

func (f *fakePermissions) ListByProfile(_ context.Context, profileID uuid.UUID) ([]*model.MenuPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.MenuPermission
	for key, granted := range f.rows[profileID] {
		out = append(out, &model.MenuPermission{ProfileID: profileID, Key: key, Granted: granted})
	}
	return out, nil
}

func (f *fakePermissions) InsertMissing(_ context.Context, profileID uuid.UUID, set model.PermissionSet) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.inserts++
	f.mu.Unlock()
	for key, granted := range set {
		f.mu.Lock()
		_, exists := f.rows[profileID][key]
		f.mu.Unlock()
		if !exists {
			f.set(profileID, key, granted)
		}
	}
	return nil
}

func (f *fakePermissions) ReplaceAll(_ context.Context, profileID uuid.UUID, set model.PermissionSet) error {
	if f.err != nil {
		return f.err
	}
	for key, granted := range set {
		f.set(profileID, key, granted)
	}
	return nil
}

func (f *fakePermissions) Upsert(_ context.Context, profileID uuid.UUID, key model.MenuKey, granted bool) error {
	if f.err != nil {
		return f.err
	}
	f.set(profileID, key, granted)
	return nil
}

// fakeMembers

type fakeMembers struct {
	mu      sync.Mutex
	byPhone map[string]*model.Member
	nextID  int64
	err     error
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{byPhone: make(map[string]*model.Member)}
}

func (f *fakeMembers) UpsertByPhone(_ context.Context, m *model.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.byPhone[m.Phone]; ok {
		existing.ProfileID = m.ProfileID
		existing.Name = m.Name
		existing.Type = m.Type
		existing.Status = m.Status
		m.ID = existing.ID
		m.JoinDate = existing.JoinDate
		return nil
	}
	f.nextID++
	m.ID = f.nextID
	cp := *m
	f.byPhone[m.Phone] = &cp
	return nil
}

func (f *fakeMembers) GetByID(_ context.Context, id int64) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.byPhone {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMembers) List(_ context.Context, status model.MemberStatus) ([]*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*model.Member{}
	for _, m := range f.byPhone {
		if status == "" || m.Status == status {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMembers) UpdateStatus(_ context.Context, id int64, status model.MemberStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, m := range f.byPhone {
		if m.ID == id {
			m.Status = status
			return true, nil
		}
	}
	return false, nil
}

// fakeLessons

type fakeLessons struct {
	lessons []*model.LessonRecord
	err     error
	from    time.Time
	to      time.Time
}

func (f *fakeLessons) ListCompletedByInstructor(_ context.Context, instructorID uuid.UUID, from, to time.Time) ([]*model.LessonRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.from, f.to = from, to
	var out []*model.LessonRecord
	for _, l := range f.lessons {
		if l.InstructorID == instructorID && l.IsCompleted() {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeNotifications

type fakeNotifications struct {
	mu      sync.Mutex
	rows    []*model.Notification
	nextID  int64
	failFor map[uuid.UUID]bool
	err     error
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{failFor: make(map[uuid.UUID]bool)}
}

func (f *fakeNotifications) Create(ctx context.Context, n *model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil || f.failFor[n.ProfileID] {
		return errDBDown
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotifications) all() []*model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Notification(nil), f.rows...)
}

func (f *fakeNotifications) ListByProfile(_ context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*model.Notification{}
	for _, n := range f.rows {
		if n.ProfileID == profileID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, profileID uuid.UUID) (int, error) {
	list, err := f.ListByProfile(ctx, profileID, true)
	return len(list), err
}

func (f *fakeNotifications) MarkRead(_ context.Context, profileID uuid.UUID, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.ID == id && n.ProfileID == profileID {
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, profileID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.rows {
		if n.ProfileID == profileID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) Delete(_ context.Context, profileID uuid.UUID, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id && n.ProfileID == profileID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifications) DeleteByNotice(_ context.Context, noticeID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*model.Notification
	var count int64
	for _, n := range f.rows {
		if n.NoticeID != nil && *n.NoticeID == noticeID {
			count++
			continue
		}
		kept = append(kept, n)
	}
	f.rows = kept
	return count, nil
}

func (f *fakeNotifications) PurgeRead(_ context.Context, olderThan time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	kept := f.rows[:0]
	var purged int64
	for _, n := range f.rows {
		if n.IsRead && n.CreatedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	f.rows = kept
	return purged, nil
}

// fakeNotices

type fakeNotices struct {
	mu     sync.Mutex
	rows   map[int64]*model.Notice
	nextID int64
	err    error
	limit  int
	offset int

	onCreate func()
}

func newFakeNotices() *fakeNotices {
	return &fakeNotices{rows: make(map[int64]*model.Notice)}
}

func (f *fakeNotices) Create(_ context.Context, n *model.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	f.rows[n.ID] = &cp
	if f.onCreate != nil {
		f.onCreate()
	}
	return nil
}

func (f *fakeNotices) GetByID(_ context.Context, id int64) (*model.Notice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotices) List(_ context.Context, limit, offset int) ([]*model.Notice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit, f.offset = limit, offset
	out := []*model.Notice{}
	for _, n := range f.rows {
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotices) Update(_ context.Context, n *model.Notice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.rows[n.ID] = &cp
	return nil
}

func (f *fakeNotices) Delete(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

// recordingPublisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeAnnouncer

type fakeAnnouncer struct {
	mu      sync.Mutex
	notices []*model.Notice
	err     error
}

func (a *fakeAnnouncer) AnnounceNotice(_ context.Context, n *model.Notice) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notices = append(a.notices, n)
	return a.err
}
