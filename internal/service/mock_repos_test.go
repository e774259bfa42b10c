package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/maamriaabderahmene/greve-ensta/internal/model"
	"github.com/maamriaabderahmene/greve-ensta/internal/repository"
	pkgerrors "github.com/maamriaabderahmene/greve-ensta/pkg/errors"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	mu        sync.Mutex
	students  map[string]*model.Student // key: email
	errGet    error
	errUpsert error
	// block 为 true 时写入一直等到 ctx 结束
	block     bool
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	if s, ok := m.students[email]; ok {
		cp := *s
		cp.AttendanceRecords = append(cp.AttendanceRecords[:0:0], s.AttendanceRecords...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) UpsertAppend(ctx context.Context, profile *model.Student, record model.AttendanceRecord) (*model.Student, error) {
	if m.block {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errUpsert != nil {
		return nil, m.errUpsert
	}
	s, ok := m.students[profile.Email]
	if !ok {
		s = &model.Student{StudentID: "stu-" + profile.Email, Email: profile.Email}
		m.students[profile.Email] = s
	}
	s.Name = profile.Name
	s.Specialty = profile.Specialty
	s.Major = profile.Major
	s.AttendanceRecords = append(s.AttendanceRecords, record)
	cp := *s
	return &cp, nil
}

func (m *mockStudentRepo) List(_ context.Context, offset, limit int) ([]model.Student, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	emails := make([]string, 0, len(m.students))
	for e := range m.students {
		emails = append(emails, e)
	}
	sort.Strings(emails)

	var result []model.Student
	for i := offset; i < len(emails) && len(result) < limit; i++ {
		result = append(result, *m.students[emails[i]])
	}
	return result, int64(len(emails)), nil
}

// ── Mock LocationRepository ──

type mockLocationRepo struct {
	locations []*model.AttendanceLocation // 按插入顺序
	errList   error
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{}
}

func (m *mockLocationRepo) Create(_ context.Context, loc *model.AttendanceLocation) error {
	if loc.LocationID == "" {
		loc.LocationID = "loc-" + loc.Name
	}
	m.locations = append(m.locations, loc)
	return nil
}

func (m *mockLocationRepo) GetByID(_ context.Context, id string) (*model.AttendanceLocation, error) {
	for _, l := range m.locations {
		if l.LocationID == id {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) List(_ context.Context, includeInactive bool) ([]model.AttendanceLocation, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	var result []model.AttendanceLocation
	for _, l := range m.locations {
		if !includeInactive && !l.IsActive {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockLocationRepo) Update(_ context.Context, loc *model.AttendanceLocation) error {
	for i, l := range m.locations {
		if l.LocationID == loc.LocationID {
			m.locations[i] = loc
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) Delete(_ context.Context, id string, _ string) error {
	for i, l := range m.locations {
		if l.LocationID == id {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── Mock LedgerRepository ──

// mockLedgerRepo 与数据库一致地强制两条唯一键
type mockLedgerRepo struct {
	mu        sync.Mutex
	entries   []model.LedgerEntry
	errFind   error
	errCreate error
	// blockFind 非空时查询会等待该通道关闭，用于构造竞态
	blockFind chan struct{}
	// staleReads 查询总是返回“不存在”，模拟检查与提交之间的竞态窗口
	staleReads bool
	// afterCreate 写入成功后回调
	afterCreate func()
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{}
}

func (m *mockLedgerRepo) FindByDevice(_ context.Context, ip, device string, session model.Session, day time.Time) (*model.LedgerEntry, error) {
	if m.blockFind != nil {
		<-m.blockFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errFind != nil {
		return nil, m.errFind
	}
	if m.staleReads {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range m.entries {
		e := m.entries[i]
		if e.IPAddress == ip && e.DeviceFingerprint == device && e.Session == session && e.Day.Equal(day) {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) ExistsByEmail(_ context.Context, email string, session model.Session, day time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errFind != nil {
		return false, m.errFind
	}
	if m.staleReads {
		return false, nil
	}
	for _, e := range m.entries {
		if e.Email == email && e.Session == session && e.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLedgerRepo) Create(_ context.Context, entry *model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errCreate != nil {
		return m.errCreate
	}
	for _, e := range m.entries {
		deviceHit := e.IPAddress == entry.IPAddress && e.DeviceFingerprint == entry.DeviceFingerprint &&
			e.Session == entry.Session && e.Day.Equal(entry.Day)
		emailHit := e.Email == entry.Email && e.Session == entry.Session && e.Day.Equal(entry.Day)
		if deviceHit || emailHit {
			return fmt.Errorf("%w: ledger", pkgerrors.ErrDuplicate)
		}
	}
	m.entries = append(m.entries, *entry)
	if m.afterCreate != nil {
		m.afterCreate()
	}
	return nil
}

func (m *mockLedgerRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ── Mock IPRegistrationRepository ──

type mockIPRegistrationRepo struct {
	regs   map[string]*model.IPRegistration
	errGet error
	block  bool
}

func newMockIPRegistrationRepo() *mockIPRegistrationRepo {
	return &mockIPRegistrationRepo{regs: make(map[string]*model.IPRegistration)}
}

func (m *mockIPRegistrationRepo) Get(ctx context.Context, ip string) (*model.IPRegistration, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.errGet != nil {
		return nil, m.errGet
	}
	if r, ok := m.regs[ip]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockIPRegistrationRepo) Touch(ctx context.Context, ip, userAgent string, now time.Time) (*model.IPRegistration, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	r, ok := m.regs[ip]
	if !ok {
		r = &model.IPRegistration{IPAddress: ip, FirstSeen: now, IsVerified: true}
		m.regs[ip] = r
	}
	r.LastSeen = now
	r.VisitCount++
	if userAgent != "" {
		r.UserAgent = userAgent
	}
	cp := *r
	return &cp, nil
}

// ── Mock SessionControlRepository ──

type mockSessionControlRepo struct {
	mu          sync.Mutex
	controls    map[model.Session]*model.SessionControl
	createCalls int
	errGet      error
	errCreate   error
	block       bool
}

func newMockSessionControlRepo() *mockSessionControlRepo {
	return &mockSessionControlRepo{controls: make(map[model.Session]*model.SessionControl)}
}

func (m *mockSessionControlRepo) Get(_ context.Context, session model.Session) (*model.SessionControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return nil, m.errGet
	}
	if sc, ok := m.controls[session]; ok {
		cp := *sc
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionControlRepo) List(ctx context.Context) ([]model.SessionControl, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.SessionControl
	for _, sc := range m.controls {
		result = append(result, *sc)
	}
	return result, nil
}

func (m *mockSessionControlRepo) Create(_ context.Context, sc *model.SessionControl) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.errCreate != nil {
		return m.errCreate
	}
	if _, ok := m.controls[sc.Session]; ok {
		return fmt.Errorf("%w: session_controls", pkgerrors.ErrDuplicate)
	}
	cp := *sc
	m.controls[sc.Session] = &cp
	return nil
}

func (m *mockSessionControlRepo) Upsert(ctx context.Context, sc *model.SessionControl) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sc
	m.controls[sc.Session] = &cp
	return nil
}

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[string]*model.Admin // key: email
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	if a, ok := m.admins[email]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if _, ok := m.admins[admin.Email]; ok {
		return fmt.Errorf("%w: admins", pkgerrors.ErrDuplicate)
	}
	if admin.AdminID == "" {
		admin.AdminID = "admin-" + admin.Email
	}
	m.admins[admin.Email] = admin
	return nil
}

// ── 聚合 ──

type mockRepos struct {
	student        *mockStudentRepo
	location       *mockLocationRepo
	ledger         *mockLedgerRepo
	ipRegistration *mockIPRegistrationRepo
	sessionControl *mockSessionControlRepo
	admin          *mockAdminRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		student:        newMockStudentRepo(),
		location:       newMockLocationRepo(),
		ledger:         newMockLedgerRepo(),
		ipRegistration: newMockIPRegistrationRepo(),
		sessionControl: newMockSessionControlRepo(),
		admin:          newMockAdminRepo(),
	}
	repo := &repository.Repository{
		Student:        m.student,
		Location:       m.location,
		Ledger:         m.ledger,
		IPRegistration: m.ipRegistration,
		SessionControl: m.sessionControl,
		Admin:          m.admin,
	}
	return repo, m
}
