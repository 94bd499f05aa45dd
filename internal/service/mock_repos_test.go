package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/storage"
)

// ── 测试配置 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: time.Hour,
			BcryptCost:     bcrypt.MinCost,
		},
		Storage: config.StorageConfig{PresignTTL: 15 * time.Minute},
		Upload: config.UploadConfig{
			MaxSizeMB:         5,
			AllowedExtensions: []string{".jpg", ".png", ".pdf", ".txt"},
		},
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	err   error // 非 nil 时所有方法返回该错误
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

// add 直接插入测试用户
func (m *mockUserRepo) add(id, name, role string) *model.User {
	u := &model.User{
		UserID: id,
		Name:   name,
		Email:  strings.ToLower(name) + "@test.local",
		Role:   role,
	}
	u.CreatedAt = time.Now()
	m.users[id] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.StudentID != nil && *u.StudentID == studentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context) (*model.RoleCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	var c model.RoleCounts
	for _, u := range m.users {
		c.Total++
		switch u.Role {
		case model.RoleStudent:
			c.Students++
		case model.RoleAdmin:
			c.Admins++
		}
	}
	return &c, nil
}

// ── Mock ComplaintRepository ──

type mockComplaintRepo struct {
	complaints map[string]*model.Complaint
	users      *mockUserRepo
	seq        int
	err        error

	findCalls   int
	updateCalls int
}

func newMockComplaintRepo(users *mockUserRepo) *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[string]*model.Complaint), users: users}
}

// add 直接插入测试投诉，createdAt 为零值时按插入顺序递增
func (m *mockComplaintRepo) add(c *model.Complaint) *model.Complaint {
	m.seq++
	if c.ComplaintID == "" {
		c.ComplaintID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Minute)
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Priority == "" {
		c.Priority = model.PriorityMedium
	}
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	m.complaints[c.ComplaintID] = c
	return c
}

func (m *mockComplaintRepo) withOwner(c model.Complaint) model.Complaint {
	if u, ok := m.users.users[c.UserID]; ok {
		cp := *u
		c.Owner = &cp
	}
	return c
}

func (m *mockComplaintRepo) sorted(keep func(*model.Complaint) bool) []model.Complaint {
	var out []model.Complaint
	for _, c := range m.complaints {
		if keep == nil || keep(c) {
			out = append(out, m.withOwner(*c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockComplaintRepo) Create(_ context.Context, c *model.Complaint) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users.users[c.UserID]; !ok {
		return fmt.Errorf("violates foreign key constraint")
	}
	m.add(c)
	return nil
}

func (m *mockComplaintRepo) FindByID(_ context.Context, id string) (*model.Complaint, error) {
	m.findCalls++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.complaints[id]
	if !ok {
		return nil, nil
	}
	cp := m.withOwner(*c)
	return &cp, nil
}

func (m *mockComplaintRepo) FindByOwner(_ context.Context, ownerID string) ([]model.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(c *model.Complaint) bool { return c.UserID == ownerID }), nil
}

func (m *mockComplaintRepo) List(_ context.Context, f model.ComplaintFilter) ([]model.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	search := strings.ToLower(f.Search)
	return m.sorted(func(c *model.Complaint) bool {
		if f.Status != "" && f.Status != "all" && c.Status != f.Status {
			return false
		}
		if f.Category != "" && c.Category != f.Category {
			return false
		}
		if search != "" {
			owner := ""
			if u, ok := m.users.users[c.UserID]; ok {
				owner = u.Name
			}
			hay := strings.ToLower(c.Title + "\x00" + c.Description + "\x00" + owner)
			if !strings.Contains(hay, search) {
				return false
			}
		}
		return true
	}), nil
}

func (m *mockComplaintRepo) Update(_ context.Context, id string, upd model.ComplaintUpdate) (*model.Complaint, error) {
	m.updateCalls++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.complaints[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.AdminResponse != nil {
		v := *upd.AdminResponse
		c.AdminResponse = &v
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Second)
	cp := *c
	return &cp, nil
}

func (m *mockComplaintRepo) Delete(_ context.Context, id string) (*model.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.complaints[id]
	if !ok {
		return nil, nil
	}
	delete(m.complaints, id)
	return c, nil
}

func (m *mockComplaintRepo) Recent(_ context.Context, n int) ([]model.Complaint, error) {
	if m.err != nil {
		return nil, m.err
	}
	all := m.sorted(nil)
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *mockComplaintRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.sorted(func(c *model.Complaint) bool { return c.UserID == ownerID }))), nil
}

func (m *mockComplaintRepo) Stats(_ context.Context) (*model.StatusCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	var s model.StatusCounts
	for _, c := range m.complaints {
		s.Total++
		switch c.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusInReview:
			s.InReview++
		case model.StatusResolved:
			s.Resolved++
		}
	}
	return &s, nil
}

func (m *mockComplaintRepo) CategoryStats(_ context.Context) ([]model.CategoryCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int64{}
	for _, c := range m.complaints {
		counts[c.Category]++
	}
	var out []model.CategoryCount
	for cat, n := range counts {
		out = append(out, model.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (m *mockComplaintRepo) CategoryStatusCounts(_ context.Context) ([]model.CategoryStatusCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	byCat := map[string]*model.CategoryStatusCount{}
	for _, c := range m.complaints {
		row, ok := byCat[c.Category]
		if !ok {
			row = &model.CategoryStatusCount{Category: c.Category}
			byCat[c.Category] = row
		}
		row.Total++
		switch c.Status {
		case model.StatusPending:
			row.Pending++
		case model.StatusInReview:
			row.InReview++
		case model.StatusResolved:
			row.Resolved++
		}
	}
	var out []model.CategoryStatusCount
	for _, r := range byCat {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (m *mockComplaintRepo) PriorityCounts(_ context.Context) ([]model.PriorityCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int64{}
	for _, c := range m.complaints {
		counts[c.Priority]++
	}
	var out []model.PriorityCount
	for p, n := range counts {
		out = append(out, model.PriorityCount{Priority: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Priority < out[j].Priority
	})
	return out, nil
}

func (m *mockComplaintRepo) ResponseTimeSpans(_ context.Context) (*model.ResponseTimeSpan, error) {
	if m.err != nil {
		return nil, m.err
	}
	var span model.ResponseTimeSpan
	var sum float64
	for _, c := range m.complaints {
		if c.Status != model.StatusResolved || !c.UpdatedAt.After(c.CreatedAt) {
			continue
		}
		secs := c.UpdatedAt.Sub(c.CreatedAt).Seconds()
		if span.ResolvedCount == 0 || secs < span.MinSeconds {
			span.MinSeconds = secs
		}
		if secs > span.MaxSeconds {
			span.MaxSeconds = secs
		}
		sum += secs
		span.ResolvedCount++
	}
	if span.ResolvedCount > 0 {
		span.AvgSeconds = sum / float64(span.ResolvedCount)
	}
	return &span, nil
}

func (m *mockComplaintRepo) DailyCounts(_ context.Context, since time.Time) ([]model.DailyCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	byDay := map[time.Time]*model.DailyCount{}
	for _, c := range m.complaints {
		if c.CreatedAt.Before(since) {
			continue
		}
		t := c.CreatedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		row, ok := byDay[day]
		if !ok {
			row = &model.DailyCount{Day: day}
			byDay[day] = row
		}
		row.Count++
		if c.Status == model.StatusResolved {
			row.Resolved++
		}
	}
	var out []model.DailyCount
	for _, r := range byDay {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (m *mockComplaintRepo) MonthlyCounts(_ context.Context, year, month int) (*model.MonthlyCounts, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out model.MonthlyCounts
	users := map[string]bool{}
	for _, c := range m.complaints {
		t := c.CreatedAt.UTC()
		if t.Year() != year || int(t.Month()) != month {
			continue
		}
		out.Total++
		users[c.UserID] = true
		switch c.Status {
		case model.StatusPending:
			out.Pending++
		case model.StatusInReview:
			out.InReview++
		case model.StatusResolved:
			out.Resolved++
		}
	}
	out.UniqueUsers = int64(len(users))
	return &out, nil
}

// ── Mock BlobStore ──

type mockBlobStore struct {
	objects   map[string][]byte
	removed   []string
	storeErr  error
	removeErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string][]byte)}
}

func (m *mockBlobStore) Store(_ context.Context, folder string, obj storage.Object) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	key := storage.ObjectKey(folder, obj.Filename)
	m.objects[key] = data
	return key, nil
}

func (m *mockBlobStore) PresignedURL(_ context.Context, key string) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("no such key: %s", key)
	}
	return "https://minio.test/bucket/" + key + "?sig=x", nil
}

func (m *mockBlobStore) Remove(_ context.Context, key string) error {
	m.removed = append(m.removed, key)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.objects, key)
	return nil
}

// ── 聚合 ──

func newTestRepository() (*repository.Repository, *mockUserRepo, *mockComplaintRepo) {
	users := newMockUserRepo()
	complaints := newMockComplaintRepo(users)
	return &repository.Repository{User: users, Complaint: complaints}, users, complaints
}
