package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/tally/tally-backend/internal/domain"
	"github.com/dafibh/tally/tally-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[int32]*domain.User
	nextID   int32
	CreateFn func(auth0ID, email string, name *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[string]*domain.User),
		ByID:   make(map[int32]*domain.User),
		nextID: 1,
	}
}

// AddUser adds a user to the mock repository
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:        m.nextID,
		Auth0ID:   auth0ID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.AddUser(user)
	return user, nil
}

// MockTeamRepository is a mock implementation of domain.TeamRepository
type MockTeamRepository struct {
	Teams      map[int32]*domain.Team
	Members    map[int32]map[int32]bool
	IsMemberFn func(teamID, userID int32) (bool, error)
}

// NewMockTeamRepository creates a new MockTeamRepository
func NewMockTeamRepository() *MockTeamRepository {
	return &MockTeamRepository{
		Teams:   make(map[int32]*domain.Team),
		Members: make(map[int32]map[int32]bool),
	}
}

// AddTeam stores team as given with the given members
func (m *MockTeamRepository) AddTeam(team *domain.Team, memberIDs ...int32) {
	m.Teams[team.ID] = team
	m.Members[team.ID] = make(map[int32]bool)
	for _, id := range memberIDs {
		m.Members[team.ID][id] = true
	}
}

// GetByID retrieves an active team
func (m *MockTeamRepository) GetByID(ctx context.Context, id int32) (*domain.Team, error) {
	if team, ok := m.Teams[id]; ok && team.Status == domain.StatusActive {
		return team, nil
	}
	return nil, domain.ErrTeamNotFound
}

// IsMember reports whether userID belongs to teamID
func (m *MockTeamRepository) IsMember(ctx context.Context, teamID, userID int32) (bool, error) {
	if m.IsMemberFn != nil {
		return m.IsMemberFn(teamID, userID)
	}
	return m.Members[teamID][userID], nil
}

// MockChargeRepository is a mock implementation of domain.ChargeRepository.
// It is safe for concurrent use since aggregation fans lookups out.
type MockChargeRepository struct {
	mu      sync.Mutex
	Charges map[int32]*domain.ChargeRecord
	nextID  int32

	// Calls counts lookups by method name
	Calls map[string]int

	CreateFn                  func(charge *domain.ChargeRecord) (*domain.ChargeRecord, error)
	FindByOwnerAndDateFn      func(scope domain.Scope, date time.Time) ([]*domain.ChargeRecord, error)
	FindByOwnerAndDateRangeFn func(scope domain.Scope, start, end time.Time) ([]*domain.ChargeRecord, error)
	FindByOwnerAndFiltersFn   func(scope domain.Scope, filters domain.ChargeFilters) ([]*domain.ChargeRecord, error)
	UpdateAmountFn            func(scope domain.Scope, id int32, amount decimal.Decimal, note string) (*domain.ChargeRecord, error)
	SoftDeleteFn              func(scope domain.Scope, id int32) error
}

// NewMockChargeRepository creates a new MockChargeRepository
func NewMockChargeRepository() *MockChargeRepository {
	return &MockChargeRepository{
		Charges: make(map[int32]*domain.ChargeRecord),
		Calls:   make(map[string]int),
		nextID:  1,
	}
}

// AddCharge stores an active charge, assigning an id when missing
func (m *MockChargeRepository) AddCharge(charge *domain.ChargeRecord) *domain.ChargeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(charge)
}

func (m *MockChargeRepository) add(charge *domain.ChargeRecord) *domain.ChargeRecord {
	if charge.ID == 0 {
		charge.ID = m.nextID
	}
	if charge.ID >= m.nextID {
		m.nextID = charge.ID + 1
	}
	if charge.Status == domain.StatusDeleted {
		charge.Status = domain.StatusActive
	}
	m.Charges[charge.ID] = charge
	return charge
}

// CallCount returns how many times method was called
func (m *MockChargeRepository) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// Create stores a new charge
func (m *MockChargeRepository) Create(ctx context.Context, charge *domain.ChargeRecord) (*domain.ChargeRecord, error) {
	if m.CreateFn != nil {
		return m.CreateFn(charge)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	charge.ID = 0
	charge.CreatedAt = time.Now()
	charge.UpdatedAt = charge.CreatedAt
	return m.add(charge), nil
}

// GetByID retrieves an active charge of scope
func (m *MockChargeRepository) GetByID(ctx context.Context, scope domain.Scope, id int32) (*domain.ChargeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Charges[id]; ok && c.Scope == scope && c.Status == domain.StatusActive {
		return c, nil
	}
	return nil, domain.ErrChargeNotFound
}

// FindByOwnerAndDate returns the active charges of scope on date
func (m *MockChargeRepository) FindByOwnerAndDate(ctx context.Context, scope domain.Scope, date time.Time) ([]*domain.ChargeRecord, error) {
	m.mu.Lock()
	m.Calls["FindByOwnerAndDate"]++
	m.mu.Unlock()
	if m.FindByOwnerAndDateFn != nil {
		return m.FindByOwnerAndDateFn(scope, date)
	}
	return m.filter(scope, func(c *domain.ChargeRecord) bool {
		return c.OccurredOn.Equal(date)
	}), nil
}

// FindByOwnerAndDateRange returns the active charges of scope within [start, end]
func (m *MockChargeRepository) FindByOwnerAndDateRange(ctx context.Context, scope domain.Scope, start, end time.Time) ([]*domain.ChargeRecord, error) {
	m.mu.Lock()
	m.Calls["FindByOwnerAndDateRange"]++
	m.mu.Unlock()
	if m.FindByOwnerAndDateRangeFn != nil {
		return m.FindByOwnerAndDateRangeFn(scope, start, end)
	}
	return m.filter(scope, func(c *domain.ChargeRecord) bool {
		return !c.OccurredOn.Before(start) && !c.OccurredOn.After(end)
	}), nil
}

// FindByOwnerAndFilters returns the active charges of scope matching filters
func (m *MockChargeRepository) FindByOwnerAndFilters(ctx context.Context, scope domain.Scope, filters domain.ChargeFilters) ([]*domain.ChargeRecord, error) {
	if m.FindByOwnerAndFiltersFn != nil {
		return m.FindByOwnerAndFiltersFn(scope, filters)
	}
	return m.filter(scope, func(c *domain.ChargeRecord) bool {
		switch {
		case filters.HasRange():
			if c.OccurredOn.Before(*filters.RangeStart) || c.OccurredOn.After(*filters.RangeEnd) {
				return false
			}
		case filters.Date != nil:
			if !c.OccurredOn.Equal(*filters.Date) {
				return false
			}
		}
		if filters.CategoryKey != nil && c.CategoryKey != *filters.CategoryKey {
			return false
		}
		if filters.Polarity != nil && c.Polarity != *filters.Polarity {
			return false
		}
		if filters.CreatedBy != nil && c.CreatedBy != *filters.CreatedBy {
			return false
		}
		return true
	}), nil
}

// FindByCategoryKey returns the active charges of scope tagged with categoryKey
func (m *MockChargeRepository) FindByCategoryKey(ctx context.Context, scope domain.Scope, categoryKey string) ([]*domain.ChargeRecord, error) {
	return m.filter(scope, func(c *domain.ChargeRecord) bool {
		return c.CategoryKey == categoryKey
	}), nil
}

// UpdateAmount changes the amount and note of an active charge
func (m *MockChargeRepository) UpdateAmount(ctx context.Context, scope domain.Scope, id int32, amount decimal.Decimal, note string) (*domain.ChargeRecord, error) {
	if m.UpdateAmountFn != nil {
		return m.UpdateAmountFn(scope, id, amount, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Charges[id]
	if !ok || c.Scope != scope || c.Status != domain.StatusActive {
		return nil, domain.ErrChargeNotFound
	}
	c.Amount = amount
	c.Note = note
	c.UpdatedAt = time.Now()
	return c, nil
}

// SoftDelete flips an active charge to deleted
func (m *MockChargeRepository) SoftDelete(ctx context.Context, scope domain.Scope, id int32) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(scope, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Charges[id]
	if !ok || c.Scope != scope || c.Status != domain.StatusActive {
		return domain.ErrChargeNotFound
	}
	c.Status = domain.StatusDeleted
	return nil
}

func (m *MockChargeRepository) filter(scope domain.Scope, keep func(c *domain.ChargeRecord) bool) []*domain.ChargeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.ChargeRecord, 0)
	for _, c := range m.Charges {
		if c.Scope == scope && c.Status == domain.StatusActive && keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].OccurredOn.Equal(result[j].OccurredOn) {
			return result[i].OccurredOn.Before(result[j].OccurredOn)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// MockChargeCategoryRepository is a mock implementation of domain.ChargeCategoryRepository
type MockChargeCategoryRepository struct {
	mu         sync.Mutex
	Categories map[int32]*domain.ChargeCategory
	nextID     int32

	CreateFn            func(category *domain.ChargeCategory) (*domain.ChargeCategory, error)
	FindActiveByScopeFn func(scope domain.Scope, polarity domain.Polarity) ([]*domain.ChargeCategory, error)
	SoftDeleteFn        func(kind domain.ScopeKind, id int32) error
}

// NewMockChargeCategoryRepository creates a new MockChargeCategoryRepository
func NewMockChargeCategoryRepository() *MockChargeCategoryRepository {
	return &MockChargeCategoryRepository{
		Categories: make(map[int32]*domain.ChargeCategory),
		nextID:     1,
	}
}

// AddCategory stores an active category, assigning id, key and origin when missing
func (m *MockChargeCategoryRepository) AddCategory(category *domain.ChargeCategory) *domain.ChargeCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(category)
}

func (m *MockChargeCategoryRepository) add(category *domain.ChargeCategory) *domain.ChargeCategory {
	if category.ID == 0 {
		category.ID = m.nextID
	}
	if category.ID >= m.nextID {
		m.nextID = category.ID + 1
	}
	if category.Key == "" {
		category.Key = fmt.Sprintf("key-%d", category.ID)
	}
	if category.Origin == "" {
		category.Origin = domain.CategoryOriginCustom
		if category.Scope.IsDefault() {
			category.Origin = domain.CategoryOriginDefault
		}
	}
	if category.Status == domain.StatusDeleted {
		category.Status = domain.StatusActive
	}
	m.Categories[category.ID] = category
	return category
}

// Store inserts a category the way Create does, without the CreateFn override
func (m *MockChargeCategoryRepository) Store(category *domain.ChargeCategory) (*domain.ChargeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Scope == category.Scope && c.Name == category.Name && c.Status == domain.StatusActive {
			return nil, domain.ErrCategoryAlreadyExists
		}
	}
	category.ID = 0
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	return m.add(category), nil
}

// Create stores a new category
func (m *MockChargeCategoryRepository) Create(ctx context.Context, category *domain.ChargeCategory) (*domain.ChargeCategory, error) {
	if m.CreateFn != nil {
		return m.CreateFn(category)
	}
	return m.Store(category)
}

// ActiveCustoms returns the active custom categories of scope and polarity
func (m *MockChargeCategoryRepository) ActiveCustoms(scope domain.Scope, polarity domain.Polarity) []*domain.ChargeCategory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.ChargeCategory
	for _, c := range m.Categories {
		if c.Scope == scope && c.Polarity == polarity && c.Status == domain.StatusActive && !c.IsDefault() {
			result = append(result, c)
		}
	}
	return result
}

func (m *MockChargeCategoryRepository) get(kind domain.ScopeKind, id int32) (*domain.ChargeCategory, error) {
	if c, ok := m.Categories[id]; ok && c.Scope.Kind == kind && c.Status == domain.StatusActive {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByID retrieves an active category of the given scope kind
func (m *MockChargeCategoryRepository) GetByID(ctx context.Context, kind domain.ScopeKind, id int32) (*domain.ChargeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(kind, id)
}

// GetByName retrieves an active category of scope by exact name
func (m *MockChargeCategoryRepository) GetByName(ctx context.Context, scope domain.Scope, name string) (*domain.ChargeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Scope == scope && c.Name == name && c.Status == domain.StatusActive {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByKey retrieves an active category of scope by key
func (m *MockChargeCategoryRepository) GetByKey(ctx context.Context, scope domain.Scope, key string) (*domain.ChargeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.Scope == scope && c.Key == key && c.Status == domain.StatusActive {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// FindActiveByScope returns the active categories of scope and polarity ordered by id
func (m *MockChargeCategoryRepository) FindActiveByScope(ctx context.Context, scope domain.Scope, polarity domain.Polarity) ([]*domain.ChargeCategory, error) {
	if m.FindActiveByScopeFn != nil {
		return m.FindActiveByScopeFn(scope, polarity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.ChargeCategory, 0)
	for _, c := range m.Categories {
		if c.Scope == scope && c.Polarity == polarity && c.Status == domain.StatusActive {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountCustom counts the active custom categories of scope and polarity
func (m *MockChargeCategoryRepository) CountCustom(ctx context.Context, scope domain.Scope, polarity domain.Polarity) (int, error) {
	return len(m.ActiveCustoms(scope, polarity)), nil
}

// Update renames and re-icons an active category
func (m *MockChargeCategoryRepository) Update(ctx context.Context, kind domain.ScopeKind, id int32, name, icon string) (*domain.ChargeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(kind, id)
	if err != nil {
		return nil, err
	}
	c.Name = name
	c.Icon = icon
	c.UpdatedAt = time.Now()
	return c, nil
}

// SoftDelete flips an active category to deleted
func (m *MockChargeCategoryRepository) SoftDelete(ctx context.Context, kind domain.ScopeKind, id int32) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(kind, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(kind, id)
	if err != nil {
		return err
	}
	c.Status = domain.StatusDeleted
	return nil
}

type orderKey struct {
	scope    domain.Scope
	polarity domain.Polarity
}

// MockCategoryOrderRepository is a mock implementation of domain.CategoryOrderRepository.
// WithLock serializes callers on a single mutex.
type MockCategoryOrderRepository struct {
	lock   sync.Mutex
	mu     sync.Mutex
	Orders map[orderKey]*domain.CategoryOrder
	nextID int32

	CreateFn func(order *domain.CategoryOrder) (*domain.CategoryOrder, error)
	UpdateFn func(id int32, ids domain.Permutation) error
}

// NewMockCategoryOrderRepository creates a new MockCategoryOrderRepository
func NewMockCategoryOrderRepository() *MockCategoryOrderRepository {
	return &MockCategoryOrderRepository{
		Orders: make(map[orderKey]*domain.CategoryOrder),
		nextID: 1,
	}
}

// SetOrder stores an active order for scope and polarity
func (m *MockCategoryOrderRepository) SetOrder(scope domain.Scope, polarity domain.Polarity, ids domain.Permutation) *domain.CategoryOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	order := &domain.CategoryOrder{
		ID:       m.nextID,
		Scope:    scope,
		Polarity: polarity,
		IDs:      ids,
		Status:   domain.StatusActive,
	}
	m.nextID++
	m.Orders[orderKey{scope, polarity}] = order
	return order
}

// IDs returns the stored permutation of scope and polarity, or nil
func (m *MockCategoryOrderRepository) IDs(scope domain.Scope, polarity domain.Polarity) domain.Permutation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.Orders[orderKey{scope, polarity}]; ok {
		return order.IDs
	}
	return nil
}

// GetByScope retrieves the active order of scope and polarity
func (m *MockCategoryOrderRepository) GetByScope(ctx context.Context, scope domain.Scope, polarity domain.Polarity) (*domain.CategoryOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.Orders[orderKey{scope, polarity}]
	if !ok {
		return nil, domain.ErrCategoryOrderNotFound
	}
	copied := *order
	copied.IDs = append(domain.Permutation{}, order.IDs...)
	return &copied, nil
}

// Create stores a new order
func (m *MockCategoryOrderRepository) Create(ctx context.Context, order *domain.CategoryOrder) (*domain.CategoryOrder, error) {
	if m.CreateFn != nil {
		return m.CreateFn(order)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := orderKey{order.Scope, order.Polarity}
	if _, exists := m.Orders[key]; exists {
		return nil, domain.ErrAlreadyExists
	}
	stored := *order
	stored.ID = m.nextID
	stored.Status = domain.StatusActive
	stored.IDs = append(domain.Permutation{}, order.IDs...)
	m.nextID++
	m.Orders[key] = &stored
	created := stored
	return &created, nil
}

// Update replaces the permutation of the order with id
func (m *MockCategoryOrderRepository) Update(ctx context.Context, id int32, ids domain.Permutation) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(id, ids)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.Orders {
		if order.ID == id {
			order.IDs = append(domain.Permutation{}, ids...)
			order.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrCategoryOrderNotFound
}

// WithLock runs fn while holding the repository-wide lock
func (m *MockCategoryOrderRepository) WithLock(ctx context.Context, scope domain.Scope, polarity domain.Polarity, fn func(repo domain.CategoryOrderRepository) error) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	return fn(m)
}

// MockIconRepository is an in-memory implementation of storage.IconRepository
type MockIconRepository struct {
	mu       sync.Mutex
	Objects  map[string][]byte
	Types    map[string]string
	UploadFn func(objectPath string) error
}

// NewMockIconRepository creates a new MockIconRepository
func NewMockIconRepository() *MockIconRepository {
	return &MockIconRepository{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockIconRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadFn != nil {
		if err := m.UploadFn(objectPath); err != nil {
			return "", err
		}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectPath] = buf.Bytes()
	m.Types[objectPath] = contentType
	return objectPath, nil
}

// Delete removes the object
func (m *MockIconRepository) Delete(ctx context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	delete(m.Types, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockIconRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://icons.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	Scope domain.Scope
	Event websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(scope domain.Scope, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Scope: scope, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
