// Package mocks provides in-memory implementations of the service stores
// for testing.
package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
)

// Compile-time checks that the views implement the store interfaces.
var (
	_ service.UserStore     = (*UserStore)(nil)
	_ service.ProfileStore  = (*ProfileStore)(nil)
	_ service.CategoryStore = (*CategoryStore)(nil)
	_ service.ExpenseStore  = (*ExpenseStore)(nil)
	_ service.SessionStore  = (*SessionStore)(nil)
)

// DB is an in-memory database shared by the store views. Relationships
// between rows behave like the PostgreSQL schema: category names are unique
// per user and deleting a category removes its expenses.
type DB struct {
	mu sync.RWMutex

	users      map[int64]*models.User
	profiles   map[int64]*models.UserProfile
	categories map[int]*models.Category
	expenses   []*models.Expense
	sessions   map[string]*models.Session

	nextUserID     int64
	nextCategoryID int
	nextExpenseID  int

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
	// Err, when set, is returned by every store call.
	Err error
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{
		users:      make(map[int64]*models.User),
		profiles:   make(map[int64]*models.UserProfile),
		categories: make(map[int]*models.Category),
		sessions:   make(map[string]*models.Session),
		Now:        time.Now,
	}
}

// Users returns a UserStore view.
func (db *DB) Users() *UserStore { return &UserStore{db: db} }

// Profiles returns a ProfileStore view.
func (db *DB) Profiles() *ProfileStore { return &ProfileStore{db: db} }

// Categories returns a CategoryStore view.
func (db *DB) Categories() *CategoryStore { return &CategoryStore{db: db} }

// Expenses returns an ExpenseStore view.
func (db *DB) Expenses() *ExpenseStore { return &ExpenseStore{db: db} }

// Sessions returns a SessionStore view.
func (db *DB) Sessions() *SessionStore { return &SessionStore{db: db} }

// AddExpense inserts an expense with an explicit timestamp, bypassing
// validation. Tests use it to place expenses inside date windows.
func (db *DB) AddExpense(userID int64, categoryID int, amount string, at time.Time) *models.Expense {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.nextExpenseID++
	exp := &models.Expense{
		ID:         db.nextExpenseID,
		UserID:     userID,
		Title:      "seeded",
		Amount:     decimal.RequireFromString(amount),
		CategoryID: categoryID,
		CreatedAt:  at,
	}
	db.expenses = append(db.expenses, exp)
	return exp
}

// ExpenseCount returns the number of stored expenses across all users.
func (db *DB) ExpenseCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.expenses)
}

// SessionCount returns the number of stored sessions across all users.
func (db *DB) SessionCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.sessions)
}

// SetErr sets Err while other goroutines may be using the stores.
func (db *DB) SetErr(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.Err = err
}

// UserStore is the in-memory service.UserStore.
type UserStore struct{ db *DB }

func (s *UserStore) CreateWithProfile(_ context.Context, user *models.User) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	for _, u := range db.users {
		if u.Username == user.Username {
			return &service.DuplicateError{Message: "Username already exists."}
		}
	}

	db.nextUserID++
	user.ID = db.nextUserID
	user.CreatedAt = db.Now()
	stored := *user
	db.users[user.ID] = &stored
	db.profiles[user.ID] = &models.UserProfile{UserID: user.ID, CreatedAt: user.CreatedAt, UpdatedAt: user.CreatedAt}
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	u, ok := db.users[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *UserStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	u, ok := db.users[id]
	if !ok {
		return service.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return 0, db.Err
	}
	return int64(len(db.users)), nil
}

// ProfileStore is the in-memory service.ProfileStore.
type ProfileStore struct{ db *DB }

func (s *ProfileStore) Ensure(_ context.Context, userID int64) (*models.UserProfile, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}

	p, ok := db.profiles[userID]
	if !ok {
		if _, ok := db.users[userID]; !ok {
			return nil, service.ErrNotFound
		}
		now := db.Now()
		p = &models.UserProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}
		db.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (s *ProfileStore) Update(_ context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}

	p, ok := db.profiles[profile.UserID]
	if !ok {
		return nil, service.ErrNotFound
	}
	created := p.CreatedAt
	*p = *profile
	p.CreatedAt = created
	p.UpdatedAt = db.Now()
	cp := *p
	return &cp, nil
}

// CategoryStore is the in-memory service.CategoryStore.
type CategoryStore struct{ db *DB }

func (s *CategoryStore) Create(_ context.Context, userID int64, name string) (*models.Category, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return nil, db.Err
	}

	for _, c := range db.categories {
		if c.UserID == userID && c.Name == name {
			return nil, &service.DuplicateError{Message: "This category already exists."}
		}
	}

	db.nextCategoryID++
	c := &models.Category{ID: db.nextCategoryID, UserID: userID, Name: name, CreatedAt: db.Now()}
	db.categories[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *CategoryStore) GetByID(_ context.Context, userID int64, id int) (*models.Category, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	c, ok := db.categories[id]
	if !ok || c.UserID != userID {
		return nil, service.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *CategoryStore) GetByName(_ context.Context, userID int64, name string) (*models.Category, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	for _, c := range db.categories {
		if c.UserID == userID && c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, service.ErrNotFound
}

func (s *CategoryStore) ListByUser(_ context.Context, userID int64) ([]models.Category, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	var out []models.Category
	for _, c := range db.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *CategoryStore) Delete(_ context.Context, userID int64, id int) (int64, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return 0, db.Err
	}

	c, ok := db.categories[id]
	if !ok || c.UserID != userID {
		return 0, service.ErrNotFound
	}
	delete(db.categories, id)

	var removed int64
	kept := db.expenses[:0]
	for _, e := range db.expenses {
		if e.CategoryID == id {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	db.expenses = kept
	return removed, nil
}

// ExpenseStore is the in-memory service.ExpenseStore.
type ExpenseStore struct{ db *DB }

func (s *ExpenseStore) Create(_ context.Context, expense *models.Expense) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	c, ok := db.categories[expense.CategoryID]
	if !ok || c.UserID != expense.UserID {
		return service.ErrNotFound
	}

	db.nextExpenseID++
	expense.ID = db.nextExpenseID
	expense.CreatedAt = db.Now()
	stored := *expense
	stored.Category = nil
	db.expenses = append(db.expenses, &stored)
	return nil
}

func (s *ExpenseStore) ListByUser(_ context.Context, userID int64) ([]models.Expense, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	var out []models.Expense
	for _, e := range db.expenses {
		if e.UserID != userID {
			continue
		}
		exp := *e
		if c, ok := db.categories[e.CategoryID]; ok {
			cat := *c
			exp.Category = &cat
		}
		out = append(out, exp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *ExpenseStore) sum(userID int64, keep func(time.Time) bool) (decimal.Decimal, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return decimal.Zero, db.Err
	}

	total := decimal.Zero
	for _, e := range db.expenses {
		if e.UserID == userID && keep(e.CreatedAt) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s *ExpenseStore) SumBetween(_ context.Context, userID int64, start, end time.Time) (decimal.Decimal, error) {
	return s.sum(userID, func(t time.Time) bool { return !t.Before(start) && t.Before(end) })
}

func (s *ExpenseStore) SumSince(_ context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	return s.sum(userID, func(t time.Time) bool { return !t.Before(since) })
}

func (s *ExpenseStore) SumAll(_ context.Context, userID int64) (decimal.Decimal, error) {
	return s.sum(userID, func(time.Time) bool { return true })
}

func (s *ExpenseStore) CountCategoriesUsed(_ context.Context, userID int64) (int, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return 0, db.Err
	}

	seen := make(map[int]struct{})
	for _, e := range db.expenses {
		if e.UserID == userID {
			seen[e.CategoryID] = struct{}{}
		}
	}
	return len(seen), nil
}

func (s *ExpenseStore) TotalsByCategory(_ context.Context, userID int64) ([]models.CategoryTotal, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	byID := make(map[int]*models.CategoryTotal)
	for _, e := range db.expenses {
		if e.UserID != userID {
			continue
		}
		ct, ok := byID[e.CategoryID]
		if !ok {
			ct = &models.CategoryTotal{CategoryID: e.CategoryID}
			if c, ok := db.categories[e.CategoryID]; ok {
				ct.Name = c.Name
			}
			byID[e.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	out := make([]models.CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SessionStore is the in-memory service.SessionStore.
type SessionStore struct{ db *DB }

func (s *SessionStore) Create(_ context.Context, session *models.Session) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	cp := *session
	db.sessions[session.Token] = &cp
	return nil
}

func (s *SessionStore) Get(_ context.Context, token string) (*models.Session, error) {
	db := s.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.Err != nil {
		return nil, db.Err
	}

	sess, ok := db.sessions[token]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *SessionStore) Touch(_ context.Context, token string, expiresAt, lastActivity time.Time) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	if sess, ok := db.sessions[token]; ok {
		sess.ExpiresAt = expiresAt
		sess.LastActivity = lastActivity
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return db.Err
	}

	delete(db.sessions, token)
	return nil
}

func (s *SessionStore) DeleteOthers(_ context.Context, userID int64, keepToken string) (int64, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return 0, db.Err
	}

	var n int64
	for token, sess := range db.sessions {
		if sess.UserID == userID && token != keepToken {
			delete(db.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	db := s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.Err != nil {
		return 0, db.Err
	}

	var n int64
	for token, sess := range db.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(db.sessions, token)
			n++
		}
	}
	return n, nil
}
