package service_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
	"gitlab.com/yelinaung/expense-web/internal/service/mocks"
	"pgregory.net/rapid"
)

func newExpenseService(db *mocks.DB, opts service.Options) *service.ExpenseService {
	return service.NewExpenseService(db.Categories(), db.Expenses(), db.Profiles(), opts)
}

func setMonthlyLimit(t *testing.T, db *mocks.DB, userID int64, limit string) {
	t.Helper()

	_, err := service.NewProfileService(db.Profiles()).
		UpdateProfile(context.Background(), userID, service.ProfileInput{MonthlyLimit: limit})
	require.NoError(t, err)
}

func TestExpenseService_CreateCategory(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewDB()
	svc := newExpenseService(db, service.Options{})
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("creates trimmed category", func(t *testing.T) {
		cat, err := svc.CreateCategory(ctx, alice.ID, "  Food  ")
		require.NoError(t, err)
		require.Equal(t, "Food", cat.Name)
		require.Equal(t, alice.ID, cat.UserID)
	})

	t.Run("duplicate leaves count unchanged", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, alice.ID, "Food")
		dup, ok := service.IsDuplicate(err)
		require.True(t, ok, "got %v", err)
		require.Equal(t, "This category already exists.", dup.Message)

		cats, err := svc.ListCategories(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, cats, 1)
	})

	t.Run("uniqueness is per user and case-sensitive", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, bob.ID, "Food")
		require.NoError(t, err)
		_, err = svc.CreateCategory(ctx, alice.ID, "food")
		require.NoError(t, err)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", strings.Repeat("é", 51), "Tab\there"} {
			_, err := svc.CreateCategory(ctx, alice.ID, name)
			v, ok := service.IsValidation(err)
			require.True(t, ok, "name %q: got %v", name, err)
			require.Equal(t, "name", v.Field)
		}
	})

	t.Run("accepts fifty runes", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, alice.ID, strings.Repeat("é", 50))
		require.NoError(t, err)
	})

	t.Run("lists own categories by name", func(t *testing.T) {
		cats, err := svc.ListCategories(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, cats, 1)
		require.Equal(t, "Food", cats[0].Name)
	})
}

func TestExpenseService_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewDB()
	svc := newExpenseService(db, service.Options{})
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	t.Run("cascades to expenses", func(t *testing.T) {
		food := createCategory(t, db, alice.ID, "Food")
		rent := createCategory(t, db, alice.ID, "Rent")
		db.AddExpense(alice.ID, food.ID, "5.00", time.Now())
		db.AddExpense(alice.ID, food.ID, "6.00", time.Now())
		db.AddExpense(alice.ID, rent.ID, "700.00", time.Now())

		removed, err := svc.DeleteCategory(ctx, alice.ID, food.ID)
		require.NoError(t, err)
		require.Equal(t, int64(2), removed)

		expenses, err := svc.ListExpenses(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		require.Equal(t, rent.ID, expenses[0].CategoryID)
	})

	t.Run("foreign category is not found and unchanged", func(t *testing.T) {
		travel := createCategory(t, db, bob.ID, "Travel")
		db.AddExpense(bob.ID, travel.ID, "10.00", time.Now())
		before := db.ExpenseCount()

		_, err := svc.DeleteCategory(ctx, alice.ID, travel.ID)
		require.ErrorIs(t, err, service.ErrNotFound)
		require.Equal(t, before, db.ExpenseCount())

		cats, err := svc.ListCategories(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, cats, 1)
	})

	t.Run("missing category is not found", func(t *testing.T) {
		_, err := svc.DeleteCategory(ctx, alice.ID, 424242)
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestExpenseService_CreateExpenseValidation(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewDB()
	svc := newExpenseService(db, service.Options{})
	user := createUser(t, db, "alice")
	cat := createCategory(t, db, user.ID, "Food")
	catID := strconv.Itoa(cat.ID)

	tests := []struct {
		name  string
		in    service.ExpenseInput
		field string
	}{
		{"missing title", service.ExpenseInput{Amount: "1", CategoryID: catID}, "title"},
		{"blank title", service.ExpenseInput{Title: "  ", Amount: "1", CategoryID: catID}, "title"},
		{"missing amount", service.ExpenseInput{Title: "Lunch", CategoryID: catID}, "amount"},
		{"missing category", service.ExpenseInput{Title: "Lunch", Amount: "1"}, "category"},
		{"all missing names title first", service.ExpenseInput{}, "title"},
		{"title too long", service.ExpenseInput{Title: strings.Repeat("x", 101), Amount: "1", CategoryID: catID}, "title"},
		{"amount not a number", service.ExpenseInput{Title: "Lunch", Amount: "ten", CategoryID: catID}, "amount"},
		{"amount too precise", service.ExpenseInput{Title: "Lunch", Amount: "1.001", CategoryID: catID}, "amount"},
		{"amount too large", service.ExpenseInput{Title: "Lunch", Amount: "123456789", CategoryID: catID}, "amount"},
		{"amount zero", service.ExpenseInput{Title: "Lunch", Amount: "0.00", CategoryID: catID}, "amount"},
		{"amount negative", service.ExpenseInput{Title: "Lunch", Amount: "-5", CategoryID: catID}, "amount"},
		{"category not numeric", service.ExpenseInput{Title: "Lunch", Amount: "1", CategoryID: "food"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, user.ID, tt.in)
			v, ok := service.IsValidation(err)
			require.True(t, ok, "got %v", err)
			require.Equal(t, tt.field, v.Field)
			require.Zero(t, db.ExpenseCount())
		})
	}
}

func TestExpenseService_CreateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("no limit never warns", func(t *testing.T) {
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		user := createUser(t, db, "alice")
		cat := createCategory(t, db, user.ID, "Food")

		res, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
			Title: "Groceries", Amount: "500.00", CategoryID: strconv.Itoa(cat.ID),
		})
		require.NoError(t, err)
		require.Equal(t, service.OutcomeSuccess, res.Outcome)
		require.Nil(t, res.Limit)
		require.Equal(t, "500", res.Total.String())
		require.NotZero(t, res.Expense.ID)
		require.Equal(t, "Food", res.Expense.Category.Name)
	})

	t.Run("crossing the limit warns", func(t *testing.T) {
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		user := createUser(t, db, "alice")
		cat := createCategory(t, db, user.ID, "Food")
		setMonthlyLimit(t, db, user.ID, "1000.00")
		db.AddExpense(user.ID, cat.ID, "900.00", time.Now())

		res, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
			Title: "Dinner", Amount: "150.00", CategoryID: strconv.Itoa(cat.ID),
		})
		require.NoError(t, err)
		require.Equal(t, service.OutcomeWarning, res.Outcome)
		require.True(t, decimal.RequireFromString("1050.00").Equal(res.Total))
		require.True(t, decimal.RequireFromString("1000").Equal(*res.Limit))
	})

	t.Run("reaching the limit exactly is success", func(t *testing.T) {
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		user := createUser(t, db, "alice")
		cat := createCategory(t, db, user.ID, "Food")
		setMonthlyLimit(t, db, user.ID, "1000.00")
		db.AddExpense(user.ID, cat.ID, "900.00", time.Now())

		res, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
			Title: "Dinner", Amount: "100.00", CategoryID: strconv.Itoa(cat.ID),
		})
		require.NoError(t, err)
		require.Equal(t, service.OutcomeSuccess, res.Outcome)
	})

	t.Run("foreign category is not found and inserts nothing", func(t *testing.T) {
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		alice := createUser(t, db, "alice")
		bob := createUser(t, db, "bob")
		bobs := createCategory(t, db, bob.ID, "Food")

		_, err := svc.CreateExpense(ctx, alice.ID, service.ExpenseInput{
			Title: "Sneaky", Amount: "1.00", CategoryID: strconv.Itoa(bobs.ID),
		})
		require.ErrorIs(t, err, service.ErrNotFound)
		require.Zero(t, db.ExpenseCount())
	})

	t.Run("store failure is returned", func(t *testing.T) {
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		user := createUser(t, db, "alice")
		cat := createCategory(t, db, user.ID, "Food")
		db.Err = context.Canceled

		_, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
			Title: "Lunch", Amount: "1", CategoryID: strconv.Itoa(cat.ID),
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

type failingSumStore struct {
	*mocks.ExpenseStore
}

func (failingSumStore) SumAll(context.Context, int64) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("sum unavailable")
}

func TestExpenseService_CreateExpenseBudgetReadFails(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewDB()
	svc := service.NewExpenseService(db.Categories(), failingSumStore{db.Expenses()}, db.Profiles(), service.Options{})
	user := createUser(t, db, "alice")
	cat := createCategory(t, db, user.ID, "Food")
	setMonthlyLimit(t, db, user.ID, "1.00")

	res, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
		Title: "Lunch", Amount: "12.50", CategoryID: strconv.Itoa(cat.ID),
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeSuccess, res.Outcome)
	require.NotZero(t, res.Expense.ID)
	require.Equal(t, 1, db.ExpenseCount())
}

func TestExpenseService_MonthBudgetWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	db := mocks.NewDB()
	db.Now = func() time.Time { return now }
	svc := newExpenseService(db, service.Options{
		Now:          func() time.Time { return now },
		Location:     time.UTC,
		BudgetWindow: service.BudgetMonth,
	})
	user := createUser(t, db, "alice")
	cat := createCategory(t, db, user.ID, "Food")
	setMonthlyLimit(t, db, user.ID, "1000.00")
	db.AddExpense(user.ID, cat.ID, "900.00", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC))
	db.AddExpense(user.ID, cat.ID, "100.00", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	res, err := svc.CreateExpense(ctx, user.ID, service.ExpenseInput{
		Title: "Dinner", Amount: "150.00", CategoryID: strconv.Itoa(cat.ID),
	})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeSuccess, res.Outcome)
	require.Equal(t, "250", res.Total.String())
}

func TestExpenseService_TotalIsExactSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		db := mocks.NewDB()
		svc := newExpenseService(db, service.Options{})
		userID, categoryID := seedUserForRapid(t, db)
		catID := strconv.Itoa(categoryID)

		amounts := rapid.SliceOfN(rapid.Int64Range(1, 9_999_999_999), 0, 20).Draw(t, "cents")
		want := decimal.Zero
		for _, cents := range amounts {
			amount := decimal.New(cents, -2)
			want = want.Add(amount)
			res, err := svc.CreateExpense(ctx, userID, service.ExpenseInput{
				Title: "item", Amount: amount.StringFixed(2), CategoryID: catID,
			})
			if err != nil {
				t.Fatalf("CreateExpense(%s): %v", amount, err)
			}
			if !res.Total.Equal(want) {
				t.Fatalf("running total %s, want %s", res.Total, want)
			}
		}

		got, err := db.Expenses().SumAll(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(want) {
			t.Fatalf("SumAll = %s, want %s", got, want)
		}
	})
}

func seedUserForRapid(t *rapid.T, db *mocks.DB) (int64, int) {
	ctx := context.Background()
	user := &models.User{Username: "prop"}
	if err := db.Users().CreateWithProfile(ctx, user); err != nil {
		t.Fatal(err)
	}
	cat, err := db.Categories().Create(ctx, user.ID, "Everything")
	if err != nil {
		t.Fatal(err)
	}
	return user.ID, cat.ID
}

func TestExpenseService_ListExpenses(t *testing.T) {
	ctx := context.Background()
	db := mocks.NewDB()
	svc := newExpenseService(db, service.Options{})
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	cat := createCategory(t, db, alice.ID, "Food")
	bobs := createCategory(t, db, bob.ID, "Food")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db.AddExpense(alice.ID, cat.ID, "1.00", base)
	db.AddExpense(alice.ID, cat.ID, "2.00", base.Add(time.Hour))
	db.AddExpense(bob.ID, bobs.ID, "3.00", base)

	list, err := svc.ListExpenses(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "2", list[0].Amount.String())
	require.Equal(t, "Food", list[0].Category.Name)
}
