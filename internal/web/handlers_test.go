package web

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryPages(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	alice := app.signUp(t, client, "alice")

	t.Run("adds a category", func(t *testing.T) {
		resp := app.post(t, client, "/category/", url.Values{"name": {"Food"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/category/", resp.Request.URL.Path)
		requireBodyContains(t, resp, "Category added successfully!", "Food")
	})

	t.Run("duplicate name is flashed", func(t *testing.T) {
		resp := app.post(t, client, "/category/", url.Values{"name": {"Food"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		requireBodyContains(t, resp, "flash-error", "This category already exists.")

		cats, err := app.db.Categories().ListByUser(context.Background(), alice.ID)
		require.NoError(t, err)
		require.Len(t, cats, 1)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		resp := app.post(t, client, "/category/", url.Values{"name": {"   "}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestDeleteCategory(t *testing.T) {
	app := newTestApp(t)
	aliceClient := app.browser(t)
	alice := app.signUp(t, aliceClient, "alice")
	bobClient := app.browser(t)
	app.signUp(t, bobClient, "bob")

	food := app.addCategory(t, aliceClient, alice, "Food")
	resp := app.post(t, aliceClient, "/add_expense/", url.Values{
		"title": {"Lunch"}, "amount": {"12.50"}, "category": {strconv.Itoa(food.ID)},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	deletePath := "/category/delete/" + strconv.Itoa(food.ID) + "/"

	t.Run("another user gets not found", func(t *testing.T) {
		resp := app.post(t, bobClient, deletePath, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, 1, app.db.ExpenseCount())
	})

	t.Run("non-numeric id is not found", func(t *testing.T) {
		resp := app.post(t, aliceClient, "/category/delete/abc/", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("owner deletes category and its expenses", func(t *testing.T) {
		resp := app.post(t, aliceClient, deletePath, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/category/", resp.Request.URL.Path)
		requireBodyContains(t, resp, "Category deleted successfully!", "No categories yet.")
		require.Equal(t, 0, app.db.ExpenseCount())
	})

	t.Run("second delete is not found", func(t *testing.T) {
		resp := app.post(t, aliceClient, deletePath, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAddExpense(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	alice := app.signUp(t, client, "alice")
	food := app.addCategory(t, client, alice, "Food")
	categoryID := strconv.Itoa(food.ID)

	t.Run("form lists categories", func(t *testing.T) {
		resp := app.get(t, client, "/add_expense/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		requireBodyContains(t, resp, `<option value="`+categoryID+`"`, "Food")
	})

	t.Run("records an expense without a limit", func(t *testing.T) {
		resp := app.post(t, client, "/add_expense/", url.Values{
			"title": {"Groceries"}, "amount": {"500"}, "category": {categoryID},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "/add_expense/", resp.Request.URL.Path)
		requireBodyContains(t, resp, "flash-success", "Expense added successfully!")
	})

	t.Run("missing fields keep the input", func(t *testing.T) {
		resp := app.post(t, client, "/add_expense/", url.Values{
			"title": {"Taxi"}, "amount": {""}, "category": {categoryID},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		requireBodyContains(t, resp, "Please fill all fields!", `value="Taxi"`, "selected")
		require.Equal(t, 1, app.db.ExpenseCount())
	})

	t.Run("invalid amount", func(t *testing.T) {
		resp := app.post(t, client, "/add_expense/", url.Values{
			"title": {"Taxi"}, "amount": {"-3"}, "category": {categoryID},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, 1, app.db.ExpenseCount())
	})

	t.Run("foreign category is not found", func(t *testing.T) {
		bobClient := app.browser(t)
		bob := app.signUp(t, bobClient, "bob")
		bobCat := app.addCategory(t, bobClient, bob, "Travel")

		resp := app.post(t, client, "/add_expense/", url.Values{
			"title": {"Taxi"}, "amount": {"10"}, "category": {strconv.Itoa(bobCat.ID)},
		})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, 1, app.db.ExpenseCount())
	})
}

func TestBudgetWarningFlow(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	alice := app.signUp(t, client, "alice")
	food := app.addCategory(t, client, alice, "Food")
	categoryID := strconv.Itoa(food.ID)

	resp := app.post(t, client, "/profile/", url.Values{"monthly_limit": {"1000"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireBodyContains(t, resp, "Profile updated successfully!", `value="1000.00"`)

	resp = app.post(t, client, "/add_expense/", url.Values{
		"title": {"Rent"}, "amount": {"900"}, "category": {categoryID},
	})
	requireBodyContains(t, resp, "flash-success", "Expense added successfully!")

	resp = app.post(t, client, "/add_expense/", url.Values{
		"title": {"Dinner"}, "amount": {"150"}, "category": {categoryID},
	})
	requireBodyContains(t, resp, "flash-warning", "You have exceeded your monthly limit!")
	require.Equal(t, 2, app.db.ExpenseCount())

	resp = app.get(t, client, "/dashboard/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	requireBodyContains(t, resp, "1050.00", "1000.00", "/dashboard/chart.png")
}

func TestProfilePage(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	app.signUp(t, client, "alice")

	t.Run("shows empty profile", func(t *testing.T) {
		resp := app.get(t, client, "/profile/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		requireBodyContains(t, resp, `name="monthly_limit"`)
	})

	t.Run("invalid amount keeps input", func(t *testing.T) {
		resp := app.post(t, client, "/profile/", url.Values{
			"phone":         {"12345"},
			"monthly_limit": {"lots"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		requireBodyContains(t, resp, "Error updating profile!", `value="12345"`, `value="lots"`)
	})

	t.Run("phone too long", func(t *testing.T) {
		resp := app.post(t, client, "/profile/", url.Values{"phone": {strings.Repeat("1", 16)}})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestReportsAndExport(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	alice := app.signUp(t, client, "alice")
	food := app.addCategory(t, client, alice, "Food")

	t.Run("empty reports", func(t *testing.T) {
		resp := app.get(t, client, "/reports/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		requireBodyContains(t, resp, "No expenses recorded yet.")
	})

	t.Run("no chart without spending", func(t *testing.T) {
		resp := app.get(t, client, "/dashboard/chart.png")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	for _, e := range []struct{ title, amount string }{{"Bread", "3.20"}, {"Cheese", "7"}} {
		resp := app.post(t, client, "/add_expense/", url.Values{
			"title": {e.title}, "amount": {e.amount}, "category": {strconv.Itoa(food.ID)},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	t.Run("lists expenses", func(t *testing.T) {
		resp := app.get(t, client, "/reports/")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		requireBodyContains(t, resp, "Bread", "3.20", "Cheese", "7.00")
	})

	t.Run("exports CSV", func(t *testing.T) {
		resp := app.get(t, client, "/reports/export.csv")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
		require.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="expenses_`)

		records, err := csv.NewReader(strings.NewReader(resp.body)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, "ID", records[0][0])

		titles := []string{records[1][2], records[2][2]}
		require.ElementsMatch(t, []string{"Bread", "Cheese"}, titles)
	})

	t.Run("renders chart", func(t *testing.T) {
		resp := app.get(t, client, "/dashboard/chart.png")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		require.True(t, bytes.HasPrefix([]byte(resp.body), []byte("\x89PNG")))
	})

	t.Run("other users see nothing", func(t *testing.T) {
		bob := app.browser(t)
		app.signUp(t, bob, "bob")

		resp := app.get(t, bob, "/reports/export.csv")
		records, err := csv.NewReader(strings.NewReader(resp.body)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 1)
	})
}

func TestStoreFailureIsServerError(t *testing.T) {
	app := newTestApp(t)
	client := app.browser(t)
	app.signUp(t, client, "alice")

	app.db.SetErr(errDatabaseDown)
	t.Cleanup(func() { app.db.SetErr(nil) })

	resp := app.get(t, client, "/dashboard/")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
