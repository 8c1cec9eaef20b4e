package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
)

type dashboardView struct {
	*service.Dashboard
	HasChart bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	d, err := s.dashboard.Dashboard(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "dashboard.html", page{
		Title: "Dashboard",
		Data:  dashboardView{Dashboard: d, HasChart: d.Total.IsPositive()},
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	totals, err := s.dashboard.CategoryBreakdown(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	png, err := GenerateCategoryChart(totals)
	if errors.Is(err, errNothingToChart) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	expenses, err := s.expenses.ListExpenses(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "reports.html", page{Title: "Reports", Data: expenses})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	expenses, err := s.expenses.ListExpenses(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data, err := GenerateExpensesCSV(expenses, s.loc)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(s.now().In(s.loc))))
	_, _ = w.Write(data)
}

func profileForm(p *models.UserProfile) url.Values {
	return url.Values{
		"phone":         {p.Phone},
		"address":       {p.Address},
		"image":         {p.Image},
		"total_amount":  {models.FormatOptionalAmount(p.TotalAmount)},
		"savings":       {models.FormatOptionalAmount(p.Savings)},
		"monthly_limit": {models.FormatOptionalAmount(p.MonthlyLimit)},
	}
}

func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	p, err := s.profiles.EnsureProfile(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "profile.html", page{Title: "Profile", Form: profileForm(p), Data: p})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())

	in := service.ProfileInput{
		Phone:        r.PostForm.Get("phone"),
		Address:      r.PostForm.Get("address"),
		Image:        r.PostForm.Get("image"),
		TotalAmount:  r.PostForm.Get("total_amount"),
		Savings:      r.PostForm.Get("savings"),
		MonthlyLimit: r.PostForm.Get("monthly_limit"),
	}
	_, err := s.profiles.UpdateProfile(r.Context(), user.ID, in)
	if v, ok := service.IsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "profile.html", page{
			Title:      "Profile",
			Flash:      &flashMessage{Level: flashError, Message: "Error updating profile!"},
			Error:      v.Message,
			ErrorField: v.Field,
			Form:       r.PostForm,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Profile updated successfully!")
	http.Redirect(w, r, "/profile/", http.StatusSeeOther)
}

type addExpenseView struct {
	Categories []models.Category
	Profile    *models.UserProfile
}

func (s *Server) renderAddExpense(w http.ResponseWriter, r *http.Request, status int, p page) {
	user := userFromContext(r.Context())

	categories, err := s.expenses.ListCategories(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	profile, err := s.profiles.EnsureProfile(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	p.Title = "Add expense"
	p.Data = addExpenseView{Categories: categories, Profile: profile}
	s.render(w, r, status, "add_expense.html", p)
}

func (s *Server) handleAddExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.renderAddExpense(w, r, http.StatusOK, page{})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())

	result, err := s.expenses.CreateExpense(r.Context(), user.ID, service.ExpenseInput{
		Title:      r.PostForm.Get("title"),
		Amount:     r.PostForm.Get("amount"),
		CategoryID: r.PostForm.Get("category"),
	})
	if v, ok := service.IsValidation(err); ok {
		s.renderAddExpense(w, r, http.StatusUnprocessableEntity, page{
			Flash:      &flashMessage{Level: flashError, Message: v.Message},
			Error:      v.Message,
			ErrorField: v.Field,
			Form:       r.PostForm,
		})
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if result.Outcome == service.OutcomeWarning {
		s.setFlash(w, flashWarning, "You have exceeded your monthly limit!")
	} else {
		s.setFlash(w, flashSuccess, "Expense added successfully!")
	}
	http.Redirect(w, r, "/add_expense/", http.StatusSeeOther)
}

func (s *Server) renderCategories(w http.ResponseWriter, r *http.Request, status int, p page) {
	user := userFromContext(r.Context())

	categories, err := s.expenses.ListCategories(r.Context(), user.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	p.Title = "Categories"
	p.Data = categories
	s.render(w, r, status, "category.html", p)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.renderCategories(w, r, http.StatusOK, page{})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())

	_, err := s.expenses.CreateCategory(r.Context(), user.ID, r.PostForm.Get("name"))
	if v, ok := service.IsValidation(err); ok {
		s.renderCategories(w, r, http.StatusUnprocessableEntity, page{
			Error: v.Message, ErrorField: v.Field, Form: r.PostForm,
		})
		return
	}
	if d, ok := service.IsDuplicate(err); ok {
		s.setFlash(w, flashError, d.Message)
		http.Redirect(w, r, "/category/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Category added successfully!")
	http.Redirect(w, r, "/category/", http.StatusSeeOther)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.notFound(w, r)
		return
	}

	_, err = s.expenses.DeleteCategory(r.Context(), user.ID, id)
	if errors.Is(err, service.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Category deleted successfully!")
	http.Redirect(w, r, "/category/", http.StatusSeeOther)
}
