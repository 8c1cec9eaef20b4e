//go:build ignore

// generate_graph renders the dashboard pie chart with sample data so the
// chart styling can be checked without a database:
//
//	go run generate_graph.go
package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/web"
)

func main() {
	totals := []models.CategoryTotal{
		{CategoryID: 1, Name: "Groceries", Total: decimal.RequireFromString("150.50"), Count: 6},
		{CategoryID: 2, Name: "Dining Out", Total: decimal.RequireFromString("130.50"), Count: 4},
		{CategoryID: 3, Name: "Transport", Total: decimal.RequireFromString("60.00"), Count: 12},
		{CategoryID: 4, Name: "Entertainment", Total: decimal.RequireFromString("25.00"), Count: 1},
		{CategoryID: 5, Name: "Utilities", Total: decimal.RequireFromString("120.00"), Count: 3},
	}

	chartData, err := web.GenerateCategoryChart(totals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Chart written to graph.png")
}
