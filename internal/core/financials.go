package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Column limits: quantity NUMERIC(12,3), money NUMERIC(14,2), percentages NUMERIC(5,2).
var (
	maxQuantity = decimal.New(1, 9)
	maxAmount   = decimal.New(1, 12)
)

// fitsScale reports whether v is stored without rounding at the given number of places.
func fitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Round(places))
}

// Financials is the revenue/expense/profit rollup of a main order and its extra work.
// For an extra-work order on its own, the Extra fields are zero.
type Financials struct {
	Revenue       decimal.Decimal `json:"revenue"`
	RevenueMain   decimal.Decimal `json:"revenue_main"`
	RevenueExtra  decimal.Decimal `json:"revenue_extra"`
	Expenses      decimal.Decimal `json:"expenses"`
	ExpensesMain  decimal.Decimal `json:"expenses_main"`
	ExpensesExtra decimal.Decimal `json:"expenses_extra"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitMain    decimal.Decimal `json:"profit_main"`
	ProfitExtra   decimal.Decimal `json:"profit_extra"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"` // percent of revenue
}

// OrderTotals holds the derived header amounts of an order.
type OrderTotals struct {
	Subtotal  decimal.Decimal
	VatAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeLine derives DiscountAmount and LineTotal for one input line.
//
//	discount_amount = unit_price·quantity·discount_percent/100
//	line_total      = unit_price·quantity − discount_amount
//
// Both are rounded to cents so that stored line totals sum exactly to the subtotal.
func ComputeLine(in LineInput, sortOrder int) OrderLine {
	gross := in.UnitPrice.Mul(in.Quantity)
	discount := gross.Mul(in.DiscountPercent).Div(hundred).Round(2)
	return OrderLine{
		Description:     strings.TrimSpace(in.Description),
		Quantity:        in.Quantity,
		Unit:            strings.TrimSpace(in.Unit),
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		DiscountAmount:  discount,
		LineTotal:       gross.Sub(discount).Round(2),
		SortOrder:       sortOrder,
	}
}

// ComputeTotals sums line totals and applies vatRate (a percentage).
func ComputeTotals(lines []OrderLine, vatRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	vat := subtotal.Mul(vatRate).Div(hundred).Round(2)
	return OrderTotals{
		Subtotal:  subtotal,
		VatAmount: vat,
		Total:     subtotal.Add(vat),
	}
}

// ComputeFinancials rolls up a main order with its extra-work orders. Expenses are
// pre-summed per side by the caller: expensesMain for main.ID, expensesExtra for
// every extra-work id.
func ComputeFinancials(main *Order, extras []Order, expensesMain, expensesExtra decimal.Decimal) Financials {
	revenueMain := main.Total
	revenueExtra := decimal.Zero
	for _, e := range extras {
		revenueExtra = revenueExtra.Add(e.Total)
	}
	return buildFinancials(revenueMain, revenueExtra, expensesMain, expensesExtra)
}

func buildFinancials(revenueMain, revenueExtra, expensesMain, expensesExtra decimal.Decimal) Financials {
	revenue := revenueMain.Add(revenueExtra)
	expenses := expensesMain.Add(expensesExtra)
	profit := revenue.Sub(expenses)

	margin := decimal.Zero
	if revenue.IsPositive() {
		margin = profit.Div(revenue).Mul(hundred).Round(2)
	}

	return Financials{
		Revenue:       revenue,
		RevenueMain:   revenueMain,
		RevenueExtra:  revenueExtra,
		Expenses:      expenses,
		ExpensesMain:  expensesMain,
		ExpensesExtra: expensesExtra,
		Profit:        profit,
		ProfitMain:    revenueMain.Sub(expensesMain),
		ProfitExtra:   revenueExtra.Sub(expensesExtra),
		ProfitMargin:  margin,
	}
}

// validateLines checks the per-line invariants before anything is written.
func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return newValidation("lines", "order must have at least one line")
	}
	for i, l := range lines {
		n := i + 1
		if strings.TrimSpace(l.Description) == "" {
			return newValidation("lines", "line %d: description is required", n)
		}
		if !l.Quantity.IsPositive() {
			return newValidation("lines", "line %d: quantity must be greater than zero", n)
		}
		if !fitsScale(l.Quantity, 3) {
			return newValidation("lines", "line %d: quantity allows at most 3 decimal places", n)
		}
		if l.Quantity.GreaterThanOrEqual(maxQuantity) {
			return newValidation("lines", "line %d: quantity is too large", n)
		}
		if l.UnitPrice.IsNegative() {
			return newValidation("lines", "line %d: unit price cannot be negative", n)
		}
		if !fitsScale(l.UnitPrice, 2) {
			return newValidation("lines", "line %d: unit price allows at most 2 decimal places", n)
		}
		if l.UnitPrice.Mul(l.Quantity).GreaterThanOrEqual(maxAmount) {
			return newValidation("lines", "line %d: line amount is too large", n)
		}
		if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
			return newValidation("lines", "line %d: discount must be between 0 and 100 percent", n)
		}
		if !fitsScale(l.DiscountPercent, 2) {
			return newValidation("lines", "line %d: discount allows at most 2 decimal places", n)
		}
	}
	return nil
}

func validateVatRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return newValidation("vat_rate", "VAT rate must be between 0 and 100 percent")
	}
	if !fitsScale(rate, 2) {
		return newValidation("vat_rate", "VAT rate allows at most 2 decimal places")
	}
	return nil
}

func validateTotals(t OrderTotals) error {
	if t.Total.GreaterThanOrEqual(maxAmount) {
		return newValidation("lines", "order total is too large")
	}
	return nil
}

// buildLines validates and prices inputs in caller order.
func buildLines(inputs []LineInput) ([]OrderLine, error) {
	if err := validateLines(inputs); err != nil {
		return nil, err
	}
	lines := make([]OrderLine, len(inputs))
	for i, in := range inputs {
		lines[i] = ComputeLine(in, i+1)
	}
	return lines, nil
}
