package repl

import (
	"fmt"
	"io"
	"strings"

	"ops-portal/internal/app"
	"ops-portal/internal/core"
)

func printCustomers(w io.Writer, result *app.CustomerListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "  CUSTOMERS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if len(result.Customers) == 0 {
		fmt.Fprintln(w, "  No customers found.")
		fmt.Fprintln(w, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(w, "  %-6s %-28s %-28s %s\n", "ID", "NAME", "EMAIL", "PHONE")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, c := range result.Customers {
		fmt.Fprintf(w, "  %-6d %-28s %-28s %s\n", c.ID, truncate(c.Name, 28), truncate(c.Email, 28), c.Phone)
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printOrders(w io.Writer, result *app.OrderListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 96))
	fmt.Fprintln(w, "  ORDERS")
	fmt.Fprintln(w, strings.Repeat("=", 96))
	if len(result.Orders) == 0 {
		fmt.Fprintln(w, "  No orders found.")
		fmt.Fprintln(w, strings.Repeat("=", 96))
		return
	}
	fmt.Fprintf(w, "  %-5s %-9s %-20s %-9s %12s %12s %12s %4s %s\n",
		"ID", "NUMBER", "CUSTOMER", "STATUS", "REVENUE", "EXPENSES", "PROFIT", "EXTR", "INV")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, o := range result.Orders {
		invoiced := ""
		if o.HasInvoice {
			invoiced = "yes"
		}
		fmt.Fprintf(w, "  %-5d %-9s %-20s %-9s %12s %12s %12s %4d %s\n",
			o.ID, o.DisplayNumber, truncate(o.CustomerName, 20), strings.ToUpper(string(o.Status)),
			o.Financials.Revenue.StringFixed(2),
			o.Financials.Expenses.StringFixed(2),
			o.Financials.Profit.StringFixed(2),
			o.ExtraWorkCount, invoiced)
	}
	fmt.Fprintln(w, strings.Repeat("=", 96))
}

func printOrderDetail(w io.Writer, o *core.Order) {
	if o == nil {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	kind := "ORDER"
	if o.IsExtraWork {
		kind = "EXTRA WORK"
	}
	fmt.Fprintf(w, "  %s #%s  [%s]\n", kind, o.DisplayNumber, strings.ToUpper(string(o.Status)))
	fmt.Fprintf(w, "  Customer : %s (ID %d)\n", o.CustomerName, o.CustomerID)
	fmt.Fprintf(w, "  Title    : %s\n", o.Title)
	if o.Terms != "" {
		fmt.Fprintf(w, "  Terms    : %s\n", o.Terms)
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	printLines(w, o.Lines)
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-52s %16s\n", "Subtotal", o.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "VAT "+o.VatRate.String()+"%", o.VatAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "TOTAL", o.Total.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printLines(w io.Writer, lines []core.OrderLine) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "  (no lines)")
		return
	}
	fmt.Fprintf(w, "  %-30s %8s %12s %6s %12s\n", "DESCRIPTION", "QTY", "UNIT PRICE", "DISC%", "LINE TOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "  %-30s %8s %12s %6s %12s\n",
			truncate(l.Description, 30), l.Quantity.String(), l.UnitPrice.StringFixed(2),
			l.DiscountPercent.String(), l.LineTotal.StringFixed(2))
	}
}

func printWorkspace(w io.Writer, ws *core.Workspace) {
	o := *ws.Order
	o.Lines = ws.Lines
	printOrderDetail(w, &o)

	if len(ws.ExtraWorkOrders) > 0 {
		fmt.Fprintln(w, "  EXTRA WORK")
		for _, e := range ws.ExtraWorkOrders {
			fmt.Fprintf(w, "    #%-10s %-36s %16s\n", e.DisplayNumber, truncate(e.Title, 36), e.Total.StringFixed(2))
		}
	}
	if ws.Invoice != nil {
		fmt.Fprintf(w, "  INVOICE %d  [%s]  due %s  total %s\n",
			ws.Invoice.InvoiceNumber, strings.ToUpper(string(ws.Invoice.Status)),
			ws.Invoice.DueDate.Format("2006-01-02"), ws.Invoice.Total.StringFixed(2))
	}

	f := ws.Financials
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintln(w, "  FINANCIALS")
	fmt.Fprintf(w, "  %-52s %16s\n", "Revenue (main)", f.RevenueMain.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Revenue (extra work)", f.RevenueExtra.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Revenue total", f.Revenue.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Expenses (main)", f.ExpensesMain.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Expenses (extra work)", f.ExpensesExtra.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Expenses total", f.Expenses.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Profit (main)", f.ProfitMain.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Profit (extra work)", f.ProfitExtra.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "Profit", f.Profit.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %15s%%\n", "Margin", f.ProfitMargin.StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printInvoice(w io.Writer, inv *core.Invoice) {
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, l := range inv.Lines {
		fmt.Fprintf(w, "  %-30s %8s %12s %6s %12s\n",
			truncate(l.Description, 30), l.Quantity.String(), l.UnitPrice.StringFixed(2),
			l.DiscountPercent.String(), l.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(w, "  %-52s %16s\n", "Subtotal", inv.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "VAT "+inv.VatRate.String()+"%", inv.VatAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %16s\n", "TOTAL", inv.Total.StringFixed(2))
}

func printInvoices(w io.Writer, result *app.InvoiceListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "  INVOICES")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if len(result.Invoices) == 0 {
		fmt.Fprintln(w, "  No invoices found.")
		fmt.Fprintln(w, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(w, "  %-5s %-8s %-10s %-7s %-11s %14s\n", "ID", "NUMBER", "ORDER", "STATUS", "DUE", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, inv := range result.Invoices {
		fmt.Fprintf(w, "  %-5d %-8d %-10s %-7s %-11s %14s\n",
			inv.ID, inv.InvoiceNumber, inv.FullOrderNumber, strings.ToUpper(string(inv.Status)),
			inv.DueDate.Format("2006-01-02"), inv.Total.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printExpenses(w io.Writer, result *app.ExpenseListResult) {
	fmt.Fprintln(w)
	if len(result.Expenses) == 0 {
		fmt.Fprintln(w, "  No expenses recorded.")
		return
	}
	fmt.Fprintf(w, "  %-5s %-11s %-14s %-26s %12s\n", "ID", "DATE", "CATEGORY", "DESCRIPTION", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, e := range result.Expenses {
		fmt.Fprintf(w, "  %-5d %-11s %-14s %-26s %12s\n",
			e.ID, e.ExpenseDate.Format("2006-01-02"), truncate(e.Category, 14),
			truncate(e.Description, 26), e.Amount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-57s %12s\n", "TOTAL", result.Total)
}

func printTimeline(w io.Writer, result *app.TimelineResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  TIMELINE #%s\n", result.DisplayNumber)
	fmt.Fprintln(w, strings.Repeat("-", 72))
	if len(result.Activities) == 0 {
		fmt.Fprintln(w, "  No activity recorded.")
		return
	}
	for _, a := range result.Activities {
		fmt.Fprintf(w, "  %s  %-20s %s\n", a.OccurredAt.Format("2006-01-02 15:04"), a.Type, a.Description)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `
Commands (the leading slash is optional):
  /customers                          list customers
  /new-customer                       register a customer
  /orders [status] [--all]            list orders with revenue, expenses and profit
  /show <ref>                         order detail
  /workspace <ref>                    order, extra work, invoice and financial rollup
  /new-order <customer-id>            create a draft order
  /extra <parent-ref>                 create accepted extra work under a main order
  /send|accept|reject|revert <ref>    change order status
  /delete <ref>                       delete an order
  /invoice <ref> [YYYY-MM-DD]         invoice an accepted order
  /invoices [status]                  list invoices
  /invoice-sent|paid <invoice-id>     change invoice status
  /delete-invoice <invoice-id>        delete an unpaid invoice
  /expense <ref> <amount> [cat] [..]  record an expense
  /expenses <ref>                     list expenses
  /timeline <ref>                     order activity
  /exit                               quit

<ref> is an order ID or a display number such as 0042, #0042 or 0042-01.`)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
