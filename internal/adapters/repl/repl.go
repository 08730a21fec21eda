package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ops-portal/internal/app"
)

// ErrExit is returned by Execute for the exit and quit commands.
var ErrExit = errors.New("exit")

// Console dispatches order-desk commands against an ApplicationService and renders
// the results as plain text. Wizards read follow-up input from in.
type Console struct {
	svc     app.ApplicationService
	in      *bufio.Reader
	out     io.Writer
	actorID int
}

// NewConsole returns a Console acting on behalf of actorID (0 for system actions).
func NewConsole(svc app.ApplicationService, in *bufio.Reader, out io.Writer, actorID int) *Console {
	return &Console{svc: svc, in: in, out: out, actorID: actorID}
}

// Run starts the interactive loop. Commands may be typed with or without a leading slash.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, actorID int) {
	c := NewConsole(svc, reader, out, actorID)

	fmt.Fprintln(out, "Order Desk")
	fmt.Fprintln(out, "Type /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if execErr := c.Execute(ctx, strings.Fields(strings.TrimPrefix(input, "/"))); execErr != nil {
				if errors.Is(execErr, ErrExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", execErr)
			}
		}
		if err != nil {
			return
		}
	}
}

// Execute runs a single command. tokens[0] is the command name.
func (c *Console) Execute(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "customers":
		result, err := c.svc.ListCustomers(ctx)
		if err != nil {
			return err
		}
		printCustomers(c.out, result)

	case "new-customer":
		return c.newCustomer(ctx)

	case "orders":
		req := app.ListOrdersRequest{}
		for _, a := range args {
			if a == "--all" {
				req.IncludeExtras = true
				continue
			}
			req.Status = a
		}
		result, err := c.svc.ListOrders(ctx, req)
		if err != nil {
			return err
		}
		printOrders(c.out, result)

	case "show":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /show <order-ref>")
			return nil
		}
		result, err := c.svc.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		printOrderDetail(c.out, result.Order)

	case "workspace", "ws":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /workspace <order-ref>")
			return nil
		}
		result, err := c.svc.GetWorkspace(ctx, args[0])
		if err != nil {
			return err
		}
		printWorkspace(c.out, result.Workspace)

	case "new-order":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /new-order <customer-id>")
			return nil
		}
		customerID, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid customer id: %s\n", args[0])
			return nil
		}
		return c.newOrder(ctx, customerID, "")

	case "extra":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /extra <parent-order-ref>")
			return nil
		}
		return c.newOrder(ctx, 0, args[0])

	case "send", "accept", "reject", "revert":
		if len(args) < 1 {
			fmt.Fprintf(c.out, "Usage: /%s <order-ref>\n", cmd)
			return nil
		}
		return c.transition(ctx, cmd, args[0])

	case "delete":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /delete <order-ref>")
			return nil
		}
		if err := c.svc.DeleteOrder(ctx, args[0], c.actorID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Order %s deleted.\n", args[0])

	case "invoice":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /invoice <order-ref> [due-date YYYY-MM-DD]")
			return nil
		}
		due := ""
		if len(args) > 1 {
			due = args[1]
		}
		result, err := c.svc.CreateInvoice(ctx, args[0], due, c.actorID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Invoice %d created for order %s, due %s.\n",
			result.Invoice.InvoiceNumber, result.Invoice.FullOrderNumber, result.Invoice.DueDate.Format("2006-01-02"))
		printInvoice(c.out, result.Invoice)

	case "invoices":
		status := ""
		if len(args) > 0 {
			status = args[0]
		}
		result, err := c.svc.ListInvoices(ctx, status)
		if err != nil {
			return err
		}
		printInvoices(c.out, result)

	case "invoice-sent", "paid", "delete-invoice":
		if len(args) < 1 {
			fmt.Fprintf(c.out, "Usage: /%s <invoice-id>\n", cmd)
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid invoice id: %s\n", args[0])
			return nil
		}
		return c.invoiceAction(ctx, cmd, id)

	case "expense":
		// Usage: /expense <order-ref> <amount> [category] [description...]
		if len(args) < 2 {
			fmt.Fprintln(c.out, "Usage: /expense <order-ref> <amount> [category] [description...]")
			return nil
		}
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid amount: %s\n", args[1])
			return nil
		}
		req := app.RecordExpenseRequest{OrderRef: args[0], Amount: amount, ActorID: c.actorID}
		if len(args) > 2 {
			req.Category = args[2]
		}
		if len(args) > 3 {
			req.Description = strings.Join(args[3:], " ")
		}
		result, err := c.svc.RecordExpense(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Expense of %s recorded on order %s.\n", result.Expense.Amount.StringFixed(2), args[0])

	case "expenses":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /expenses <order-ref>")
			return nil
		}
		result, err := c.svc.ListExpenses(ctx, args[0])
		if err != nil {
			return err
		}
		printExpenses(c.out, result)

	case "timeline":
		if len(args) < 1 {
			fmt.Fprintln(c.out, "Usage: /timeline <order-ref>")
			return nil
		}
		result, err := c.svc.GetTimeline(ctx, args[0])
		if err != nil {
			return err
		}
		printTimeline(c.out, result)

	case "help", "h":
		printHelp(c.out)

	case "exit", "quit", "e", "q":
		return ErrExit

	default:
		fmt.Fprintf(c.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (c *Console) transition(ctx context.Context, action, ref string) error {
	var (
		result *app.OrderResult
		err    error
	)
	switch action {
	case "send":
		result, err = c.svc.SendOrder(ctx, ref, c.actorID)
	case "accept":
		result, err = c.svc.AcceptOrder(ctx, ref, c.actorID)
	case "reject":
		result, err = c.svc.RejectOrder(ctx, ref, c.actorID)
	case "revert":
		result, err = c.svc.RevertOrder(ctx, ref, c.actorID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order #%s is now %s.\n", result.Order.DisplayNumber, strings.ToUpper(string(result.Order.Status)))
	return nil
}

func (c *Console) invoiceAction(ctx context.Context, action string, id int) error {
	switch action {
	case "delete-invoice":
		if err := c.svc.DeleteInvoice(ctx, id, c.actorID); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Invoice %d deleted.\n", id)
		return nil
	case "invoice-sent":
		result, err := c.svc.MarkInvoiceSent(ctx, id, c.actorID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Invoice %d marked as SENT.\n", result.Invoice.InvoiceNumber)
	case "paid":
		result, err := c.svc.MarkInvoicePaid(ctx, id, c.actorID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Invoice %d marked as PAID.\n", result.Invoice.InvoiceNumber)
	}
	return nil
}
