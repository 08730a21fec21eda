package repl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ops-portal/internal/app"
)

var errNoInput = errors.New("this command needs interactive input")

func (c *Console) prompt(label string) (string, error) {
	if c.in == nil {
		return "", errNoInput
	}
	fmt.Fprint(c.out, label)
	s, err := c.in.ReadString('\n')
	if err != nil && s == "" {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// newCustomer runs an interactive customer registration.
func (c *Console) newCustomer(ctx context.Context) error {
	var req app.CreateCustomerRequest
	var err error
	if req.Name, err = c.prompt("Name: "); err != nil {
		return err
	}
	if req.Email, err = c.prompt("Email (optional): "); err != nil {
		return err
	}
	if req.Phone, err = c.prompt("Phone (optional): "); err != nil {
		return err
	}
	if req.Address, err = c.prompt("Address (optional): "); err != nil {
		return err
	}
	result, err := c.svc.CreateCustomer(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Customer created (ID: %d).\n", result.Customer.ID)
	return nil
}

// parseLine reads "<quantity> <unit-price> [discount%] <description...>".
func parseLine(raw string) (app.OrderLineInput, error) {
	parts := strings.Fields(raw)
	if len(parts) < 3 {
		return app.OrderLineInput{}, errors.New("use: <quantity> <unit-price> [discount%] <description>")
	}
	qty, err := decimal.NewFromString(parts[0])
	if err != nil {
		return app.OrderLineInput{}, fmt.Errorf("invalid quantity %q", parts[0])
	}
	price, err := decimal.NewFromString(parts[1])
	if err != nil {
		return app.OrderLineInput{}, fmt.Errorf("invalid unit price %q", parts[1])
	}
	line := app.OrderLineInput{Quantity: qty, UnitPrice: price}
	rest := parts[2:]
	if pct, ok := strings.CutSuffix(rest[0], "%"); ok && len(rest) > 1 {
		discount, err := decimal.NewFromString(pct)
		if err != nil {
			return app.OrderLineInput{}, fmt.Errorf("invalid discount %q", rest[0])
		}
		line.DiscountPercent = discount
		rest = rest[1:]
	}
	line.Description = strings.Join(rest, " ")
	return line, nil
}

// newOrder runs an interactive order entry. An empty parentRef creates a main order
// for customerID; otherwise an extra-work order under parentRef.
func (c *Console) newOrder(ctx context.Context, customerID int, parentRef string) error {
	if parentRef == "" {
		fmt.Fprintf(c.out, "Creating order for customer: %d\n", customerID)
	} else {
		fmt.Fprintf(c.out, "Creating extra work under order: %s\n", parentRef)
	}

	title, err := c.prompt("Title: ")
	if err != nil {
		return err
	}
	terms, err := c.prompt("Terms (optional): ")
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintln(c.out, "Format per line: <quantity> <unit-price> [discount%] <description>")
	fmt.Fprintln(c.out, "  Example: 2 122.50 Roof tiles")
	fmt.Fprintln(c.out, "  Example: 1 800 10% Labour")

	var lines []app.OrderLineInput
	for n := 1; ; {
		raw, err := c.prompt(fmt.Sprintf("  Line %d: ", n))
		if err != nil {
			return err
		}
		switch strings.ToLower(raw) {
		case "cancel":
			fmt.Fprintln(c.out, "Order creation cancelled.")
			return nil
		case "done":
		case "":
			continue
		default:
			line, err := parseLine(raw)
			if err != nil {
				fmt.Fprintf(c.out, "  %v\n", err)
				continue
			}
			lines = append(lines, line)
			n++
			continue
		}
		break
	}

	if len(lines) == 0 {
		fmt.Fprintln(c.out, "No lines entered. Order not created.")
		return nil
	}

	req := app.CreateOrderRequest{
		CustomerID: customerID,
		Title:      title,
		Terms:      terms,
		Lines:      lines,
		ActorID:    c.actorID,
	}

	var result *app.OrderResult
	if parentRef == "" {
		vat, err := c.prompt("VAT rate % (blank for default): ")
		if err != nil {
			return err
		}
		if vat != "" {
			rate, err := decimal.NewFromString(vat)
			if err != nil {
				fmt.Fprintf(c.out, "Invalid VAT rate: %s\n", vat)
				return nil
			}
			req.VatRate = &rate
		}
		result, err = c.svc.CreateOrder(ctx, req)
		if err != nil {
			return err
		}
	} else {
		result, err = c.svc.CreateExtraWork(ctx, parentRef, req)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(c.out, "\nOrder created (#%s, Status: %s)\n", result.Order.DisplayNumber, strings.ToUpper(string(result.Order.Status)))
	printOrderDetail(c.out, result.Order)
	return nil
}
