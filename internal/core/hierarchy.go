package core

import (
	"fmt"
	"strconv"
	"strings"
)

// OrderKind is either MainOrder or ExtraWork. There is no third variant: an
// ExtraWork parent is always a main order, so the hierarchy is at most two levels.
type OrderKind interface {
	isOrderKind()
}

// MainOrder is a customer order with no parent.
type MainOrder struct{}

// ExtraWork is an additional billable sub-order under a main order.
type ExtraWork struct {
	ParentID  int
	SubNumber int
}

func (MainOrder) isOrderKind() {}
func (ExtraWork) isOrderKind() {}

// Kind reports which variant o is. Rows that claim extra work without a parent
// or sub number are rejected by a CHECK constraint and never reach here.
func (o *Order) Kind() OrderKind {
	if o.IsExtraWork && o.ParentOrderID != nil && o.SubNumber != nil {
		return ExtraWork{ParentID: *o.ParentOrderID, SubNumber: *o.SubNumber}
	}
	return MainOrder{}
}

// FormatOrderNumber zero-pads a main order sequence value to four digits.
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("%04d", n)
}

// FormatDisplayNumber builds the display identifier of an extra-work order.
func FormatDisplayNumber(parentNumber string, subNumber int) string {
	return fmt.Sprintf("%s-%02d", parentNumber, subNumber)
}

// ResolveDisplayNumber returns the identifier shown to users. parentNumber is the
// parent's order_number and is ignored for main orders.
func ResolveDisplayNumber(o *Order, parentNumber string) string {
	switch k := o.Kind().(type) {
	case ExtraWork:
		return FormatDisplayNumber(parentNumber, k.SubNumber)
	default:
		return o.OrderNumber
	}
}

// ParseDisplayNumber splits "0042" or "0042-03" into the main order number and the
// sub number (0 for a main order).
func ParseDisplayNumber(display string) (string, int, error) {
	display = strings.TrimSpace(display)
	number, suffix, hasSuffix := strings.Cut(display, "-")
	if !isDigits(number) {
		return "", 0, newValidation("order_number", "%q is not a valid order number", display)
	}
	if !hasSuffix {
		return number, 0, nil
	}
	sub, err := strconv.Atoi(suffix)
	if err != nil || !isDigits(suffix) || sub < 1 {
		return "", 0, newValidation("order_number", "%q is not a valid extra work number", display)
	}
	return number, sub, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
