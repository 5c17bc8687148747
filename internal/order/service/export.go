package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet = "Orders"
	itemsSheet  = "Items"
	exportPage  = 200
)

var (
	orderHeader = []interface{}{"Order ID", "Created", "Status", "Customer", "Email", "Phone", "City", "Address", "Notes", "Total", "Currency", "Payment Ref"}
	itemHeader  = []interface{}{"Order ID", "Product ID", "Product", "Configuration", "Quantity", "Unit Price", "Line Total"}
)

// ExportOrders writes every order matching filter to w as an XLSX workbook
// with one sheet of orders and one of order lines.
func (s *orderServiceImpl) ExportOrders(ctx context.Context, filter domain.OrderFilter, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeader); err != nil {
		return err
	}

	orderRow, itemRow := 2, 2
	filter.Limit = exportPage
	filter.Offset = 0
	filter.After = nil
	filter.CreatedBefore = time.Now()
	for {
		orders, err := s.orderRepo.ListOrders(ctx, filter)
		if err != nil {
			return fmt.Errorf("list orders for export: %w", err)
		}
		for _, o := range orders {
			row := []interface{}{
				o.ID, o.CreatedAt.UTC().Format("2006-01-02 15:04"), string(o.Status), o.Customer.Name,
				o.Customer.Email, o.Customer.Phone, o.Customer.City, o.Customer.Address, o.Customer.Notes,
				o.TotalAmount.InexactFloat64(), o.Currency, o.PaymentRef,
			}
			if err := f.SetSheetRow(ordersSheet, cell(orderRow), &row); err != nil {
				return err
			}
			orderRow++

			items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, o.ID)
			if err != nil {
				return fmt.Errorf("list items of order %s: %w", o.ID, err)
			}
			for _, it := range items {
				row := []interface{}{
					o.ID, it.ProductID, it.ProductName, describeConfiguration(it),
					it.Quantity, it.UnitPrice.InexactFloat64(), it.LineTotal.InexactFloat64(),
				}
				if err := f.SetSheetRow(itemsSheet, cell(itemRow), &row); err != nil {
					return err
				}
				itemRow++
			}
		}
		if len(orders) < exportPage {
			break
		}
		last := orders[len(orders)-1]
		filter.After = &domain.OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	logger.Info("orders exported", logger.Fields{"orders": orderRow - 2, "items": itemRow - 2})
	_, err := f.WriteTo(w)
	return err
}

func cell(row int) string {
	name, _ := excelize.CoordinatesToCellName(1, row)
	return name
}

func describeConfiguration(it domain.OrderItem) string {
	var parts []string
	for _, name := range sortedKeys(it.Configuration.Dimensions) {
		parts = append(parts, fmt.Sprintf("%s=%v", name, it.Configuration.Dimensions[name]))
	}
	for _, name := range sortedKeys(it.Configuration.Options) {
		if it.Configuration.Options[name] {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
