package contentservice

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/Black-And-White-Club/club-cms/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

// ParsePricingSheet reads pricing tiers from the first sheet of an XLSX workbook. The first
// row is a header naming the columns title, price, period, description and order; only
// title is required. Rows without an order column are ordered by their position.
func ParsePricingSheet(r io.Reader) ([]*contentdb.MenuItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open XLSX file: %v", ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: XLSX file has no sheets", ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no pricing rows", ErrInvalidInput, sheets[0])
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	titleCol, ok := columns["title"]
	if !ok {
		return nil, fmt.Errorf("%w: header row has no title column", ErrInvalidInput)
	}
	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var items []*contentdb.MenuItem
	for i, row := range rows[1:] {
		if titleCol >= len(row) || strings.TrimSpace(row[titleCol]) == "" {
			continue
		}
		order := len(items)
		if raw := cell(row, "order"); raw != "" {
			order, err = strconv.Atoi(raw)
			if err != nil || order < 0 {
				return nil, fmt.Errorf("%w: row %d has invalid order %q", ErrInvalidInput, i+2, raw)
			}
		}
		items = append(items, &contentdb.MenuItem{
			Ordered:     contentdb.Ordered{Order: order},
			Title:       strings.TrimSpace(row[titleCol]),
			Price:       cell(row, "price"),
			Period:      cell(row, "period"),
			Description: cell(row, "description"),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no pricing rows", ErrInvalidInput, sheets[0])
	}
	return items, nil
}

type menuItemsResult = results.OperationResult[[]*contentdb.MenuItem, error]

// ImportPricing creates the menu items of a workbook and adds them to a pricing page in one
// transaction. An order collision with the page's existing tiers rejects the whole import.
func (s *ContentService) ImportPricing(ctx context.Context, pricingPageID uuid.UUID, workbook io.Reader) ([]*contentdb.MenuItem, error) {
	importTx := func(ctx context.Context, db bun.IDB) (menuItemsResult, error) {
		items, err := ParsePricingSheet(workbook)
		if err != nil {
			return failure[[]*contentdb.MenuItem](err)
		}

		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			if err := s.repo.InsertEntity(ctx, db, item); err != nil {
				return menuItemsResult{}, err
			}
			ids = append(ids, item.ID)
		}

		added, err := s.addMembersLogic(ctx, db, contentdb.PricingPageMenuItems, pricingPageID, ids)
		if err != nil || added.IsFailure() {
			return menuItemsResult{Failure: added.Failure}, err
		}
		return results.SuccessResult[[]*contentdb.MenuItem, error](items), nil
	}

	items, err := unwrapResult(withTelemetry(s, ctx, "ImportPricing", pricingPageID.String(), func(ctx context.Context) (menuItemsResult, error) {
		return runInTx(s, ctx, importTx)
	}))
	if err == nil {
		s.notify(ctx, ChangeNotice{
			Action:    ActionImported,
			Subject:   string(contentdb.ContainerPricingPage),
			SubjectID: pricingPageID,
			Details:   map[string]any{"menu_items": len(items)},
		})
	}
	return items, err
}
