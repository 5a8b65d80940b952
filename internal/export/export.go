package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/kcirtapfromspace/offleash-sub004/internal/models"
)

const sheetName = "Schedule"

// ScheduleSource is the slice of storage the exporter needs.
type ScheduleSource interface {
	GetBookingsByDateRange(ctx context.Context, orgID string, from, to time.Time) ([]*models.Booking, error)
}

// Exporter renders an organization's schedule as an xlsx roster: one row
// per walker, one column per day.
type Exporter struct {
	source ScheduleSource
	dir    string
	log    zerolog.Logger
}

func NewExporter(source ScheduleSource, dir string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		source: source,
		dir:    dir,
		log:    logger.With().Str("component", "export").Logger(),
	}
}

// ExportSchedule writes the roster for [startDate, endDate] inclusive and
// returns the file path.
func (e *Exporter) ExportSchedule(ctx context.Context, orgID string, startDate, endDate time.Time) (string, error) {
	if endDate.Before(startDate) {
		return "", fmt.Errorf("invalid date range: %s after %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.source.GetBookingsByDateRange(ctx, orgID, startDate, endDate.AddDate(0, 0, 1))
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Schedule: %s - %s",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	dateCols := writeDateHeaders(f, startDate, endDate)
	walkers := walkerRows(bookings)
	writeWalkerHeaders(f, walkers)
	writeScheduleCells(f, bookings, walkers, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 24)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s_%s_to_%s.xlsx",
		orgID,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.log.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("schedule exported")
	return filePath, nil
}

func writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateCols := make(map[string]int)

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("Mon 01-02"))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		dateCols[currentDate.Format("2006-01-02")] = col

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateCols
}

// walkerRows assigns a stable row to every walker present in the range.
func walkerRows(bookings []*models.Booking) map[string]int {
	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, b := range bookings {
		if !seen[b.WalkerID] {
			seen[b.WalkerID] = true
			ids = append(ids, b.WalkerID)
		}
	}
	sort.Strings(ids)

	rows := make(map[string]int, len(ids))
	for i, id := range ids {
		rows[id] = i + 3
	}
	return rows
}

func writeWalkerHeaders(f *excelize.File, walkers map[string]int) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for walkerID, row := range walkers {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, walkerID)
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
}

func writeScheduleCells(f *excelize.File, bookings []*models.Booking, walkers map[string]int, dateCols map[string]int) {
	type cellKey struct {
		walkerID string
		date     string
	}

	grouped := make(map[cellKey][]*models.Booking)
	for _, b := range bookings {
		key := cellKey{walkerID: b.WalkerID, date: b.StartAt.UTC().Format("2006-01-02")}
		grouped[key] = append(grouped[key], b)
	}

	for key, cellBookings := range grouped {
		row, okRow := walkers[key.walkerID]
		col, okCol := dateCols[key.date]
		if !okRow || !okCol {
			continue
		}

		sort.Slice(cellBookings, func(i, j int) bool {
			return cellBookings[i].StartAt.Before(cellBookings[j].StartAt)
		})

		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetName, cell, cellValue(cellBookings))
	}
}

func cellValue(bookings []*models.Booking) string {
	var value string
	active := 0
	for _, b := range bookings {
		if b.Status == models.StatusCancelled {
			continue
		}
		active++
		value += fmt.Sprintf("%s %s-%s %s (%s)\n",
			statusIcon(b.Status),
			b.StartAt.UTC().Format("15:04"),
			b.EndAt.UTC().Format("15:04"),
			b.CustomerID,
			b.ServiceID)
		if b.Notes != "" {
			value += fmt.Sprintf("   💬 %s\n", b.Notes)
		}
	}
	if active == 0 {
		return "free"
	}
	value += fmt.Sprintf("\nVisits: %d", active)
	return value
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusCompleted:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusInProgress:
		return "🐾"
	default:
		return "❓"
	}
}
