package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"charter/internal/dispatch"
	"charter/internal/domain"
	"charter/internal/domain/models"
	"charter/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DutySheetService renders a driver's committed trips for one date as PDF.
type DutySheetService struct {
	Bookings BookingStore
	Drivers  DriverStore
	Now      func() time.Time
}

type dutySheetData struct {
	Driver models.Driver
	Date   string
	Trips  []models.Booking
}

func (s DutySheetService) Generate(ctx context.Context, requestID string, driverID int64, date string) ([]byte, string, error) {
	if driverID <= 0 {
		return nil, "", domain.ValidationError{Field: "driverId", Msg: "id tidak valid"}
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, "", domain.ValidationError{Field: "date", Msg: "format harus YYYY-MM-DD", Err: err}
	}

	driver, err := s.Drivers.GetByID(ctx, driverID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, "", err
		}
		return nil, "", domain.InternalError{Msg: "gagal memuat driver", Err: err}
	}
	trips, err := s.Bookings.ListDriverSchedule(ctx, driverID, date)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "gagal memuat jadwal driver", Err: err}
	}

	utils.LogEvent(requestID, "docs", "generate_duty_sheet", fmt.Sprintf("driver_id=%d date=%s trips=%d", driverID, date, len(trips)))
	return buildDutySheetPDF(dutySheetData{Driver: driver, Date: date, Trips: trips}, s.now())
}

func (s DutySheetService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func buildDutySheetPDF(d dutySheetData, printedAt time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Duty Sheet", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "SURAT TUGAS DRIVER")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []string{
		fmt.Sprintf("Driver     : %s (#%d)", safe(d.Driver.Name, "-"), d.Driver.ID),
		fmt.Sprintf("Kendaraan  : %s (%s)", safe(d.Driver.VehicleType, "-"), safe(string(dispatch.Resolve(d.Driver.VehicleType)), "-")),
		fmt.Sprintf("Tanggal    : %s", d.Date),
		fmt.Sprintf("Dicetak    : %s", printedAt.Format("2006-01-02 15:04")),
	}
	for _, line := range header {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	widths := []float64{25, 30, 30, 45, 50}
	for i, h := range []string{"Booking", "Mulai", "Selesai", "Kategori", "Status"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	if len(d.Trips) == 0 {
		pdf.CellFormat(180, 8, "Tidak ada perjalanan terjadwal.", "1", 1, "L", false, 0, "")
	}
	for _, b := range d.Trips {
		start, end := "-", "-"
		if slot, err := dispatch.SlotOf(b.TripTime, b.DurationHours); err == nil {
			start = clock(slot.Start)
			end = clock(slot.End())
		}
		cells := []string{
			fmt.Sprintf("#%d", b.ID),
			start,
			end,
			safe(b.VehicleCategory, "-"),
			string(b.Status),
		}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 8, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("DUTY_%d_%s_%s.pdf", d.Driver.ID, d.Date, safeFilenamePart(d.Driver.Name))
	return buf.Bytes(), filename, nil
}

// clock formats minutes since midnight; trips running past midnight show +1.
func clock(minutes int) string {
	day := minutes / (24 * 60)
	m := minutes % (24 * 60)
	out := fmt.Sprintf("%02d:%02d", m/60, m%60)
	if day > 0 {
		out += fmt.Sprintf(" (+%d)", day)
	}
	return out
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
