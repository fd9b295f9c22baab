package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the profile table.
const SheetName = "profile"

// WorkbookSink writes one workbook per profile into Dir, with one row per
// lateral point.
type WorkbookSink struct {
	Dir    string
	Dx, Dy float64
}

// Path returns the workbook path for a profile.
func (s *WorkbookSink) Path(name string, p *Profile) string {
	return filepath.Join(s.Dir, FileName(name, p.Position)+".xlsx")
}

// Write implements Sink.
func (s *WorkbookSink) Write(_ context.Context, name string, p *Profile) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	for col, header := range []string{"x", "y", "max", "rms"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return err
		}
	}

	for y := 0; y < p.Ny; y++ {
		for x := 0; x < p.Nx; x++ {
			i := y*p.Nx + x
			values := []float64{
				float64(x-p.Nx/2) * s.Dx,
				float64(y-p.Ny/2) * s.Dy,
				p.Max[i],
				p.RMS[i],
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				if err := f.SetCellValue(SheetName, cell, v); err != nil {
					return err
				}
			}
		}
	}

	return f.SaveAs(s.Path(name, p))
}
