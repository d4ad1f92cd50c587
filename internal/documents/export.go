package documents

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JaimeStill/intake/pkg/formatting"
)

const exportSheet = "Documents"

var exportHeader = []any{
	"ID", "Name", "Type", "Entity Type", "Entity ID",
	"Status", "Content Type", "Size", "Pages", "Uploaded At",
}

// WriteXLSX writes docs as a single-sheet workbook with a header row.
func WriteXLSX(w io.Writer, docs []Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range docs {
		pages := ""
		if d.PageCount != nil {
			pages = fmt.Sprint(*d.PageCount)
		}

		row := []any{
			d.ID.String(), d.Name, d.Type, d.EntityType, d.EntityID,
			d.Status, d.ContentType, formatting.FormatBytes(d.SizeBytes, 1), pages,
			d.UploadedAt.UTC().Format(time.RFC3339),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
