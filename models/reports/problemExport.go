package reports

import (
	"fmt"

	"github.com/civicsolver/civicsolver_backend/models"
	"github.com/xuri/excelize/v2"
)

const problemSheet = "Problems"

// BuildProblemWorkbook renders the problem register as an xlsx workbook.
// Rows keep the feed order handed in (newest first).
func BuildProblemWorkbook(problems []*models.Problem) (*excelize.File, error) {

	f := excelize.NewFile()
	idx, err := f.NewSheet(problemSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headings := []string{"Id", "Title", "Description", "Location", "Date", "Status", "Votes", "ImageUrl", "CreatedAt"}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(problemSheet, string(col)+"1", h)
		col++
	}

	for i, p := range problems {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(problemSheet, "A"+row, p.ID)
		f.SetCellValue(problemSheet, "B"+row, p.Title)
		f.SetCellValue(problemSheet, "C"+row, p.Description)
		f.SetCellValue(problemSheet, "D"+row, p.Location)
		f.SetCellValue(problemSheet, "E"+row, p.Date)
		f.SetCellValue(problemSheet, "F"+row, string(p.Status))
		f.SetCellValue(problemSheet, "G"+row, p.Votes)
		f.SetCellValue(problemSheet, "H"+row, p.ImageUrl)
		f.SetCellValue(problemSheet, "I"+row, p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return f, nil
}
