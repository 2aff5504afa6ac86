package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// LetterData carries everything the recommendation letter template needs.
type LetterData struct {
	RecordID        int64
	InstitutionName string
	Country         string
	Date            string
	DegreePhrase    string
	SystemPhrase    string
	Recognized      bool
	Rejected        bool
	BulletReasons   []string
}

// LetterRenderer renders committee recommendation letters as PDF documents.
type LetterRenderer struct{}

// NewLetterRenderer constructs a letter renderer.
func NewLetterRenderer() *LetterRenderer {
	return &LetterRenderer{}
}

// Render produces the recommendation letter for a decision record.
func (r *LetterRenderer) Render(data LetterData) ([]byte, error) {
	if data.InstitutionName == "" {
		return nil, fmt.Errorf("letter requires an institution name")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "COMMITTEE RECOMMENDATION", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Record No. %d", data.RecordID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", data.Date), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", data.InstitutionName, data.Country), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	verdict := "REJECTED"
	if data.Recognized && !data.Rejected {
		verdict = "RECOGNIZED"
	}

	pdf.SetFont("Arial", "", 10)
	body := fmt.Sprintf(
		"The committee reviewed the application and resolved that the %s awarded through the %s system of study is %s.",
		data.DegreePhrase, data.SystemPhrase, verdict,
	)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(4)

	if len(data.BulletReasons) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Grounds:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, reason := range data.BulletReasons {
			pdf.MultiCell(0, 6, "- "+reason, "", "L", false)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render letter pdf: %w", err)
	}
	return buf.Bytes(), nil
}
