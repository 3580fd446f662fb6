package certificates

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

var brandGreen = [3]int{5, 150, 105}

// RenderPDF writes a single-page A4 landscape certificate.
func RenderPDF(w io.Writer, c Certificate) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 20)
	pdf.SetTitle("TideChain Certificate "+c.CertificateID, true)
	pdf.SetAuthor("TideChain", true)
	pdf.AddPage()

	// The core fonts are cp1252; translate so names with accents print.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	pdf.SetDrawColor(brandGreen[0], brandGreen[1], brandGreen[2])
	pdf.SetLineWidth(3)
	pdf.Rect(10, 10, pageW-20, pageH-20, "D")

	pdf.SetY(30)
	pdf.SetFont("Arial", "B", 32)
	pdf.SetTextColor(brandGreen[0], brandGreen[1], brandGreen[2])
	pdf.CellFormat(0, 14, "TideChain", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 16)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 10, "Certificate of Carbon Credit Purchase", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	rows := [][2]string{
		{"Certificate ID:", c.CertificateID},
		{"Project Name:", c.ProjectName},
		{"Land Size:", c.LandSize + " acres"},
		{"Location:", c.Location},
		{"Buyer Name:", c.BuyerName},
		{"Credits Purchased:", c.CreditsPurchased + " tons CO2"},
		{"Purchase Date:", c.PurchaseDate},
	}
	for _, r := range rows {
		pdf.SetX(50)
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(55, 65, 81)
		pdf.CellFormat(55, 9, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(brandGreen[0], brandGreen[1], brandGreen[2])
		pdf.CellFormat(0, 9, tr(r[1]), "", 1, "L", false, 0, "")
	}

	lineY := pageH - 50
	pdf.SetLineWidth(0.6)
	pdf.Line(pageW/2-50, lineY, pageW/2+50, lineY)
	pdf.SetY(lineY + 2)
	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(55, 65, 81)
	pdf.CellFormat(0, 8, "Certified by TideChain Admin", "", 1, "C", false, 0, "")

	pdf.SetY(pageH - 28)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 6, "Generated on "+c.GeneratedOn, "", 1, "R", false, 0, "")

	return pdf.Output(w)
}
