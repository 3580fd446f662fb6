package certificates

import (
	"html/template"
	"io"
	"strconv"
	"time"

	"tidechain-backend/internal/domain"
)

const dateLayout = "January 2, 2006"

// Certificate holds the printable fields of a purchase.
type Certificate struct {
	CertificateID    string
	ProjectName      string
	LandSize         string
	Location         string
	BuyerName        string
	CreditsPurchased string
	PurchaseDate     string
	GeneratedOn      string
}

// FromTransaction formats a joined transaction for printing.
func FromTransaction(v *domain.TransactionView, now time.Time) Certificate {
	return Certificate{
		CertificateID:    v.CertificateID,
		ProjectName:      v.ProjectName,
		LandSize:         formatNumber(v.LandSize),
		Location:         v.Location,
		BuyerName:        v.BuyerName,
		CreditsPurchased: formatNumber(v.CreditsPurchased),
		PurchaseDate:     v.CreatedAt.Format(dateLayout),
		GeneratedOn:      now.Format(dateLayout),
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var htmlTemplate = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>TideChain Certificate {{.CertificateID}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background: #f8f9fa; }
        .certificate { background: white; padding: 60px; border: 8px solid #059669; border-radius: 20px; max-width: 800px; margin: 0 auto; }
        .header { text-align: center; margin-bottom: 40px; }
        .title { color: #059669; font-size: 36px; font-weight: bold; margin-bottom: 10px; }
        .subtitle { color: #6B7280; font-size: 18px; }
        .field { margin: 15px 0; font-size: 16px; }
        .label { font-weight: bold; color: #374151; }
        .value { color: #059669; font-weight: bold; }
        .signature { margin-top: 60px; text-align: center; }
        .signature-line { border-top: 2px solid #059669; width: 300px; margin: 20px auto 10px; }
        .date { text-align: right; margin-top: 40px; color: #6B7280; }
    </style>
</head>
<body>
    <div class="certificate">
        <div class="header">
            <div class="title">TideChain</div>
            <div class="subtitle">Certificate of Carbon Credit Purchase</div>
        </div>
        <div class="content">
            <div class="field"><span class="label">Certificate ID:</span> <span class="value">{{.CertificateID}}</span></div>
            <div class="field"><span class="label">Project Name:</span> <span class="value">{{.ProjectName}}</span></div>
            <div class="field"><span class="label">Land Size:</span> <span class="value">{{.LandSize}} acres</span></div>
            <div class="field"><span class="label">Location:</span> <span class="value">{{.Location}}</span></div>
            <div class="field"><span class="label">Buyer Name:</span> <span class="value">{{.BuyerName}}</span></div>
            <div class="field"><span class="label">Credits Purchased:</span> <span class="value">{{.CreditsPurchased}} tons CO₂</span></div>
            <div class="field"><span class="label">Purchase Date:</span> <span class="value">{{.PurchaseDate}}</span></div>
        </div>
        <div class="signature">
            <div class="signature-line"></div>
            <div>Certified by TideChain Admin</div>
        </div>
        <div class="date">Generated on {{.GeneratedOn}}</div>
    </div>
</body>
</html>
`))

// RenderHTML writes the certificate page. Field values are HTML-escaped.
func RenderHTML(w io.Writer, c Certificate) error {
	return htmlTemplate.Execute(w, c)
}
