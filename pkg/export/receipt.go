package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries the fields rendered on a payment receipt.
type Receipt struct {
	PaymentID     string
	PaymentDate   time.Time
	ParentName    string
	StudentName   string
	FeeName       string
	FeeCategory   string
	AcademicYear  string
	Amount        float64
	PaymentMethod string
	Notes         string
}

// ReceiptRenderer produces PDF payment receipts.
type ReceiptRenderer struct {
	schoolName string
}

// NewReceiptRenderer constructs a renderer branded with the school name.
func NewReceiptRenderer(schoolName string) *ReceiptRenderer {
	if schoolName == "" {
		schoolName = "Portail Scolaire"
	}
	return &ReceiptRenderer{schoolName: schoolName}
}

// Render produces the PDF bytes for a single receipt.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.PaymentID == "" {
		return nil, fmt.Errorf("receipt requires a payment id")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.schoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, "Recu de paiement", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Reference", receipt.PaymentID},
		{"Date", receipt.PaymentDate.Format("02/01/2006")},
		{"Parent", receipt.ParentName},
		{"Eleve", receipt.StudentName},
		{"Frais", receipt.FeeName},
		{"Categorie", receipt.FeeCategory},
		{"Annee scolaire", receipt.AcademicYear},
		{"Montant", fmt.Sprintf("%.2f EUR", receipt.Amount)},
		{"Methode", methodLabel(receipt.PaymentMethod)},
	}
	if receipt.Notes != "" {
		rows = append(rows, [2]string{"Notes", receipt.Notes})
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(120, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "Ce recu atteste d'un paiement enregistre avec le statut 'completed'.", "", 1, "", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func methodLabel(method string) string {
	switch method {
	case "card":
		return "Carte bancaire"
	case "transfer":
		return "Virement bancaire"
	case "check":
		return "Cheque"
	case "cash":
		return "Especes"
	default:
		return method
	}
}
