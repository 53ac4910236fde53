package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/signintech/gopdf"
)

const fontName = "dejavu"

var ErrFontNotLoaded = errors.New("ttf font not loaded")

// RegistrationSummary is the data printed on the registration confirmation document.
type RegistrationSummary struct {
	Name         string
	Email        string
	Phone        string
	ReferralCode string
	ReferredBy   string
	CreatedAt    time.Time
}

type Generator struct {
	fontPaths []string
}

// NewGenerator looks for a TTF font in fontPaths first, then in common system locations.
func NewGenerator(fontPaths ...string) *Generator {
	paths := append([]string{}, fontPaths...)
	paths = append(paths,
		"./fonts/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/Library/Fonts/Arial Unicode.ttf",
	)
	return &Generator{fontPaths: paths}
}

func (g *Generator) newDocument() (*gopdf.GoPdf, error) {
	doc := &gopdf.GoPdf{}
	doc.Start(gopdf.Config{
		PageSize: *gopdf.PageSizeA4,
		Unit:     gopdf.Unit_PT,
	})

	for _, path := range g.fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := doc.AddTTFFont(fontName, path); err == nil {
			return doc, nil
		}
	}

	return nil, ErrFontNotLoaded
}

// GenerateRegistrationPDF renders a one page registration summary.
func (g *Generator) GenerateRegistrationPDF(summary RegistrationSummary) ([]byte, error) {
	doc, err := g.newDocument()
	if err != nil {
		return nil, err
	}

	doc.AddPage()

	addHeader(doc, "REGISTRATION")

	doc.SetY(100)
	addSection(doc, "Name", summary.Name)
	addSection(doc, "Email", summary.Email)
	addSection(doc, "Phone", summary.Phone)
	addSection(doc, "Your referral code", summary.ReferralCode)
	if summary.ReferredBy != "" {
		addSection(doc, "Referred by", summary.ReferredBy)
	}
	addSection(doc, "Registered at", summary.CreatedAt.Format("02.01.2006 15:04 MST"))

	addFooter(doc)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to output PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(doc *gopdf.GoPdf, title string) {
	doc.SetFillColor(17, 94, 89)
	doc.RectFromUpperLeftWithStyle(0, 0, 595, 70, "F")

	doc.SetTextColor(255, 255, 255)
	_ = doc.SetFont(fontName, "", 24)
	doc.SetX(50)
	doc.SetY(30)
	_ = doc.Cell(nil, title)
	doc.SetTextColor(0, 0, 0)
}

func addSection(doc *gopdf.GoPdf, title, content string) {
	currentY := doc.GetY() + 20
	if currentY > 750 {
		doc.AddPage()
		currentY = 50
	}

	doc.SetY(currentY)
	doc.SetX(50)
	_ = doc.SetFont(fontName, "", 14)
	doc.SetTextColor(0, 0, 0)
	_ = doc.Cell(nil, title)

	doc.SetY(doc.GetY() + 18)
	doc.SetX(50)
	_ = doc.SetFont(fontName, "", 11)
	doc.SetTextColor(50, 50, 50)
	_ = doc.Cell(nil, content)
}

func addFooter(doc *gopdf.GoPdf) {
	doc.SetY(780)
	doc.SetX(50)
	_ = doc.SetFont(fontName, "", 9)
	doc.SetTextColor(150, 150, 150)
	_ = doc.Cell(nil, fmt.Sprintf("Document generated %s", time.Now().Format("02.01.2006")))
}
