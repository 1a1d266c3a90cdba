// Package report renders a printable health summary as a PDF.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"healthtrack/internal/insights"
	"healthtrack/internal/interactions"
	"healthtrack/internal/model"
)

const (
	fontRegular = "go"
	fontBold    = "go-bold"

	marginLeft = 40.0
	textWidth  = 515.0
	pageBottom = 790.0
)

// Data is everything the report shows.
type Data struct {
	Profile     *model.Profile
	Medications []model.Medication
	Warnings    []interactions.Warning
	Analytics   *insights.Report
}

// Source is what Collect reads from. health.Service satisfies it.
type Source interface {
	Profile() (*model.Profile, error)
	ActiveMedications() ([]model.Medication, error)
	Warnings(medicationID string) ([]interactions.Warning, error)
	Analytics(rangeName string) (*insights.Report, error)
}

// Collect gathers report data for the named range (7d, 30d, 90d, 1y).
func Collect(src Source, rangeName string) (*Data, error) {
	profile, err := src.Profile()
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	meds, err := src.ActiveMedications()
	if err != nil {
		return nil, fmt.Errorf("loading medications: %w", err)
	}
	warnings, err := src.Warnings("")
	if err != nil {
		return nil, fmt.Errorf("checking interactions: %w", err)
	}
	analytics, err := src.Analytics(rangeName)
	if err != nil {
		return nil, fmt.Errorf("computing analytics: %w", err)
	}
	return &Data{Profile: profile, Medications: meds, Warnings: warnings, Analytics: analytics}, nil
}

// WritePDF renders d as an A4 PDF.
func WritePDF(w io.Writer, d *Data) error {
	if d.Analytics == nil {
		return fmt.Errorf("report has no analytics")
	}

	p := &pdfWriter{}
	p.pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := p.pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	if err := p.pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	p.pdf.AddPage()
	p.pdf.SetX(marginLeft)
	p.pdf.SetY(50)

	a := d.Analytics
	p.heading(20, "Health Report")
	p.line(10, fmt.Sprintf("Generated %s, last %d days", a.GeneratedAt.Format("2006-01-02 15:04"), a.Days))
	if d.Profile != nil {
		name := strings.TrimSpace(d.Profile.FirstName + " " + d.Profile.LastName)
		if name != "" {
			p.line(11, "Patient: "+name)
		}
		if d.Profile.BloodType != "" {
			p.line(11, "Blood type: "+d.Profile.BloodType)
		}
		if d.Profile.Allergies != "" {
			p.line(11, "Allergies: "+d.Profile.Allergies)
		}
	}
	p.gap()

	p.heading(14, fmt.Sprintf("Health score: %d/100", a.Score.Score))
	p.line(11, a.Score.Description)
	for _, pen := range a.Score.Penalties {
		p.line(10, fmt.Sprintf("  %s (%.0f)", pen.Reason, pen.Points))
	}
	p.line(11, fmt.Sprintf("Medication adherence: %d%%", a.Adherence))
	p.gap()

	p.heading(14, "Vitals")
	for _, vt := range []insights.VitalTrend{a.Trends.BloodPressure, a.Trends.HeartRate, a.Trends.Weight, a.Trends.Temperature, a.Trends.Glucose} {
		p.line(11, vitalLine(vt))
	}
	p.gap()

	p.heading(14, "Active medications")
	if len(d.Medications) == 0 {
		p.line(11, "None")
	}
	for _, m := range d.Medications {
		p.line(11, fmt.Sprintf("%s %s at %s", m.Name, m.Dosage, strings.Join(m.Times, ", ")))
	}
	p.gap()

	if len(d.Warnings) > 0 {
		p.heading(14, "Interaction warnings")
		for _, wn := range d.Warnings {
			p.line(11, fmt.Sprintf("[%s] %s: %s", wn.Severity, wn.Title, wn.Message))
			p.line(10, "  "+wn.Advice)
		}
		p.gap()
	}

	if len(a.Insights) > 0 {
		p.heading(14, "Insights")
		for _, in := range a.Insights {
			p.line(11, fmt.Sprintf("%s: %s", in.Title, in.Message))
		}
		p.gap()
	}

	if len(a.Recommendations) > 0 {
		p.heading(14, "Recommendations")
		for _, r := range a.Recommendations {
			p.line(11, fmt.Sprintf("%s (%s priority)", r.Title, r.Priority))
			for _, act := range r.Actions {
				p.line(10, "  - "+act)
			}
		}
	}

	if p.err != nil {
		return fmt.Errorf("rendering report: %w", p.err)
	}
	if _, err := p.pdf.WriteTo(w); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func vitalLine(vt insights.VitalTrend) string {
	name := strings.ReplaceAll(string(vt.Type), "_", " ")
	if !vt.HasData() {
		return fmt.Sprintf("%s: not enough readings", name)
	}
	s := fmt.Sprintf("%s: %s", name, vt.Trend)
	if vt.Average != nil {
		if vt.AverageDiastolic != nil {
			s += fmt.Sprintf(", average %.0f/%.0f", *vt.Average, *vt.AverageDiastolic)
		} else {
			s += fmt.Sprintf(", average %.1f", *vt.Average)
		}
	}
	if vt.Status != "" {
		s += fmt.Sprintf(" (%s)", vt.Status)
	}
	return s
}

// pdfWriter lays text out top to bottom and keeps the first error.
type pdfWriter struct {
	pdf gopdf.GoPdf
	err error
}

func (p *pdfWriter) heading(size int, text string) {
	p.write(fontBold, size, text)
}

func (p *pdfWriter) line(size int, text string) {
	p.write(fontRegular, size, text)
}

func (p *pdfWriter) write(font string, size int, text string) {
	if p.err != nil {
		return
	}
	if err := p.pdf.SetFont(font, "", size); err != nil {
		p.err = err
		return
	}
	lines, err := p.pdf.SplitText(text, textWidth)
	if err != nil {
		// SplitText fails on empty input
		lines = []string{text}
	}
	for _, l := range lines {
		if p.pdf.GetY() > pageBottom {
			p.pdf.AddPage()
			p.pdf.SetY(50)
		}
		p.pdf.SetX(marginLeft)
		if err := p.pdf.Cell(nil, l); err != nil {
			p.err = err
			return
		}
		p.pdf.Br(float64(size) + 4)
	}
}

func (p *pdfWriter) gap() {
	p.pdf.Br(8)
}
