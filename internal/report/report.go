package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"
)

// Checklist is the renderer's view of a submission payload.
type Checklist struct {
	PropertyName string  `json:"property_name"`
	Inspector    string  `json:"inspector"`
	Date         string  `json:"date"`
	Fields       []Field `json:"fields"`
	Photos       []Photo `json:"photos"`
}

// Field is one answered checklist entry. Description carries the optional
// free-text elaboration shown under condition checks.
type Field struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Photo is one attached image, base64-encoded (optionally as a data: URL),
// labeled with the checklist field it belongs to.
type Photo struct {
	Field string `json:"field"`
	Data  string `json:"data"`
}

const (
	pageMargin  = 15.0
	photoMaxW   = 180.0 // mm, fits A4 width inside the margins
	photoMaxH   = 220.0 // mm, leaves room for the label line
	labelHeight = 10.0
)

// Filename returns a collision-resistant report filename: ISO-8601 UTC
// timestamp with path-unsafe colons replaced.
func Filename(now time.Time) string {
	stamp := strings.ReplaceAll(now.UTC().Format(time.RFC3339), ":", "-")
	return "inspection-report-" + stamp + ".pdf"
}

// Render produces the paginated report: one header page with the answered
// fields, then one page per photo. A photo that fails to decode gets an
// inline error marker on its page; it never aborts the document.
func Render(c Checklist) ([]byte, error) {
	pdf := build(c)

	var buf bytes.Buffer

	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("assembling report: %w", err)
	}

	return buf.Bytes(), nil
}

func build(c Checklist) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Inspection Report - "+c.PropertyName, false)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	writeHeaderPage(pdf, c)

	for i, photo := range c.Photos {
		writePhotoPage(pdf, i, photo)
	}

	return pdf
}

func writeHeaderPage(pdf *gofpdf.Fpdf, c Checklist) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Inspection Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, "Property: "+c.PropertyName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Inspector: "+c.Inspector, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: "+c.Date, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, field := range c.Fields {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(70, 7, field.Name, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, field.Value, "", "L", false)

		if field.Description != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetX(pageMargin + 10)
			pdf.MultiCell(0, 6, field.Description, "", "L", false)
		}
	}
}

func writePhotoPage(pdf *gofpdf.Fpdf, index int, photo Photo) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, labelHeight, photo.Field, "", 1, "L", false, 0, "")

	raw, imageType, width, height, err := decodePhoto(photo.Data)

	if err != nil {
		pdf.SetTextColor(200, 0, 0)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 7, fmt.Sprintf("Unable to decode photo: %v", err), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		return
	}

	name := fmt.Sprintf("photo-%d", index)
	opts := gofpdf.ImageOptions{ImageType: imageType}

	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))

	w, h := fitToBox(width, height, photoMaxW, photoMaxH)
	pdf.ImageOptions(name, pageMargin, pageMargin+labelHeight+2, w, h, false, opts, 0, "")
}

// decodePhoto validates the transfer encoding before gofpdf ever sees the
// bytes; gofpdf's error state is sticky and would poison the whole document.
func decodePhoto(data string) (raw []byte, imageType string, width, height int, err error) {
	if strings.HasPrefix(data, "data:") {
		comma := strings.Index(data, ",")
		if comma < 0 {
			return nil, "", 0, 0, fmt.Errorf("malformed data URL")
		}
		data = data[comma+1:]
	}

	raw, err = base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, "", 0, 0, fmt.Errorf("invalid base64 encoding: %w", err)
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("unrecognized image data: %w", err)
	}

	switch format {
	case "jpeg":
		imageType = "JPG"
	case "png":
		imageType = "PNG"
	case "gif":
		imageType = "GIF"
	default:
		return nil, "", 0, 0, fmt.Errorf("unsupported image format %q", format)
	}

	return raw, imageType, cfg.Width, cfg.Height, nil
}

// fitToBox scales pixel dimensions into the bounding box, preserving the
// aspect ratio.
func fitToBox(width, height int, maxW, maxH float64) (float64, float64) {
	if width <= 0 || height <= 0 {
		return maxW, maxH
	}

	scale := maxW / float64(width)

	if s := maxH / float64(height); s < scale {
		scale = s
	}

	return float64(width) * scale, float64(height) * scale
}
