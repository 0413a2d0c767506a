package report

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedPNG(t *testing.T, width, height int) string {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRenderHeaderAndPhotoPages(t *testing.T) {
	c := Checklist{
		PropertyName: "Hilltop House",
		Inspector:    "u1@acme.example.com",
		Date:         "2024-01-10",
		Fields: []Field{
			{Name: "Roof condition", Value: "yes", Description: "minor moss on the north slope"},
			{Name: "Water meter reading", Value: "004512"},
		},
		Photos: []Photo{
			{Field: "Roof condition", Data: encodedPNG(t, 8, 6)},
			{Field: "Water meter", Data: "data:image/png;base64," + encodedPNG(t, 4, 4)},
		},
	}

	pdf := build(c)
	assert.Equal(t, 3, pdf.PageCount()) // header + one page per photo

	out, err := Render(c)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCorruptPhotoNeverAborts(t *testing.T) {
	c := Checklist{
		PropertyName: "Hilltop House",
		Photos: []Photo{
			{Field: "Front door", Data: encodedPNG(t, 8, 6)},
			{Field: "Broken upload", Data: "!!!not-base64!!!"},
			{Field: "Back door", Data: encodedPNG(t, 8, 6)},
		},
	}

	pdf := build(c)
	// One page per photo even when photo 2 is corrupt.
	assert.Equal(t, 4, pdf.PageCount())

	out, err := Render(c)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderValidBase64ButNotAnImage(t *testing.T) {
	c := Checklist{
		PropertyName: "Hilltop House",
		Photos: []Photo{
			{Field: "Garage", Data: base64.StdEncoding.EncodeToString([]byte("plain text, not pixels"))},
		},
	}

	out, err := Render(c)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestDecodePhotoDataURL(t *testing.T) {
	_, imageType, width, height, err := decodePhoto("data:image/png;base64," + encodedPNG(t, 10, 5))
	require.NoError(t, err)

	assert.Equal(t, "PNG", imageType)
	assert.Equal(t, 10, width)
	assert.Equal(t, 5, height)
}

func TestFitToBoxPreservesAspectRatio(t *testing.T) {
	w, h := fitToBox(2000, 1000, 180, 220)
	assert.InDelta(t, 180.0, w, 0.001)
	assert.InDelta(t, 90.0, h, 0.001)

	w, h = fitToBox(1000, 4000, 180, 220)
	assert.InDelta(t, 55.0, w, 0.001)
	assert.InDelta(t, 220.0, h, 0.001)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, time.January, 10, 15, 4, 5, 0, time.UTC)
	name := Filename(now)

	assert.Equal(t, "inspection-report-2024-01-10T15-04-05Z.pdf", name)
	assert.False(t, strings.ContainsRune(name, ':'))
}
