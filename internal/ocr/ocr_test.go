package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner fakes the three tesseract passes, keyed off the args each
// pass uses.
type stubRunner struct {
	fullText   string
	brandText  string
	amountText string
}

func (s stubRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	joined := strings.Join(args, " ")
	switch {
	case strings.Contains(joined, "tessedit_char_whitelist=0123456789,"):
		return []byte(s.amountText), nil, nil
	case strings.Contains(joined, "--psm 7"):
		return []byte(s.brandText), nil, nil
	default:
		return []byte(s.fullText), nil, nil
	}
}

func testImagePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScan(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = stubRunner{
		fullText:   "가맹점 스타벅스\n합계 5,000\n",
		brandText:  " STARDUCKS \n",
		amountText: "500 5,000\n",
	}

	res, err := e.Scan(context.Background(), testImagePNG(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"가맹점 스타벅스", "합계 5,000"}, res.Lines)
	assert.Equal(t, "STARDUCKS", res.ROIBrand)
	assert.EqualValues(t, 5000, res.ROIAmount)
}

func TestScanRejectsNonImage(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = stubRunner{}

	_, err := e.Scan(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}
