// Package ocr turns an uploaded receipt photo into OCR text lines plus two
// region-of-interest guesses, wrapping the tesseract binary behind a
// stubbable Runner.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	_ "image/jpeg"
	_ "image/png"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	Lang        string // default "kor+eng"
}

// Result carries everything one scan pass produced.
type Result struct {
	// Lines is the full-page OCR text, one entry per detected line.
	Lines []string
	// ROIBrand is the text read from the top strip, empty when unreadable.
	ROIBrand string
	// ROIAmount is the largest number read from the bottom strip, 0 when
	// none was found. Used only as a fallback when line extraction misses.
	ROIAmount int64
	Duration  time.Duration
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "kor+eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Scan runs three tesseract passes over the image: the preprocessed full
// page, the top brand strip, and the bottom amount strip. ROI failures are
// not fatal; only a failed full-page pass is.
func (e *Extractor) Scan(ctx context.Context, imageBytes []byte) (Result, error) {
	start := time.Now()

	src, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	dir, err := os.MkdirTemp("", "receipt-scan-*")
	if err != nil {
		return Result{}, fmt.Errorf("scan workdir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	fullPath := filepath.Join(dir, "full.png")
	if err := imaging.Save(prepareFullPage(src), fullPath); err != nil {
		return Result{}, fmt.Errorf("save preprocessed image: %w", err)
	}
	text, err := e.tesseract(ctx, fullPath, 6, "")
	if err != nil {
		return Result{}, err
	}

	res := Result{Lines: Lines(text)}

	brandPath := filepath.Join(dir, "brand.png")
	if err := imaging.Save(brandStrip(src), brandPath); err == nil {
		if txt, err := e.tesseract(ctx, brandPath, 7, "가-힣A-Za-z0-9"); err == nil {
			res.ROIBrand = strings.TrimSpace(txt)
		} else {
			e.logger.Debug("brand strip unreadable", "error", err)
		}
	}

	amountPath := filepath.Join(dir, "amount.png")
	if err := imaging.Save(amountStrip(src), amountPath); err == nil {
		if txt, err := e.tesseract(ctx, amountPath, 6, "0123456789,"); err == nil {
			res.ROIAmount = maxNumericToken(txt)
		} else {
			e.logger.Debug("amount strip unreadable", "error", err)
		}
	}

	res.Duration = time.Since(start)
	e.logger.Info("scan ok",
		"lines", len(res.Lines),
		"roi_brand", res.ROIBrand,
		"roi_amount", res.ROIAmount,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// tesseract <file> stdout -l <lang> --psm <n> [-c whitelist]
func (e *Extractor) tesseract(ctx context.Context, path string, psm int, whitelist string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang, "--psm", strconv.Itoa(psm)}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	if whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+whitelist)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 256))
	}
	return string(out), nil
}

// maxNumericToken returns the largest comma-stripped number among the
// whitespace-separated tokens, 0 when there is none.
func maxNumericToken(text string) int64 {
	var best int64
	for _, tok := range strings.Fields(text) {
		n, err := strconv.ParseInt(strings.ReplaceAll(tok, ",", ""), 10, 64)
		if err == nil && n > best {
			best = n
		}
	}
	return best
}
