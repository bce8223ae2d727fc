package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"asset_manager_go/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"gorm.io/gorm"
)

// getChromePath returns the Chrome executable path from environment variable
func getChromePath() string {
	return os.Getenv("CHROME_PATH")
}

// PrintSheetOptions contains layout options for the printable PDF
type PrintSheetOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPrintSheetOptions returns defaults suited to label sheets
func DefaultPrintSheetOptions() PrintSheetOptions {
	return PrintSheetOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       36,
		MarginBottom:    36,
		MarginLeft:      36,
		MarginRight:     36,
	}
}

var printSheetTemplate = template.Must(template.New("print_sheet").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: sans-serif; }
.asset { display: inline-block; border: 1px solid #ccc; margin: 8px; padding: 12px; text-align: center; page-break-inside: avoid; }
.asset img { max-width: 220px; }
.asset .tag { font-weight: bold; margin-top: 6px; }
.asset .name { color: #444; font-size: 12px; }
</style>
</head>
<body>
{{range .}}
<div class="asset">
  {{if .SheetURL}}<img src="{{.SheetURL}}" alt="{{.Tag}}">{{else}}<img src="{{.QRURL}}" alt="{{.Tag}}">{{end}}
  <div class="tag">{{.Tag}}</div>
  <div class="name">{{.Name}}</div>
</div>
{{end}}
</body>
</html>`))

type printSheetEntry struct {
	Tag      string
	Name     string
	QRURL    string
	SheetURL string
}

// BuildPrintSheetHTML assembles the HTML page of code sheets for the
// given assets. Names are stripped of any markup before embedding.
func BuildPrintSheetHTML(db *gorm.DB, assetIDs []string) (string, error) {
	var assets []models.Asset
	if err := db.Where("id IN ?", assetIDs).Find(&assets).Error; err != nil {
		return "", fmt.Errorf("failed to fetch assets: %w", err)
	}

	entries := make([]printSheetEntry, 0, len(assets))
	for _, asset := range assets {
		entry := printSheetEntry{
			Tag:  derefOrEmpty(asset.AssetTag),
			Name: strictPolicy.Sanitize(asset.Name),
		}
		if entry.Tag == "" {
			entry.Tag = asset.ID
		}
		if Storage != nil {
			if asset.CodeSheetPath != nil {
				entry.SheetURL = Storage.GetPublicURL(*asset.CodeSheetPath)
			}
			if asset.QRCodePath != nil {
				entry.QRURL = Storage.GetPublicURL(*asset.QRCodePath)
			}
		}
		entries = append(entries, entry)
	}

	var buf bytes.Buffer
	if err := printSheetTemplate.Execute(&buf, entries); err != nil {
		return "", fmt.Errorf("failed to render print sheet HTML: %w", err)
	}
	return buf.String(), nil
}

// GeneratePrintSheetPDF renders the code sheets of the given assets to
// a printable PDF using headless Chrome
func GeneratePrintSheetPDF(db *gorm.DB, assetIDs []string, options PrintSheetOptions) ([]byte, error) {
	htmlContent, err := BuildPrintSheetHTML(db, assetIDs)
	if err != nil {
		return nil, err
	}
	return renderHTMLToPDF(htmlContent, options)
}

// renderHTMLToPDF drives headless Chrome to print the HTML content
func renderHTMLToPDF(htmlContent string, options PrintSheetOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if chromePath := getChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var paperWidth, paperHeight float64
	switch options.PageSize {
	case "legal":
		paperWidth, paperHeight = 8.5, 14.0
	case "A4":
		paperWidth, paperHeight = 8.27, 11.69
	default: // letter
		paperWidth, paperHeight = 8.5, 11.0
	}
	if options.PageOrientation == "landscape" {
		paperWidth, paperHeight = paperHeight, paperWidth
	}

	marginTop := float64(options.MarginTop) / 72.0
	marginBottom := float64(options.MarginBottom) / 72.0
	marginLeft := float64(options.MarginLeft) / 72.0
	marginRight := float64(options.MarginRight) / 72.0

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.Sleep(100*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(marginTop).
				WithMarginBottom(marginBottom).
				WithMarginLeft(marginLeft).
				WithMarginRight(marginRight).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return pdfBuf, nil
}
