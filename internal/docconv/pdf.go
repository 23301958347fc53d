package docconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/process"
)

// Sentinel errors for PDF rendering.
var (
	ErrPageLoad      = errors.New("failed to load page")
	ErrPDFGeneration = errors.New("PDF generation failed")
)

// DefaultPDFTimeout bounds page load and printing.
const DefaultPDFTimeout = 30 * time.Second

// PDF page dimensions in inches (A4).
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
	marginInches      = 0.5
)

// pageRenderer prints a local HTML file to PDF. It lets tests run without a browser.
type pageRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// PDF converts Markdown to PDF: goldmark produces HTML, headless Chrome prints it.
type PDF struct {
	html     *HTML
	renderer pageRenderer
}

// Compile-time interface checks.
var (
	_ Converter    = (*PDF)(nil)
	_ Closer       = (*PDF)(nil)
	_ pageRenderer = (*rodRenderer)(nil)
)

// NewPDF creates a PDF converter. The browser starts on first use.
func NewPDF(html *HTML, timeout time.Duration) *PDF {
	if html == nil {
		html = NewHTML("")
	}
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &PDF{html: html, renderer: &rodRenderer{timeout: timeout}}
}

// Convert renders job.Input to HTML in a scratch file inside job.WorkDir,
// so images/... references resolve, then prints it to job.Output.
func (c *PDF) Convert(ctx context.Context, job Job) error {
	content, err := os.ReadFile(filepath.Join(job.WorkDir, job.Input)) // #nosec G304 -- combined file written by the generator
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrConverterFailed, job.Input, err)
	}

	doc, err := c.html.Render(ctx, string(content), job.Title)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrConverterFailed, err)
	}

	doc, err = ResolveAssets(doc, job.WorkDir, job.SourceDir)
	if err != nil {
		return fmt.Errorf("%w: resolving images: %v", ErrConverterFailed, err)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(job.WorkDir, doc, "html")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConverterFailed, err)
	}
	defer cleanup()

	absPath, err := filepath.Abs(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConverterFailed, err)
	}

	data, err := c.renderer.RenderFromFile(ctx, absPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrConverterFailed, err)
	}

	if err := os.WriteFile(filepath.Join(job.WorkDir, job.Output), data, 0o644); err != nil { // #nosec G306 -- output documents are meant to be shared
		return fmt.Errorf("%w: writing %s: %v", ErrConverterFailed, job.Output, err)
	}
	return nil
}

// Close releases the browser.
func (c *PDF) Close() error {
	return c.renderer.Close()
}

// rodRenderer implements pageRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use a pre-installed browser if specified (containerized environments)
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	// NoSandbox is required in CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(filePath)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// Close shuts the browser down and kills its process tree.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

func floatPtr(v float64) *float64 {
	return &v
}
