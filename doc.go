// Package md2docx assembles a tree of Markdown files into one document.
//
// # Quick Start
//
//	gen := md2docx.New()
//	defer gen.Close()
//
//	res, err := gen.Generate(ctx, md2docx.Input{
//	    Root:      "docs",
//	    OutputDir: "build",
//	    Filename:  "handbook",
//	    Format:    md2docx.FormatDOCX,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Output)
//
// # Generation Pipeline
//
//  1. Every .md file under Root is collected in natural order and
//     concatenated with <!-- Source: path --> markers
//  2. The result is written to combined-original.md
//  3. Mermaid blocks are rendered to images/diagram-<id>.png through a
//     content-addressed cache; unchanged diagrams are never rendered twice
//     and images no longer referenced are removed
//  4. The rewritten text is written to combined.md
//  5. combined.md is converted: Pandoc for docx, goldmark for html,
//     goldmark and headless Chrome for pdf
//
// A diagram that fails to render becomes a "[Diagram N - Generation Failed]"
// placeholder. Generation fails only when collection, the image store or the
// document converter fails.
//
// # External Tools
//
// Diagrams need the Mermaid CLI (mmdc). The docx format needs pandoc. The
// pdf format needs Chrome/Chromium; go-rod downloads one on first run unless
// ROD_BROWSER_BIN points at an installed browser.
package md2docx
