package docconv

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ResolveAssets rewrites relative img src attributes that do not exist
// under workDir but do exist under sourceDir to absolute file:// URLs.
// Generated diagram references live under workDir and are left alone.
// An empty sourceDir returns doc unchanged.
func ResolveAssets(doc, workDir, sourceDir string) (string, error) {
	if sourceDir == "" {
		return doc, nil
	}
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	if !rewriteImages(root, absWork, absSource) {
		return doc, nil
	}

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteImages walks the tree and reports whether any attribute changed.
func rewriteImages(n *html.Node, workDir, sourceDir string) bool {
	changed := false
	if n.Type == html.ElementNode && n.Data == "img" {
		for i, attr := range n.Attr {
			if attr.Key != "src" {
				continue
			}
			if u, ok := sourceURL(attr.Val, workDir, sourceDir); ok {
				n.Attr[i].Val = u
				changed = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteImages(c, workDir, sourceDir) {
			changed = true
		}
	}
	return changed
}

// sourceURL returns the file:// URL for src when it only resolves from
// sourceDir.
func sourceURL(src, workDir, sourceDir string) (string, bool) {
	if !isRelativeRef(src) {
		return "", false
	}
	p, err := url.PathUnescape(src)
	if err != nil {
		return "", false
	}
	p = filepath.FromSlash(p)

	if _, err := os.Stat(filepath.Join(workDir, p)); err == nil {
		return "", false
	}
	abs := filepath.Join(sourceDir, p)
	if !isUnder(abs, sourceDir) {
		return "", false
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		return "", false
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), true
}

func isRelativeRef(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/")
}

// isUnder reports whether path is dir or inside it.
func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
