package service

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"bloggenie-server/internal/domain"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer))

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9]+`)
	mdHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis = regexp.MustCompile(`(\*\*|__|\*|_|~~|` + "`" + `)`)
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdBullet   = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
)

// RenderPost renders a post in the requested format.
func RenderPost(post *domain.BlogPost, format domain.ExportFormat) (*domain.ExportedDocument, error) {
	slug := slugify(post.Title)
	md := postMarkdown(post)

	switch format {
	case domain.ExportMarkdown:
		return &domain.ExportedDocument{
			Filename:    slug + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(md),
		}, nil
	case domain.ExportHTML:
		var body bytes.Buffer
		if err := markdownRenderer.Convert([]byte(md), &body); err != nil {
			return nil, fmt.Errorf("failed to render html: %w", err)
		}
		var doc bytes.Buffer
		fmt.Fprintf(&doc, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n", html.EscapeString(post.Title))
		if post.Excerpt != "" {
			fmt.Fprintf(&doc, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(post.Excerpt))
		}
		doc.WriteString("</head>\n<body>\n<article>\n")
		doc.Write(body.Bytes())
		doc.WriteString("</article>\n</body>\n</html>\n")
		return &domain.ExportedDocument{
			Filename:    slug + ".html",
			ContentType: "text/html; charset=utf-8",
			Body:        doc.Bytes(),
		}, nil
	case domain.ExportText:
		return &domain.ExportedDocument{
			Filename:    slug + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(plainText(md)),
		}, nil
	}
	return nil, domain.ErrUnsupportedFormat
}

// postMarkdown makes sure the document starts with the post title.
func postMarkdown(post *domain.BlogPost) string {
	content := strings.TrimSpace(post.Content)
	if strings.HasPrefix(content, "# ") {
		return content + "\n"
	}
	return "# " + post.Title + "\n\n" + content + "\n"
}

func plainText(md string) string {
	out := mdLink.ReplaceAllString(md, "$1")
	out = mdHeading.ReplaceAllString(out, "")
	out = mdBullet.ReplaceAllString(out, "$1• ")
	out = mdEmphasis.ReplaceAllString(out, "")
	return out
}

func slugify(title string) string {
	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		return "post"
	}
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return slug
}
