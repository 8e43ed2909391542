package webfetch

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks returns the href of every anchor in an HTML document. When
// baseURL is non-empty, relative links are resolved against it.
func ExtractLinks(document, baseURL string) ([]string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, err
		}
	}

	var links []string
	for node := range root.Descendants() {
		if node.Type != html.ElementNode || node.Data != "a" {
			continue
		}
		for _, attr := range node.Attr {
			if attr.Key != "href" || attr.Val == "" {
				continue
			}
			link := attr.Val
			if base != nil {
				if resolved, err := base.Parse(link); err == nil {
					link = resolved.String()
				}
			}
			links = append(links, link)
		}
	}

	return links, nil
}

// ExtractText returns the visible text of an HTML document with script and
// style contents excluded and whitespace collapsed.
func ExtractText(document string) (string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(parts, " "), nil
}
