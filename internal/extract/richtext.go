package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// RichText flattens the text content of n into one normalized string.
// Anchors with a usable href become inline markdown links; everything
// else contributes its text nodes in document order.
func RichText(n *html.Node) string {
	var frags []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRichText(c, &frags)
	}
	return Normalize(strings.Join(frags, " "))
}

func collectRichText(n *html.Node, frags *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := Normalize(n.Data); t != "" {
			*frags = append(*frags, t)
		}
		return
	case html.ElementNode:
		if n.Data == "a" {
			href := Normalize(attrValue(n, "href"))
			text := Normalize(nodeText(n))
			if href != "" && text != "" {
				*frags = append(*frags, "["+text+"]("+href+")")
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectRichText(c, frags)
	}
}

// nodeText concatenates every text node under n, unnormalized.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
