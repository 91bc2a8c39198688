package extract

import "golang.org/x/net/html"

// Section groups the paragraph and list-item text that follows a
// heading, up to the next heading.
type Section struct {
	Heading    string
	Paragraphs []string
}

// IntroHeading labels content that appears before the first heading.
const IntroHeading = "Intro"

type tagCategory int

const (
	tagOther tagCategory = iota
	tagHeading
	tagParagraph
	tagExcluded
)

// tagCategories is the closed set of tags the section walk reacts to.
// Anything absent is tagOther: transparent, but still descended into.
var tagCategories = map[string]tagCategory{
	"h1":      tagHeading,
	"h2":      tagHeading,
	"h3":      tagHeading,
	"p":       tagParagraph,
	"li":      tagParagraph,
	"nav":     tagExcluded,
	"summary": tagExcluded,
	"details": tagExcluded,
}

// Sections walks body in document order and folds its elements into
// heading-delimited sections. Navigation and disclosure containers are
// skipped entirely, subtrees included. Sections without paragraphs are
// dropped.
func Sections(body *html.Node) []Section {
	done, cur := foldSections(body, nil, Section{Heading: IntroHeading})
	return flushSection(done, cur)
}

// foldSections threads (done, cur) through the walk explicitly so the
// accumulator state is visible at every step.
func foldSections(n *html.Node, done []Section, cur Section) ([]Section, Section) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch tagCategories[c.Data] {
		case tagExcluded:
			continue
		case tagHeading:
			done = flushSection(done, cur)
			cur = Section{Heading: Normalize(nodeText(c))}
		case tagParagraph:
			if text := RichText(c); text != "" {
				cur.Paragraphs = append(cur.Paragraphs, text)
			}
		default:
			done, cur = foldSections(c, done, cur)
		}
	}
	return done, cur
}

func flushSection(done []Section, cur Section) []Section {
	if len(cur.Paragraphs) == 0 {
		return done
	}
	return append(done, cur)
}
