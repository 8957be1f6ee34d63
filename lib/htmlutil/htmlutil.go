package htmlutil

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		name := GetText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		anchors = append(anchors, Anchor{
			Name: name,
			Href: href,
		})
	}
	return anchors
}

// the helpers below read server-rendered form controls by their exact
// name attribute. names like "assignment[title]" contain brackets, so
// selectors always quote the attribute value.

func InputValue(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(fmt.Sprintf("input[name='%s']", name))
	if len(sel.Nodes) == 0 {
		return "", false
	}
	return sel.First().AttrOr("value", ""), true
}

// Checked reports whether the checkbox with the given name carries a
// checked attribute. A missing control reads the same as an unchecked one.
func Checked(doc *goquery.Document, name string) bool {
	sel := doc.Find(fmt.Sprintf("input[name='%s'][checked]", name))
	return len(sel.Nodes) > 0
}

// CheckedValue returns the value of the checked option in a radio group.
func CheckedValue(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(fmt.Sprintf("input[name='%s'][checked]", name))
	if len(sel.Nodes) == 0 {
		return "", false
	}
	return sel.First().AttrOr("value", ""), true
}

// SelectedOption returns the value of the selected option of a <select>.
// When no option is marked selected it falls back to the first option,
// which is what a browser would submit.
func SelectedOption(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(fmt.Sprintf("select[name='%s']", name))
	if len(sel.Nodes) == 0 {
		return "", false
	}
	opt := sel.Find("option[selected]")
	if len(opt.Nodes) == 0 {
		opt = sel.Find("option")
		if len(opt.Nodes) == 0 {
			return "", false
		}
	}
	value, exists := opt.First().Attr("value")
	if !exists {
		value = strings.TrimSpace(opt.First().Text())
	}
	return value, true
}

func TextareaValue(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(fmt.Sprintf("textarea[name='%s']", name))
	if len(sel.Nodes) == 0 {
		return "", false
	}
	return sel.First().Text(), true
}
