package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestGetAnchors(t *testing.T) {
	doc := parse(t, `
		<a class="box" href="/courses/123">
			<span>CSE 101</span>
			<span>Fall   2024</span>
		</a>
		<a class="box" href="/courses/456">Algorithms</a>
	`)

	anchors := GetAnchors(doc.Find("a.box"))
	require.Equal(t, []Anchor{
		{Name: "CSE 101 Fall 2024", Href: "/courses/123"},
		{Name: "Algorithms", Href: "/courses/456"},
	}, anchors)
}

func TestInputValue(t *testing.T) {
	doc := parse(t, `
		<form>
			<input type="text" name="assignment[title]" value="Homework 1">
			<input type="text" name="assignment[empty]" value="">
		</form>
	`)

	value, ok := InputValue(doc, "assignment[title]")
	require.True(t, ok)
	require.Equal(t, "Homework 1", value)

	value, ok = InputValue(doc, "assignment[empty]")
	require.True(t, ok)
	require.Equal(t, "", value)

	_, ok = InputValue(doc, "assignment[missing]")
	require.False(t, ok)
}

func TestChecked(t *testing.T) {
	doc := parse(t, `
		<form>
			<input type="checkbox" name="assignment[on]" checked="checked">
			<input type="checkbox" name="assignment[off]">
		</form>
	`)

	require.True(t, Checked(doc, "assignment[on]"))
	require.False(t, Checked(doc, "assignment[off]"))
	require.False(t, Checked(doc, "assignment[missing]"))
}

func TestCheckedValue(t *testing.T) {
	doc := parse(t, `
		<form>
			<input type="radio" name="choice" value="true">
			<input type="radio" name="choice" value="false" checked="checked">
		</form>
	`)

	value, ok := CheckedValue(doc, "choice")
	require.True(t, ok)
	require.Equal(t, "false", value)

	_, ok = CheckedValue(doc, "missing")
	require.False(t, ok)
}

func TestSelectedOption(t *testing.T) {
	doc := parse(t, `
		<form>
			<select name="explicit">
				<option value="1">one</option>
				<option value="2" selected="selected">two</option>
			</select>
			<select name="implicit">
				<option value="a">first</option>
				<option value="b">second</option>
			</select>
			<select name="textonly">
				<option selected="selected"> 768 MB </option>
			</select>
			<select name="empty"></select>
		</form>
	`)

	value, ok := SelectedOption(doc, "explicit")
	require.True(t, ok)
	require.Equal(t, "2", value)

	// no option marked selected, a browser would submit the first
	value, ok = SelectedOption(doc, "implicit")
	require.True(t, ok)
	require.Equal(t, "a", value)

	value, ok = SelectedOption(doc, "textonly")
	require.True(t, ok)
	require.Equal(t, "768 MB", value)

	_, ok = SelectedOption(doc, "empty")
	require.False(t, ok)

	_, ok = SelectedOption(doc, "missing")
	require.False(t, ok)
}

func TestTextareaValue(t *testing.T) {
	doc := parse(t, `
		<form>
			<textarea name="assignment[ignored_files]">*.pyc
__pycache__</textarea>
		</form>
	`)

	value, ok := TextareaValue(doc, "assignment[ignored_files]")
	require.True(t, ok)
	require.Equal(t, "*.pyc\n__pycache__", value)

	_, ok = TextareaValue(doc, "missing")
	require.False(t, ok)
}
