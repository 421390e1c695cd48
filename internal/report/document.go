package report

import "strings"

// Field is a labelled value rendered as "- Label: Value".
type Field struct {
	Label string
	Value string
}

// List is a titled bullet list. Items may span lines.
type List struct {
	Title string
	Items []string
}

// Block is one titled entry inside a section, e.g. a single device.
type Block struct {
	Title  string
	Lines  []string
	Fields []Field
	Lists  []List
}

// Section is a top-level part of a report.
type Section struct {
	Title  string
	Lines  []string
	Fields []Field
	Blocks []Block
}

// Document is a report laid out as ordered sections, turned into text only by
// Render. A Document with Message set renders as that message alone.
type Document struct {
	Title    string
	Meta     []Field
	Sections []Section
	Message  string
}

// NoData returns a document that renders as msg.
func NoData(msg string) Document {
	return Document{Message: msg}
}

// Empty reports whether the document carries no report body.
func (d Document) Empty() bool {
	return d.Message != "" && len(d.Sections) == 0
}

// Render returns the markdown text of the document.
func (d Document) Render() string {
	if d.Empty() {
		return d.Message
	}

	var b strings.Builder
	if d.Title != "" {
		b.WriteString("# " + d.Title + "\n\n")
	}
	if len(d.Meta) > 0 {
		writeFields(&b, d.Meta)
		b.WriteString("\n")
	}
	for _, s := range d.Sections {
		b.WriteString("## " + s.Title + "\n")
		writeLines(&b, s.Lines)
		writeFields(&b, s.Fields)
		for _, blk := range s.Blocks {
			b.WriteString("\n")
			if blk.Title != "" {
				b.WriteString("### " + blk.Title + "\n")
			}
			writeLines(&b, blk.Lines)
			writeFields(&b, blk.Fields)
			for _, l := range blk.Lists {
				if len(l.Items) == 0 {
					continue
				}
				b.WriteString("\n" + l.Title + ":\n")
				for _, item := range l.Items {
					b.WriteString("- " + strings.ReplaceAll(item, "\n", "\n  ") + "\n")
				}
			}
		}
		b.WriteString("\n")
	}
	if d.Message != "" {
		b.WriteString(d.Message + "\n")
	}
	return strings.TrimSpace(b.String())
}

func writeLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
}

func writeFields(b *strings.Builder, fields []Field) {
	for _, f := range fields {
		b.WriteString("- " + f.Label + ": " + f.Value + "\n")
	}
}
