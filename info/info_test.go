package info

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abdullahmohammadkhan/ptext-go/transform"
	"github.com/abdullahmohammadkhan/ptext-go/xref"
)

func buildPDFWithInfo(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	var offsets []int64
	offsets = append(offsets, 0)
	write := func(s string) { b.WriteString(s) }

	offsets = append(offsets, int64(b.Len()))
	write("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets = append(offsets, int64(b.Len()))
	write("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")
	offsets = append(offsets, int64(b.Len()))
	write("3 0 obj\n<< /Title (Report) /Author (A. Writer) >>\nendobj\n")

	xrefOffset := int64(b.Len())
	write("xref\n0 4\n")
	write("0000000000 65535 f \n")
	for n := 1; n <= 3; n++ {
		write(fmt.Sprintf("%010d 00000 n \n", offsets[n]))
	}
	write("trailer\n<< /Size 4 /Root 1 0 R /Info 3 0 R >>\n")
	write(fmt.Sprintf("startxref\n%d\n%%%%EOF", xrefOffset))

	return b.String()
}

func buildPDFWithoutInfo(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	write := func(s string) { b.WriteString(s) }
	var offsets []int64
	offsets = append(offsets, 0)

	offsets = append(offsets, int64(b.Len()))
	write("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets = append(offsets, int64(b.Len()))
	write("2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n")

	xrefOffset := int64(b.Len())
	write("xref\n0 3\n")
	write("0000000000 65535 f \n")
	for n := 1; n <= 2; n++ {
		write(fmt.Sprintf("%010d 00000 n \n", offsets[n]))
	}
	write("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	write(fmt.Sprintf("startxref\n%d\n%%%%EOF", xrefOffset))

	return b.String()
}

func loadDoc(t *testing.T, data string) *transform.Document {
	t.Helper()
	src := strings.NewReader(data)
	table, err := xref.Parse(src)
	if err != nil {
		t.Fatalf("xref.Parse: %v", err)
	}
	doc, err := transform.Load(src, table)
	if err != nil {
		t.Fatalf("transform.Load: %v", err)
	}
	return doc
}

func TestLoadReadsKnownFields(t *testing.T) {
	doc := loadDoc(t, buildPDFWithInfo(t))

	di := Load(doc)
	title, ok := di.Title()
	if !ok || title != "Report" {
		t.Errorf("Title() = %q, %v, want \"Report\", true", title, ok)
	}
	author, ok := di.Author()
	if !ok || author != "A. Writer" {
		t.Errorf("Author() = %q, %v, want \"A. Writer\", true", author, ok)
	}
	if _, ok := di.Subject(); ok {
		t.Error("Subject() should be not-found when absent from /Info")
	}
}

func TestLoadHandlesMissingInfoDictionary(t *testing.T) {
	doc := loadDoc(t, buildPDFWithoutInfo(t))

	di := Load(doc)
	if _, ok := di.Title(); ok {
		t.Error("Title() should be not-found with no /Info entry")
	}
	if _, ok := di.CreationDate(); ok {
		t.Error("CreationDate() should be not-found with no /Info entry")
	}
}
