package sqlitekit

import (
	"io"
	"testing"
)

func TestRecordingSelectionCapturesTouchedTables(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	region := NewStatementRegion()
	err := c.RecordingSelection(region, func() error {
		_, err := c.Query(`SELECT Author.name FROM Author JOIN Book ON Book.authorId = Author.id`)
		if err == io.EOF {
			return nil
		}
		return err
	})
	if err != nil {
		t.Fatalf("RecordingSelection: %v", err)
	}
	if !region.Contains("main", "Author") {
		t.Fatalf("region does not contain Author: %+v", region)
	}
	if !region.Contains("main", "Book") {
		t.Fatalf("region does not contain Book: %+v", region)
	}
	if region.Contains("main", "AuthorNames") {
		t.Fatalf("region contains an untouched table")
	}
}

func TestFullDatabaseRegionRecordingIsNoOp(t *testing.T) {
	c := mustOpen(t, Config{})
	setupSchema(t, c)

	region := FullDatabaseRegion()
	err := c.RecordingSelection(region, func() error {
		_, err := c.Query(`SELECT * FROM Author`)
		if err == io.EOF {
			return nil
		}
		return err
	})
	if err != nil {
		t.Fatalf("RecordingSelection: %v", err)
	}
	if !region.Contains("main", "anything") {
		t.Fatalf("FullDatabaseRegion stopped covering everything")
	}
}

func TestStatementRegionUnion(t *testing.T) {
	a := NewStatementRegion()
	a.add("main", "X")
	b := NewStatementRegion()
	b.add("main", "Y")
	a.Union(b)
	if !a.Contains("main", "X") || !a.Contains("main", "Y") {
		t.Fatalf("Union did not merge both sides: %+v", a)
	}
}
