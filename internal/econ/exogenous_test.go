package econ

import "testing"

func TestTableRowClampsPastEnd(t *testing.T) {
	table := DefaultTable()

	last, ok := table.Row(len(table) - 1)
	if !ok {
		t.Fatal("expected last row")
	}
	clamped, ok := table.Row(len(table) + 40)
	if !ok {
		t.Fatal("expected clamped row")
	}
	if clamped != last {
		t.Fatalf("clamped row = %+v, want last row %+v", clamped, last)
	}
}

func TestTableRowNegativeIndexClampsToFirst(t *testing.T) {
	table := DefaultTable()

	first, _ := table.Row(0)
	row, ok := table.Row(-3)
	if !ok || row != first {
		t.Fatalf("row = %+v ok=%v, want first row", row, ok)
	}
}

func TestTableRowEmptyTable(t *testing.T) {
	var table Table
	if _, ok := table.Row(0); ok {
		t.Fatal("expected no row from empty table")
	}
}

func TestNewBaselineUsesNeutralFirstRow(t *testing.T) {
	table := DefaultTable()

	base, ok := NewBaseline(table)
	if !ok {
		t.Fatal("expected baseline")
	}
	if base.E != table[0].TildeE {
		t.Fatalf("base e = %v, want %v", base.E, table[0].TildeE)
	}
	if base.YStar != table[0].YStar {
		t.Fatalf("base y_star = %v, want %v", base.YStar, table[0].YStar)
	}
}

func TestNewBaselineEmptyTable(t *testing.T) {
	if _, ok := NewBaseline(nil); ok {
		t.Fatal("expected no baseline from empty table")
	}
}
