package csv_test

import (
	"errors"
	"strings"
	"testing"

	pcsv "energyeda/internal/parser/csv"
	"energyeda/pkg/records"
)

const europeSample = "placeName,Date:Annual_Consumption_Electricity,Value:Annual_Consumption_Electricity\n" +
	"Spain,2019,250000\n" +
	"France,,450000\n"

func TestParseSample(t *testing.T) {
	p := pcsv.NewParser(pcsv.Options{HasHeader: true, TrimSpace: true})

	tbl, skipped, err := p.Parse("europe.csv", strings.NewReader(europeSample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped=%d want 0", skipped)
	}
	if got, want := tbl.Len(), 2; got != want {
		t.Fatalf("len=%d want=%d", got, want)
	}
	if got := tbl.Columns[1]; got != "Date:Annual_Consumption_Electricity" {
		t.Fatalf("header case/punctuation not preserved: %q", got)
	}
	if v := tbl.Rows[0]["Value:Annual_Consumption_Electricity"]; v != "250000" {
		t.Fatalf("consumption=%v want 250000", v)
	}
	if v, ok := tbl.Rows[1]["Date:Annual_Consumption_Electricity"]; !ok || v != nil {
		t.Fatalf("empty cell should be present and nil, got %#v (present=%v)", v, ok)
	}
}

/*
TestParse_BOMAndHeaderMap verifies that a UTF-8 BOM on the first header cell
is stripped and HeaderMap renames matching headers.
*/
func TestParse_BOMAndHeaderMap(t *testing.T) {
	in := "\uFEFFplaceName;value\nSpain;1\n"
	p := pcsv.NewParser(pcsv.Options{
		HasHeader: true,
		Comma:     ';',
		HeaderMap: map[string]string{"value": "Value:Annual_Consumption_Electricity"},
	})
	tbl, _, err := p.Parse("bom.csv", strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"placeName", "Value:Annual_Consumption_Electricity"}
	for i := range want {
		if tbl.Columns[i] != want[i] {
			t.Fatalf("columns=%v want %v", tbl.Columns, want)
		}
	}
	if tbl.Rows[0]["placeName"] != "Spain" {
		t.Fatalf("row=%v", tbl.Rows[0])
	}
}

func TestParse_MalformedFailsFast(t *testing.T) {
	cases := map[string]string{
		"ragged row": "a,b\n1,2\n3\n",
		"bare quote": "a,b\n1,x\"y\n",
		"empty":      "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			p := pcsv.NewParser(pcsv.Options{HasHeader: true})
			_, _, err := p.Parse("bad.csv", strings.NewReader(in))
			if !errors.Is(err, records.ErrParse) {
				t.Fatalf("err=%v want ErrParse", err)
			}
			if !strings.Contains(err.Error(), "bad.csv") {
				t.Fatalf("error should name the file: %v", err)
			}
		})
	}
}

func TestParse_SkipMalformed(t *testing.T) {
	p := pcsv.NewParser(pcsv.Options{HasHeader: true, SkipMalformed: true})
	tbl, skipped, err := p.Parse("soft.csv", strings.NewReader("a,b,c\n1,2,3\nx,y\n4,5,6\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 1 || tbl.Len() != 2 {
		t.Fatalf("skipped=%d len=%d; want 1 and 2", skipped, tbl.Len())
	}
}

func TestParse_Headerless(t *testing.T) {
	p := pcsv.NewParser(pcsv.Options{})
	tbl, _, err := p.Parse("nohdr.csv", strings.NewReader("Spain,1\nChina,2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tbl.Columns) != 2 || tbl.Columns[0] != "col_0" {
		t.Fatalf("columns=%v", tbl.Columns)
	}
	if tbl.Rows[1]["col_0"] != "China" {
		t.Fatalf("row=%v", tbl.Rows[1])
	}
}
