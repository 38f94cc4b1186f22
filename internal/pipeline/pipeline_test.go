package pipeline

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"energyeda/internal/config"
	"energyeda/internal/continent"
	"energyeda/internal/transformer/builtin"
	"energyeda/pkg/records"
)

const header = "placeName,Date:Annual_Consumption_Electricity,Value:Annual_Consumption_Electricity," +
	"Date:Annual_Loss_Electricity,Value:Annual_Loss_Electricity," +
	"Date:Annual_Emissions_CarbonDioxide_ElectricityGeneration,Value:Annual_Emissions_CarbonDioxide_ElectricityGeneration\n"

const europeCSV = header +
	"Spain,2019,250000,2019,25000,2018,51000000\n" +
	"Macedonia [FYROM],2019,7000,2019,1000,2018,5000000\n" +
	"Germany,2019,,2019,30000,2018,250000000\n" +
	"Cyprus,2019,4500,2019,200,2018,3000000\n" +
	"France,2019,180000,2019,20000,2018,20000000\n" +
	"Italy,2019,180000,2019,21000,2018,90000000\n"

const asiaCSV = header +
	"China,2020,6500000,2020,300000,2019,4500000000\n" +
	"Japan,2020,950000,2020,40000,2019,500000000\n" +
	"Brazil,2020,500000,2020,80000,2019,50000000\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func testConfig(t *testing.T, europe, asia string) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sources[0].File.Path = writeFile(t, dir, "Europe_Country.csv", europe)
	cfg.Sources[1].File.Path = writeFile(t, dir, "Asia_Country.csv", asia)
	return cfg
}

/*
TestRun_EndToEnd loads both continents, checks the canonical dataset and the
top entries of each ranking.
*/
func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 9, res.Loaded)
	assert.Equal(t, builtin.CanonicalColumns, res.Dataset.Columns)
	assert.Equal(t, 8, res.Dataset.Len(), "Germany has a null consumption and is dropped")

	for _, r := range res.Dataset.Rows {
		for _, c := range res.Dataset.Columns {
			assert.False(t, records.IsNull(r[c]), "null %s in %v", c, r)
		}
		assert.IsType(t, int64(0), r[builtin.ColConsumptionYear])
		assert.IsType(t, int64(0), r[builtin.ColEmissionsYear])
	}

	eu, ok := res.Ranking(continent.Europe)
	require.True(t, ok)
	require.NotZero(t, eu.Top.Len())
	assert.Equal(t, "Spain", eu.Top.Rows[0][builtin.ColCountry])
	assert.EqualValues(t, 250000, eu.Top.Rows[0][builtin.ColConsumption])
	assert.Equal(t, []any{"Spain", "France", "Italy", "Macedonia", "Cyprus"}, eu.Top.Values(builtin.ColCountry),
		"ties keep input order")

	as, ok := res.Ranking(continent.Asia)
	require.True(t, ok)
	assert.Equal(t, "China", as.Top.Rows[0][builtin.ColCountry])
	assert.EqualValues(t, 6500000, as.Top.Rows[0][builtin.ColConsumption])
	assert.Equal(t, []any{"China", "Japan", "Cyprus"}, as.Top.Values(builtin.ColCountry))
}

func TestRun_MacedoniaRenamed(t *testing.T) {
	cfg := testConfig(t, europeCSV, header+"Macedonia [FYROM],2020,1,2020,1,2019,1\n")

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	var n int
	for _, v := range res.Dataset.Values(builtin.ColCountry) {
		assert.NotEqual(t, "Macedonia [FYROM]", v)
		if v == "Macedonia" {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

// TestRun_NaNAndNACellsDropped checks that NA spellings in a numeric column
// are treated as missing: the cleaner drops those rows and the ranking stays
// non-increasing.
func TestRun_NaNAndNACellsDropped(t *testing.T) {
	eu := header +
		"Spain,2019,100,2019,1,2018,1\n" +
		"France,2019,NaN,2019,1,2018,1\n" +
		"Italy,2019,300,2019,1,2018,1\n" +
		"Malta,2019,NA,2019,1,2018,1\n"
	cfg := testConfig(t, eu, asiaCSV)

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	countries := res.Dataset.Values(builtin.ColCountry)
	assert.NotContains(t, countries, "France")
	assert.NotContains(t, countries, "Malta")

	rk, ok := res.Ranking(continent.Europe)
	require.True(t, ok)
	assert.Equal(t, []any{"Italy", "Spain"}, rk.Top.Values(builtin.ColCountry))
	assert.EqualValues(t, 300, rk.Top.Rows[0][builtin.ColConsumption])
}

// TestLoad_LogsColumnKinds checks the debug line of a load carries the
// inferred kind of every column.
func TestLoad_LogsColumnKinds(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	l, err := Load(context.Background(), cfg.Sources[0], cfg.Parser, log)
	require.NoError(t, err)
	assert.Equal(t, "string", l.Kinds["placeName"].String())
	assert.Contains(t, buf.String(), `"kinds":{"placeName":"string"`)
	assert.Contains(t, buf.String(), `"Date:Annual_Consumption_Electricity":"int"`)
}

func TestRun_TopN(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	cfg.Report.TopN = 2

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	eu, _ := res.Ranking(continent.Europe)
	assert.Equal(t, 2, eu.Top.Len())
	assert.Equal(t, 5, eu.Selected)
}

func TestRun_UnknownContinentIsNoSelection(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	cfg.Report.Continents = []string{"Europe", "Atlantis"}

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, res.Rankings, 1)
	assert.Equal(t, []string{"Atlantis"}, res.Unselected)
}

func TestRun_MissingFile(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	cfg.Sources[1].File.Path = filepath.Join(t.TempDir(), "Asia_Country.csv")

	_, err := Run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrIO), "err = %v", err)
	assert.Contains(t, err.Error(), "Asia_Country.csv")
}

func TestRun_MalformedCSV(t *testing.T) {
	cfg := testConfig(t, europeCSV, header+"China,\"2020,6500000\n")

	_, err := Run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrParse), "err = %v", err)
}

func TestRun_BadYearIsTypeError(t *testing.T) {
	cfg := testConfig(t, europeCSV, header+"China,abc,6500000,2020,300000,2019,4500000000\n")

	_, err := Run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrType), "err = %v", err)

	var te *records.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, builtin.ColConsumptionYear, te.Column)
}

func TestRun_RankByMissingColumnIsKeyError(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	cfg.Report.RankBy = "Hydro_Share"

	_, err := Run(context.Background(), cfg, zerolog.Nop())
	assert.True(t, errors.Is(err, records.ErrKey), "err = %v", err)
}

func TestRun_BadTransformKind(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)
	cfg.Transform = []config.Transform{{Kind: "pivot"}}

	_, err := Run(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
}

func TestLoadAll_OrderAndLimit(t *testing.T) {
	cfg := testConfig(t, europeCSV, asiaCSV)

	got, err := LoadAll(context.Background(), cfg.Sources, cfg.Parser, 1, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "europe", got[0].Source.Name)
	assert.Equal(t, "Spain", got[0].Table.Rows[0]["placeName"])
	assert.Equal(t, "China", got[1].Table.Rows[0]["placeName"])
}

// TestLoad_HTTPAndXLSX loads the Asia export over HTTP and the Europe export
// from a workbook; both must merge like the CSV inputs.
func TestLoad_HTTPAndXLSX(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(asiaCSV))
	}))
	defer srv.Close()

	f := excelize.NewFile()
	defer f.Close()
	var rows [][]any
	for _, line := range strings.Split(strings.TrimSpace(europeCSV), "\n")[:2] {
		var row []any
		for _, cell := range strings.Split(line, ",") {
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	xlsxPath := writeFile(t, t.TempDir(), "Europe_Country.xlsx", buf.String())

	cfg := config.Default()
	cfg.SetSource("europe", xlsxPath)
	cfg.SetSource("asia", srv.URL+"/Asia_Country.csv")

	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	eu, _ := res.Ranking(continent.Europe)
	require.Equal(t, 1, eu.Top.Len())
	assert.EqualValues(t, 250000, eu.Top.Rows[0][builtin.ColConsumption])

	as, _ := res.Ranking(continent.Asia)
	assert.Equal(t, "China", as.Top.Rows[0][builtin.ColCountry])
}
