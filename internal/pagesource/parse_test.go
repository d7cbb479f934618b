package pagesource

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const page = `<html><head><script>var City = "x";</script><style>.a{}</style></head>
<body>
<div class="nav">Trends</div>
<table>
<tr><th>City</th><th>Previous Period</th><th>This Period</th><th>Change</th></tr>
<tr><td>Austin</td><td>1,204</td><td>1,500</td><td>+24.6%</td></tr>
<tr><td>São Paulo</td><td>0</td><td>7</td><td>--</td></tr>
<tr><td>Show more</td><td>Next</td><td>Page</td><td>2</td></tr>
</table>
</body></html>`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := []TableRow{
		{City: "Austin", PreviousPeriod: 1204, CurrentPeriod: 1500, Change: "+24.6%"},
		{City: "São Paulo", PreviousPeriod: 0, CurrentPeriod: 7, Change: "--"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Parse() = %+v, want %+v", rows, want)
	}
}

func TestParse_multilineText(t *testing.T) {
	src := "<body><pre>City\nPrevious Period\nThis Period\nChange\nBoston\n3\n4\n33%\n</pre></body>"
	rows, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 1 || rows[0].City != "Boston" || rows[0].CurrentPeriod != 4 {
		t.Errorf("Parse() = %+v", rows)
	}
}

func TestParse_noHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("<body><p>City</p><p>Previous Period</p></body>"))
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Parse() error = %v, want ErrTableNotFound", err)
	}
}

func TestParse_headerOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader("<p>City</p><p>Previous Period</p><p>This Period</p><p>Change</p>"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Parse() = %+v, want no rows", rows)
	}
}

func TestWriteFragment(t *testing.T) {
	var buf bytes.Buffer
	rows := []TableRow{{City: "Austin, TX", PreviousPeriod: 1, CurrentPeriod: 2, Change: "100%"}}
	meta := FragmentMeta{Week: "20240105", Song: "Song A", SongID: "1", Measure: "plays", Level: "song"}
	if err := WriteFragment(&buf, rows, meta); err != nil {
		t.Fatalf("WriteFragment() error: %v", err)
	}
	want := "City,Previous Period,Current Period,% Change,Week,Song,Song ID,Measure,Level\n" +
		"\"Austin, TX\",1,2,100%,20240105,Song A,1,plays,song\n"
	if buf.String() != want {
		t.Errorf("WriteFragment() = %q, want %q", buf.String(), want)
	}
}
