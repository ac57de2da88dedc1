package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/quotescan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports() []*model.Report {
	return []*model.Report{
		{
			Index: 0,
			Text:  "新华社表示，他将于明天出席会议。",
			Quotes: []model.Quote{
				{Speaker: "新华社", Verb: "表示", Text: "他将于明天出席会议。"},
				{Speaker: "北京", Verb: "宣布", Text: "地铁将延长运营时间。"},
			},
		},
		{Index: 1, Text: "未标注", Quotes: []model.Quote{}, Error: "annotate: not found"},
		{Index: 2, Text: "今天天气很好。", Quotes: []model.Quote{}},
	}
}

func TestRenderer_WriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).WriteResults(&buf, sampleReports()))

	want := "新华社 表示 他将于明天出席会议。\n" +
		"北京 宣布 地铁将延长运营时间。\n" +
		"\n" + Separator + "\n" +
		"\n" + Separator + "\n" +
		"\n" + Separator + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderer_RenderResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "result.txt")

	require.NoError(t, NewRenderer(false).RenderResults(sampleReports(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), Separator))
	assert.True(t, strings.HasPrefix(string(data), "新华社 表示 "))
}

func TestRenderer_RenderJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.json")

	require.NoError(t, NewRenderer(false).RenderJSON(sampleReports(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "新华社", decoded[0].Quotes[0].Speaker)
	assert.Equal(t, "annotate: not found", decoded[1].Error)
	assert.Contains(t, string(data), "他将于明天出席会议")
}

func TestRenderer_RenderSummary(t *testing.T) {
	var quiet bytes.Buffer
	NewRenderer(false).RenderSummary(&quiet, sampleReports())
	assert.Contains(t, quiet.String(), "Items:     3")
	assert.Contains(t, quiet.String(), "Failures:  1")
	assert.Contains(t, quiet.String(), "Quotes:    2")
	assert.Contains(t, quiet.String(), "Speakers:  2")
	assert.NotContains(t, quiet.String(), "item 1")

	var verbose bytes.Buffer
	NewRenderer(true).RenderSummary(&verbose, sampleReports())
	assert.Contains(t, verbose.String(), "item 1: annotate: not found")
}
