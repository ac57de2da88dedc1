package news

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines(t *testing.T) {
	items, err := ParseLines(strings.NewReader("第一条新闻。\n\n   \n第二条新闻。\r\n"))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, "第一条新闻。", items[0].Text)
	assert.Equal(t, 1, items[1].Index)
	assert.Equal(t, "第二条新闻。", items[1].Text)
}

func TestParseHTML_ParagraphsAndInvisibleElements(t *testing.T) {
	doc := `<html>
<head><title>标题</title><script>var x = "脚本";</script></head>
<body>
	<p>外交部<b>表示</b>，双方将继续保持沟通。</p>
	<style>p { color: red; }</style>
	<div>记者问：他是否会参加。</div>
	<noscript>不可见</noscript>
</body>
</html>`

	items, err := ParseHTML(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "外交部表示，双方将继续保持沟通。", items[0].Text)
	assert.Equal(t, "记者问：他是否会参加。", items[1].Text)
	for _, it := range items {
		assert.NotContains(t, it.Text, "脚本")
		assert.NotContains(t, it.Text, "color")
		assert.NotContains(t, it.Text, "不可见")
		assert.NotContains(t, it.Text, "标题")
	}
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "news.txt")
	require.NoError(t, os.WriteFile(txt, []byte("<p>不是HTML</p>\n"), 0644))
	items, err := Load(txt)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "<p>不是HTML</p>", items[0].Text)

	page := filepath.Join(dir, "news.HTML")
	require.NoError(t, os.WriteFile(page, []byte("<p>第一段。</p><p>第二段。</p>"), 0644))
	items, err = Load(page)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
