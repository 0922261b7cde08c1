package loader

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageLineNamespaceFilter(t *testing.T) {
	line := []byte("INSERT INTO `page` VALUES (1,0,'A',0),(2,1,'Talk_A',0),(3,0,'B',0);")
	recs := parsePageLine(line)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].page.Title)
	assert.Equal(t, "B", recs[1].page.Title)
}

func TestInsertPagesRedirectMasking(t *testing.T) {
	l := NewPageLoader(HashmapStandard, zerolog.Nop())
	l.insertPages([]pageRecord{
		{wikiID: 1, page: Page{Title: "Foo", IsRedirect: true}},
		{wikiID: 2, page: Page{Title: "Foo", IsRedirect: false}},
	})

	idx, ok := l.FindPageIndexByTitle("Foo")
	require.True(t, ok)
	assert.EqualValues(t, 0, idx)
	assert.Equal(t, uint64(1), l.RedirectCount())

	byID, ok := l.FindPageIndexByID(1)
	require.True(t, ok)
	assert.EqualValues(t, 0, byID)
}

func TestParsePageLineEscapeDecoding(t *testing.T) {
	line := []byte(`INSERT INTO ` + "`page`" + ` VALUES (1,0,'O\'Brien_Jr\\.',0);`)
	recs := parsePageLine(line)
	require.Len(t, recs, 1)
	assert.Equal(t, `O'Brien Jr\.`, recs[0].page.Title)
}

func TestParseLinkLineNamespaceFilter(t *testing.T) {
	pages := NewPageLoader(HashmapStandard, zerolog.Nop())
	pages.insertPages([]pageRecord{{wikiID: 1, page: Page{Title: "A"}}})

	targets := NewLinkTargetLoader(HashmapStandard, zerolog.Nop())
	targets.insert([]linkTargetRecord{{wikiID: 100, pageIndex: 0, titleFound: true}})

	parse := parseLinkLine(pages, targets)
	line := []byte("INSERT INTO `pagelinks` VALUES (1,1,100);")
	recs := parse(line)
	assert.Empty(t, recs)
}

func TestMinimalGraphResolution(t *testing.T) {
	pages := NewPageLoader(HashmapStandard, zerolog.Nop())
	pages.insertPages([]pageRecord{
		{wikiID: 1, page: Page{Title: "A"}},
		{wikiID: 2, page: Page{Title: "B"}},
		{wikiID: 3, page: Page{Title: "C"}},
	})

	targets := NewLinkTargetLoader(HashmapStandard, zerolog.Nop())
	targets.insert([]linkTargetRecord{
		{wikiID: 100, pageIndex: 0, titleFound: true},
		{wikiID: 200, pageIndex: 1, titleFound: true},
		{wikiID: 300, pageIndex: 2, titleFound: true},
	})

	links := NewLinkLoader(zerolog.Nop())
	parse := parseLinkLine(pages, targets)
	for _, line := range [][]byte{
		[]byte("INSERT INTO `pagelinks` VALUES (1,0,200);"),
		[]byte("INSERT INTO `pagelinks` VALUES (1,0,300);"),
		[]byte("INSERT INTO `pagelinks` VALUES (2,0,300);"),
	} {
		links.insert(parse(line))
	}

	require.Len(t, links.Edges(), 3)
	assert.Contains(t, links.Edges(), Edge{From: 0, To: 1})
	assert.Contains(t, links.Edges(), Edge{From: 0, To: 2})
	assert.Contains(t, links.Edges(), Edge{From: 1, To: 2})
}

func TestLinkTargetTitleMiss(t *testing.T) {
	pages := NewPageLoader(HashmapStandard, zerolog.Nop())
	pages.insertPages([]pageRecord{{wikiID: 1, page: Page{Title: "A"}}})

	parse := parseLinkTargetLine(pages)
	recs := parse([]byte("INSERT INTO `linktarget` VALUES (100,0,'A'),(200,0,'Nonexistent');"))
	require.Len(t, recs, 2)
	assert.True(t, recs[0].titleFound)
	assert.False(t, recs[1].titleFound)

	loader := NewLinkTargetLoader(HashmapStandard, zerolog.Nop())
	loader.insert(recs)
	assert.EqualValues(t, 1, loader.Mapped())
	assert.EqualValues(t, 1, loader.TitleMiss())
}
