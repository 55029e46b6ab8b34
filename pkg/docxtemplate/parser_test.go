package docxtemplate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/render"
	"github.com/benjaminschreck/go-docxtemplate/pkg/docxtemplate/xml"
)

func TestParseNestedConditionals(t *testing.T) {
	for _, depth := range []int{1, 2, 3, 5} {
		t.Run(strings.Repeat("If", depth), func(t *testing.T) {
			var content []string
			for i := 0; i < depth; i++ {
				content = append(content, para(marker("If", "true()")), para(marker("Text", "//x")))
			}
			for i := 0; i < depth; i++ {
				content = append(content, para(marker("EndIf", "")))
			}
			doc := mustParse(t, body(content...))
			e, _ := testEngine(nil)

			root, err := e.Parse(doc)
			require.NoError(t, err)

			ends := render.TagElements(doc, doc.Root(), TagEndIf)
			require.Len(t, ends, depth)

			var current Processor = root
			for level := 0; level < depth; level++ {
				children := current.Processors()
				var ifProc *IfProcessor
				for _, child := range children {
					if p, ok := child.(*IfProcessor); ok {
						ifProc = p
					}
				}
				require.NotNil(t, ifProc, "level %d", level)
				// The level-th If opened is closed by the level-th EndIf counted from the end.
				assert.Equal(t, ends[depth-1-level], ifProc.Tag.EndIf)
				assert.Equal(t, "true()", ifProc.Tag.Condition)
				current = ifProc
			}
			assert.Equal(t, 2*depth, countProcessors(root))
		})
	}
}

func TestParseDoesNotMutate(t *testing.T) {
	src := body(
		para(marker("If", "//a")),
		para(run("kept")),
		marker("Table", ""),
		marker("Items", "//rows/row"),
		marker("Content", ""),
		table(row(cell(marker("Item", "name")))),
		marker("EndContent", ""),
		marker("EndTable", ""),
		para(marker("EndIf", "")),
	)
	doc := mustParse(t, src)
	before := doc.String()
	e, _ := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, countProcessors(root))
	assert.Equal(t, before, doc.String())
}

func TestParseMalformedTemplates(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		tag     string
	}{
		{
			name:    "if without end",
			content: []string{para(marker("If", "//a")), para(run("x"))},
			tag:     TagEndIf,
		},
		{
			name:    "if without condition",
			content: []string{para(marker("If", "")), para(marker("EndIf", ""))},
			tag:     TagIf,
		},
		{
			name:    "nested if unterminated",
			content: []string{para(marker("If", "//a")), para(marker("If", "//b")), para(marker("EndIf", ""))},
			tag:     TagEndIf,
		},
		{
			name:    "stray end if",
			content: []string{para(marker("EndIf", ""))},
			tag:     TagEndIf,
		},
		{
			name:    "item outside table",
			content: []string{para(marker("Item", "name"))},
			tag:     TagItem,
		},
		{
			name:    "content outside table",
			content: []string{marker("Content", "")},
			tag:     TagContent,
		},
		{
			name: "table without items",
			content: []string{
				marker("Table", ""), marker("Content", ""), table(textRow("a")),
				marker("EndContent", ""), marker("EndTable", ""),
			},
			tag: TagItems,
		},
		{
			name: "table without content",
			content: []string{
				marker("Table", "//rows"), table(textRow("a")), marker("EndTable", ""),
			},
			tag: TagContent,
		},
		{
			name: "table without end content",
			content: []string{
				marker("Table", "//rows"), marker("Content", ""), table(textRow("a")), marker("EndTable", ""),
			},
			tag: TagEndContent,
		},
		{
			name: "table without end",
			content: []string{
				marker("Table", "//rows"), marker("Content", ""), table(textRow("a")), marker("EndContent", ""),
			},
			tag: TagEndTable,
		},
		{
			name: "item if without end",
			content: []string{
				marker("Table", "//rows"), marker("Content", ""),
				table(row(cell(marker("ItemIf", "flag"), para(run("x"))))),
				marker("EndContent", ""), marker("EndTable", ""),
			},
			tag: TagEndItemIf,
		},
		{
			name: "item without expression",
			content: []string{
				marker("Repeater", "//rows"), marker("Content", ""),
				para(marker("Item", "")),
				marker("EndContent", ""), marker("EndRepeater", ""),
			},
			tag: TagItem,
		},
		{
			name: "repeater without end",
			content: []string{
				marker("Repeater", "//rows"), marker("Content", ""), para(run("x")), marker("EndContent", ""),
			},
			tag: TagEndRepeater,
		},
		{
			name:    "text without expression",
			content: []string{para(marker("Text", ""))},
			tag:     TagText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, body(tt.content...))
			before := doc.String()
			e, _ := testEngine(nil)

			root, err := e.Parse(doc)
			require.Error(t, err)
			assert.Nil(t, root)
			assert.True(t, IsMalformedTemplate(err), "got %T: %v", err, err)

			var malformed *MalformedTemplateError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.tag, malformed.Tag)
			assert.Equal(t, before, doc.String(), "a failed parse must not touch the document")
		})
	}
}

func TestParseCrossingDirectives(t *testing.T) {
	doc := mustParse(t, body(
		para(marker("If", "//a")),
		marker("Repeater", "//rows"),
		marker("Content", ""),
		para(marker("EndIf", "")),
		marker("EndContent", ""),
		marker("EndRepeater", ""),
	))
	e, _ := testEngine(nil)

	_, err := e.Parse(doc)
	require.Error(t, err)
	assert.True(t, IsMalformedTemplate(err))
}

func TestParseNestingLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxNestingDepth = 2
	e, _ := testEngine(config)

	doc := mustParse(t, body(
		para(marker("If", "//a")),
		para(marker("If", "//b")),
		para(marker("If", "//c")),
		para(marker("EndIf", "")),
		para(marker("EndIf", "")),
		para(marker("EndIf", "")),
	))
	_, err := e.Parse(doc)
	require.Error(t, err)
	assert.True(t, IsMalformedTemplate(err))
	assert.Contains(t, err.Error(), "deeper than 2")

	config.MaxNestingDepth = 3
	e, _ = testEngine(config)
	_, err = e.Parse(doc)
	assert.NoError(t, err)
}

func TestParseTableTag(t *testing.T) {
	doc := mustParse(t, body(
		marker("Table", ""),
		marker("Items", "//rows/row"),
		marker("DynamicRow", "2"),
		marker("Content", ""),
		table(
			textRow("header"),
			row(cell(marker("ItemIndex", "")), cell(marker("Item", "name"))),
			row(cell(marker("ItemIf", "flag"), marker("Item", "extra"), marker("EndItemIf", ""))),
		),
		marker("EndContent", ""),
		marker("EndTable", ""),
	))
	e, _ := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)
	require.Len(t, root.Processors(), 1)

	proc, ok := root.Processors()[0].(*TableProcessor)
	require.True(t, ok)
	tag := proc.Tag
	assert.Equal(t, "//rows/row", tag.ItemsSource)
	require.NotNil(t, tag.DynamicRow)
	assert.Equal(t, 2, *tag.DynamicRow)
	require.NotEqual(t, xml.None, tag.Table)
	assert.Equal(t, "tbl", doc.LocalName(tag.Table))
	assert.True(t, render.IsTag(doc, tag.TagContent, TagContent))
	assert.True(t, render.IsTag(doc, tag.TagEndContent, TagEndContent))

	var shapes []string
	for _, el := range tag.Placeholders {
		shapes = append(shapes, el.String())
	}
	assert.Equal(t, []string{"ItemIndex", "Item(name)", "ItemIf(flag)[Item(extra)]"}, shapes)
}

func TestParseTableDynamicRowMalformed(t *testing.T) {
	doc := mustParse(t, body(
		marker("Table", "//rows/row"),
		marker("DynamicRow", "second"),
		marker("Content", ""),
		table(textRow("a")),
		marker("EndContent", ""),
		marker("EndTable", ""),
	))
	e, _ := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)
	proc := root.Processors()[0].(*TableProcessor)
	assert.Nil(t, proc.Tag.DynamicRow)
	assert.Equal(t, "//rows/row", proc.Tag.ItemsSource)
}

func TestParseNestedTableKeepsOwnPlaceholders(t *testing.T) {
	doc := mustParse(t, body(
		marker("Repeater", "//groups/group"),
		marker("Content", ""),
		para(marker("Item", "title")),
		marker("Table", "rows/row"),
		marker("Content", ""),
		table(row(cell(marker("Item", "name")))),
		marker("EndContent", ""),
		marker("EndTable", ""),
		marker("EndContent", ""),
		marker("EndRepeater", ""),
	))
	e, _ := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)

	rep := root.Processors()[0].(*RepeaterProcessor)
	require.Len(t, rep.Tag.Placeholders, 1)
	assert.Equal(t, "title", rep.Tag.Placeholders[0].Expression)

	require.Len(t, rep.Processors(), 1)
	tbl := rep.Processors()[0].(*TableProcessor)
	require.Len(t, tbl.Tag.Placeholders, 1)
	assert.Equal(t, "name", tbl.Tag.Placeholders[0].Expression)
}

func TestParseCaseInsensitiveNames(t *testing.T) {
	doc := mustParse(t, body(
		para(marker("if", "//a")),
		para(marker("ENDIF", "")),
	))
	e, _ := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)
	require.Len(t, root.Processors(), 1)
	assert.IsType(t, &IfProcessor{}, root.Processors()[0])
}

func TestParseUnknownTagSuggestion(t *testing.T) {
	doc := mustParse(t, body(
		para(marker("Iff", "//a")),
		para(run("text")),
	))
	e, logs := testEngine(nil)

	root, err := e.Parse(doc)
	require.NoError(t, err)
	assert.Empty(t, root.Processors())
	assert.Contains(t, logs.String(), `did you mean "If"?`)
	assert.Contains(t, logs.String(), "tag=Iff")
}

func TestSuggestTagName(t *testing.T) {
	candidates := builtinTagNames()
	tests := []struct {
		name string
		want string
	}{
		{"Iff", "If"},
		{"Tabel", "Table"},
		{"EndTbl", "EndTable"},
		{"Signature", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestTagName(tt.name, candidates))
		})
	}
}

func TestDirectiveKindOf(t *testing.T) {
	assert.Equal(t, KindIf, DirectiveKindOf("if"))
	assert.Equal(t, KindEndItemIf, DirectiveKindOf(" EndItemIF "))
	assert.Equal(t, KindUnknown, DirectiveKindOf("Signature"))
	assert.Equal(t, "DynamicRow", KindDynamicRow.String())
	assert.True(t, KindItemIndex.IsItemFamily())
	assert.False(t, KindTable.IsItemFamily())
}
