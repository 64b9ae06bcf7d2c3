package statement

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	headerFill = &props.Color{Red: 41, Green: 128, Blue: 185}
	stripeFill = &props.Color{Red: 240, Green: 244, Blue: 248}
	totalFill  = &props.Color{Red: 232, Green: 245, Blue: 233}
	white      = &props.Color{Red: 255, Green: 255, Blue: 255}
	muted      = &props.Color{Red: 110, Green: 110, Blue: 110}
	markColor  = &props.Color{Red: 200, Green: 30, Blue: 30}
)

func writePDF(l Layout) ([]byte, error) {
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12)
	if l.Landscape {
		builder = builder.WithOrientation(orientation.Horizontal)
	}

	m := maroto.New(builder.Build())
	m.AddRows(letterheadRows(l)...)
	m.AddRows(fieldRows(l.Meta, fontstyle.Normal)...)

	if len(l.Parties) > 0 {
		m.AddRows(text.NewRow(4, ""))
		m.AddRows(fieldRows(l.Parties, fontstyle.Bold)...)
	}
	if len(l.Details) > 0 {
		m.AddRows(text.NewRow(4, ""))
		m.AddRows(detailRows(l.Details)...)
	}
	if l.Table != nil {
		m.AddRows(text.NewRow(4, ""))
		m.AddRows(tableRows(*l.Table)...)
	}
	if len(l.Summary) > 0 {
		m.AddRows(text.NewRow(4, ""), text.NewRow(7, "SUMMARY", props.Text{Style: fontstyle.Bold, Size: 11}))
		m.AddRows(detailRows(l.Summary)...)
	}
	if l.Total != nil {
		m.AddRows(text.NewRow(3, ""), totalRow(*l.Total))
	}

	if len(l.Footer) > 0 {
		footer := make([]core.Row, 0, len(l.Footer))
		for _, f := range l.Footer {
			footer = append(footer, text.NewRow(5, f, props.Text{Size: 8, Align: align.Center, Style: fontstyle.Italic, Color: muted}))
		}
		if err := m.RegisterFooter(footer...); err != nil {
			return nil, fmt.Errorf("register footer: %w", err)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func letterheadRows(l Layout) []core.Row {
	rows := []core.Row{
		text.NewRow(9, l.Letterhead.Name, props.Text{Size: 15, Style: fontstyle.Bold, Align: align.Center}),
	}
	if l.Letterhead.Address != "" {
		rows = append(rows, text.NewRow(5, l.Letterhead.Address, props.Text{Size: 9, Align: align.Center, Color: muted}))
	}
	if l.Letterhead.Contact != "" {
		rows = append(rows, text.NewRow(5, l.Letterhead.Contact, props.Text{Size: 9, Align: align.Center, Color: muted}))
	}
	rows = append(rows, line.NewRow(4))
	rows = append(rows, text.NewRow(9, l.Title, props.Text{Size: 13, Style: fontstyle.Bold, Align: align.Center}))
	if l.Mark != "" {
		rows = append(rows, text.NewRow(7, l.Mark, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: markColor}))
	}
	return rows
}

func fieldRows(fields []Field, labelStyle fontstyle.Type) []core.Row {
	rows := make([]core.Row, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, row.New(5).Add(
			text.NewCol(3, f.Label+":", props.Text{Size: 9, Style: labelStyle}),
			text.NewCol(9, f.Value, props.Text{Size: 9}),
		))
	}
	return rows
}

func detailRows(fields []Field) []core.Row {
	rows := make([]core.Row, 0, len(fields))
	for i, f := range fields {
		r := row.New(7).Add(
			text.NewCol(6, f.Label, props.Text{Size: 10, Top: 1.5, Left: 2}),
			text.NewCol(6, f.Value, props.Text{Size: 10, Top: 1.5, Right: 2, Align: align.Right}),
		)
		if i%2 == 0 {
			r = r.WithStyle(&props.Cell{BackgroundColor: stripeFill})
		}
		rows = append(rows, r)
	}
	return rows
}

func tableRows(t Table) []core.Row {
	rows := make([]core.Row, 0, len(t.Rows)+2)

	header := make([]core.Col, 0, len(t.Columns))
	for _, c := range t.Columns {
		header = append(header, text.NewCol(c.Span, c.Header, props.Text{
			Size: 8, Style: fontstyle.Bold, Align: marotoAlign(c.Align), Color: white, Top: 1.5,
		}))
	}
	rows = append(rows, row.New(7).Add(header...).WithStyle(&props.Cell{BackgroundColor: headerFill}))

	for i, cells := range t.Rows {
		r := row.New(6).Add(cellCols(t.Columns, cells, fontstyle.Normal)...)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: stripeFill})
		}
		rows = append(rows, r)
	}

	if len(t.Footer) > 0 {
		rows = append(rows, row.New(7).Add(cellCols(t.Columns, t.Footer, fontstyle.Bold)...).
			WithStyle(&props.Cell{BackgroundColor: totalFill}))
	}
	return rows
}

func cellCols(columns []Column, cells []string, style fontstyle.Type) []core.Col {
	cols := make([]core.Col, 0, len(columns))
	for i, c := range columns {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		if value == "" {
			cols = append(cols, col.New(c.Span))
			continue
		}
		cols = append(cols, text.NewCol(c.Span, value, props.Text{
			Size: 8, Style: style, Align: marotoAlign(c.Align), Top: 1.5, Left: 1, Right: 1,
		}))
	}
	return cols
}

func totalRow(f Field) core.Row {
	return row.New(9).Add(
		text.NewCol(6, f.Label, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2, Left: 2}),
		text.NewCol(6, f.Value, props.Text{Size: 11, Style: fontstyle.Bold, Top: 2, Right: 2, Align: align.Right}),
	).WithStyle(&props.Cell{BackgroundColor: totalFill})
}

func marotoAlign(a Align) align.Type {
	switch a {
	case AlignCenter:
		return align.Center
	case AlignRight:
		return align.Right
	default:
		return align.Left
	}
}
