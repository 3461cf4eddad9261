package main

import (
	"fmt"
	"io"

	"github.com/DaviAndorid/ArchitectureGuide/internal/catalog"
	"github.com/DaviAndorid/ArchitectureGuide/internal/diff"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
)

const (
	descriptionWidth = 48
	commentWidth     = 56
	postedAtLayout   = "2006-01-02 15:04"
)

func renderProducts(out io.Writer, products []catalog.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name", "Description", "Price"})
	for _, product := range products {
		t.AppendRow(table.Row{
			product.ID,
			product.Name,
			runewidth.Truncate(product.Description, descriptionWidth, "..."),
			product.Price.StringFixed(2),
		})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(products)})
	t.Render()
}

func renderComments(out io.Writer, comments []catalog.Comment) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Posted", "Comment"})
	for _, comment := range comments {
		t.AppendRow(table.Row{
			comment.ID,
			comment.PostedAt().Format(postedAtLayout),
			runewidth.Truncate(comment.Text, commentWidth, "..."),
		})
	}
	t.Render()
}

func renderProductOps(out io.Writer, ops []diff.Op[catalog.Product]) {
	for _, op := range ops {
		switch op.Kind {
		case diff.OpMove:
			fmt.Fprintf(out, "%-6s %d -> %d  #%d %s\n", op.Kind, op.From, op.Index, op.Item.ID, op.Item.Name)
		default:
			fmt.Fprintf(out, "%-6s at %d  #%d %s\n", op.Kind, op.Index, op.Item.ID, op.Item.Name)
		}
	}
}
