package shell

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/r3d91ll/heddle/pkg/dataset"
)

// WriteShapes prints one row per filter with its dimensions.
func WriteShapes(w io.Writer, ds *dataset.Dataset) error {
	var data [][]string
	for _, name := range ds.FilterNames() {
		shape, err := ds.Shape(name)
		if err != nil {
			return err
		}
		vectors := "-"
		if shape.VectorSize > 0 {
			vectors = strconv.Itoa(shape.VectorSize)
		}
		data = append(data, []string{
			name,
			strconv.Itoa(shape.NumLayers),
			strconv.Itoa(shape.NumHeads),
			strconv.Itoa(shape.LeftLen),
			strconv.Itoa(shape.RightLen),
			vectors,
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"FILTER", "LAYERS", "HEADS", "LEFT", "RIGHT", "VECTORS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}
