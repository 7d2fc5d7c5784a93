package storage

import (
	"chat-sim/internal"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Dump prints every journal entry as a table.
func (j *Journal) Dump(out io.Writer) error {
	entries, err := j.All()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Conversation", "Kind", "Time", "Sent", "Lang", "Text"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, e := range entries {
		name := e.ConversationName
		if name == "" {
			name = strconv.Itoa(int(e.ConversationID))
		}
		table.Append([]string{
			name,
			string(e.Kind),
			e.Message.Time,
			strconv.FormatBool(e.Message.Sent),
			e.Language,
			e.Message.Text,
		})
	}
	table.Render()
	return nil
}

// Mapper renders a journal value as a row of the debug inspector.
func Mapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)
	entry, err := decode(val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = string(entry.Kind)
	row.EntityID = strconv.FormatInt(int64(entry.Message.ID), 10)
	row.Detail = entry.Message.Text
	row.Scores = entry.Language
	return row
}
