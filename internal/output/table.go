package output

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/berkaydemir/netraven/internal/scan"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats a ScanResult as a one-line summary followed by
// one port table per live host, adapted from the teacher's
// TableFormatter (same tablewriter configuration, box-drawing separators).
type TableFormatter struct {
	config Config
	colors *ColorScheme
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(config Config) *TableFormatter {
	var colors *ColorScheme
	if config.Colors {
		colors = DefaultColorScheme()
	}
	return &TableFormatter{config: config, colors: colors}
}

func (f *TableFormatter) Format(result scan.ScanResult) ([]byte, error) {
	var buf bytes.Buffer

	f.writeSummary(&buf, result)

	hosts := append([]scan.HostInfo(nil), result.Hosts...)
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].IP.String() < hosts[j].IP.String() })

	for _, h := range hosts {
		f.writeHostHeader(&buf, h)

		ports := result.Ports[h.IP.String()]
		if len(ports) == 0 {
			buf.WriteString("  (no ports probed)\n\n")
			continue
		}

		table := tablewriter.NewWriter(&buf)
		f.configureTable(table)
		table.SetHeader([]string{"Port", "Status", "Service"})
		for _, p := range ports {
			if !f.config.ShowClosed && p.Status != scan.Open {
				continue
			}
			table.Append(f.formatPortRow(p))
		}
		table.Render()
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (f *TableFormatter) writeSummary(buf *bytes.Buffer, result scan.ScanResult) {
	header := fmt.Sprintf("Status: %s | Elapsed: %s | Hosts up: %d\n\n",
		result.Status, result.Elapsed, len(result.Hosts))
	if f.colors != nil {
		header = f.colors.Header.Sprint(header)
	}
	buf.WriteString(header)
}

func (f *TableFormatter) writeHostHeader(buf *bytes.Buffer, h scan.HostInfo) {
	line := fmt.Sprintf("%s (ttl=%d)\n", h.IP, h.TTL)
	if f.colors != nil {
		line = f.colors.Host.Sprint(line)
	}
	buf.WriteString(line)
}

func (f *TableFormatter) configureTable(table *tablewriter.Table) {
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("│")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetTablePadding(" ")
}

func (f *TableFormatter) formatPortRow(p scan.PortInfo) []string {
	status := p.Status.String()
	if f.colors != nil {
		switch p.Status {
		case scan.Open:
			status = f.colors.Open.Sprint(status)
		case scan.Closed:
			status = f.colors.Closed.Sprint(status)
		case scan.Filtered:
			status = f.colors.Filtered.Sprint(status)
		}
	}
	return []string{fmt.Sprintf("%d", p.Port), status, truncateString(p.Service, 24)}
}

func (f *TableFormatter) ContentType() string { return "text/plain" }
func (f *TableFormatter) FileExtension() string { return "txt" }
