package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/specvital/locator/pkg/config"
	"github.com/specvital/locator/pkg/domain"
	"github.com/specvital/locator/pkg/parser"
	"github.com/specvital/locator/pkg/parser/strategies"
)

// runnableView is the rendered form of one runnable.
type runnableView struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Range     domain.Range      `json:"range"`
	Package   string            `json:"package,omitempty"`
	BuildTags []domain.TagGroup `json:"buildTags,omitempty"`
	Command   string            `json:"command"`
	Dir       string            `json:"dir"`
}

type inventoryView struct {
	RootPath  string           `json:"rootPath"`
	Files     []fileView       `json:"files"`
	Runnables int              `json:"runnables"`
	Errors    []string         `json:"errors,omitempty"`
	Stats     parser.ScanStats `json:"stats"`
}

type fileView struct {
	Path      string         `json:"path"`
	Framework string         `json:"framework"`
	Runnables []runnableView `json:"runnables"`
}

func newRunnableView(strategy strategies.Strategy, r domain.Runnable) runnableView {
	command := strategy.Command(r)
	view := runnableView{
		Name:    r.Name,
		Path:    r.Path,
		Range:   r.Range,
		Command: command.String(),
		Dir:     command.Dir,
	}
	if r.Meta.Go != nil {
		view.Package = r.Meta.Go.Package
		view.BuildTags = r.Meta.Go.BuildTags
	}
	return view
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func writeRunnables(w io.Writer, format string, strategy strategies.Strategy, runnables []domain.Runnable) error {
	views := make([]runnableView, 0, len(runnables))
	for _, r := range runnables {
		views = append(views, newRunnableView(strategy, r))
	}

	if format == config.OutputJSON {
		return writeJSON(w, views)
	}

	table := newTable(w, []string{"Name", "Lines", "Command"})
	for _, v := range views {
		table.Append([]string{v.Name, lineSpan(v.Range), v.Command})
	}
	table.Render()
	return nil
}

func writeInventory(w io.Writer, format string, result *parser.ScanResult) error {
	if format == config.OutputJSON {
		view := inventoryView{
			RootPath:  result.Inventory.RootPath,
			Files:     make([]fileView, 0, len(result.Inventory.Files)),
			Runnables: result.Inventory.CountRunnables(),
			Stats:     result.Stats,
		}
		for _, f := range result.Inventory.Files {
			fv := fileView{Path: f.Path, Framework: f.Framework}
			for _, r := range f.Runnables {
				fv.Runnables = append(fv.Runnables, runnableView{
					Name:  r.Name,
					Path:  r.Path,
					Range: r.Range,
				})
			}
			view.Files = append(view.Files, fv)
		}
		for _, e := range result.Errors {
			view.Errors = append(view.Errors, e.Error())
		}
		return writeJSON(w, view)
	}

	table := newTable(w, []string{"Path", "Runnable", "Lines"})
	for _, f := range result.Inventory.Files {
		for _, r := range f.Runnables {
			table.Append([]string{f.Path, r.Name, lineSpan(r.Range)})
		}
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d files", len(result.Inventory.Files)),
		fmt.Sprintf("%d runnables", result.Inventory.CountRunnables()),
		"",
	})
	table.Render()
	return nil
}

func writeCapabilities(w io.Writer, format string, descriptors []domain.CapabilityDescriptor) error {
	if format == config.OutputJSON {
		return writeJSON(w, descriptors)
	}

	table := newTable(w, []string{"Label", "Capability", "Mode"})
	for _, d := range descriptors {
		table.Append([]string{d.Description, string(d.Capability), d.Mode.String()})
	}
	table.Render()
	return nil
}

// lineSpan renders a range as 1-based lines.
func lineSpan(r domain.Range) string {
	start := strconv.Itoa(r.Start.Row + 1)
	if r.End.Row == r.Start.Row {
		return start
	}
	return strings.Join([]string{start, strconv.Itoa(r.End.Row + 1)}, "-")
}
