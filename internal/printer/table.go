package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/slok/scraperctl/internal/console"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
)

// TablePrinter prints console information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskList prints tasks in a table format.
func (t *TablePrinter) PrintTaskList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS\tITEMS\tCREATED")

	// Print rows
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%d/%d\t%s\n",
			task.ID, task.Type, task.Status, task.Progress,
			task.ProcessedItems, task.TotalItems, TimeAgo(task.CreatedAt))
	}

	return nil
}

// PrintTask prints detailed task status.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:         %s\n", task.ID)
	fmt.Fprintf(t.writer, "Type:       %s\n", task.Type)
	fmt.Fprintf(t.writer, "Status:     %s\n", task.Status)
	fmt.Fprintf(t.writer, "Progress:   %d%%\n", task.Progress)
	fmt.Fprintf(t.writer, "Items:      %d/%d (%d failed)\n", task.ProcessedItems, task.TotalItems, task.FailedItems)

	if task.CurrentStep != "" {
		fmt.Fprintf(t.writer, "Step:       %s\n", task.CurrentStep)
	}

	if len(task.Parameters) > 0 {
		fmt.Fprintf(t.writer, "Parameters:\n")
		for k, v := range task.Parameters {
			fmt.Fprintf(t.writer, "  %s: %s\n", k, v)
		}
	}

	fmt.Fprintf(t.writer, "Created:    %s\n", FormatTimestamp(task.CreatedAt))

	if task.StartedAt != nil {
		fmt.Fprintf(t.writer, "Started:    %s\n", FormatTimestamp(*task.StartedAt))
	}

	if task.CompletedAt != nil {
		fmt.Fprintf(t.writer, "Completed:  %s\n", FormatTimestamp(*task.CompletedAt))
	}

	if task.ErrorMessage != "" {
		fmt.Fprintf(t.writer, "Error:      %s\n", task.ErrorMessage)
	}

	return nil
}

// PrintArticles prints the loaded article page with selection marks and the
// pagination footer.
func (t *TablePrinter) PrintArticles(vm console.ViewModel) error {
	if len(vm.Articles) != 0 {
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

		// Print header
		fmt.Fprintln(tw, " \tID\tTITLE\tAUTHORS\tDATE\tKEYWORD\tSTATUS")

		// Print rows
		for _, a := range vm.Articles {
			mark := " "
			if a.Selected {
				mark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				mark, a.ID, truncate(a.Title, 60), truncate(a.Authors, 30),
				a.PublishDate, a.Keyword, a.Status)
		}
		tw.Flush()
	}

	pages := make([]string, 0, len(vm.PageWindow))
	for _, p := range vm.PageWindow {
		if p == vm.Page {
			pages = append(pages, fmt.Sprintf("[%d]", p))
			continue
		}
		pages = append(pages, fmt.Sprintf("%d", p))
	}
	fmt.Fprintf(t.writer, "\nPage %d of %d (%d articles, %d selected)  %s\n",
		vm.Page, vm.TotalPages, vm.TotalArticles, len(vm.SelectedIDs), strings.Join(pages, " "))

	return nil
}

// PrintView prints the full watch dashboard: aggregate status counts, the
// task table and the recent events.
func (t *TablePrinter) PrintView(vm console.ViewModel) error {
	fmt.Fprintf(t.writer, "Tasks: %d pending, %d running, %d paused, %d completed, %d failed\n\n",
		vm.StatusCounts[model.TaskStatusPending],
		vm.StatusCounts[model.TaskStatusRunning],
		vm.StatusCounts[model.TaskStatusPaused],
		vm.StatusCounts[model.TaskStatusCompleted],
		vm.StatusCounts[model.TaskStatusFailed],
	)

	if len(vm.Tasks) != 0 {
		tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS\tITEMS\tSTEP")
		for _, task := range vm.Tasks {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
				task.ID, task.Type, task.Status, task.Progress, task.Counts, truncate(task.Step, 40))
		}
		tw.Flush()
	}

	if len(vm.Events) != 0 {
		fmt.Fprintln(t.writer)
		err := t.PrintEvents(vm.Events)
		if err != nil {
			return err
		}
	}

	return nil
}

// PrintFileList prints worker resource files in a table format.
func (t *TablePrinter) PrintFileList(files []model.ResourceFile) error {
	if len(files) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")

	// Print rows.
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, FormatBytes(f.Size), TimeAgo(f.Modified))
	}

	return nil
}

// PrintSelection prints the pending selection ids.
func (t *TablePrinter) PrintSelection(ids []string) error {
	if len(ids) == 0 {
		fmt.Fprintln(t.writer, "no articles selected")
		return nil
	}

	for _, id := range ids {
		fmt.Fprintln(t.writer, id)
	}
	fmt.Fprintf(t.writer, "%d articles selected\n", len(ids))

	return nil
}

// PrintEvents prints operator event history, one line per event.
func (t *TablePrinter) PrintEvents(entries []eventlog.Entry) error {
	for _, e := range entries {
		fmt.Fprintf(t.writer, "%s  %-7s  %s\n", e.At.UTC().Format("15:04:05"), e.Level, e.Message)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
