package printer

import (
	"github.com/slok/scraperctl/internal/console"
	"github.com/slok/scraperctl/internal/eventlog"
	"github.com/slok/scraperctl/internal/model"
)

// Printer knows how to print console information in different formats.
type Printer interface {
	PrintTaskList(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintArticles(vm console.ViewModel) error
	PrintView(vm console.ViewModel) error
	PrintFileList(files []model.ResourceFile) error
	PrintSelection(ids []string) error
	PrintEvents(entries []eventlog.Entry) error
	PrintMessage(msg string) error
}
