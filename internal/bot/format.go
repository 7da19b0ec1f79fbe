package bot

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"remindbot/internal/reminder"
)

// renderJobs renders the caller's jobs as an aligned monospace table inside
// a Markdown code block.
func renderJobs(jobs []reminder.Reminder) string {
	var sb strings.Builder
	sb.WriteString("```\nMy jobs:\n")

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Id\tSchedule\tPaused\tNext fire\tMessage")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n",
			j.ID, j.Schedule, j.Paused, j.NextFire.Format(dateFormat), j.Payload)
	}
	_ = w.Flush()

	sb.WriteString("```")
	return sb.String()
}
