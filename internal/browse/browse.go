// Package browse pages through the raw rows of a filtered table.
package browse

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/bikeshare-cli/internal/dataset"
	"github.com/KaramelBytes/bikeshare-cli/internal/filters"
)

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 5

// Browse offers pages of pageSize rows until the user declines or the
// table is exhausted, and returns the number of pages shown. Answers other
// than yes/no re-prompt without consuming a page.
func Browse(ctx context.Context, p *filters.Prompter, t *dataset.Table, pageSize int) (int, error) {
	out := p.Out()
	if t.Len() == 0 {
		fmt.Fprintln(out, "No data available for the selected filters.")
		return 0, nil
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	question := fmt.Sprintf("Would you like to see %d lines of raw data? Enter yes or no.", pageSize)

	pages := 0
	for cursor := 0; cursor < t.Len(); {
		more, err := p.Confirm(ctx, question)
		if err != nil {
			return pages, err
		}
		if !more {
			return pages, nil
		}
		n, err := t.WriteRows(out, cursor, pageSize)
		if err != nil {
			return pages, err
		}
		pages++
		cursor += n
		if cursor >= t.Len() {
			fmt.Fprintln(out, "\nNo more raw data to display.")
		}
	}
	return pages, nil
}
