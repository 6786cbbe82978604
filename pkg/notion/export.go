package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/health-cli/internal/model"
)

// Board property names expected on the target Notion database.
const (
	propName     = "Name"
	propAccount  = "Account"
	propStatus   = "Status"
	propPriority = "Priority"
	propDue      = "Due"
	propTaskID   = "Task ID"
)

// ExportResult summarizes one board sync.
type ExportResult struct {
	Created int
	Updated int
}

// ExportPlaybooks pushes an account's merged action list to the Notion
// board, keyed by the item's stable ID so re-exports update in place
// instead of duplicating rows.
func ExportPlaybooks(ctx context.Context, c Client, dbID, accountName string, items []model.PlaybookItem) (*ExportResult, error) {
	res := &ExportResult{}

	for _, item := range items {
		taskID := fmt.Sprintf("%s/%s", accountName, item.ID)

		existing, err := findByTaskID(ctx, c, dbID, taskID)
		if err != nil {
			return nil, err
		}

		props := itemProperties(accountName, taskID, item)
		if existing != "" {
			if _, err := c.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
				return nil, eris.Wrap(err, fmt.Sprintf("notion: export update %s", taskID))
			}
			res.Updated++
			continue
		}

		req := &notionapi.PageCreateRequest{
			Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(dbID)},
			Properties: props,
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("notion: export create %s", taskID))
		}
		res.Created++
	}

	return res, nil
}

// findByTaskID returns the page ID carrying the given task ID, or "".
func findByTaskID(ctx context.Context, c Client, dbID, taskID string) (string, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: propTaskID,
			RichText: &notionapi.TextFilterCondition{Equals: taskID},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: find task %s", taskID))
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

func itemProperties(accountName, taskID string, item model.PlaybookItem) notionapi.Properties {
	due := notionapi.Date(item.DueDate)
	return notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: item.Name}}},
		},
		propAccount: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: accountName}}},
		},
		propTaskID: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: taskID}}},
		},
		propStatus: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(item.Status)},
		},
		propPriority: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(item.Priority)},
		},
		propDue: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &due},
		},
	}
}
