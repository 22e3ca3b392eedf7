// Package database implements the panel with the shortcuts to the hosted
// database of the bot.
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/quickshop/bothub/console"
	"github.com/quickshop/bothub/event"
	"github.com/quickshop/bothub/panel"
)

const (
	ID                  event.Target = "database"
	DefaultDashboardURL              = "https://supabase.com/dashboard"
)

type Column struct {
	Name string
	Type string
}

type Table struct {
	Name    string
	Columns []Column
}

// Tables is the table structure the bot expects.
var Tables = []Table{
	{
		Name: "users",
		Columns: []Column{
			{"id", "uuid, primary key"},
			{"telegram_id", "bigint, unique"},
			{"username", "text"},
			{"first_name", "text"},
			{"last_name", "text"},
			{"language_code", "text"},
			{"created_at", "timestamp"},
			{"updated_at", "timestamp"},
		},
	},
	{
		Name: "orders",
		Columns: []Column{
			{"id", "uuid, primary key"},
			{"user_id", "uuid, foreign key"},
			{"order_items", "jsonb"},
			{"total_amount", "decimal"},
			{"status", "text"},
			{"delivery_address", "text"},
			{"phone_number", "text"},
			{"created_at", "timestamp"},
			{"completed_at", "timestamp"},
		},
	},
	{
		Name: "menu_cache",
		Columns: []Column{
			{"id", "uuid, primary key"},
			{"menu_data", "jsonb"},
			{"last_updated", "timestamp"},
			{"version", "text"},
		},
	},
}

type Config struct {
	DashboardURL string
	Console      panel.Reporter
}

type database struct {
	dashboardURL string
	console      panel.Reporter
}

func New(config Config) panel.Panel {
	d := &database{
		dashboardURL: strings.TrimSuffix(config.DashboardURL, "/"),
		console:      config.Console,
	}

	if len(d.dashboardURL) == 0 {
		d.dashboardURL = DefaultDashboardURL
	}

	return d
}

func (d *database) Definition() panel.Definition {
	return panel.Definition{
		ID:    ID,
		Title: "Database",
		Fields: []panel.Field{
			{
				Key:         "project_id",
				Label:       "Project ID",
				Description: "Reference of the hosted database project",
				Input:       panel.InputText,
				Validate:    "omitempty,alphanum",
			},
		},
	}
}

func (d *database) Handle(ctx context.Context, a panel.Action) error {
	switch a.Kind {
	case event.KindShowSnippet:
		d.showLinks(a.Values["project_id"])
	case event.KindFetchData:
		d.showTables()
	default:
		return panel.ErrUnsupported
	}

	return nil
}

func (d *database) showLinks(projectID string) {
	d.console.Append(fmt.Sprintf("Dashboard: %s", d.dashboardURL), console.SeverityInfo)

	if len(projectID) == 0 {
		d.console.Append(fmt.Sprintf("Table editor: %s/project/[PROJECT_ID]/editor", d.dashboardURL), console.SeverityInfo)
		d.console.Append("Project ID is not set", console.SeverityWarning)
		return
	}

	d.console.Append(fmt.Sprintf("Table editor: %s/project/%s/editor", d.dashboardURL, projectID), console.SeverityInfo)
}

func (d *database) showTables() {
	d.console.Append("=== PROPOSED TABLE STRUCTURE ===", console.SeverityInfo)

	for _, t := range Tables {
		columns := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			columns = append(columns, fmt.Sprintf("%s (%s)", c.Name, c.Type))
		}

		d.console.Append(fmt.Sprintf("%s: %s", t.Name, strings.Join(columns, ", ")), console.SeverityInfo)
	}

	d.console.Append("=== END TABLE STRUCTURE ===", console.SeverityInfo)
}
