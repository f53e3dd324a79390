package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"newsdesk/compose"
	"newsdesk/display"
	"newsdesk/models"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func itemsCmd() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Print catalog items",
		Description: `Prints the items of a feed, of the selected algorithms or of the
catalog filtered by the given criteria.

Feed and home items are printed newest first, filtered items in catalog order.
Prints all log messages to stderr.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "feed",
				Aliases: []string{"f"},
				Usage:   "Print the items of this feed",
			},
			&cli.BoolFlag{
				Name:  "home",
				Usage: "Print the items matching the selected algorithms",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Value:   compose.DefaultPageSize,
				Usage:   "Number of items per page",
			},
			&cli.StringFlag{
				Name:  "cursor",
				Usage: "Print the items after the item with this id",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the page as JSON",
			},
		}, criteriaFlags()...),
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			s, err := loadStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			var items []models.Item
			switch {
			case ctx.String("feed") != "":
				if items, err = s.FeedItems(ctx.String("feed")); err != nil {
					return err
				}
			case ctx.Bool("home"):
				items = compose.SortByRecency(s.HomeItems())
			default:
				items = s.FilteredItems(criteriaFromFlags(ctx))
			}

			page := compose.Paginate(items, ctx.String("cursor"), ctx.Int("limit"))
			if ctx.Bool("json") {
				return json.NewEncoder(ctx.App.Writer).Encode(page)
			}

			if _, err := fmt.Fprint(ctx.App.Writer, display.NewTerminalFormatter().FormatItems(page.Items)); err != nil {
				return err
			}
			if page.Cursor != nil {
				_, err = fmt.Fprintf(ctx.App.Writer, "\nMore items: --cursor %s\n", *page.Cursor)
			}
			return err
		},
	}
}
