package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"newsdesk/compose"
	"newsdesk/config"
	"newsdesk/display"
	"newsdesk/feeds"
	"newsdesk/models"

	"github.com/BurntSushi/toml"
	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func criteriaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "tags",
			Aliases: []string{"t"},
			Usage:   "Tags to match, exact and case sensitive",
		},
		&cli.StringSliceFlag{
			Name:    "journalists",
			Aliases: []string{"j"},
			Usage:   "Journalists to match, ignoring case and accents",
		},
		&cli.StringSliceFlag{
			Name:    "sources",
			Aliases: []string{"s"},
			Usage:   "Sources to match, ignoring case and accents",
		},
	}
}

func criteriaFromFlags(ctx *cli.Context) models.CriteriaSet {
	return models.CriteriaSet{
		Tags:        ctx.StringSlice("tags"),
		Journalists: ctx.StringSlice("journalists"),
		Sources:     ctx.StringSlice("sources"),
	}
}

func feedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "feeds",
		Usage: "List, count and create feeds",
		Subcommands: []*cli.Command{
			feedsListCmd(),
			feedsCountCmd(),
			feedsCreateCmd(),
		},
	}
}

func feedsListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List feeds, pinned feeds first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "search",
				Usage: "Only list feeds whose name or criteria contain this text",
			},
			&cli.StringFlag{
				Name:  "sort",
				Value: string(feeds.SortRecent),
				Usage: "Sort order: recent, alphabetical or creator",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print feeds as JSON",
			},
		},
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			order, err := feeds.ParseSortOrder(ctx.String("sort"))
			if err != nil {
				return err
			}

			s, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			list := s.ListFeeds(ctx.String("search"), order)
			if ctx.Bool("json") {
				return json.NewEncoder(ctx.App.Writer).Encode(list)
			}

			_, err = fmt.Fprint(ctx.App.Writer, display.NewTerminalFormatter().FormatFeeds(list))
			return err
		},
	}
}

func feedsCountCmd() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Count new items per feed",
		Flags: []cli.Flag{
			&cli.TimestampFlag{
				Name:   "since",
				Layout: time.DateOnly,
				Usage:  "Count items published on or after this day (default: today)",
			},
		},
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			s, err := loadStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, feed := range s.ListFeeds("", feeds.SortRecent) {
				var count int
				if since := ctx.Timestamp("since"); since != nil {
					count = s.NewCount(feed, compose.StartOfDay(*since))
				} else {
					count = s.NewToday(feed)
				}
				if _, err := fmt.Fprintf(ctx.App.Writer, "%s\t%d\n", feed.Name, count); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func feedsCreateCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Validate a new feed and print its configuration entry",
		Description: `Creates a feed from the given criteria and prints it as a TOML
entry that can be appended to the configuration file.

Prompts for a name when --name is not given.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Display name of the feed",
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Description of the feed",
			},
			&cli.BoolFlag{
				Name:  "pinned",
				Usage: "Pin the feed",
			},
		}, criteriaFlags()...),
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			name := ctx.String("name")
			if strings.TrimSpace(name) == "" {
				var err error
				name, err = prompt.New().Ask("Name:").Input("My feed")
				if err != nil {
					return err
				}
			}

			s, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			feed, err := s.CreateFeed(name, ctx.String("description"), criteriaFromFlags(ctx))
			if err != nil {
				return err
			}
			if ctx.Bool("pinned") {
				if feed, err = s.TogglePin(feed.ID); err != nil {
					return err
				}
			}

			entry := struct {
				Feeds []config.TomlFeed `toml:"feeds"`
			}{
				Feeds: []config.TomlFeed{{
					Id:          feed.ID,
					DisplayName: feed.Name,
					Description: feed.Description,
					Pinned:      feed.IsPinned,
					UpdatedAt:   feed.UpdatedAt.UTC().Truncate(time.Second),
					Tags:        feed.Criteria.Tags,
					Journalists: feed.Criteria.Journalists,
					Sources:     feed.Criteria.Sources,
				}},
			}
			return toml.NewEncoder(ctx.App.Writer).Encode(entry)
		},
	}
}
