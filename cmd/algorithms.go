package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"newsdesk/display"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func algorithmsCmd() *cli.Command {
	return &cli.Command{
		Name:  "algorithms",
		Usage: "List algorithms and their combined criteria",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "toggle",
				Usage: "Toggle the selection of these algorithms before listing",
			},
			&cli.BoolFlag{
				Name:  "combined",
				Usage: "Print the combined criteria of the selected algorithms as JSON",
			},
		},
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			s, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, id := range ctx.StringSlice("toggle") {
				if _, err := s.Algorithms().ToggleSelected(id); err != nil {
					return err
				}
			}

			if ctx.Bool("combined") {
				return json.NewEncoder(ctx.App.Writer).Encode(s.Algorithms().Combined())
			}

			_, err = fmt.Fprint(ctx.App.Writer, display.NewTerminalFormatter().FormatAlgorithms(s.Algorithms().List()))
			return err
		},
	}
}
