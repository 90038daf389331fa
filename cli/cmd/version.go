package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/render"
	"github.com/pithecene-io/webpify/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	EventVersion string `json:"event_version"`
}

// VersionCommand returns the version command.
// It must not contact the conversion service.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}

		resp := VersionResponse{
			Version:      types.Version,
			Commit:       commit,
			EventVersion: types.EventVersion,
		}

		return r.Render(resp)
	}
}
