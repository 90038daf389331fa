package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webpify/cli/render"
	"github.com/pithecene-io/webpify/client"
	"github.com/pithecene-io/webpify/endpoint"
)

// HealthResponse is the response for the health command.
type HealthResponse struct {
	Endpoint string `json:"endpoint"`
	Status   string `json:"status"`
	Service  string `json:"service,omitempty"`
	Version  string `json:"version,omitempty"`
}

// HealthCommand returns the health command.
func HealthCommand() *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, ReadOnlyFlags()...)
	flags = append(flags, endpointFlags()...)

	return &cli.Command{
		Name:   "health",
		Usage:  "Check the conversion service health route",
		Flags:  flags,
		Action: healthAction,
	}
}

func healthAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	convertURL, err := endpoint.ConvertURL(resolveEndpoint(c, cfg))
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolve endpoint: %v", err), exitUsage)
	}
	healthURL, err := endpoint.HealthURL(endpoint.Explicit(convertURL))
	if err != nil {
		return cli.Exit(fmt.Sprintf("resolve endpoint: %v", err), exitUsage)
	}

	ctx, cancel := signalContext()
	defer cancel()

	status, err := client.New(convertURL, nil).Health(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("health check failed: %s", conversionMessage(err)), exitConversion)
	}

	return r.Render(HealthResponse{
		Endpoint: healthURL,
		Status:   status.Status,
		Service:  status.Service,
		Version:  status.Version,
	})
}
