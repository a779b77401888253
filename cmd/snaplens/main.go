package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/snaplens/gateway/internal/client"
	"github.com/snaplens/gateway/internal/domain"
	"github.com/snaplens/gateway/internal/render"
	"github.com/snaplens/gateway/internal/upload"
)

const usage = `
	Usage: snaplens [flags] <image>

	Uploads a photo to a SnapLens gateway and prints the matching products,
	most similar first.

	Flags:
	  -gateway string   gateway base URL (default $SNAPLENS_GATEWAY_URL or %s)
	  -html string      also write the result cards as an HTML page to this file
	  -timeout duration request timeout (default %s)
	  -v                verbose logging
`

const defaultGateway = "http://localhost:8080"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	gatewayURL := os.Getenv("SNAPLENS_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = defaultGateway
	}

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, strings.TrimSpace(dedent.Dedent(fmt.Sprintf(usage, defaultGateway, client.DefaultTimeout))))
	}
	gateway := flag.String("gateway", gatewayURL, "gateway base URL")
	htmlPath := flag.String("html", "", "write HTML result cards to this file")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "request timeout")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, flag.Arg(0), *gateway, *htmlPath, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, path, gatewayURL, htmlPath string, timeout time.Duration) error {
	file, err := upload.FileFromPath(path)
	if err != nil {
		return err
	}

	var selected *upload.File
	capture := upload.NewCapture(func(f *upload.File) { selected = f })
	capture.Submit(file)
	if selected == nil {
		return fmt.Errorf("%s is not an image (%s)", file.Name, file.MediaType)
	}

	capture.Wait()
	if preview, ok := capture.Preview(); ok {
		log.Debug().
			Str("file", selected.Name).
			Str("media_type", selected.MediaType).
			Str("format", preview.Format).
			Int("width", preview.Width).
			Int("height", preview.Height).
			Msg("image selected")
	}

	log.Debug().Str("gateway", gatewayURL).Msg("searching")
	matches, err := client.New(gatewayURL, timeout).Detect(ctx, selected)
	if err != nil {
		return err
	}

	renderer := render.New(render.DefaultOptions())
	if len(matches) == 0 {
		fmt.Println("No matching products found.")
	} else if err := renderer.WriteText(os.Stdout, matches); err != nil {
		return err
	}

	if htmlPath == "" {
		return nil
	}

	out, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", htmlPath, err)
	}
	if err := renderer.WriteHTML(out, matches); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Info().Str("file", htmlPath).Int("matches", len(matches)).Msg("wrote HTML results")
	return nil
}

// describe turns a gateway error document into a one-line message
func describe(err error) string {
	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		return err.Error()
	}
	if gatewayErr.Details != nil && *gatewayErr.Details != "" {
		return fmt.Sprintf("%s: %s", gatewayErr.Message, *gatewayErr.Details)
	}
	return gatewayErr.Message
}
