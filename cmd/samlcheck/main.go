// Command samlcheck validates a SAML response document against a service
// provider configuration and prints the extracted attributes.
// Usage: samlcheck -config sp.yaml -response response.b64 [-request-id id...]
package main

import (
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/philiph/samlgate"
)

type requestIDs []string

func (r *requestIDs) String() string { return strings.Join(*r, ",") }

func (r *requestIDs) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	configPath := flag.String("config", "samlgate.yaml", "Path to the YAML configuration file")
	responsePath := flag.String("response", "", "Path to the SAML response (raw XML or base64)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	var ids requestIDs
	flag.Var(&ids, "request-id", "Outstanding AuthnRequest ID to accept (repeatable)")
	flag.Parse()

	if *responsePath == "" {
		fmt.Fprintln(os.Stderr, "samlcheck: -response is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "samlcheck: create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
	}

	cfg, err := samlgate.LoadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "samlcheck: %v\n", err)
		os.Exit(1)
	}
	validator, err := cfg.BuildValidator(samlgate.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "samlcheck: %v\n", err)
		os.Exit(1)
	}

	raw, err := os.ReadFile(*responsePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "samlcheck: %v\n", err)
		os.Exit(1)
	}
	// POST bindings deliver the response base64-encoded; accept both forms.
	if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw))); err == nil {
		raw = decoded
	}

	attrs, err := validator.Validate(raw, ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "samlcheck: rejected (%s): %v\n", samlgate.CodeOf(err), err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "samlcheck: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
