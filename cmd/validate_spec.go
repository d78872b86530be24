package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/canvasreview/pkg/config"
	canvaserrors "github.com/alantheprice/canvasreview/pkg/errors"
	"github.com/alantheprice/canvasreview/pkg/spec"
)

var validateSpecCmd = &cobra.Command{
	Use:   "validate-spec <spec-id-or-path>",
	Short: "Resolve a spec and report parse/extends/override errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateSpec,
}

func runValidateSpec(c *cobra.Command, args []string) error {
	cfg, err := config.LoadOrInitConfig()
	if err != nil {
		fatal("failed to load configuration: %v", err)
	}

	loader := spec.NewLoader(cfg.SpecSearchRoots)
	resolved, err := loader.Load(args[0])
	if err != nil {
		kind, _ := canvaserrors.KindOf(err)
		if jsonOutput {
			emitJSON(map[string]string{"ok": "false", "errorKind": string(kind), "message": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", kind, err)
		}
		os.Exit(1)
		return nil
	}

	if jsonOutput {
		emitJSON(map[string]interface{}{
			"ok":          true,
			"name":        resolved.Name,
			"version":     resolved.Version,
			"checks":      len(resolved.AllChecks()),
			"diagnostics": resolved.Diagnostics(),
		})
		return nil
	}

	fmt.Printf("%s@%s resolved from %s — %d checks\n", resolved.Name, resolved.Version, resolved.ResolvedFrom, len(resolved.AllChecks()))
	for _, d := range resolved.Diagnostics() {
		fmt.Printf("  warning: %s\n", d)
	}
	return nil
}
