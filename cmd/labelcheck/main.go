// Command labelcheck compares the model's declared class order with the
// configured label order and exits non-zero on any mismatch.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/config"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/model"
	"github.com/Hyudaddy/Web-based-Tomato-Leaf-Disease-Identification-System/internal/verdict"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns 0 when the orders agree, 1 on mismatch and 2 on usage or
// metadata errors. Only CLASS_LABELS and METADATA_PATH are read.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("labelcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	metadataPath := fs.String("metadata", config.MetadataPath("."), "path to model_metadata.json")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	meta, err := model.LoadMetadata(*metadataPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	labels := config.LoadLabels()
	for i, l := range labels {
		fmt.Fprintf(stdout, "  %2d: %s\n", i, l)
	}

	mismatches := verdict.CheckLabelOrder(meta.Classes, labels)
	if len(mismatches) == 0 {
		fmt.Fprintf(stdout, "OK: %d labels match %s\n", len(labels), *metadataPath)
		return 0
	}

	for _, m := range mismatches {
		fmt.Fprintf(stdout, "MISMATCH at index %d:\n", m.Index)
		fmt.Fprintf(stdout, "   Expected (model):  %q\n", m.Expected)
		fmt.Fprintf(stdout, "   Actual (config):   %q\n", m.Actual)
	}
	return 1
}
