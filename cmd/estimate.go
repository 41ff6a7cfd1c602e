package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/odq/triagem/internal/screening"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print the simulated approval rate for the criteria without screening",
	Run: func(_ *cobra.Command, _ []string) {
		config, err := getConfig()
		if err != nil {
			log.Fatalf("getting a config: %s", err)
		}

		if err := estimate(os.Stdout, config.Criteria); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func estimate(w io.Writer, criteria *screening.Criteria) error {
	c := *criteria
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}

	fraction := screening.ApprovalFraction(&c)
	low, high := screening.VolumeRange(&c)

	fmt.Fprintf(w, "Taxa de aprovação estimada: %.0f%%\n", fraction*100)
	fmt.Fprintf(w, "Emails simulados: %d-%d\n", low, high)
	fmt.Fprintf(w, "Aprovados simulados: %d-%d\n", screening.ApprovedCount(low, fraction), screening.ApprovedCount(high, fraction))
	return nil
}
