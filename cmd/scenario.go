package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/solarfleet/infra/logger"
	"github.com/kilianp07/solarfleet/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [file]",
	Short: "Replay a scripted fleet scenario and print the outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(args[0])
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	res, err := scenarios.Run(sc, logger.New("scenario"))
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	fmt.Printf("scenario %s: %d sessions finalized, renewable share %.1f%%\n",
		sc.Name, len(res.Finalized), res.RenewablePct)
	for _, f := range res.Finalized {
		fmt.Printf("  %s unit=%s reason=%s renewable=%.3f kWh utility=%.3f kWh cost=%.2f\n",
			f.SessionID, f.UnitID, f.Reason, f.RenewableKWh, f.UtilityKWh, f.TotalCost)
	}
	return nil
}
