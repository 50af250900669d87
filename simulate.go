package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nstehr/cohort/agent"
	"github.com/nstehr/cohort/metrics"
	"github.com/nstehr/cohort/model"
	"github.com/nstehr/cohort/sim"
	"github.com/nstehr/cohort/unit"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a headless skirmish against the built-in world",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		engineFlag, _ := cmd.Flags().GetString("engine")
		scenarioPath, _ := cmd.Flags().GetString("scenario")

		d, err := loadDoctrine()
		if err != nil {
			return err
		}
		var engine unit.Engine
		if engineFlag != "" {
			if engine, err = unit.ParseEngine(engineFlag); err != nil {
				return err
			}
		}
		sc := sim.DefaultScenario()
		if scenarioPath != "" {
			if sc, err = sim.LoadScenario(scenarioPath); err != nil {
				return err
			}
		}

		world := sim.NewWorld(sc)
		rec := metrics.New()
		orch, err := agent.NewOrchestrator(d, world, agent.Options{
			Logger:  slog.Default(),
			Metrics: rec,
			Engine:  engine,
		})
		if err != nil {
			return err
		}

		start := time.Now()
		out := world.Run(steps, func(gs *model.GameState) { orch.Step(gs) })
		slog.Info("simulation finished",
			"scenario", sc.Name,
			"engine", orch.Engine(),
			"steps", out.Tick,
			"commands", len(world.Log()),
			"units", out.Units,
			"enemies", out.Enemies,
			"enemyStructures", out.EnemyStructures,
			"posture", orch.Posture(),
			"elapsed", time.Since(start),
		)
		return nil
	},
}

func init() {
	simulateCmd.Flags().Int("steps", 3000, "maximum number of simulation steps")
	simulateCmd.Flags().String("engine", "", "unit engine override: bt or hfsm")
	simulateCmd.Flags().String("scenario", "", "scenario YAML file (built-in outpost by default)")
}
