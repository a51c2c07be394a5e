package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/orga-pm/ganttcore/internal/cascade"
	"github.com/orga-pm/ganttcore/internal/config"
	"github.com/orga-pm/ganttcore/internal/cpm"
	"github.com/orga-pm/ganttcore/internal/graph"
	"github.com/orga-pm/ganttcore/internal/model"
	"github.com/orga-pm/ganttcore/internal/reporter"
	"github.com/orga-pm/ganttcore/internal/sequencer"
	"github.com/orga-pm/ganttcore/internal/snapshot"
	"github.com/orga-pm/ganttcore/internal/ui"
)

var (
	flagFile   string
	flagConfig string
	flagJSON   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ganttcore",
		Short: "Dependency-aware scheduling over a project snapshot",
		Long: `Ganttcore reads a project snapshot (tasks, milestones, dependency edges),
computes critical paths and cascading date shifts, and writes the updated
snapshot back for the caller to persist.`,
	}

	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "snapshot.json", "Project snapshot file")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ganttcore.toml if present)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(cascadeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(blockedCmd())
	rootCmd.AddCommand(reorderCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(rowsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadAll reads the config and snapshot and builds the graph.
func loadAll() (*config.Config, *model.Snapshot, *graph.Graph, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, err
	}
	snap, err := snapshot.Load(flagFile)
	if err != nil {
		return nil, nil, nil, err
	}
	g, err := graph.Build(snap)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, snap, g, nil
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func parseDateFlag(name, value string) (model.Date, error) {
	if value == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run critical-path analysis over the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, g, err := loadAll()
			if err != nil {
				return err
			}
			res := cpm.Analyze(g, cpm.Options{DefaultDurationDays: cfg.DefaultDurationDays})
			if flagJSON {
				return outputJSON(res)
			}
			reporter.PrintAnalysis(os.Stdout, g, res)
			return nil
		},
	}
}

func cascadeCmd() *cobra.Command {
	var taskID, newStart, newEnd, previewFile string

	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "Preview or apply the date shifts implied by a task change",
	}
	cmd.PersistentFlags().StringVar(&taskID, "task", "", "Task whose dates change")
	cmd.PersistentFlags().StringVar(&newStart, "start", "", "New start date (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&newEnd, "end", "", "New due date (YYYY-MM-DD)")

	compute := func() (*model.Snapshot, *graph.Graph, *cascade.Result, model.Date, model.Date, error) {
		_, snap, g, err := loadAll()
		if err != nil {
			return nil, nil, nil, model.Date{}, model.Date{}, err
		}
		if taskID == "" {
			return nil, nil, nil, model.Date{}, model.Date{}, fmt.Errorf("--task is required")
		}
		start, err := parseDateFlag("start", newStart)
		if err != nil {
			return nil, nil, nil, model.Date{}, model.Date{}, err
		}
		end, err := parseDateFlag("end", newEnd)
		if err != nil {
			return nil, nil, nil, model.Date{}, model.Date{}, err
		}
		if start.IsZero() && end.IsZero() {
			return nil, nil, nil, model.Date{}, model.Date{}, fmt.Errorf("at least one of --start or --end is required")
		}
		if snap.Project.Mode == model.ModeOff {
			return nil, nil, nil, model.Date{}, model.Date{}, fmt.Errorf("project %s has cascading off", snap.Project.ID)
		}
		res, err := cascade.Compute(g, taskID, start, end)
		if err != nil {
			return nil, nil, nil, model.Date{}, model.Date{}, err
		}
		return snap, g, res, start, end, nil
	}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the shifts without touching the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, res, _, _, err := compute()
			if err != nil {
				return err
			}
			if previewFile != "" {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(previewFile, append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("writing preview: %w", err)
				}
			}
			if flagJSON {
				return outputJSON(res)
			}
			reporter.PrintCascade(os.Stdout, res)
			return nil
		},
	}
	previewCmd.Flags().StringVar(&previewFile, "out", "", "Also save the preview for a later apply")

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the trigger change and every implied shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, g, _, start, end, err := compute()
			if err != nil {
				return err
			}

			var preview *cascade.Result
			if previewFile != "" {
				data, err := os.ReadFile(previewFile)
				if err != nil {
					return fmt.Errorf("reading preview: %w", err)
				}
				preview = &cascade.Result{}
				if err := json.Unmarshal(data, preview); err != nil {
					return fmt.Errorf("decoding preview: %w", err)
				}
			}

			res, err := cascade.Apply(g, taskID, start, end, preview)
			if err != nil {
				if errors.Is(err, cascade.ErrStalePreview) {
					fmt.Fprintf(os.Stderr, "%s %v\n", ui.Red("stale preview:"), err)
				}
				return err
			}
			if err := cascade.ApplyToSnapshot(snap, res); err != nil {
				return err
			}
			if err := snapshot.Save(flagFile, snap); err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(res)
			}
			reporter.PrintCascade(os.Stdout, res)
			return nil
		},
	}
	applyCmd.Flags().StringVar(&previewFile, "preview", "", "Previously saved preview to validate against")

	cmd.AddCommand(previewCmd)
	cmd.AddCommand(applyCmd)
	return cmd
}

func checkCmd() *cobra.Command {
	var taskID, dependsOn, depType string
	var lagDays int
	var add bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a new dependency edge would create a cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snap, g, err := loadAll()
			if err != nil {
				return err
			}
			if taskID == "" || dependsOn == "" {
				return fmt.Errorf("--task and --depends-on are required")
			}
			dt, err := model.ParseDepType(depType)
			if err != nil {
				return err
			}
			edge := model.Edge{TaskID: taskID, DependsOn: dependsOn, Type: dt, LagDays: lagDays}

			if err := g.WouldCreateCycle(edge); err != nil {
				var cycleErr *graph.CycleError
				if errors.As(err, &cycleErr) && !flagJSON {
					fmt.Fprintf(os.Stderr, "%s %v\n", ui.BoldRed("rejected:"), cycleErr)
				}
				return err
			}

			if add {
				snap.Edges = append(snap.Edges, edge)
				if err := snapshot.Save(flagFile, snap); err != nil {
					return err
				}
			}
			if flagJSON {
				return outputJSON(map[string]interface{}{"ok": true, "added": add})
			}
			fmt.Printf("%s %s -> %s (%s%+d)\n", ui.Green("ok:"), dependsOn, taskID, dt, lagDays)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Dependent task")
	cmd.Flags().StringVar(&dependsOn, "depends-on", "", "Predecessor task")
	cmd.Flags().StringVar(&depType, "type", "FS", "Dependency type (FS, SS, FF, SF)")
	cmd.Flags().IntVar(&lagDays, "lag", 0, "Lag in days (negative for lead time)")
	cmd.Flags().BoolVar(&add, "add", false, "Add the edge to the snapshot when valid")
	return cmd
}

func blockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocked",
		Short: "List tasks waiting on incomplete predecessors",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, g, err := loadAll()
			if err != nil {
				return err
			}
			blocked := cascade.BlockedTasks(g)
			if flagJSON {
				return outputJSON(map[string]interface{}{"blocked": blocked})
			}
			reporter.PrintBlocked(os.Stdout, g, blocked)
			return nil
		},
	}
}

func reorderCmd() *cobra.Command {
	var itemID, prevID, nextID string

	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Move a task or milestone between two neighbors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, snap, _, err := loadAll()
			if err != nil {
				return err
			}
			if itemID == "" {
				return fmt.Errorf("--item is required")
			}
			opts := sequencer.Options{InitialGap: cfg.InitialGap, MinGap: cfg.MinGap}
			if assigned := sequencer.Initialize(snap, opts); len(assigned) > 0 && !flagJSON {
				fmt.Printf("%s assigned initial keys to %d item(s)\n", ui.Yellow("note:"), len(assigned))
			}

			res, err := sequencer.Reorder(snap, itemID, prevID, nextID, opts)
			if err != nil {
				return err
			}
			if err := snapshot.Save(flagFile, snap); err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(res)
			}
			if res.Renormalized {
				fmt.Printf("%s project renumbered\n", ui.Yellow("note:"))
			}
			fmt.Printf("%s %s -> %v\n", ui.Green("moved:"), itemID, res.SortOrder)
			return nil
		},
	}
	cmd.Flags().StringVar(&itemID, "item", "", "Task or milestone to move")
	cmd.Flags().StringVar(&prevID, "after", "", "Item above the drop position")
	cmd.Flags().StringVar(&nextID, "before", "", "Item below the drop position")
	return cmd
}

func completeCmd() *cobra.Command {
	var taskID, onDate string

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a task completed and pull eligible successors forward",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snap, _, err := loadAll()
			if err != nil {
				return err
			}
			if taskID == "" {
				return fmt.Errorf("--task is required")
			}

			found := false
			for i := range snap.Tasks {
				if snap.Tasks[i].ID == taskID {
					snap.Tasks[i].Status = model.StatusCompleted
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("task %s not in snapshot", taskID)
			}

			// Rebuild so the completion is visible to the advance pass.
			g, err := graph.Build(snap)
			if err != nil {
				return err
			}

			res := &cascade.Result{TaskID: taskID}
			if snap.Project.Mode != model.ModeOff {
				today := model.DateOf(time.Now())
				if onDate != "" {
					if today, err = model.ParseDate(onDate); err != nil {
						return fmt.Errorf("--on: %w", err)
					}
				}
				if res, err = cascade.AdvanceOnCompletion(g, taskID, today); err != nil {
					return err
				}
				if err := cascade.ApplyToSnapshot(snap, res); err != nil {
					return err
				}
			}

			if err := snapshot.Save(flagFile, snap); err != nil {
				return err
			}
			if flagJSON {
				return outputJSON(res)
			}
			fmt.Printf("%s %s\n", ui.Green("completed:"), taskID)
			reporter.PrintCascade(os.Stdout, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Task to complete")
	cmd.Flags().StringVar(&onDate, "on", "", "Completion date (default: today)")
	return cmd
}

func rowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows",
		Short: "Export the merged task and milestone rows in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, snap, g, err := loadAll()
			if err != nil {
				return err
			}
			res := cpm.Analyze(g, cpm.Options{DefaultDurationDays: cfg.DefaultDurationDays})
			rows := reporter.BuildRows(snap, g, res)
			if flagJSON {
				return outputJSON(rows)
			}
			reporter.PrintRows(os.Stdout, rows)
			return nil
		},
	}
}
