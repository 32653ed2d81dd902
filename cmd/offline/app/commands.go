package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/swot-confluence/offline"
	"github.com/swot-confluence/offline/internal/cmd/output"
	"github.com/swot-confluence/offline/internal/cmd/table"
	"github.com/swot-confluence/offline/internal/config"
	"github.com/swot-confluence/offline/pkg/dataset"
	"github.com/swot-confluence/offline/pkg/errors"
	"github.com/swot-confluence/offline/pkg/observation"
	"github.com/swot-confluence/offline/pkg/prior"
)

// NewRecordCommand prints the reconciled FLPE record of one reach.
func (a *App) NewRecordCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "record REACH_ID",
		GroupID: "core",
		Short:   "Print the reconciled FLPE parameter record of a reach",
		Long: `Record reads the FLPE outputs of one reach and prints the reconciled
parameter record. The requested run type carries the algorithm values; the
other run type carries -9999. A reach with incomplete outputs is reported
as unavailable with NaN everywhere.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReachID(args[0])
			if err != nil {
				return err
			}
			c, err := a.Client()
			if err != nil {
				return err
			}
			rec, err := c.Record(cmd.Context(), id)
			if err != nil {
				return err
			}
			return output.Write(a.stdout, a.format(), rec, func(wide bool) table.Data {
				return table.RecordToTableData(rec, wide)
			})
		},
	}
}

// batchEntry is the printed outcome of one reach in a batch.
type batchEntry struct {
	ReachID  int64             `json:"reach_id" yaml:"reach_id"`
	Status   string            `json:"status" yaml:"status"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	Assembly *offline.Assembly `json:"assembly,omitempty" yaml:"assembly,omitempty"`
}

// batchReport is the printed outcome of a batch.
type batchReport struct {
	Summary offline.BatchSummary `json:"summary" yaml:"summary"`
	Results []batchEntry         `json:"results" yaml:"results"`
}

// NewAssembleCommand assembles observations, priors and FLPE records for
// a list of reaches.
func (a *App) NewAssembleCommand() *cobra.Command {
	var reachFile string

	cmd := &cobra.Command{
		Use:     "assemble [REACH_ID...]",
		GroupID: "core",
		Short:   "Assemble every input of a list of reaches",
		Long: `Assemble gathers, for every reach, its SWOT observation (when --swot-dir
is set), its SWORD priors (when --sword-path is set) and its reconciled FLPE
record. Reaches are assembled concurrently; one failing reach does not stop
the others, but the command exits with an error if any reach failed.`,
		Example: `  offline assemble 74265000011 74265000021 --flpe-dir /mnt/flpe
  offline assemble --reach-file reaches.json -o json > reaches.out.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := a.reachIDs(args, reachFile)
			if err != nil {
				return err
			}
			c, err := a.Client()
			if err != nil {
				return err
			}
			results, err := c.AssembleBatch(cmd.Context(), ids)
			if err != nil {
				return err
			}

			summary := offline.Summarize(results)
			report := batchReport{Summary: summary, Results: make([]batchEntry, len(results))}
			for i, r := range results {
				report.Results[i] = batchEntry{ReachID: r.ReachID, Status: "available", Assembly: r.Assembly}
				switch {
				case r.Err != nil:
					report.Results[i].Status = "failed"
					report.Results[i].Error = r.Err.Error()
				case !r.Assembly.Available():
					report.Results[i].Status = "unavailable"
				}
			}

			format := a.format()
			if err := output.Write(a.stdout, format, report, func(bool) table.Data {
				return table.BatchToTableData(results)
			}); err != nil {
				return err
			}
			if format.Tabular() {
				_, _ = fmt.Fprintln(a.stdout, summary)
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d reaches failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reachFile, "reach-file", "", "JSON file holding an array of reach identifiers")

	return cmd
}

// NewObserveCommand prints the SWOT observation of one reach.
func (a *App) NewObserveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "observe REACH_ID",
		GroupID: "inputs",
		Short:   "Print the SWOT observation time series of a reach",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReachID(args[0])
			if err != nil {
				return err
			}
			if err := a.config.Require(config.KeySWOTDir); err != nil {
				return err
			}
			obs, err := observation.Read(cmd.Context(), a.dataStore(), observation.PathFor(a.config.SWOTDir, id))
			if err != nil {
				return err
			}
			return output.Write(a.stdout, a.format(), obs, func(bool) table.Data {
				return table.ObservationToTableData(obs)
			})
		},
	}
}

// NewPriorCommand prints the SWORD priors of one reach.
func (a *App) NewPriorCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "prior REACH_ID",
		GroupID: "inputs",
		Short:   "Print the area fit and discharge model priors of a reach",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReachID(args[0])
			if err != nil {
				return err
			}
			if err := a.config.Require(config.KeySWORDPath); err != nil {
				return err
			}
			p, err := prior.Read(cmd.Context(), a.dataStore(), a.config.SWORDPath, id)
			if err != nil {
				return err
			}
			return output.Write(a.stdout, a.format(), p, func(bool) table.Data {
				return table.PriorsToTableData(p)
			})
		},
	}
}

// NewManifestCommand lists the MetroMan files of the per-file layout and
// optionally checks that reaches resolve to exactly one of them.
func (a *App) NewManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "manifest [REACH_ID...]",
		GroupID: "inputs",
		Short:   "List MetroMan output files and check reach lookups",
		Long: `Manifest scans the MetroMan output directory of the per-file layout.
Without arguments it lists every MetroMan file. With reach identifiers it
checks that each one matches exactly one file and reports every reach that
does not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.Client()
			if err != nil {
				return err
			}
			m, err := c.Manifest(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) > 0 {
				ids := make([]int64, 0, len(args))
				for _, arg := range args {
					id, err := parseReachID(arg)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
				if err := m.Validate(ids); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.stdout, "%d reaches resolve to one MetroMan file each\n", len(ids))
				return nil
			}

			return output.Write(a.stdout, a.format(), m.Files(), func(bool) table.Data {
				return table.ManifestToTableData(m)
			})
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(a.stdout, "offline %s\n", a.version)
			if a.verbose {
				_, _ = fmt.Fprintf(a.stdout, "  commit:   %s\n", a.commit)
				_, _ = fmt.Fprintf(a.stdout, "  built:    %s\n", a.date)
				_, _ = fmt.Fprintf(a.stdout, "  built by: %s\n", a.builtBy)
			}
		},
	}
}

// dataStore returns the store used by commands that read inputs directly.
func (a *App) dataStore() *dataset.Store {
	if a.store != nil {
		return a.store
	}
	return dataset.NewStore()
}

// reachIDs merges the command-line identifiers with those of reachFile.
func (a *App) reachIDs(args []string, reachFile string) ([]int64, error) {
	var ids []int64
	if reachFile != "" {
		data, err := afero.ReadFile(a.dataStore().Fs(), reachFile)
		if err != nil {
			return nil, errors.WrapIO("read", reachFile, err)
		}
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, errors.NewValidationError("reach-file", reachFile, "must hold a JSON array of reach identifiers: "+err.Error())
		}
	}
	for _, arg := range args {
		id, err := parseReachID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.NewValidationError("reach_id", nil, "no reaches given; pass reach identifiers or --reach-file")
	}
	return ids, nil
}

// parseReachID parses a reach identifier argument.
func parseReachID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("reach_id", s, "must be a positive integer")
	}
	return id, nil
}
