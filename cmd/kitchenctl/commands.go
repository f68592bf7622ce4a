package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/reconcile"
	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// options 共用旗標
type options struct {
	catalogPath  string
	snapshotPath string
	outSnapshot  string
	verbose      bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "kitchenctl",
		Short:         "Reconcile kitchen inventory and recipe batches offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "catalog.yaml", "catalog seed file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.snapshotPath, "snapshot", "", "session snapshot file (JSON); empty starts from an empty kitchen")
	cmd.PersistentFlags().StringVar(&opts.outSnapshot, "out-snapshot", "", "write the resulting snapshot to this file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newProposeCommand(opts))
	cmd.AddCommand(newCookedCommand(opts))
	cmd.AddCommand(newValidateCommand())
	return cmd
}

func newProposeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "propose <requests.json>",
		Short: "Apply a request batch to a snapshot and print the proposal",
		Example: `  kitchenctl propose turn.json
  kitchenctl propose --snapshot kitchen.json --out-snapshot kitchen.json turn.json
  cat turn.json | kitchenctl propose -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readRequests(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			engine, snap, err := opts.load()
			if err != nil {
				return err
			}

			p, next, err := engine.Apply(cmd.Context(), snap, reqs)
			if err != nil {
				return err
			}
			common.LogDebug("batch applied",
				zap.Int("requests", len(reqs)),
				zap.Int("results", len(p.Results)),
			)
			if err := opts.saveSnapshot(next); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newCookedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cooked <recipe-id>",
		Short: "Print the inventory decrements for cooking a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, snap, err := opts.load()
			if err != nil {
				return err
			}
			res, next, err := engine.Processor().DecrementCooked(cmd.Context(), args[0], snap)
			if err != nil {
				return err
			}
			if !res.Found {
				return fmt.Errorf("recipe %q not found in snapshot", args[0])
			}
			if err := opts.saveSnapshot(next); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <requests.json>",
		Short: "Decode and validate a request batch without applying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := readRequests(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d request(s)\n", len(reqs))
			return nil
		},
	}
}

// load 讀取目錄與快照並建立引擎
func (o *options) load() (*reconcile.Engine, session.Snapshot, error) {
	entries, err := catalog.LoadYAML(o.catalogPath)
	if err != nil {
		return nil, session.Snapshot{}, err
	}
	matcher := catalog.NewMatcher(catalog.NewMemoryStore(entries))

	snap := session.Empty()
	if o.snapshotPath != "" {
		data, err := os.ReadFile(o.snapshotPath)
		if err != nil {
			return nil, snap, fmt.Errorf("failed to read snapshot: %w", err)
		}
		if err := common.ParseJSONBytesStrict(data, &snap); err != nil {
			return nil, snap, fmt.Errorf("failed to parse snapshot: %w", err)
		}
	}

	// Apply 與 DecrementCooked 不會碰會話儲存
	return reconcile.NewEngine(matcher, nil), snap, nil
}

func (o *options) saveSnapshot(snap session.Snapshot) error {
	if o.outSnapshot == "" {
		return nil
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(o.outSnapshot, append(data, '\n'), 0o644)
}

// readRequests 讀取並驗證請求批次，"-" 代表標準輸入
func readRequests(stdin io.Reader, path string) ([]reconcile.Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}

	reqs, err := reconcile.DecodeRequests(data)
	if err != nil {
		return nil, err
	}
	if err := reconcile.Validate(reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// initLogger 日誌寫到 stderr，stdout 只留 JSON 輸出
func initLogger(w io.Writer, verbose bool) error {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	common.SetLogger(zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(w),
		level,
	)))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
