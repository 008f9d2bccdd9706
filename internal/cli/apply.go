package cli

import (
	"encoding/json"
	"time"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/reconcile"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

type applyOptions struct {
	file        string
	input       flagInput
	check       bool
	preflight   bool
	region      string
	waitTimeout time.Duration
	logLevel    string
	logFormat   string
}

// applyOutput é o JSON impresso em caso de sucesso.
type applyOutput struct {
	Changed      bool     `json:"changed"`
	Action       string   `json:"action"`
	DryRun       bool     `json:"dry_run"`
	Function     string   `json:"function"`
	ConfigFields []string `json:"config_fields,omitempty"`
	Code         string   `json:"code"`
}

func newApplyCommand(factory BackendFactory) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Reconcile one Lambda function with its declared state",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Antecipa a checagem dos grupos para reportá-la como erro de validação.
			if err := cmd.ValidateFlagGroups(); err != nil {
				return faults.NewTypedError(faults.ValidationError, "invalid flags", err)
			}
			return configureLogging(cmd, opts.logLevel, opts.logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, factory)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML or TOML file declaring the function")
	opts.input.register(flags)
	flags.BoolVar(&opts.check, "check", false, "compute and report changes without applying them")
	flags.BoolVar(&opts.preflight, "preflight", false, "verify account, role and code object before reconciling")
	flags.StringVar(&opts.region, "region", "", "AWS region (default from the AWS config chain)")
	flags.DurationVar(&opts.waitTimeout, "wait-timeout", 60*time.Second, "how long to wait for the function to settle after create and update; 0 disables waiting")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", string(log.TextFormat), "log format: text or json")

	for _, s3Flag := range []string{"s3-bucket", "s3-key", "s3-object-version"} {
		cmd.MarkFlagsMutuallyExclusive("path", s3Flag)
	}

	return cmd
}

func runApply(cmd *cobra.Command, opts *applyOptions, factory BackendFactory) error {
	ctx := cmd.Context()

	var base types.FunctionInput
	if opts.file != "" {
		in, err := loadInputFile(opts.file)
		if err != nil {
			return err
		}
		base = in
	}

	desired, err := types.NewDesiredState(opts.input.overlay(cmd.Flags(), base))
	if err != nil {
		return err
	}

	backend, err := factory(ctx, BackendOptions{
		Region:      opts.region,
		WaitTimeout: opts.waitTimeout,
		Preflight:   opts.preflight,
	})
	if err != nil {
		return err
	}

	reconciler := &reconcile.Reconciler{
		Client:    backend.Functions,
		Differ:    &reconcile.Differ{},
		Preflight: backend.Preflight,
		DryRun:    opts.check,
	}
	result, err := reconciler.Reconcile(ctx, desired)
	if err != nil {
		return err
	}

	out := applyOutput{
		Changed:      result.Changed,
		Action:       result.Action.String(),
		DryRun:       result.DryRun,
		Function:     desired.Name(),
		ConfigFields: result.ConfigFields,
		Code:         result.Code.String(),
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	return encoder.Encode(out)
}

func configureLogging(cmd *cobra.Command, level, format string) error {
	if err := log.SetLevel(level); err != nil {
		return faults.NewTypedError(faults.ValidationError, "invalid --log-level", err)
	}
	if err := log.SetFormat(log.OutputFormat(format)); err != nil {
		return faults.NewTypedError(faults.ValidationError, "invalid --log-format", err)
	}
	// stdout fica reservado para o JSON de resultado.
	log.L.Logger.SetOutput(cmd.ErrOrStderr())
	return nil
}
