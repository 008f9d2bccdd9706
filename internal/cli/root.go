// Package cli implementa o comando lambdasync, que reconcilia uma função
// Lambda a partir de flags ou de um arquivo YAML/TOML.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/internal/repository"
	"github.com/raywall/terraform-provider-lambdasync/internal/service"
	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/reconcile"
)

// Backend agrupa os colaboradores remotos usados pelo apply.
type Backend struct {
	Functions reconcile.FunctionClient
	Preflight reconcile.Preflighter
}

// BackendFactory constrói o Backend de uma invocação.
type BackendFactory func(ctx context.Context, opts BackendOptions) (Backend, error)

type BackendOptions struct {
	Region      string
	WaitTimeout time.Duration
	Preflight   bool
}

// NewRootCommand monta a árvore de comandos ligada à AWS.
func NewRootCommand() *cobra.Command {
	return newRootCommand(awsBackend)
}

func newRootCommand(factory BackendFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambdasync",
		Short: "Converge a single AWS Lambda function to a declared state",
		Long: `lambdasync compares the declared configuration and code of one Lambda
function with what exists in AWS and issues only the calls needed to converge.`,
		Example: `  # Create or update a function from a local package
  lambdasync apply --name orders --runtime python3.12 --role-arn arn:aws:iam::123456789012:role/exec \
    --handler app.handler --path build/orders.zip

  # Preview the changes declared in a file
  lambdasync apply --file orders.yaml --check`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if err == nil {
			return nil
		}
		return faults.NewTypedError(faults.ValidationError, "invalid flags", err)
	})

	cmd.AddCommand(newApplyCommand(factory))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func awsBackend(ctx context.Context, opts BackendOptions) (Backend, error) {
	awsClient, err := client.New(ctx, opts.Region)
	if err != nil {
		return Backend{}, faults.NewTypedError(faults.ClientError, "failed to create aws client", err)
	}

	backend := Backend{Functions: repository.NewLambdaRepository(awsClient, opts.WaitTimeout)}
	if opts.Preflight {
		backend.Preflight = &service.PreflightService{
			STS:     awsClient.STS,
			IAM:     &service.IAMService{IAMRepo: repository.NewIAMRepository(awsClient)},
			Objects: repository.NewS3Repository(awsClient),
		}
	}
	return backend, nil
}
