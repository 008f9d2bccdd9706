package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

// Códigos de saída por categoria de erro.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitValidation = 2
	ExitIO         = 3
	ExitClient     = 4
)

type failureOutput struct {
	Failed bool   `json:"failed"`
	Kind   string `json:"kind"`
	Msg    string `json:"msg"`
}

// Execute roda o comando raiz e devolve o código de saída do processo.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCommand(), nil)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string) int {
	if args != nil {
		cmd.SetArgs(args)
	}
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	writeFailure(cmd.OutOrStdout(), err)
	return ExitCodeForError(err)
}

// ExitCodeForError mapeia a categoria do erro para o código de saída.
func ExitCodeForError(err error) int {
	switch faults.CategoryOf(err) {
	case faults.ValidationError:
		return ExitValidation
	case faults.IOError:
		return ExitIO
	case faults.ClientError:
		return ExitClient
	default:
		return ExitError
	}
}

func writeFailure(w io.Writer, err error) {
	kind := string(faults.CategoryOf(err))
	if kind == "" {
		kind = "Error"
	}
	_ = json.NewEncoder(w).Encode(failureOutput{Failed: true, Kind: kind, Msg: err.Error()})
}
