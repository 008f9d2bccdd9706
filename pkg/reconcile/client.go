package reconcile

import (
	"context"

	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// FunctionClient é o colaborador remoto. GetFunction deve retornar um erro da
// categoria faults.NotFoundError quando a função não existir; os demais erros
// chegam como faults.ClientError.
type FunctionClient interface {
	GetFunction(ctx context.Context, name string) (types.RemoteSnapshot, error)
	CreateFunction(ctx context.Context, fn types.FunctionDescriptor) error
	UpdateFunctionConfiguration(ctx context.Context, name string, patch types.ConfigPatch) error
	UpdateFunctionCode(ctx context.Context, name string, code types.CodeDecision) error
	DeleteFunction(ctx context.Context, name string) error
}

// Preflighter executa verificações somente-leitura antes da busca do estado remoto.
type Preflighter interface {
	Check(ctx context.Context, desired types.DesiredState) error
}
