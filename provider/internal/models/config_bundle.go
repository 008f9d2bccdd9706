package models

import (
	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/pkg/reconcile"
)

// ConfigurationBundle contém o Cliente AWS e os colaboradores do reconciliador
// para serem injetados nos Resources.
type ConfigurationBundle struct {
	Client    *client.AWSClient
	Functions reconcile.FunctionClient
	// Preflight é nil quando o atributo preflight do provider está desligado.
	Preflight reconcile.Preflighter
}

// Reconciler monta um reconciliador novo para cada operação do resource.
func (b *ConfigurationBundle) Reconciler() *reconcile.Reconciler {
	return &reconcile.Reconciler{
		Client:    b.Functions,
		Differ:    &reconcile.Differ{},
		Preflight: b.Preflight,
	}
}
