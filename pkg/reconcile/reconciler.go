// Package reconcile converge uma única função Lambda para o estado desejado:
// busca o estado remoto, calcula o diff, decide a ação e a aplica.
package reconcile

import (
	"context"
	"fmt"

	"github.com/containerd/log"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// Reconciler orquestra fetch → diff → decisão → apply. Não guarda estado entre
// execuções; cada chamada a Reconcile parte de um snapshot novo.
type Reconciler struct {
	Client    FunctionClient
	Differ    *Differ
	Preflight Preflighter
	// DryRun suprime apenas as chamadas mutáveis; a decisão e o "changed"
	// reportado são os mesmos de uma execução real.
	DryRun bool
}

// Reconcile executa uma passada completa. Qualquer falha interrompe a passada
// imediatamente; alterações já aplicadas não são desfeitas.
func (r *Reconciler) Reconcile(ctx context.Context, desired types.DesiredState) (types.Result, error) {
	logger := log.G(ctx).WithFields(log.Fields{
		"function": desired.Name(),
		"state":    desired.State(),
		"dry_run":  r.DryRun,
	})
	ctx = log.WithLogger(ctx, logger)

	result := types.Result{Phase: types.PhaseStart, DryRun: r.DryRun}

	if r.Preflight != nil {
		if err := r.Preflight.Check(ctx, desired); err != nil {
			return r.fail(ctx, result, fmt.Errorf("preflight: %w", err))
		}
	}

	// 1. Fetch
	remote, err := r.fetch(ctx, desired.Name())
	if err != nil {
		return r.fail(ctx, result, err)
	}
	result.Phase = types.PhaseFetched
	logger.WithField("exists", remote.Exists).Debug("fetched remote function")

	// 2. Diff
	plan, err := r.differ().Diff(desired, remote)
	if err != nil {
		return r.fail(ctx, result, err)
	}
	result.Phase = types.PhaseDiffed
	result.Action = plan.Action
	result.ConfigFields = plan.Patch.Fields()
	result.Code = plan.Code.Kind
	logger.WithFields(log.Fields{
		"action":        plan.Action,
		"config_fields": result.ConfigFields,
		"code":          plan.Code.Kind,
	}).Debug("computed plan")

	// 3. Apply
	if err := r.apply(ctx, desired.Name(), plan); err != nil {
		return r.fail(ctx, result, err)
	}
	result.Phase = types.PhaseApplied
	result.Changed = plan.Changed()
	logger.WithField("phase", result.Phase).Debug("applied plan")

	result.Phase = types.PhaseDone
	logger.WithFields(log.Fields{
		"action":  plan.Action,
		"changed": result.Changed,
	}).Info("reconciliation finished")
	return result, nil
}

func (r *Reconciler) fetch(ctx context.Context, name string) (types.RemoteSnapshot, error) {
	remote, err := r.Client.GetFunction(ctx, name)
	if err != nil {
		if faults.IsCategory(err, faults.NotFoundError) {
			return types.RemoteSnapshot{Exists: false}, nil
		}
		return types.RemoteSnapshot{}, err
	}
	return remote, nil
}

func (r *Reconciler) apply(ctx context.Context, name string, plan Plan) error {
	switch plan.Action {
	case types.ActionCreate:
		return r.issue(ctx, "create function", func() error {
			return r.Client.CreateFunction(ctx, plan.Descriptor)
		})
	case types.ActionUpdate:
		// Configuração antes do código, nunca em paralelo.
		if !plan.Patch.Empty() {
			if err := r.issue(ctx, "update function configuration", func() error {
				return r.Client.UpdateFunctionConfiguration(ctx, name, plan.Patch)
			}); err != nil {
				return err
			}
		}
		if plan.Code.Kind != types.CodeNoChange {
			return r.issue(ctx, "update function code", func() error {
				return r.Client.UpdateFunctionCode(ctx, name, plan.Code)
			})
		}
		return nil
	case types.ActionDelete:
		return r.issue(ctx, "delete function", func() error {
			return r.Client.DeleteFunction(ctx, name)
		})
	default:
		return nil
	}
}

// issue chama o cliente remoto, exceto em dry-run.
func (r *Reconciler) issue(ctx context.Context, step string, call func() error) error {
	if r.DryRun {
		log.G(ctx).Infof("dry-run: skipping %s", step)
		return nil
	}
	log.G(ctx).Infof("%s", step)
	return call()
}

func (r *Reconciler) fail(ctx context.Context, result types.Result, err error) (types.Result, error) {
	log.G(ctx).WithError(err).WithField("phase", result.Phase).Error("reconciliation failed")
	result.Phase = types.PhaseFailed
	return result, err
}

func (r *Reconciler) differ() *Differ {
	if r.Differ == nil {
		return &Differ{}
	}
	return r.Differ
}
